package middleware

import (
	"time"

	"quizzy-quest/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// handleChainError runs the app error handler right away so the response
// status is final before it gets recorded.
func handleChainError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

// Metrics records request counts and latency by route pattern, so /quizzes/1
// and /quizzes/2 share one series.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		handleChainError(c, c.Next())
		m.ObserveHTTP(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
