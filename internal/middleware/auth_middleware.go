package middleware

import (
	"context"
	"strings"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing the int64 user id in fiber.Ctx locals
)

// TokenValidator is the part of the auth service the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) int64 {
	if id, ok := c.Locals(UserIDKey).(int64); ok {
		return id
	}
	return domain.AnonymousUserID
}

func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get(AuthorizationHeader)
	if authHeader == "" {
		return "", "Authorization header is missing"
	}
	if !strings.HasPrefix(authHeader, BearerSchema) {
		return "", "Authorization scheme is not Bearer"
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
	if token == "" {
		return "", "Token is empty"
	}
	return token, ""
}

// Protected rejects requests without a valid token and stores the user id in locals.
func Protected(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c)
		if problem != "" {
			return domain.NewUnauthorizedError(problem)
		}

		claims, err := auth.ValidateJWT(c.UserContext(), token)
		if err != nil {
			logger.Get().Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return domain.NewUnauthorizedError("Invalid or expired token")
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and lets
// everyone else through as anonymous.
func OptionalAuth(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c)
		if problem != "" {
			return c.Next()
		}

		claims, err := auth.ValidateJWT(c.UserContext(), token)
		if err != nil {
			logger.Get().Debug("OptionalAuth: JWT validation failed, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}
