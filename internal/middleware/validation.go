package middleware

import (
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedIDKey   = "validated_id"
	ValidatedTypeKey = "validated_type"
)

// ValidationMiddleware checks path and query parameters before handlers run
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware(validator *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: validator}
}

// ValidateID parses the :id path parameter into a positive int64.
func (vm *ValidationMiddleware) ValidateID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := vm.validator.ValidateID(c.Params("id"))
		if errs != nil {
			return errs // This will be handled by ErrorHandler
		}
		c.Locals(ValidatedIDKey, id)
		return c.Next()
	}
}

// ValidateQuizType parses the type query parameter.
func (vm *ValidationMiddleware) ValidateQuizType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, errs := vm.validator.ValidateQuizType(c.Query("type"))
		if errs != nil {
			return errs
		}
		c.Locals(ValidatedTypeKey, t)
		return c.Next()
	}
}

// ValidatedID returns the id stored by ValidateID.
func ValidatedID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(ValidatedIDKey).(int64)
	return id
}

// ValidatedType returns the quiz type stored by ValidateQuizType.
func ValidatedType(c *fiber.Ctx) domain.QuizType {
	t, _ := c.Locals(ValidatedTypeKey).(domain.QuizType)
	return t
}
