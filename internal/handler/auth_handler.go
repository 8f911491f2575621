package handler

import (
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const MsgPasswordReset = "Password successfully changed"

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewInvalidInputError(dto.MsgInvalidBody).WithContext("reason", err.Error())
	}
	return nil
}

// SignUp creates an account and returns a session token.
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account details"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return err
	}
	logger.Get().Info("User signed up", zap.String("name", req.Name))
	return c.Status(fiber.StatusCreated).JSON(dto.TokenResponse{Token: token})
}

// LogIn exchanges credentials for a session token.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LogInRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /auth/log-in [post]
func (h *AuthHandler) LogIn(c *fiber.Ctx) error {
	var req dto.LogInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.authService.LogIn(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token})
}

// ForgotPassword mails a recovery code.
// @Summary Request a recovery code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: service.MsgCodeSent})
}

// ResetPassword sets a new password using a recovery code.
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Code and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgPasswordReset})
}
