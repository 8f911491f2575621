package handler

import (
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/middleware"
	"quizzy-quest/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	MsgNameChanged = "Username successfully changed"
	MsgRoleChanged = "Role successfully changed"
	MsgImageNeeded = "Image is required"
)

// UserHandler handles account settings and profile requests
type UserHandler struct {
	userService service.UserService
	images      ImageLinker
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, images ImageLinker) *UserHandler {
	return &UserHandler{userService: userService, images: images}
}

// GetMe godoc
// @Summary Get the current user
// @Tags user
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	identity, err := h.userService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	resp, err := toUserResponse(identity, h.images)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetProfile godoc
// @Summary Get a user profile with attempts
// @Tags user
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfileWithAttempts(c.UserContext(), middleware.ValidatedID(c))
	if err != nil {
		return err
	}
	user, err := toPublicUserResponse(profile.User, h.images)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserProfileResponse{
		User:     user,
		Attempts: toAttemptResponses(profile.Attempts),
	})
}

// ChangeName godoc
// @Summary Change username
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.ChangeNameRequest true "New name"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /users/me/name [post]
func (h *UserHandler) ChangeName(c *fiber.Ctx) error {
	var req dto.ChangeNameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.userService.ChangeName(c.UserContext(), middleware.UserID(c), req.Name); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgNameChanged})
}

// ChangeRole godoc
// @Summary Change role
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.ChangeRoleRequest true "New role"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /users/me/role [post]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.userService.ChangeRole(c.UserContext(), middleware.UserID(c), req.Role); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgRoleChanged})
}

// ChangePassword godoc
// @Summary Change password
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.userService.ChangePassword(c.UserContext(), middleware.UserID(c), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgPasswordReset})
}

// ChangeImage godoc
// @Summary Change profile image
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "png or jpeg"
// @Success 200 {object} map[string]string
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /users/me/image [post]
func (h *UserHandler) ChangeImage(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}
	upload, err := formImage(form, ImageFormField)
	if err != nil {
		return err
	}
	if upload == nil || len(upload.Data) == 0 {
		return domain.NewValidationErrors(MsgImageNeeded)
	}

	userID := middleware.UserID(c)
	path, err := h.userService.ChangeImage(c.UserContext(), userID, upload.Data)
	if err != nil {
		logger.Get().Warn("Failed to change user image", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return c.JSON(fiber.Map{
		"message":   service.MsgImageSaved,
		"image_url": h.images.URL(path),
	})
}
