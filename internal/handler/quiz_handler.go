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
	QuizFormField  = "quiz"
	ImageFormField = "image"

	MsgQuizCreated = "Quiz successfully created"
	MsgQuizUpdated = "Quiz successfully updated"
	MsgQuizDeleted = "Quiz successfully deleted"
)

// QuizHandler handles quiz authoring and reading requests
type QuizHandler struct {
	service service.QuizService
	images  ImageLinker
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, images ImageLinker) *QuizHandler {
	return &QuizHandler{
		service: service,
		images:  images,
	}
}

// readDraft parses the multipart `quiz` JSON field and the optional image.
func readDraft(c *fiber.Ctx) (domain.QuizDraft, *domain.ImageUpload, error) {
	form, err := multipartForm(c)
	if err != nil {
		return domain.QuizDraft{}, nil, err
	}
	raw := formValue(form, QuizFormField)
	if raw == "" {
		return domain.QuizDraft{}, nil, domain.NewInvalidInputError("quiz field is required")
	}
	draft, err := dto.ParseQuizRequest([]byte(raw))
	if err != nil {
		return domain.QuizDraft{}, nil, err
	}
	image, err := formImage(form, ImageFormField)
	if err != nil {
		return domain.QuizDraft{}, nil, err
	}
	return draft, image, nil
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Creates a quiz with its questions. The `quiz` field carries the JSON body; `image` is optional.
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param quiz formData string true "Quiz JSON"
// @Param image formData file false "Cover image (png or jpeg)"
// @Success 201 {object} dto.CreatedResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	draft, image, err := readDraft(c)
	if err != nil {
		return err
	}

	ownerID := middleware.UserID(c)
	id, err := h.service.CreateQuiz(c.UserContext(), ownerID, draft, image)
	if err != nil {
		logger.Get().Warn("Failed to create quiz", zap.Int64("user_id", ownerID), zap.Error(err))
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: id, Message: MsgQuizCreated})
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Returns a quiz with its items in answer order
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.UserContext(), middleware.ValidatedID(c))
	if err != nil {
		return err
	}
	return c.JSON(toQuizResponse(quiz, h.images))
}

// GetQuizForEdit godoc
// @Summary Get a quiz for editing
// @Description Returns the quiz in the editor shape. Only the owner may read it.
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/edit [get]
func (h *QuizHandler) GetQuizForEdit(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuizForEdit(c.UserContext(), middleware.ValidatedID(c))
	if err != nil {
		return err
	}
	if !quiz.Quiz.IsOwnedBy(middleware.UserID(c)) {
		return domain.NewForbiddenError(service.MsgNotQuizOwner)
	}
	return c.JSON(toQuizResponse(quiz, h.images))
}

// UpdateQuiz godoc
// @Summary Update a quiz
// @Description Replaces the metadata and items of a quiz owned by the requester
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Quiz ID"
// @Param quiz formData string true "Quiz JSON"
// @Param image formData file false "New cover image"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/update [post]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	draft, image, err := readDraft(c)
	if err != nil {
		return err
	}

	quizID, requesterID := middleware.ValidatedID(c), middleware.UserID(c)
	if err := h.service.UpdateQuiz(c.UserContext(), quizID, requesterID, draft, image); err != nil {
		logger.Get().Warn("Failed to update quiz",
			zap.Int64("quiz_id", quizID),
			zap.Int64("user_id", requesterID),
			zap.Error(err),
		)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: MsgQuizUpdated})
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/delete [post]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	quizID, requesterID := middleware.ValidatedID(c), middleware.UserID(c)
	if err := h.service.DeleteQuiz(c.UserContext(), quizID, requesterID); err != nil {
		logger.Get().Warn("Failed to delete quiz",
			zap.Int64("quiz_id", quizID),
			zap.Int64("user_id", requesterID),
			zap.Error(err),
		)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: MsgQuizDeleted})
}

// ListOthers godoc
// @Summary List other users' public quizzes
// @Tags quiz
// @Produce json
// @Param type query string true "Quiz type"
// @Success 200 {array} dto.QuizSummaryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/others [get]
func (h *QuizHandler) ListOthers(c *fiber.Ctx) error {
	summaries, err := h.service.ListPublicOthers(c.UserContext(), middleware.UserID(c), middleware.ValidatedType(c))
	if err != nil {
		return err
	}
	resp, err := toSummaryResponses(summaries, h.images)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListMine godoc
// @Summary List the requester's quizzes
// @Tags quiz
// @Produce json
// @Param type query string true "Quiz type"
// @Success 200 {array} dto.QuizSummaryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/mine [get]
func (h *QuizHandler) ListMine(c *fiber.Ctx) error {
	summaries, err := h.service.ListOwn(c.UserContext(), middleware.UserID(c), middleware.ValidatedType(c))
	if err != nil {
		return err
	}
	resp, err := toSummaryResponses(summaries, h.images)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuizWithAttempts godoc
// @Summary Get a created quiz with every attempt
// @Description Owner-only view of a quiz and the resolved attempts made on it
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizWithAttemptsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/answers [get]
func (h *QuizHandler) GetQuizWithAttempts(c *fiber.Ctx) error {
	result, err := h.service.GetCreatedQuizWithAttempts(c.UserContext(), middleware.ValidatedID(c), middleware.UserID(c))
	if err != nil {
		return err
	}
	attempts, err := toResolvedAttemptResponses(result.Attempts, h.images)
	if err != nil {
		return err
	}
	return c.JSON(dto.QuizWithAttemptsResponse{
		Quiz:     toQuizResponse(&result.QuizWithQuestions, h.images),
		Attempts: attempts,
	})
}
