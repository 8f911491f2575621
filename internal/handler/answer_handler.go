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

const MsgAnswerRecorded = "Quiz successfully finished"

// AnswerHandler records finished attempts.
type AnswerHandler struct {
	service service.AnswerService
}

func NewAnswerHandler(service service.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: service}
}

// readAttempt decodes the body strictly and fills in the quiz id from the path.
func readAttempt(c *fiber.Ctx) (*domain.QuizAnswer, error) {
	var req dto.AttemptRequest
	if err := dto.DecodeStrict(c.Body(), &req); err != nil {
		return nil, domain.NewInvalidInputError(dto.MsgInvalidBody).WithContext("reason", err.Error())
	}
	t, err := domain.ParseQuizType(req.Type)
	if err != nil {
		return nil, err
	}
	return &domain.QuizAnswer{
		QuizID:         middleware.ValidatedID(c),
		Type:           t,
		Points:         req.Points,
		Answers:        req.Answers,
		RemainingTimes: req.RemainingTimes,
		Questions:      req.Questions,
	}, nil
}

// SubmitAnswer godoc
// @Summary Submit a finished attempt
// @Description Runs the answer access check for the requester and records the attempt
// @Tags answer
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.AttemptRequest true "Attempt"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/answers [post]
func (h *AnswerHandler) SubmitAnswer(c *fiber.Ctx) error {
	attempt, err := readAttempt(c)
	if err != nil {
		return err
	}
	userID := middleware.UserID(c)
	if _, err := h.service.SubmitAuthenticated(c.UserContext(), userID, attempt); err != nil {
		logger.Get().Warn("Failed to record attempt",
			zap.Int64("quiz_id", attempt.QuizID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgAnswerRecorded})
}

// SubmitUnauthAnswer godoc
// @Summary Submit a finished attempt without an account
// @Tags answer
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.AttemptRequest true "Attempt"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/answers/unauth [post]
func (h *AnswerHandler) SubmitUnauthAnswer(c *fiber.Ctx) error {
	attempt, err := readAttempt(c)
	if err != nil {
		return err
	}
	if _, err := h.service.SubmitAnonymous(c.UserContext(), attempt); err != nil {
		logger.Get().Warn("Failed to record anonymous attempt", zap.Int64("quiz_id", attempt.QuizID), zap.Error(err))
		return err
	}
	return c.JSON(dto.MessageResponse{Message: MsgAnswerRecorded})
}
