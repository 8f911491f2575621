package handler

import (
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/middleware"
	"quizzy-quest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AccessHandler exposes the access checks the client runs before opening a quiz.
type AccessHandler struct {
	service service.AccessService
}

func NewAccessHandler(service service.AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

func accessResponse(c *fiber.Ctx, decision domain.AccessDecision, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(dto.AccessResponse{IsAllowed: decision.Allowed, Message: decision.Reason})
}

// AnswerAccess godoc
// @Summary Check whether the requester may answer a quiz
// @Tags access
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.AccessResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/access/answer [get]
func (h *AccessHandler) AnswerAccess(c *fiber.Ctx) error {
	decision, err := h.service.AnswerAccess(c.UserContext(), middleware.ValidatedID(c), middleware.UserID(c))
	return accessResponse(c, decision, err)
}

// UnauthAnswerAccess godoc
// @Summary Check whether an anonymous taker may answer a quiz
// @Tags access
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.AccessResponse
// @Router /quizzes/{id}/access/unauth [get]
func (h *AccessHandler) UnauthAnswerAccess(c *fiber.Ctx) error {
	decision, err := h.service.UnauthAnswerAccess(c.UserContext(), middleware.ValidatedID(c))
	return accessResponse(c, decision, err)
}

// AboutOrEditAccess godoc
// @Summary Check whether the requester may view the about page or edit a quiz
// @Tags access
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.AccessResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/access/about [get]
func (h *AccessHandler) AboutOrEditAccess(c *fiber.Ctx) error {
	decision, err := h.service.AboutOrEditAccess(c.UserContext(), middleware.ValidatedID(c), middleware.UserID(c))
	return accessResponse(c, decision, err)
}
