package service

import (
	"context"

	"quizzy-quest/internal/domain"
)

// AccessService decides whether a requester may answer, view or edit a quiz.
// Decisions only read; a denial is a normal result, not an error.
type AccessService interface {
	// AnswerAccess checks existence, prior attempt, visibility and ownership, in that order.
	AnswerAccess(ctx context.Context, quizID, requesterID int64) (domain.AccessDecision, error)
	// UnauthAnswerAccess checks existence and visibility for anonymous takers.
	UnauthAnswerAccess(ctx context.Context, quizID int64) (domain.AccessDecision, error)
	// AboutOrEditAccess only lets the owner through.
	AboutOrEditAccess(ctx context.Context, quizID, requesterID int64) (domain.AccessDecision, error)
}

type accessService struct {
	quizzes domain.QuizRepository
	answers domain.QuizAnswerRepository
}

func NewAccessService(quizzes domain.QuizRepository, answers domain.QuizAnswerRepository) AccessService {
	return &accessService{quizzes: quizzes, answers: answers}
}

func (s *accessService) load(ctx context.Context, quizID int64) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz", err)
	}
	return quiz, nil
}

func (s *accessService) AnswerAccess(ctx context.Context, quizID, requesterID int64) (domain.AccessDecision, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return domain.AccessDecision{}, err
	}
	if quiz == nil {
		return domain.Deny(domain.ReasonQuizNotFound), nil
	}

	answered, err := s.answers.Exists(ctx, quizID, requesterID)
	if err != nil {
		return domain.AccessDecision{}, domain.NewInternalError("Failed to check previous attempts", err)
	}
	if answered {
		return domain.Deny(domain.ReasonAlreadyAnswered), nil
	}
	if !quiz.Public {
		return domain.Deny(domain.ReasonQuizPrivate), nil
	}
	if quiz.IsOwnedBy(requesterID) {
		return domain.Deny(domain.ReasonOwnQuiz), nil
	}
	return domain.Allow(), nil
}

func (s *accessService) UnauthAnswerAccess(ctx context.Context, quizID int64) (domain.AccessDecision, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return domain.AccessDecision{}, err
	}
	if quiz == nil {
		return domain.Deny(domain.ReasonQuizNotFound), nil
	}
	if !quiz.Public {
		return domain.Deny(domain.ReasonQuizPrivate), nil
	}
	return domain.Allow(), nil
}

func (s *accessService) AboutOrEditAccess(ctx context.Context, quizID, requesterID int64) (domain.AccessDecision, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return domain.AccessDecision{}, err
	}
	if quiz == nil {
		return domain.Deny(domain.ReasonQuizNotFound), nil
	}
	if !quiz.IsOwnedBy(requesterID) {
		return domain.Deny(domain.ReasonNotOwner), nil
	}
	return domain.Allow(), nil
}
