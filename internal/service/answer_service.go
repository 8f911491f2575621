package service

import (
	"context"
	"errors"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/metrics"

	"go.uber.org/zap"
)

// AnswerService records finished attempts and reads them back.
type AnswerService interface {
	// RecordAttempt validates the attempt shape and stores it. Access must already have been checked.
	RecordAttempt(ctx context.Context, attempt *domain.QuizAnswer) (int64, error)
	// SubmitAuthenticated runs the answer access check for userID and records on success.
	SubmitAuthenticated(ctx context.Context, userID int64, attempt *domain.QuizAnswer) (int64, error)
	// SubmitAnonymous runs the anonymous access check and records the attempt as user 0.
	SubmitAnonymous(ctx context.Context, attempt *domain.QuizAnswer) (int64, error)
	ListAttempts(ctx context.Context, quizID int64) ([]domain.ResolvedAttempt, error)
	HasAnswered(ctx context.Context, quizID, userID int64) (bool, error)
}

type answerService struct {
	answers domain.QuizAnswerRepository
	users   domain.UserRepository
	access  AccessService
	metrics *metrics.Metrics
}

func NewAnswerService(
	answers domain.QuizAnswerRepository,
	users domain.UserRepository,
	access AccessService,
	m *metrics.Metrics,
) AnswerService {
	return &answerService{answers: answers, users: users, access: access, metrics: m}
}

func (s *answerService) RecordAttempt(ctx context.Context, attempt *domain.QuizAnswer) (int64, error) {
	if err := attempt.Validate(); err != nil {
		return 0, err
	}

	id, err := s.answers.Create(ctx, attempt)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAnswered) {
			return 0, err
		}
		logger.Get().Error("Failed to record attempt",
			zap.Int64("quiz_id", attempt.QuizID),
			zap.Int64("user_id", attempt.UserID),
			zap.Error(err))
		return 0, domain.NewInternalError("Failed to record attempt", err)
	}

	s.metrics.AttemptRecorded(attempt.Type, attempt.IsAnonymous())
	logger.Get().Info("Attempt recorded",
		zap.Int64("quiz_id", attempt.QuizID),
		zap.Int64("user_id", attempt.UserID),
		zap.Int("score", attempt.Score()))
	return id, nil
}

func (s *answerService) SubmitAuthenticated(ctx context.Context, userID int64, attempt *domain.QuizAnswer) (int64, error) {
	decision, err := s.access.AnswerAccess(ctx, attempt.QuizID, userID)
	if err != nil {
		return 0, err
	}
	if err := decision.Err(); err != nil {
		return 0, err
	}
	attempt.UserID = userID
	return s.RecordAttempt(ctx, attempt)
}

func (s *answerService) SubmitAnonymous(ctx context.Context, attempt *domain.QuizAnswer) (int64, error) {
	decision, err := s.access.UnauthAnswerAccess(ctx, attempt.QuizID)
	if err != nil {
		return 0, err
	}
	if err := decision.Err(); err != nil {
		return 0, err
	}
	attempt.UserID = domain.AnonymousUserID
	return s.RecordAttempt(ctx, attempt)
}

func (s *answerService) ListAttempts(ctx context.Context, quizID int64) ([]domain.ResolvedAttempt, error) {
	attempts, err := s.answers.ListByQuizID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list attempts", err)
	}
	return resolveAttempts(ctx, s.users, attempts)
}

func (s *answerService) HasAnswered(ctx context.Context, quizID, userID int64) (bool, error) {
	if userID == domain.AnonymousUserID {
		return false, nil
	}
	answered, err := s.answers.Exists(ctx, quizID, userID)
	if err != nil {
		return false, domain.NewInternalError("Failed to check previous attempts", err)
	}
	return answered, nil
}

// resolveAttempts attaches taker identities with one batched lookup. User 0 and
// accounts that no longer resolve become the unknown-user placeholder.
func resolveAttempts(ctx context.Context, users domain.UserRepository, attempts []*domain.QuizAnswer) ([]domain.ResolvedAttempt, error) {
	ids := make([]int64, 0, len(attempts))
	seen := make(map[int64]bool)
	for _, a := range attempts {
		if !a.IsAnonymous() && !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}

	byID := map[int64]*domain.User{}
	if len(ids) > 0 {
		var err error
		byID, err = users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load attempt takers", err)
		}
	}

	resolved := make([]domain.ResolvedAttempt, len(attempts))
	for i, a := range attempts {
		identity := domain.UnknownUser()
		if u, ok := byID[a.UserID]; ok && !a.IsAnonymous() {
			identity = u.Identity()
		}
		resolved[i] = domain.ResolvedAttempt{Answer: *a, User: identity}
	}
	return resolved, nil
}
