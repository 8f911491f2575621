package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizzy-quest/internal/cache"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/logger"

	"go.uber.org/zap"
)

// QuizCache keeps read-only copies of quizzes with their questions. Every
// failure is logged and reported as a miss so callers fall through to the store.
type QuizCache struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewQuizCache returns nil when c is nil; a nil *QuizCache never hits.
func NewQuizCache(c domain.Cache, ttl time.Duration) *QuizCache {
	if c == nil {
		return nil
	}
	return &QuizCache{cache: c, ttl: ttl}
}

// cachedQuiz is the stored form. Questions sit in the slice matching Quiz.Type.
type cachedQuiz struct {
	Quiz           domain.Quiz             `json:"quiz"`
	MultipleChoice []domain.MultipleChoice `json:"multiple_choice,omitempty"`
	Identification []domain.Identification `json:"identification,omitempty"`
	TrueOrFalse    []domain.TrueOrFalse    `json:"true_or_false,omitempty"`
}

func encodeQuiz(q *domain.QuizWithQuestions) (string, error) {
	entry := cachedQuiz{Quiz: *q.Quiz}
	for _, item := range q.Questions {
		switch v := item.(type) {
		case domain.MultipleChoice:
			entry.MultipleChoice = append(entry.MultipleChoice, v)
		case domain.Identification:
			entry.Identification = append(entry.Identification, v)
		case domain.TrueOrFalse:
			entry.TrueOrFalse = append(entry.TrueOrFalse, v)
		default:
			return "", fmt.Errorf("unsupported question %T", item)
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeQuiz(raw string) (*domain.QuizWithQuestions, error) {
	var entry cachedQuiz
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, entry.Quiz.ItemCount())
	switch entry.Quiz.Type {
	case domain.TypeMultipleChoice:
		for _, q := range entry.MultipleChoice {
			questions = append(questions, q)
		}
	case domain.TypeIdentification:
		for _, q := range entry.Identification {
			questions = append(questions, q)
		}
	case domain.TypeTrueOrFalse:
		for _, q := range entry.TrueOrFalse {
			questions = append(questions, q)
		}
	}
	if len(questions) != entry.Quiz.ItemCount() {
		return nil, errors.New("cached quiz is inconsistent")
	}
	quiz := entry.Quiz
	return &domain.QuizWithQuestions{Quiz: &quiz, Questions: questions}, nil
}

func (c *QuizCache) Get(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, cache.QuizDetailKey(quizID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Quiz cache read failed", zap.Int64("quiz_id", quizID), zap.Error(err))
		}
		return nil, false
	}
	q, err := decodeQuiz(raw)
	if err != nil {
		logger.Get().Warn("Discarding unreadable cached quiz", zap.Int64("quiz_id", quizID), zap.Error(err))
		return nil, false
	}
	return q, true
}

func (c *QuizCache) Set(ctx context.Context, q *domain.QuizWithQuestions) {
	if c == nil {
		return
	}
	raw, err := encodeQuiz(q)
	if err != nil {
		logger.Get().Warn("Quiz cache encode failed", zap.Int64("quiz_id", q.Quiz.ID), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, cache.QuizDetailKey(q.Quiz.ID), raw, c.ttl); err != nil {
		logger.Get().Warn("Quiz cache write failed", zap.Int64("quiz_id", q.Quiz.ID), zap.Error(err))
	}
}

func (c *QuizCache) Evict(ctx context.Context, quizID int64) {
	if c == nil {
		return
	}
	if err := c.cache.Delete(ctx, cache.QuizDetailKey(quizID)); err != nil {
		logger.Get().Warn("Quiz cache eviction failed", zap.Int64("quiz_id", quizID), zap.Error(err))
	}
}
