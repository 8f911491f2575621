package repository

import (
	"context"
	"fmt"
	"time"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const quizAnswerColumns = `quiz_answer_id, user_id, quiz_id, type, points, answers, remaining_times, questions, created_at`

// sqlxQuizAnswerRepository implements domain.QuizAnswerRepository using sqlx.
type sqlxQuizAnswerRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizAnswerRepository creates a new instance of sqlxQuizAnswerRepository.
func NewSQLXQuizAnswerRepository(db *sqlx.DB) domain.QuizAnswerRepository {
	return &sqlxQuizAnswerRepository{db: db}
}

// Create inserts one attempt. The quiz_answers_quiz_user_uidx partial index
// rejects a second attempt by the same signed-in user.
func (r *sqlxQuizAnswerRepository) Create(ctx context.Context, answer *domain.QuizAnswer) (int64, error) {
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}
	m := fromDomainQuizAnswer(answer)

	query := `INSERT INTO quiz_answers (user_id, quiz_id, type, points, answers, remaining_times, questions, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING quiz_answer_id`

	var id int64
	err := GetExecutor(ctx, r.db).GetContext(ctx, &id, query,
		m.UserID, m.QuizID, m.Type, m.Points, m.Answers, m.RemainingTimes, m.Questions, m.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return 0, domain.ErrAlreadyAnswered
		}
		return 0, fmt.Errorf("failed to create quiz answer: %w", err)
	}
	answer.ID = id
	return id, nil
}

func (r *sqlxQuizAnswerRepository) Exists(ctx context.Context, quizID, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM quiz_answers WHERE quiz_id = $1 AND user_id = $2)`

	if err := GetExecutor(ctx, r.db).GetContext(ctx, &exists, query, quizID, userID); err != nil {
		return false, fmt.Errorf("failed to check quiz answer existence: %w", err)
	}
	return exists, nil
}

// AnsweredQuizIDs returns the subset of quizIDs the user has answered.
func (r *sqlxQuizAnswerRepository) AnsweredQuizIDs(ctx context.Context, userID int64, quizIDs []int64) (map[int64]bool, error) {
	answered := make(map[int64]bool)
	if len(quizIDs) == 0 {
		return answered, nil
	}

	var ids []int64
	query := `SELECT DISTINCT quiz_id FROM quiz_answers WHERE user_id = ? AND quiz_id IN (?)`
	if err := selectIn(ctx, GetExecutor(ctx, r.db), &ids, query, userID, quizIDs); err != nil {
		return nil, fmt.Errorf("failed to get answered quizzes: %w", err)
	}
	for _, id := range ids {
		answered[id] = true
	}
	return answered, nil
}

func (r *sqlxQuizAnswerRepository) ListByQuizID(ctx context.Context, quizID int64) ([]*domain.QuizAnswer, error) {
	var rows []models.QuizAnswer
	query := `SELECT ` + quizAnswerColumns + ` FROM quiz_answers WHERE quiz_id = $1 ORDER BY quiz_answer_id`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to list quiz answers by quiz: %w", err)
	}
	return toDomainQuizAnswers(rows), nil
}

func (r *sqlxQuizAnswerRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.QuizAnswer, error) {
	var rows []models.QuizAnswer
	query := `SELECT ` + quizAnswerColumns + ` FROM quiz_answers WHERE user_id = $1 ORDER BY quiz_answer_id DESC`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list quiz answers by user: %w", err)
	}
	return toDomainQuizAnswers(rows), nil
}

func toDomainQuizAnswer(m *models.QuizAnswer) *domain.QuizAnswer {
	if m == nil {
		return nil
	}
	return &domain.QuizAnswer{
		ID:             m.ID,
		UserID:         m.UserID,
		QuizID:         m.QuizID,
		Type:           domain.QuizType(m.Type),
		Points:         m.Points.Ints(),
		Answers:        []string(m.Answers),
		RemainingTimes: m.RemainingTimes.Ints(),
		Questions:      []string(m.Questions),
		CreatedAt:      m.CreatedAt,
	}
}

func toDomainQuizAnswers(rows []models.QuizAnswer) []*domain.QuizAnswer {
	answers := make([]*domain.QuizAnswer, 0, len(rows))
	for i := range rows {
		answers = append(answers, toDomainQuizAnswer(&rows[i]))
	}
	return answers
}

func fromDomainQuizAnswer(a *domain.QuizAnswer) *models.QuizAnswer {
	return &models.QuizAnswer{
		ID:             a.ID,
		UserID:         a.UserID,
		QuizID:         a.QuizID,
		Type:           string(a.Type),
		Points:         models.IntListOf(a.Points),
		Answers:        models.StringList(a.Answers),
		RemainingTimes: models.IntListOf(a.RemainingTimes),
		Questions:      models.StringList(a.Questions),
		CreatedAt:      a.CreatedAt,
	}
}
