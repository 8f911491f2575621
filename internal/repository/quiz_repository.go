package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const quizColumns = `quiz_id, user_id, name, description, topic, type, questions_id, visibility, image_path, created_at, updated_at`

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func (r *sqlxQuizRepository) Create(ctx context.Context, quiz *domain.Quiz) (int64, error) {
	now := time.Now()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now
	m := fromDomainQuiz(quiz)

	query := `INSERT INTO quizzes (user_id, name, description, topic, type, questions_id, visibility, image_path, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING quiz_id`

	var id int64
	err := GetExecutor(ctx, r.db).GetContext(ctx, &id, query,
		m.UserID, m.Name, m.Description, m.Topic, m.Type, m.QuestionsID, m.Visibility, m.ImagePath, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.ID = id
	return id, nil
}

func (r *sqlxQuizRepository) GetByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	return r.getOne(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE quiz_id = $1`, id)
}

// GetByIDForUpdate locks the quiz row until the surrounding transaction ends.
// Outside a transaction the lock is released as soon as the statement returns.
func (r *sqlxQuizRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Quiz, error) {
	return r.getOne(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE quiz_id = $1 FOR UPDATE`, id)
}

func (r *sqlxQuizRepository) getOne(ctx context.Context, query string, id int64) (*domain.Quiz, error) {
	var m models.Quiz
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return toDomainQuiz(&m), nil
}

func (r *sqlxQuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	quiz.UpdatedAt = time.Now()
	m := fromDomainQuiz(quiz)

	query := `UPDATE quizzes SET
	            name = :name,
	            description = :description,
	            topic = :topic,
	            type = :type,
	            questions_id = :questions_id,
	            visibility = :visibility,
	            image_path = :image_path,
	            updated_at = :updated_at
	          WHERE quiz_id = :quiz_id`

	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewQuizNotFoundError(quiz.ID)
	}
	return nil
}

func (r *sqlxQuizRepository) Delete(ctx context.Context, id int64) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM quizzes WHERE quiz_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

func (r *sqlxQuizRepository) ListPublicByType(ctx context.Context, t domain.QuizType, excludeOwnerID int64) ([]*domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes
	          WHERE type = $1 AND visibility = TRUE AND user_id <> $2
	          ORDER BY quiz_id DESC`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, string(t), excludeOwnerID); err != nil {
		return nil, fmt.Errorf("failed to list public quizzes: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

func (r *sqlxQuizRepository) ListByOwnerAndType(ctx context.Context, ownerID int64, t domain.QuizType) ([]*domain.Quiz, error) {
	var rows []models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes
	          WHERE user_id = $1 AND type = $2
	          ORDER BY quiz_id DESC`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, ownerID, string(t)); err != nil {
		return nil, fmt.Errorf("failed to list quizzes by owner: %w", err)
	}
	return toDomainQuizzes(rows), nil
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	q := &domain.Quiz{
		ID:          m.ID,
		OwnerID:     m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Topic:       m.Topic,
		Public:      m.Visibility,
		ImagePath:   m.ImagePath,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	q.SetQuestions(domain.QuizType(m.Type), m.QuestionsID)
	return q
}

func toDomainQuizzes(rows []models.Quiz) []*domain.Quiz {
	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	return &models.Quiz{
		ID:          q.ID,
		UserID:      q.OwnerID,
		Name:        q.Name,
		Description: q.Description,
		Topic:       q.Topic,
		Type:        string(q.Type),
		QuestionsID: models.IntList(q.QuestionIDs()),
		Visibility:  q.Public,
		ImagePath:   q.ImagePath,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}
