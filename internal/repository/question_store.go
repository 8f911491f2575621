package repository

import (
	"context"
	"fmt"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/repository/models"
	"quizzy-quest/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuestionStore implements domain.QuestionStore for one question table.
// R is the row model of that table.
type sqlxQuestionStore[R any] struct {
	db       *sqlx.DB
	quizType domain.QuizType
	table    string
	columns  string
	// insertQuery must end with RETURNING question_id.
	insertQuery string
	insertArgs  func(q domain.Question) ([]interface{}, error)
	rowID       func(r R) int64
	toDomain    func(r R) domain.Question
}

func (s *sqlxQuestionStore[R]) Type() domain.QuizType {
	return s.quizType
}

func (s *sqlxQuestionStore[R]) BulkInsert(ctx context.Context, items []domain.Question) ([]int64, error) {
	exec := GetExecutor(ctx, s.db)
	ids := make([]int64, 0, len(items))
	for i, item := range items {
		if item == nil || item.Type() != s.quizType {
			return nil, fmt.Errorf("item %d is not a %s question", i+1, s.quizType)
		}
		args, err := s.insertArgs(item)
		if err != nil {
			return nil, err
		}
		var id int64
		if err := exec.GetContext(ctx, &id, s.insertQuery, args...); err != nil {
			return nil, fmt.Errorf("failed to insert %s question %d: %w", s.table, i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *sqlxQuestionStore[R]) BulkFetch(ctx context.Context, ids []int64) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}

	var rows []R
	query := fmt.Sprintf("SELECT %s FROM %s WHERE question_id IN (?)", s.columns, s.table)
	if err := selectIn(ctx, GetExecutor(ctx, s.db), &rows, query, ids); err != nil {
		return nil, fmt.Errorf("failed to fetch %s questions: %w", s.table, err)
	}

	byID := make(map[int64]R, len(rows))
	for _, r := range rows {
		byID[s.rowID(r)] = r
	}
	questions := make([]domain.Question, len(ids))
	for i, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%s question %d referenced by quiz does not exist", s.table, id)
		}
		questions[i] = s.toDomain(r)
	}
	return questions, nil
}

func (s *sqlxQuestionStore[R]) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE question_id IN (?)", s.table)
	if _, err := execIn(ctx, GetExecutor(ctx, s.db), query, ids); err != nil {
		return fmt.Errorf("failed to delete %s questions: %w", s.table, err)
	}
	return nil
}

// NewMultipleChoiceStore creates the store for the multiple_choice table.
func NewMultipleChoiceStore(db *sqlx.DB) domain.QuestionStore {
	return &sqlxQuestionStore[models.MultipleChoice]{
		db:       db,
		quizType: domain.TypeMultipleChoice,
		table:    "multiple_choice",
		columns:  "question_id, question, letter_a, letter_b, letter_c, letter_d, answer, explanation, timer, points",
		insertQuery: `INSERT INTO multiple_choice (question, letter_a, letter_b, letter_c, letter_d, answer, explanation, timer, points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING question_id`,
		insertArgs: func(q domain.Question) ([]interface{}, error) {
			mc, ok := q.(domain.MultipleChoice)
			if !ok {
				return nil, fmt.Errorf("expected multiple choice question, got %T", q)
			}
			r := fromDomainMultipleChoice(mc)
			return []interface{}{r.Question, r.LetterA, r.LetterB, r.LetterC, r.LetterD, r.Answer, r.Explanation, r.Timer, r.Points}, nil
		},
		rowID:    func(r models.MultipleChoice) int64 { return r.ID },
		toDomain: toDomainMultipleChoice,
	}
}

// NewIdentificationStore creates the store for the identification table.
func NewIdentificationStore(db *sqlx.DB) domain.QuestionStore {
	return &sqlxQuestionStore[models.Identification]{
		db:       db,
		quizType: domain.TypeIdentification,
		table:    "identification",
		columns:  "question_id, question, answer, explanation, timer, points",
		insertQuery: `INSERT INTO identification (question, answer, explanation, timer, points)
			VALUES ($1, $2, $3, $4, $5) RETURNING question_id`,
		insertArgs: func(q domain.Question) ([]interface{}, error) {
			ident, ok := q.(domain.Identification)
			if !ok {
				return nil, fmt.Errorf("expected identification question, got %T", q)
			}
			r := fromDomainIdentification(ident)
			return []interface{}{r.Question, r.Answer, r.Explanation, r.Timer, r.Points}, nil
		},
		rowID:    func(r models.Identification) int64 { return r.ID },
		toDomain: toDomainIdentification,
	}
}

// NewTrueOrFalseStore creates the store for the true_or_false table.
func NewTrueOrFalseStore(db *sqlx.DB) domain.QuestionStore {
	return &sqlxQuestionStore[models.TrueOrFalse]{
		db:       db,
		quizType: domain.TypeTrueOrFalse,
		table:    "true_or_false",
		columns:  "question_id, question, answer, explanation, timer, points",
		insertQuery: `INSERT INTO true_or_false (question, answer, explanation, timer, points)
			VALUES ($1, $2, $3, $4, $5) RETURNING question_id`,
		insertArgs: func(q domain.Question) ([]interface{}, error) {
			tf, ok := q.(domain.TrueOrFalse)
			if !ok {
				return nil, fmt.Errorf("expected true or false question, got %T", q)
			}
			r := fromDomainTrueOrFalse(tf)
			return []interface{}{r.Question, r.Answer, r.Explanation, r.Timer, r.Points}, nil
		},
		rowID:    func(r models.TrueOrFalse) int64 { return r.ID },
		toDomain: toDomainTrueOrFalse,
	}
}

func fromDomainMultipleChoice(q domain.MultipleChoice) models.MultipleChoice {
	return models.MultipleChoice{
		ID:          q.ID,
		Question:    q.Text,
		LetterA:     q.Options[0],
		LetterB:     q.Options[1],
		LetterC:     q.Options[2],
		LetterD:     q.Options[3],
		Answer:      string(q.Answer),
		Explanation: util.StringToNullString(q.Explanation),
		Timer:       q.Timer,
		Points:      q.Points,
	}
}

func toDomainMultipleChoice(r models.MultipleChoice) domain.Question {
	return domain.MultipleChoice{
		QuestionCommon: domain.QuestionCommon{
			ID:          r.ID,
			Text:        r.Question,
			Explanation: util.NullStringToString(r.Explanation),
			Timer:       r.Timer,
			Points:      r.Points,
		},
		Options: [4]string{r.LetterA, r.LetterB, r.LetterC, r.LetterD},
		Answer:  domain.Choice(r.Answer),
	}
}

func fromDomainIdentification(q domain.Identification) models.Identification {
	return models.Identification{
		ID:          q.ID,
		Question:    q.Text,
		Answer:      q.Answer,
		Explanation: util.StringToNullString(q.Explanation),
		Timer:       q.Timer,
		Points:      q.Points,
	}
}

func toDomainIdentification(r models.Identification) domain.Question {
	return domain.Identification{
		QuestionCommon: domain.QuestionCommon{
			ID:          r.ID,
			Text:        r.Question,
			Explanation: util.NullStringToString(r.Explanation),
			Timer:       r.Timer,
			Points:      r.Points,
		},
		Answer: r.Answer,
	}
}

func fromDomainTrueOrFalse(q domain.TrueOrFalse) models.TrueOrFalse {
	return models.TrueOrFalse{
		ID:          q.ID,
		Question:    q.Text,
		Answer:      q.Answer,
		Explanation: util.StringToNullString(q.Explanation),
		Timer:       q.Timer,
		Points:      q.Points,
	}
}

func toDomainTrueOrFalse(r models.TrueOrFalse) domain.Question {
	return domain.TrueOrFalse{
		QuestionCommon: domain.QuestionCommon{
			ID:          r.ID,
			Text:        r.Question,
			Explanation: util.NullStringToString(r.Explanation),
			Timer:       r.Timer,
			Points:      r.Points,
		},
		Answer: r.Answer,
	}
}

// QuestionRegistry selects the question store for a quiz type.
type QuestionRegistry struct {
	multipleChoice domain.QuestionStore
	identification domain.QuestionStore
	trueOrFalse    domain.QuestionStore
}

// NewQuestionRegistry wires one store per variant.
func NewQuestionRegistry(multipleChoice, identification, trueOrFalse domain.QuestionStore) *QuestionRegistry {
	return &QuestionRegistry{
		multipleChoice: multipleChoice,
		identification: identification,
		trueOrFalse:    trueOrFalse,
	}
}

// NewSQLXQuestionRegistry creates a registry backed by the sqlx stores.
func NewSQLXQuestionRegistry(db *sqlx.DB) *QuestionRegistry {
	return NewQuestionRegistry(NewMultipleChoiceStore(db), NewIdentificationStore(db), NewTrueOrFalseStore(db))
}

// Store implements domain.QuestionRegistry.
func (r *QuestionRegistry) Store(t domain.QuizType) (domain.QuestionStore, error) {
	switch t {
	case domain.TypeMultipleChoice:
		return r.multipleChoice, nil
	case domain.TypeIdentification:
		return r.identification, nil
	case domain.TypeTrueOrFalse:
		return r.trueOrFalse, nil
	default:
		return nil, domain.NewValidationErrors(domain.MsgInvalidQuizType)
	}
}
