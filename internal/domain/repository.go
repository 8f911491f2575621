package domain

import "context"

// TransactionManager runs fn inside one store transaction. Repositories called
// with the context passed to fn take part in that transaction. fn returning an
// error (or panicking) rolls everything back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuestionStore persists one question variant. Implementations only accept
// and return questions of their own Type.
type QuestionStore interface {
	Type() QuizType
	// BulkInsert stores items and returns their ids in input order.
	BulkInsert(ctx context.Context, items []Question) ([]int64, error)
	// BulkFetch returns the questions for ids in the order of ids. A missing id is an error.
	BulkFetch(ctx context.Context, ids []int64) ([]Question, error)
	BulkDelete(ctx context.Context, ids []int64) error
}

// QuestionRegistry selects the store responsible for a quiz type.
type QuestionRegistry interface {
	Store(t QuizType) (QuestionStore, error)
}

// QuizRepository persists quiz rows. Lookups return nil, nil when absent.
type QuizRepository interface {
	Create(ctx context.Context, quiz *Quiz) (int64, error)
	GetByID(ctx context.Context, id int64) (*Quiz, error)
	// GetByIDForUpdate reads the quiz and locks its row for the current transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*Quiz, error)
	Update(ctx context.Context, quiz *Quiz) error
	Delete(ctx context.Context, id int64) error
	ListPublicByType(ctx context.Context, t QuizType, excludeOwnerID int64) ([]*Quiz, error)
	ListByOwnerAndType(ctx context.Context, ownerID int64, t QuizType) ([]*Quiz, error)
}

// QuizAnswerRepository persists attempts. Create returns ErrAlreadyAnswered
// when a non-anonymous user already has an attempt for the quiz.
type QuizAnswerRepository interface {
	Create(ctx context.Context, answer *QuizAnswer) (int64, error)
	Exists(ctx context.Context, quizID, userID int64) (bool, error)
	AnsweredQuizIDs(ctx context.Context, userID int64, quizIDs []int64) (map[int64]bool, error)
	ListByQuizID(ctx context.Context, quizID int64) ([]*QuizAnswer, error)
	ListByUserID(ctx context.Context, userID int64) ([]*QuizAnswer, error)
}

// UserRepository persists accounts. Lookups return nil, nil when absent.
type UserRepository interface {
	Create(ctx context.Context, user *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateImagePath(ctx context.Context, id int64, imagePath string) error
	SetRecoveryCode(ctx context.Context, id int64, code string) error
}

// ImageStore keeps quiz and user images. Paths are relative object names such
// as "quiz-images/01J....png".
type ImageStore interface {
	Save(ctx context.Context, path string, contentType string, data []byte) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Mailer delivers account recovery codes.
type Mailer interface {
	SendRecoveryCode(ctx context.Context, to string, code string) error
}
