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

const userColumns = `id, name, email, password, role, image_path, forgot_password_code, created_at, updated_at`

// Unique constraints of the users table, see the initial migration.
const (
	usersNameKey  = "users_name_key"
	usersEmailKey = "users_email_key"
)

const (
	MsgUsernameTaken = "Username already exist"
	MsgEmailTaken    = "Email already exist"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// Create inserts a new user. A lost race on the unique name or email surfaces
// as the same validation message the pre-checks produce.
func (r *sqlxUserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m := fromDomainUser(user)

	query := `INSERT INTO users (name, email, password, role, image_path, forgot_password_code, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int64
	err := GetExecutor(ctx, r.db).GetContext(ctx, &id, query,
		m.Name, m.Email, m.Password, m.Role, m.ImagePath, m.ForgotPasswordCode, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case usersNameKey:
				return 0, domain.NewValidationErrors(MsgUsernameTaken)
			case usersEmailKey:
				return 0, domain.NewValidationErrors(MsgEmailTaken)
			}
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *sqlxUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *sqlxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *sqlxUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1`, name)
}

func (r *sqlxUserRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var m models.User
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetByIDs loads several users in one query. Unknown ids are simply absent from the map.
func (r *sqlxUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	users := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (?)`
	if err := selectIn(ctx, GetExecutor(ctx, r.db), &rows, query, ids); err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	for i := range rows {
		users[rows[i].ID] = toDomainUser(&rows[i])
	}
	return users, nil
}

func (r *sqlxUserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	err := r.updateColumn(ctx, id, "name", name)
	if constraint, ok := uniqueViolation(err); ok && constraint == usersNameKey {
		return domain.NewValidationErrors(MsgUsernameTaken)
	}
	return err
}

func (r *sqlxUserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *sqlxUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateColumn(ctx, id, "password", passwordHash)
}

func (r *sqlxUserRepository) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	return r.updateColumn(ctx, id, "image_path", imagePath)
}

func (r *sqlxUserRepository) SetRecoveryCode(ctx context.Context, id int64, code string) error {
	return r.updateColumn(ctx, id, "forgot_password_code", code)
}

// updateColumn sets a single column; column is always one of the fixed names above.
func (r *sqlxUserRepository) updateColumn(ctx context.Context, id int64, column string, value interface{}) error {
	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = $2 WHERE id = $3`, column)

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, value, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewUserNotFoundError(id)
	}
	return nil
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.Password,
		Role:         m.Role,
		ImagePath:    m.ImagePath,
		RecoveryCode: m.ForgotPasswordCode,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Password:           u.PasswordHash,
		Role:               u.Role,
		ImagePath:          u.ImagePath,
		ForgotPasswordCode: u.RecoveryCode,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
