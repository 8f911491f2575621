package models

import (
	"time"
)

// User is a row of the users table.
type User struct {
	ID                 int64     `db:"id"`
	Name               string    `db:"name"`
	Email              string    `db:"email"`
	Password           string    `db:"password"` // bcrypt digest
	Role               string    `db:"role"`
	ImagePath          string    `db:"image_path"`
	ForgotPasswordCode string    `db:"forgot_password_code"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
