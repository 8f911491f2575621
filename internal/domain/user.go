package domain

import (
	"time"
)

// AnonymousUserID identifies unauthenticated quiz takers.
const AnonymousUserID int64 = 0

const (
	DefaultRole        = "Student"
	UnknownUserName    = "Unknown User"
	AnonymousImagePath = "user-images/anonymous.png"
	UserImagePrefix    = "user-images/"
	QuizImagePrefix    = "quiz-images/"
	RecoveryCodeLength = 8
	NameMinLength      = 5
	NameMaxLength      = 20
	EmailMinLength     = 15
	EmailMaxLength     = 40
	PasswordMinLength  = 8
	PasswordMaxLength  = 20
	RoleMinLength      = 5
	RoleMaxLength      = 50
)

// User represents an account with its credential digest.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	ImagePath    string
	// RecoveryCode is empty unless a password reset is pending.
	RecoveryCode string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the lightweight public identity of the user.
func (u *User) Identity() UserIdentity {
	return UserIdentity{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		ImagePath: u.ImagePath,
	}
}

// UserIdentity is what other users get to see about an account.
type UserIdentity struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	ImagePath string
}

// UnknownUser is rendered wherever user id 0 appears.
func UnknownUser() UserIdentity {
	return UserIdentity{
		ID:        AnonymousUserID,
		Name:      UnknownUserName,
		ImagePath: AnonymousImagePath,
	}
}

// UserProfile is a user together with every attempt they made.
type UserProfile struct {
	User     UserIdentity
	Attempts []QuizAnswer
}
