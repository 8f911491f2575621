package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// SignUpRequest is the body of POST /api/auth/sign-up.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	TermsAccepted   bool   `json:"terms_accepted"`
}

type LogInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ChangeNameRequest struct {
	Name string `json:"name"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// TokenResponse carries the signed session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the requester's own account.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ImagePath string `json:"image_path"`
	ImageURL  string `json:"image_url"`
}

// PublicUserResponse is the identity shown to other users. It never carries
// the email address.
type PublicUserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	ImageURL  string `json:"image_url"`
}

// AttemptResponse is one finished attempt with its score.
type AttemptResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	QuizID         int64     `json:"quiz_id"`
	Type           string    `json:"type"`
	Points         []int     `json:"points"`
	Answers        []string  `json:"answers"`
	RemainingTimes []int     `json:"remaining_times"`
	Questions      []string  `json:"questions"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// ResolvedAttemptResponse pairs an attempt with the identity of its taker.
type ResolvedAttemptResponse struct {
	AttemptResponse
	User PublicUserResponse `json:"user"`
}

// UserProfileResponse is a user with every attempt they made.
type UserProfileResponse struct {
	User     PublicUserResponse `json:"user"`
	Attempts []AttemptResponse  `json:"attempts"`
}
