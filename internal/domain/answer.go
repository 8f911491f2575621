package domain

import "time"

const (
	MsgAttemptLengthMismatch = "Points, answers, remaining times and questions should have the same length"
	MsgAttemptEmpty          = "Attempt should contain at least one item"
)

// QuizAnswer is one finished attempt. The four slices are parallel: index i
// describes the i-th item as it was when the attempt was taken.
type QuizAnswer struct {
	ID             int64
	UserID         int64
	QuizID         int64
	Type           QuizType
	Points         []int
	Answers        []string
	RemainingTimes []int
	Questions      []string
	CreatedAt      time.Time
}

// Score is the sum of awarded points.
func (a *QuizAnswer) Score() int {
	total := 0
	for _, p := range a.Points {
		total += p
	}
	return total
}

// IsAnonymous reports whether the attempt was made without an account.
func (a *QuizAnswer) IsAnonymous() bool {
	return a.UserID == AnonymousUserID
}

// Validate checks the shape of the attempt. It does not look at the live quiz.
func (a *QuizAnswer) Validate() error {
	if !a.Type.Valid() {
		return NewValidationErrors(MsgInvalidQuizType)
	}
	n := len(a.Points)
	if len(a.Answers) != n || len(a.RemainingTimes) != n || len(a.Questions) != n {
		return NewValidationErrors(MsgAttemptLengthMismatch)
	}
	if n == 0 {
		return NewValidationErrors(MsgAttemptEmpty)
	}
	return nil
}

// ResolvedAttempt is an attempt joined with the identity of its taker.
type ResolvedAttempt struct {
	Answer QuizAnswer
	User   UserIdentity
}
