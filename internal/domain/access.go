package domain

// Access denial reasons, returned verbatim to clients.
const (
	ReasonAllowed         = "Route is allowed."
	ReasonQuizNotFound    = "Quiz not found."
	ReasonAlreadyAnswered = "Quiz is already answered."
	ReasonQuizPrivate     = "Quiz is private."
	ReasonOwnQuiz         = "You can not answer a quiz you have created."
	ReasonNotOwner        = "You can not view the quiz you did not create."
)

// AccessDecision is the outcome of an access check.
type AccessDecision struct {
	Allowed bool
	Reason  string
}

func Allow() AccessDecision {
	return AccessDecision{Allowed: true, Reason: ReasonAllowed}
}

func Deny(reason string) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}

// Err converts a denial into a Forbidden error, or nil when allowed.
func (d AccessDecision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonQuizNotFound {
		return NewNotFoundError(d.Reason)
	}
	return NewForbiddenError(d.Reason)
}
