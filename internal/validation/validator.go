package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"
)

const (
	MsgFillEmptyFields      = "Fill up all empty fields"
	MsgSpecifiedLength      = "Fill up fields with specified length"
	MsgTermsNotAccepted     = "You did not accept terms and conditions"
	MsgPasswordsMismatch    = "Passwords do not match"
	MsgInvalidUsername      = "Invalid Username"
	MsgInvalidEmail         = "Invalid Email"
	MsgInvalidPassword      = "Invalid Password"
	MsgEmailLength          = "Email should be 15-40 characters"
	MsgUsernameLength       = "Username should be 5-20 characters"
	MsgInvalidNewUsername   = "Invalid username"
	MsgRoleLength           = "Role should be 5-50 characters"
	MsgRoleBlank            = "Role should not only contain white spaces"
	MsgInvalidCode          = "Invalid Code"
	MsgFillEmptyPassword    = "Fill up empty fields"
	MsgInvalidNewPassword   = "Invalid new password"
	MsgNewPasswordsMismatch = "New password do not match"
	MsgInvalidID            = "Invalid id"
)

// Validator checks account fields against the configured patterns.
// Every check returns at most one message: the first rule that fails.
type Validator struct {
	name     *regexp.Regexp
	email    *regexp.Regexp
	password *regexp.Regexp
}

// NewValidator compiles the patterns. Each pattern must match a whole value.
func NewValidator(cfg config.ValidationConfig) (*Validator, error) {
	name, err := exact(cfg.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern: %w", err)
	}
	email, err := exact(cfg.EmailPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid email pattern: %w", err)
	}
	password, err := exact(cfg.PasswordPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid password pattern: %w", err)
	}
	return &Validator{name: name, email: email, password: password}, nil
}

func exact(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

func inRange(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func fail(msg string) domain.ValidationErrors {
	return domain.NewValidationErrors(msg)
}

// ValidateSignUp checks the sign-up form. Uniqueness is left to the store.
func (v *Validator) ValidateSignUp(name, email, password, confirm string, termsAccepted bool) domain.ValidationErrors {
	switch {
	case !termsAccepted:
		return fail(MsgTermsNotAccepted)
	case name == "" || email == "" || password == "" || confirm == "":
		return fail(MsgFillEmptyFields)
	case !inRange(name, domain.NameMinLength, domain.NameMaxLength),
		!inRange(email, domain.EmailMinLength, domain.EmailMaxLength),
		!inRange(password, domain.PasswordMinLength, domain.PasswordMaxLength):
		return fail(MsgSpecifiedLength)
	case password != confirm:
		return fail(MsgPasswordsMismatch)
	case !v.name.MatchString(name):
		return fail(MsgInvalidUsername)
	case !v.email.MatchString(email):
		return fail(MsgInvalidEmail)
	case !v.password.MatchString(password):
		return fail(MsgInvalidPassword)
	}
	return nil
}

// ValidateLogIn checks the log-in form before the account lookup.
func (v *Validator) ValidateLogIn(email, password string) domain.ValidationErrors {
	switch {
	case email == "" || password == "":
		return fail(MsgFillEmptyFields)
	case !inRange(email, domain.EmailMinLength, domain.EmailMaxLength),
		!inRange(password, domain.PasswordMinLength, domain.PasswordMaxLength):
		return fail(MsgSpecifiedLength)
	}
	return nil
}

func (v *Validator) ValidateEmail(email string) domain.ValidationErrors {
	switch {
	case !inRange(email, domain.EmailMinLength, domain.EmailMaxLength):
		return fail(MsgEmailLength)
	case !v.email.MatchString(email):
		return fail(MsgInvalidEmail)
	}
	return nil
}

// ValidateUsername checks a new name from the settings page.
func (v *Validator) ValidateUsername(name string) domain.ValidationErrors {
	switch {
	case !inRange(name, domain.NameMinLength, domain.NameMaxLength):
		return fail(MsgUsernameLength)
	case !v.name.MatchString(name):
		return fail(MsgInvalidNewUsername)
	}
	return nil
}

func (v *Validator) ValidateRole(role string) domain.ValidationErrors {
	switch {
	case !inRange(role, domain.RoleMinLength, domain.RoleMaxLength):
		return fail(MsgRoleLength)
	case strings.TrimSpace(role) == "":
		return fail(MsgRoleBlank)
	}
	return nil
}

// ValidatePasswordReset checks a recovery code and the replacement password.
// An empty stored code never matches.
func (v *Validator) ValidatePasswordReset(storedCode, code, password, confirm string) domain.ValidationErrors {
	switch {
	case storedCode == "" || code != storedCode:
		return fail(MsgInvalidCode)
	case !inRange(password, domain.PasswordMinLength, domain.PasswordMaxLength),
		!v.password.MatchString(password):
		return fail(MsgInvalidPassword)
	case password != confirm:
		return fail(MsgPasswordsMismatch)
	}
	return nil
}

// ValidatePasswordChange checks the new password once the current one has been verified.
func (v *Validator) ValidatePasswordChange(newPassword, confirm string) domain.ValidationErrors {
	switch {
	case !inRange(newPassword, domain.PasswordMinLength, domain.PasswordMaxLength),
		!v.password.MatchString(newPassword):
		return fail(MsgInvalidNewPassword)
	case newPassword != confirm:
		return fail(MsgNewPasswordsMismatch)
	}
	return nil
}

// ValidateQuizType parses the type query parameter.
func (v *Validator) ValidateQuizType(raw string) (domain.QuizType, domain.ValidationErrors) {
	t, err := domain.ParseQuizType(raw)
	if err != nil {
		return "", fail(domain.MsgInvalidQuizType)
	}
	return t, nil
}

// ValidateID parses a positive numeric path id.
func (v *Validator) ValidateID(raw string) (int64, domain.ValidationErrors) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(MsgInvalidID)
	}
	return id, nil
}
