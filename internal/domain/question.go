package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field bounds shared by every question variant.
const (
	QuestionMinLength    = 15
	QuestionMaxLength    = 300
	ExplanationMaxLength = 300
	TimerMin             = 10
	TimerMax             = 120
	PointsMin            = 50
	PointsMax            = 1000
	ChoiceMinLength      = 1
	ChoiceMaxLength      = 200
	AnswerMinLength      = 1
	AnswerMaxLength      = 200

	DefaultTimer  = 20
	DefaultPoints = 500
)

// Question is the sum type of the three question variants: MultipleChoice,
// Identification and TrueOrFalse. The unexported marker keeps the set closed.
type Question interface {
	Type() QuizType
	Common() QuestionCommon
	// WithID returns a copy of the question carrying the given storage id.
	WithID(id int64) Question
	// Validate checks the question in isolation; ordinal is its 1-based position
	// in the quiz and only appears in the returned message.
	Validate(ordinal int) error
	isQuestion()
}

// QuestionCommon holds the fields every variant shares.
type QuestionCommon struct {
	ID          int64
	Text        string
	Explanation string
	Timer       int
	Points      int
}

func (c QuestionCommon) validate(ordinal int) error {
	if msg := checkText("Question", c.Text, QuestionMinLength, QuestionMaxLength); msg != "" {
		return itemError(ordinal, msg)
	}
	if msg := checkText("Explanation", c.Explanation, 0, ExplanationMaxLength); msg != "" {
		return itemError(ordinal, msg)
	}
	if c.Timer < TimerMin || c.Timer > TimerMax {
		return itemError(ordinal, fmt.Sprintf("Timer should range %d-%d", TimerMin, TimerMax))
	}
	if c.Points < PointsMin || c.Points > PointsMax {
		return itemError(ordinal, fmt.Sprintf("Points should range %d-%d", PointsMin, PointsMax))
	}
	return nil
}

// Choice is a multiple choice letter.
type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
	ChoiceC Choice = "c"
	ChoiceD Choice = "d"
)

// Choices lists the letters in display order.
var Choices = [4]Choice{ChoiceA, ChoiceB, ChoiceC, ChoiceD}

func (c Choice) Valid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

type MultipleChoice struct {
	QuestionCommon
	// Options is indexed by letter order a..d.
	Options [4]string
	Answer  Choice
}

func (q MultipleChoice) Type() QuizType { return TypeMultipleChoice }
func (q MultipleChoice) Common() QuestionCommon { return q.QuestionCommon }
func (q MultipleChoice) isQuestion() {}
func (q MultipleChoice) WithID(id int64) Question {
	q.ID = id
	return q
}

func (q MultipleChoice) Validate(ordinal int) error {
	if err := q.QuestionCommon.validate(ordinal); err != nil {
		return err
	}
	for _, option := range q.Options {
		n := utf8.RuneCountInString(option)
		if n < ChoiceMinLength || n > ChoiceMaxLength {
			return itemError(ordinal, fmt.Sprintf("Choices should be %d-%d characters", ChoiceMinLength, ChoiceMaxLength))
		}
	}
	for _, option := range q.Options {
		if isBlank(option) {
			return itemError(ordinal, "Choices should not only contain white spaces")
		}
	}
	if !q.Answer.Valid() {
		return itemError(ordinal, "Invalid answer")
	}
	return nil
}

type Identification struct {
	QuestionCommon
	Answer string
}

func (q Identification) Type() QuizType { return TypeIdentification }
func (q Identification) Common() QuestionCommon { return q.QuestionCommon }
func (q Identification) isQuestion() {}
func (q Identification) WithID(id int64) Question {
	q.ID = id
	return q
}

func (q Identification) Validate(ordinal int) error {
	if err := q.QuestionCommon.validate(ordinal); err != nil {
		return err
	}
	if msg := checkText("Answer", q.Answer, AnswerMinLength, AnswerMaxLength); msg != "" {
		return itemError(ordinal, msg)
	}
	return nil
}

type TrueOrFalse struct {
	QuestionCommon
	Answer bool
}

func (q TrueOrFalse) Type() QuizType { return TypeTrueOrFalse }
func (q TrueOrFalse) Common() QuestionCommon { return q.QuestionCommon }
func (q TrueOrFalse) isQuestion() {}
func (q TrueOrFalse) WithID(id int64) Question {
	q.ID = id
	return q
}

func (q TrueOrFalse) Validate(ordinal int) error {
	return q.QuestionCommon.validate(ordinal)
}

// checkText returns the failure message for a bounded text field, or "" when
// the value is acceptable. Length is measured in characters, not bytes.
func checkText(label, value string, minLen, maxLen int) string {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return fmt.Sprintf("%s should be %d-%d characters", label, minLen, maxLen)
	}
	if isBlank(value) {
		return fmt.Sprintf("%s should not only contain white spaces", label)
	}
	return ""
}

// isBlank reports whether a non-empty value consists only of whitespace.
func isBlank(value string) bool {
	return value != "" && strings.TrimSpace(value) == ""
}

func itemError(ordinal int, msg string) error {
	return fmt.Errorf("Item %d: %s", ordinal, msg)
}
