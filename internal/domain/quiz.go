package domain

import (
	"errors"
	"fmt"
	"time"
)

// QuizType discriminates the question variant every item of a quiz uses.
type QuizType string

const (
	TypeMultipleChoice QuizType = "Multiple Choice"
	TypeIdentification QuizType = "Identification"
	TypeTrueOrFalse    QuizType = "True or False"
)

// QuizTypes lists every supported type.
var QuizTypes = []QuizType{TypeMultipleChoice, TypeIdentification, TypeTrueOrFalse}

const MsgInvalidQuizType = "Invalid quiz type"

func (t QuizType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeIdentification, TypeTrueOrFalse:
		return true
	}
	return false
}

// ParseQuizType returns a ValidationErrors for unknown type names.
func ParseQuizType(s string) (QuizType, error) {
	t := QuizType(s)
	if !t.Valid() {
		return "", NewValidationErrors(MsgInvalidQuizType)
	}
	return t, nil
}

// Quiz metadata bounds.
const (
	TitleMinLength       = 5
	TitleMaxLength       = 50
	DescriptionMinLength = 15
	DescriptionMaxLength = 200
	TopicMinLength       = 5
	TopicMaxLength       = 50
)

// QuestionRef addresses one stored question. Ids are unique per variant only.
type QuestionRef struct {
	Type QuizType
	ID   int64
}

// Quiz is the aggregate root. Questions holds the ordered references that
// define answer and display order; every ref shares the quiz Type.
type Quiz struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Topic       string
	Type        QuizType
	Questions   []QuestionRef
	Public      bool
	ImagePath   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuestionIDs returns the ids of Questions in order.
func (q *Quiz) QuestionIDs() []int64 {
	ids := make([]int64, len(q.Questions))
	for i, ref := range q.Questions {
		ids[i] = ref.ID
	}
	return ids
}

// SetQuestions replaces the reference list with ids of the given type.
func (q *Quiz) SetQuestions(t QuizType, ids []int64) {
	q.Type = t
	q.Questions = make([]QuestionRef, len(ids))
	for i, id := range ids {
		q.Questions[i] = QuestionRef{Type: t, ID: id}
	}
}

func (q *Quiz) ItemCount() int {
	return len(q.Questions)
}

func (q *Quiz) IsOwnedBy(userID int64) bool {
	return userID != AnonymousUserID && q.OwnerID == userID
}

// QuizMeta is the author-editable metadata of a quiz.
type QuizMeta struct {
	Name        string
	Description string
	Topic       string
	Public      bool
}

// Validate returns the first failing metadata rule, title first.
func (m QuizMeta) Validate() error {
	if msg := checkText("Title", m.Name, TitleMinLength, TitleMaxLength); msg != "" {
		return errors.New(msg)
	}
	if msg := checkText("Description", m.Description, DescriptionMinLength, DescriptionMaxLength); msg != "" {
		return errors.New(msg)
	}
	if msg := checkText("Topic", m.Topic, TopicMinLength, TopicMaxLength); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// QuizDraft is a complete authoring payload for create or update.
type QuizDraft struct {
	Meta  QuizMeta
	Type  QuizType
	Items []Question
	// ItemErrors holds problems found while decoding, keyed by 1-based
	// ordinal. Each one is reported if the item otherwise validates.
	ItemErrors map[int]string
}

// Validate checks metadata and every item as one combined result. The
// metadata message (if any) comes first, followed by at most one message per
// item in item order. A nil return means the draft may be written.
func (d QuizDraft) Validate() error {
	if !d.Type.Valid() {
		return NewValidationErrors(MsgInvalidQuizType)
	}

	var errs ValidationErrors
	if err := d.Meta.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(d.Items) == 0 {
		errs = append(errs, "Quiz should contain at least one item")
	}
	for i, item := range d.Items {
		ordinal := i + 1
		if item == nil || item.Type() != d.Type {
			errs = append(errs, fmt.Sprintf("Item %d: Question type does not match quiz type", ordinal))
			continue
		}
		if err := item.Validate(ordinal); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if msg, ok := d.ItemErrors[ordinal]; ok {
			errs = append(errs, itemError(ordinal, msg).Error())
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// QuizWithQuestions is a quiz with its questions resolved in reference order.
type QuizWithQuestions struct {
	Quiz      *Quiz
	Questions []Question
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	Quiz       *Quiz
	Owner      UserIdentity
	IsAnswered bool
}

// QuizWithAttempts is the owner's view of a quiz together with every attempt.
type QuizWithAttempts struct {
	QuizWithQuestions
	Attempts []ResolvedAttempt
}

// ImageUpload is an image supplied with an authoring or settings request.
type ImageUpload struct {
	ContentType string
	Data        []byte
}
