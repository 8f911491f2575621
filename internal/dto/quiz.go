package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"quizzy-quest/internal/domain"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"

	MsgInvalidVisibility = "Invalid visibility"
	MsgInvalidBody       = "Invalid request body"
	MsgInvalidAnswer     = "Invalid answer"
)

// QuizRequest is the `quiz` field of the create and update forms. Items are
// decoded according to Type.
type QuizRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Topic       string            `json:"topic"`
	Type        string            `json:"type"`
	Visibility  string            `json:"visibility"`
	Items       []json.RawMessage `json:"items"`
}

// MultipleChoiceItem is one multiple choice question as sent by the editor.
type MultipleChoiceItem struct {
	ID          int64   `json:"id,omitempty"`
	Question    string  `json:"question"`
	Explanation string  `json:"explanation"`
	Timer       int     `json:"timer"`
	Points      int     `json:"points"`
	Choices     Choices `json:"choices"`
	Answer      string  `json:"answer"`
}

type Choices struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

type IdentificationItem struct {
	ID          int64  `json:"id,omitempty"`
	Question    string `json:"question"`
	Explanation string `json:"explanation"`
	Timer       int    `json:"timer"`
	Points      int    `json:"points"`
	Answer      string `json:"answer"`
}

// TrueOrFalseItem uses a pointer so a missing answer can be told apart from false.
type TrueOrFalseItem struct {
	ID          int64  `json:"id,omitempty"`
	Question    string `json:"question"`
	Explanation string `json:"explanation"`
	Timer       int    `json:"timer"`
	Points      int    `json:"points"`
	Answer      *bool  `json:"answer"`
}

// DecodeStrict decodes data into v and rejects unknown fields and trailing data.
func DecodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// ParseQuizRequest decodes the raw form value into a draft. Shape problems
// (unknown fields, wrong JSON types) are InvalidInput; content problems are
// left to QuizDraft.Validate.
func ParseQuizRequest(raw []byte) (domain.QuizDraft, error) {
	var req QuizRequest
	if err := DecodeStrict(raw, &req); err != nil {
		return domain.QuizDraft{}, domain.NewInvalidInputError(MsgInvalidBody).WithContext("reason", err.Error())
	}
	return req.ToDraft()
}

// ToDraft converts the request into the domain draft.
func (r QuizRequest) ToDraft() (domain.QuizDraft, error) {
	t, err := domain.ParseQuizType(r.Type)
	if err != nil {
		return domain.QuizDraft{}, err
	}

	var public bool
	switch r.Visibility {
	case VisibilityPublic:
		public = true
	case VisibilityPrivate:
	default:
		return domain.QuizDraft{}, domain.NewValidationErrors(MsgInvalidVisibility)
	}

	draft := domain.QuizDraft{
		Meta: domain.QuizMeta{
			Name:        r.Name,
			Description: r.Description,
			Topic:       r.Topic,
			Public:      public,
		},
		Type:  t,
		Items: make([]domain.Question, 0, len(r.Items)),
	}

	for i, raw := range r.Items {
		item, ok, err := decodeItem(t, raw)
		if err != nil {
			return domain.QuizDraft{}, domain.NewInvalidInputError(MsgInvalidBody).
				WithContext("item", i+1).
				WithContext("reason", err.Error())
		}
		if !ok {
			if draft.ItemErrors == nil {
				draft.ItemErrors = map[int]string{}
			}
			draft.ItemErrors[i+1] = MsgInvalidAnswer
		}
		draft.Items = append(draft.Items, item)
	}
	if draft.ItemErrors != nil {
		// The draft cannot be written; report everything else that is wrong with it too.
		return domain.QuizDraft{}, draft.Validate()
	}
	return draft, nil
}

// decodeItem reports ok=false when a required answer is absent. The question
// is still returned so its other fields can be validated.
func decodeItem(t domain.QuizType, raw json.RawMessage) (domain.Question, bool, error) {
	switch t {
	case domain.TypeMultipleChoice:
		var item MultipleChoiceItem
		if err := DecodeStrict(raw, &item); err != nil {
			return nil, false, err
		}
		return domain.MultipleChoice{
			QuestionCommon: common(item.ID, item.Question, item.Explanation, item.Timer, item.Points),
			Options:        [4]string{item.Choices.A, item.Choices.B, item.Choices.C, item.Choices.D},
			Answer:         domain.Choice(item.Answer),
		}, true, nil
	case domain.TypeIdentification:
		var item IdentificationItem
		if err := DecodeStrict(raw, &item); err != nil {
			return nil, false, err
		}
		return domain.Identification{
			QuestionCommon: common(item.ID, item.Question, item.Explanation, item.Timer, item.Points),
			Answer:         item.Answer,
		}, true, nil
	case domain.TypeTrueOrFalse:
		var item TrueOrFalseItem
		if err := DecodeStrict(raw, &item); err != nil {
			return nil, false, err
		}
		q := domain.TrueOrFalse{
			QuestionCommon: common(item.ID, item.Question, item.Explanation, item.Timer, item.Points),
		}
		if item.Answer == nil {
			return q, false, nil
		}
		q.Answer = *item.Answer
		return q, true, nil
	}
	return nil, false, fmt.Errorf("unsupported quiz type %q", t)
}

func common(id int64, text, explanation string, timer, points int) domain.QuestionCommon {
	return domain.QuestionCommon{ID: id, Text: text, Explanation: explanation, Timer: timer, Points: points}
}

// EncodeItem renders a question in the editor shape.
func EncodeItem(q domain.Question) interface{} {
	c := q.Common()
	switch v := q.(type) {
	case domain.MultipleChoice:
		return MultipleChoiceItem{
			ID: c.ID, Question: c.Text, Explanation: c.Explanation, Timer: c.Timer, Points: c.Points,
			Choices: Choices{A: v.Options[0], B: v.Options[1], C: v.Options[2], D: v.Options[3]},
			Answer:  string(v.Answer),
		}
	case domain.Identification:
		return IdentificationItem{
			ID: c.ID, Question: c.Text, Explanation: c.Explanation, Timer: c.Timer, Points: c.Points,
			Answer: v.Answer,
		}
	case domain.TrueOrFalse:
		answer := v.Answer
		return TrueOrFalseItem{
			ID: c.ID, Question: c.Text, Explanation: c.Explanation, Timer: c.Timer, Points: c.Points,
			Answer: &answer,
		}
	}
	return nil
}

func Visibility(public bool) string {
	if public {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// QuizResponse is a quiz with its questions in answer order.
type QuizResponse struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Topic       string        `json:"topic"`
	Type        string        `json:"type"`
	Visibility  string        `json:"visibility"`
	ImagePath   string        `json:"image_path"`
	ImageURL    string        `json:"image_url"`
	Items       []interface{} `json:"items"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// QuizSummaryResponse is one row of a quiz list.
type QuizSummaryResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Topic       string             `json:"topic"`
	Type        string             `json:"type"`
	Visibility  string             `json:"visibility"`
	ImageURL    string             `json:"image_url"`
	Items       int                `json:"items"`
	Owner       PublicUserResponse `json:"owner"`
	IsAnswered  bool               `json:"is_answered"`
	CreatedAt   time.Time          `json:"created_at"`
}

// QuizWithAttemptsResponse is the owner's about page.
type QuizWithAttemptsResponse struct {
	Quiz     QuizResponse              `json:"quiz"`
	Attempts []ResolvedAttemptResponse `json:"attempts"`
}

// CreatedResponse acknowledges a created quiz.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// AccessResponse is the result of an access check.
type AccessResponse struct {
	IsAllowed bool   `json:"is_allowed"`
	Message   string `json:"message"`
}

// AttemptRequest is a finished attempt. The four arrays are parallel.
type AttemptRequest struct {
	Type           string   `json:"type"`
	Points         []int    `json:"points"`
	Answers        []string `json:"answers"`
	RemainingTimes []int    `json:"remaining_times"`
	Questions      []string `json:"questions"`
}
