package handler

import (
	"io"
	"mime/multipart"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

// ImageLinker turns stored image paths into client URLs.
type ImageLinker interface {
	URL(path string) string
}

func toUserResponse(identity domain.UserIdentity, images ImageLinker) (dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := copier.Copy(&resp, &identity); err != nil {
		return dto.UserResponse{}, domain.NewInternalError("Failed to map user", err)
	}
	resp.ImageURL = images.URL(identity.ImagePath)
	return resp, nil
}

func toPublicUserResponse(identity domain.UserIdentity, images ImageLinker) (dto.PublicUserResponse, error) {
	var resp dto.PublicUserResponse
	if err := copier.Copy(&resp, &identity); err != nil {
		return dto.PublicUserResponse{}, domain.NewInternalError("Failed to map user", err)
	}
	resp.ImageURL = images.URL(identity.ImagePath)
	return resp, nil
}

func toAttemptResponse(a domain.QuizAnswer) dto.AttemptResponse {
	return dto.AttemptResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		QuizID:         a.QuizID,
		Type:           string(a.Type),
		Points:         a.Points,
		Answers:        a.Answers,
		RemainingTimes: a.RemainingTimes,
		Questions:      a.Questions,
		Score:          a.Score(),
		CreatedAt:      a.CreatedAt,
	}
}

func toAttemptResponses(attempts []domain.QuizAnswer) []dto.AttemptResponse {
	out := make([]dto.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, toAttemptResponse(a))
	}
	return out
}

func toResolvedAttemptResponses(attempts []domain.ResolvedAttempt, images ImageLinker) ([]dto.ResolvedAttemptResponse, error) {
	out := make([]dto.ResolvedAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		user, err := toPublicUserResponse(a.User, images)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ResolvedAttemptResponse{
			AttemptResponse: toAttemptResponse(a.Answer),
			User:            user,
		})
	}
	return out, nil
}

func toQuizResponse(q *domain.QuizWithQuestions, images ImageLinker) dto.QuizResponse {
	items := make([]interface{}, 0, len(q.Questions))
	for _, question := range q.Questions {
		items = append(items, dto.EncodeItem(question))
	}
	return dto.QuizResponse{
		ID:          q.Quiz.ID,
		UserID:      q.Quiz.OwnerID,
		Name:        q.Quiz.Name,
		Description: q.Quiz.Description,
		Topic:       q.Quiz.Topic,
		Type:        string(q.Quiz.Type),
		Visibility:  dto.Visibility(q.Quiz.Public),
		ImagePath:   q.Quiz.ImagePath,
		ImageURL:    images.URL(q.Quiz.ImagePath),
		Items:       items,
		CreatedAt:   q.Quiz.CreatedAt,
		UpdatedAt:   q.Quiz.UpdatedAt,
	}
}

func toSummaryResponses(summaries []domain.QuizSummary, images ImageLinker) ([]dto.QuizSummaryResponse, error) {
	out := make([]dto.QuizSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		owner, err := toPublicUserResponse(s.Owner, images)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.QuizSummaryResponse{
			ID:          s.Quiz.ID,
			Name:        s.Quiz.Name,
			Description: s.Quiz.Description,
			Topic:       s.Quiz.Topic,
			Type:        string(s.Quiz.Type),
			Visibility:  dto.Visibility(s.Quiz.Public),
			ImageURL:    images.URL(s.Quiz.ImagePath),
			Items:       s.Quiz.ItemCount(),
			Owner:       owner,
			IsAnswered:  s.IsAnswered,
			CreatedAt:   s.Quiz.CreatedAt,
		})
	}
	return out, nil
}

// multipartForm parses the request body as multipart/form-data.
func multipartForm(c *fiber.Ctx) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.NewInvalidInputError("Expected a multipart form").WithContext("reason", err.Error())
	}
	return form, nil
}

// formImage reads an optional file field. A missing field yields nil.
func formImage(form *multipart.Form, field string) (*domain.ImageUpload, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInternalError("Failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInternalError("Failed to read uploaded file", err)
	}
	return &domain.ImageUpload{ContentType: fh.Header.Get(fiber.HeaderContentType), Data: data}, nil
}

// formValue returns the first value of a text field.
func formValue(form *multipart.Form, field string) string {
	if values := form.Value[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}
