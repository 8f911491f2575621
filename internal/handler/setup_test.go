package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/handler"
	"quizzy-quest/internal/middleware"
	"quizzy-quest/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app     *fiber.App
	quizzes *MockQuizService
	access  *MockAccessService
	answers *MockAnswerService
	auth    *MockAuthService
	users   *MockUserService
}

// newTestServer mounts every route over fresh mocks. Tokens of the form
// "user-<id>" authenticate as <id>; anything else is rejected.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	v, err := validation.NewValidator(config.ValidationConfig{
		NamePattern:     `[A-Za-z0-9_.]+`,
		EmailPattern:    `[^\s@]+@[^\s@]+\.[^\s@]+`,
		PasswordPattern: `[A-Za-z0-9!@#$%^&*()_+\-=.,?]+`,
	})
	require.NoError(t, err)

	s := &testServer{
		quizzes: &MockQuizService{},
		access:  &MockAccessService{},
		answers: &MockAnswerService{},
		users:   &MockUserService{},
		auth: &MockAuthService{
			ValidateJWTFunc: func(ctx context.Context, token string) (*dto.AuthClaims, error) {
				raw, ok := strings.CutPrefix(token, "user-")
				if !ok {
					return nil, errors.New("invalid token")
				}
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, err
				}
				return &dto.AuthClaims{UserID: id}, nil
			},
		},
	}

	s.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.Routes{
		Auth:       handler.NewAuthHandler(s.auth),
		Users:      handler.NewUserHandler(s.users, stubLinker{}),
		Quizzes:    handler.NewQuizHandler(s.quizzes, stubLinker{}),
		Access:     handler.NewAccessHandler(s.access),
		Answers:    handler.NewAnswerHandler(s.answers),
		Tokens:     s.auth,
		Validation: middleware.NewValidationMiddleware(v),
	}.Register(s.app.Group("/api"))
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(t, req, token)
}

// multipartRequest builds a form with the given text fields and an optional image file.
func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile(handler.ImageFormField, "cover.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}
