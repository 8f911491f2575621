package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-signing-tokens"

func newTestValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.NewValidator(config.ValidationConfig{
		NamePattern:     `[A-Za-z0-9_.]+`,
		EmailPattern:    `[^\s@]+@[^\s@]+\.[^\s@]+`,
		PasswordPattern: `[A-Za-z0-9!@#$%^&*()_+\-=.,?]+`,
	})
	require.NoError(t, err)
	return v
}

func newTestAuthService(t *testing.T, users domain.UserRepository, images domain.ImageStore, mailer domain.Mailer) *authServiceImpl {
	t.Helper()
	svc, err := NewAuthService(users, images, mailer, newTestValidator(t), config.JWTConfig{Secret: testSecret, TokenTTL: time.Hour})
	require.NoError(t, err)
	return svc.(*authServiceImpl)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(nil, nil, nil, nil, config.JWTConfig{})
	assert.Error(t, err)
}

func TestAuthService_SignUp(t *testing.T) {
	req := dto.SignUpRequest{
		Name:            "jdelacruz",
		Email:           "juan@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		TermsAccepted:   true,
	}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		images := newMemImageStore()
		svc := newTestAuthService(t, users, images, nil)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Name == "jdelacruz" &&
				u.Role == domain.DefaultRole &&
				strings.HasPrefix(u.ImagePath, domain.UserImagePrefix) &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil
		})).Return(int64(42), nil)

		token, err := svc.SignUp(context.Background(), req)
		require.NoError(t, err)

		claims, err := svc.ValidateJWT(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Len(t, images.names(), 1)
		users.AssertExpectations(t)
	})

	t.Run("validation runs before any write", func(t *testing.T) {
		users := new(MockUserRepository)
		images := newMemImageStore()
		svc := newTestAuthService(t, users, images, nil)

		bad := req
		bad.TermsAccepted = false
		_, err := svc.SignUp(context.Background(), bad)

		v, ok := domain.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, domain.ValidationErrors{validation.MsgTermsNotAccepted}, v)
		assert.Empty(t, images.names())
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email removes the generated image", func(t *testing.T) {
		users := new(MockUserRepository)
		images := newMemImageStore()
		svc := newTestAuthService(t, users, images, nil)

		users.On("Create", mock.Anything, mock.Anything).Return(int64(0), domain.NewValidationErrors("Email already exist"))

		_, err := svc.SignUp(context.Background(), req)

		v, ok := domain.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, domain.ValidationErrors{"Email already exist"}, v)
		assert.Empty(t, images.names())
	})
}

func TestAuthService_LogIn(t *testing.T) {
	user := &domain.User{ID: 7, Email: "juan@example.com", PasswordHash: hashed(t, "secret123")}

	tests := []struct {
		name     string
		req      dto.LogInRequest
		setup    func(users *MockUserRepository)
		wantErrs domain.ValidationErrors
	}{
		{
			name:     "empty fields",
			req:      dto.LogInRequest{Email: "juan@example.com"},
			setup:    func(users *MockUserRepository) {},
			wantErrs: domain.ValidationErrors{validation.MsgFillEmptyFields},
		},
		{
			name: "unknown email",
			req:  dto.LogInRequest{Email: "nobody@example.com", Password: "secret123"},
			setup: func(users *MockUserRepository) {
				users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
			},
			wantErrs: domain.ValidationErrors{MsgUserNotFound},
		},
		{
			name: "wrong password",
			req:  dto.LogInRequest{Email: "juan@example.com", Password: "secret124"},
			setup: func(users *MockUserRepository) {
				users.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)
			},
			wantErrs: domain.ValidationErrors{MsgWrongPassword},
		},
		{
			name: "success",
			req:  dto.LogInRequest{Email: "juan@example.com", Password: "secret123"},
			setup: func(users *MockUserRepository) {
				users.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tt.setup(users)
			svc := newTestAuthService(t, users, newMemImageStore(), nil)

			token, err := svc.LogIn(context.Background(), tt.req)
			if tt.wantErrs != nil {
				v, ok := domain.AsValidationErrors(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, tt.wantErrs, v)
				return
			}
			require.NoError(t, err)
			claims, err := svc.ValidateJWT(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_ForgotPassword(t *testing.T) {
	users := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(t, users, newMemImageStore(), mailer)
	user := &domain.User{ID: 7, Email: "juan@example.com"}

	var sent string
	users.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)
	users.On("SetRecoveryCode", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)
	mailer.On("SendRecoveryCode", mock.Anything, "juan@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(2) }).
		Return(nil)

	require.NoError(t, svc.ForgotPassword(context.Background(), "juan@example.com"))

	assert.Len(t, sent, domain.RecoveryCodeLength)
	assert.Equal(t, strings.ToUpper(sent), sent)
	users.AssertCalled(t, "SetRecoveryCode", mock.Anything, int64(7), sent)
	mailer.AssertExpectations(t)

	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	v, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, domain.ValidationErrors{MsgUserNotFound}, v)

	err = svc.ForgotPassword(context.Background(), "short@x.io")
	v, ok = domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, domain.ValidationErrors{validation.MsgEmailLength}, v)
}

func TestAuthService_ResetPassword(t *testing.T) {
	req := dto.ResetPasswordRequest{Email: "juan@example.com", Code: "ABCD1234", Password: "newpass123", ConfirmPassword: "newpass123"}

	t.Run("wrong code", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newTestAuthService(t, users, newMemImageStore(), nil)
		users.On("GetByEmail", mock.Anything, req.Email).Return(&domain.User{ID: 7, RecoveryCode: "ZZZZ9999"}, nil)

		err := svc.ResetPassword(context.Background(), req)

		v, ok := domain.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, domain.ValidationErrors{validation.MsgInvalidCode}, v)
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no pending code", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newTestAuthService(t, users, newMemImageStore(), nil)
		users.On("GetByEmail", mock.Anything, req.Email).Return(&domain.User{ID: 7}, nil)

		err := svc.ResetPassword(context.Background(), req)
		_, ok := domain.AsValidationErrors(err)
		assert.True(t, ok)
	})

	t.Run("success clears the code", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := newTestAuthService(t, users, newMemImageStore(), nil)
		users.On("GetByEmail", mock.Anything, req.Email).Return(&domain.User{ID: 7, RecoveryCode: "ABCD1234"}, nil)
		users.On("UpdatePassword", mock.Anything, int64(7), mock.MatchedBy(func(digest string) bool {
			return bcrypt.CompareHashAndPassword([]byte(digest), []byte("newpass123")) == nil
		})).Return(nil)
		users.On("SetRecoveryCode", mock.Anything, int64(7), "").Return(nil)

		require.NoError(t, svc.ResetPassword(context.Background(), req))
		users.AssertExpectations(t)
	})
}

func TestAuthService_ValidateJWT(t *testing.T) {
	svc := newTestAuthService(t, nil, nil, nil)
	ctx := context.Background()

	token, err := svc.GenerateJWT(5)
	require.NoError(t, err)
	claims, err := svc.ValidateJWT(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "5", claims.Subject)

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := svc.GenerateJWT(5)
		svc.now = time.Now
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, old)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewAuthService(nil, nil, nil, nil, config.JWTConfig{Secret: "another-secret"})
		require.NoError(t, err)
		foreign, err := other.GenerateJWT(5)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, foreign)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodNone, &dto.AuthClaims{UserID: 5})
		unsigned, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, unsigned)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateJWT(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})
}
