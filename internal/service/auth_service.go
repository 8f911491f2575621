package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/storage"
	"quizzy-quest/internal/util"
	"quizzy-quest/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgUserNotFound  = "User not found"
	MsgWrongPassword = "Wrong password"
	MsgCodeSent      = "A code was sent to your mail."
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService handles sign-up, log-in, password recovery and session tokens.
type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (string, error)
	LogIn(ctx context.Context, req dto.LogInRequest) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	GenerateJWT(userID int64) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	users     domain.UserRepository
	images    domain.ImageStore
	mailer    domain.Mailer
	validator *validation.Validator
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	users domain.UserRepository,
	images domain.ImageStore,
	mailer domain.Mailer,
	validator *validation.Validator,
	cfg config.JWTConfig,
) (AuthService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &authServiceImpl{
		users:     users,
		images:    images,
		mailer:    mailer,
		validator: validator,
		secret:    []byte(cfg.Secret),
		tokenTTL:  ttl,
		now:       time.Now,
	}, nil
}

func (s *authServiceImpl) SignUp(ctx context.Context, req dto.SignUpRequest) (string, error) {
	if errs := s.validator.ValidateSignUp(req.Name, req.Email, req.Password, req.ConfirmPassword, req.TermsAccepted); errs != nil {
		return "", errs
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewInternalError("Failed to hash password", err)
	}

	imagePath, err := saveDefaultUserImage(ctx, s.images, req.Name)
	if err != nil {
		return "", err
	}

	now := s.now()
	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(digest),
		Role:         domain.DefaultRole,
		ImagePath:    imagePath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		deleteImage(ctx, s.images, imagePath)
		if _, ok := domain.AsValidationErrors(err); ok {
			return "", err
		}
		logger.Get().Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return "", domain.NewInternalError("Failed to create user", err)
	}

	logger.Get().Info("User signed up", zap.Int64("user_id", id))
	return s.GenerateJWT(id)
}

func (s *authServiceImpl) LogIn(ctx context.Context, req dto.LogInRequest) (string, error) {
	if errs := s.validator.ValidateLogIn(req.Email, req.Password); errs != nil {
		return "", errs
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return "", domain.NewValidationErrors(MsgUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", domain.NewValidationErrors(MsgWrongPassword)
	}
	return s.GenerateJWT(user.ID)
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	if errs := s.validator.ValidateEmail(email); errs != nil {
		return errs
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return domain.NewValidationErrors(MsgUserNotFound)
	}

	code, err := util.NewCode(domain.RecoveryCodeLength)
	if err != nil {
		return domain.NewInternalError("Failed to generate recovery code", err)
	}
	if err := s.users.SetRecoveryCode(ctx, user.ID, code); err != nil {
		return domain.NewInternalError("Failed to store recovery code", err)
	}
	if err := s.mailer.SendRecoveryCode(ctx, user.Email, code); err != nil {
		logger.Get().Error("Failed to send recovery code", zap.Int64("user_id", user.ID), zap.Error(err))
		return domain.NewInternalError("Failed to send recovery code", err)
	}
	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if req.Email == "" || req.Code == "" || req.Password == "" || req.ConfirmPassword == "" {
		return domain.NewValidationErrors(validation.MsgFillEmptyFields)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return domain.NewValidationErrors(MsgUserNotFound)
	}
	if errs := s.validator.ValidatePasswordReset(user.RecoveryCode, req.Code, req.Password, req.ConfirmPassword); errs != nil {
		return errs
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("Failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(digest)); err != nil {
		return domain.NewInternalError("Failed to update password", err)
	}
	// The code is single use.
	if err := s.users.SetRecoveryCode(ctx, user.ID, ""); err != nil {
		return domain.NewInternalError("Failed to clear recovery code", err)
	}
	logger.Get().Info("Password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *authServiceImpl) GenerateJWT(userID int64) (string, error) {
	now := s.now()
	claims := &dto.AuthClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        util.NewULID(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.NewInternalError("Failed to sign token", err)
	}
	return signed, nil
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

// saveDefaultUserImage renders and stores the generated avatar for a new account.
func saveDefaultUserImage(ctx context.Context, images domain.ImageStore, seed string) (string, error) {
	data, err := storage.DefaultImage(storage.DefaultAvatarSize, storage.DefaultAvatarSize, seed)
	if err != nil {
		return "", domain.NewInternalError("Failed to render user image", err)
	}
	name, err := storage.NewObjectName(domain.UserImagePrefix, storage.ContentTypePNG)
	if err != nil {
		return "", err
	}
	if err := images.Save(ctx, name, storage.ContentTypePNG, data); err != nil {
		return "", domain.NewInternalError("Failed to save user image", err)
	}
	return name, nil
}

func deleteImage(ctx context.Context, images domain.ImageStore, name string) {
	if name == "" || name == domain.AnonymousImagePath {
		return
	}
	if err := images.Delete(ctx, name); err != nil {
		logger.Get().Warn("Failed to delete image", zap.String("image_path", name), zap.Error(err))
	}
}
