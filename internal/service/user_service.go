package service

import (
	"context"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/storage"
	"quizzy-quest/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	MsgCurrentPasswordMismatch = "Current password do not match"
	MsgImageSaved              = "Image successfully saved"
)

// UserService covers account settings and profile views.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (domain.UserIdentity, error)
	GetProfileWithAttempts(ctx context.Context, userID int64) (*domain.UserProfile, error)
	ChangeName(ctx context.Context, userID int64, name string) error
	ChangeRole(ctx context.Context, userID int64, role string) error
	ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error
	ChangeImage(ctx context.Context, userID int64, data []byte) (string, error)
}

type userServiceImpl struct {
	users     domain.UserRepository
	answers   domain.QuizAnswerRepository
	images    domain.ImageStore
	validator *validation.Validator
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	users domain.UserRepository,
	answers domain.QuizAnswerRepository,
	images domain.ImageStore,
	validator *validation.Validator,
) UserService {
	return &userServiceImpl{users: users, answers: answers, images: images, validator: validator}
}

func (s *userServiceImpl) load(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	return user, nil
}

// GetUser returns the unknown-user placeholder for id 0.
func (s *userServiceImpl) GetUser(ctx context.Context, userID int64) (domain.UserIdentity, error) {
	if userID == domain.AnonymousUserID {
		return domain.UnknownUser(), nil
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return domain.UserIdentity{}, err
	}
	return user.Identity(), nil
}

func (s *userServiceImpl) GetProfileWithAttempts(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	if userID == domain.AnonymousUserID {
		return &domain.UserProfile{User: domain.UnknownUser(), Attempts: []domain.QuizAnswer{}}, nil
	}

	var user *domain.User
	var attempts []*domain.QuizAnswer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.load(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.answers.ListByUserID(gctx, userID)
		if err != nil {
			return domain.NewInternalError("Failed to list attempts", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{User: user.Identity(), Attempts: make([]domain.QuizAnswer, len(attempts))}
	for i, a := range attempts {
		profile.Attempts[i] = *a
	}
	return profile, nil
}

func (s *userServiceImpl) ChangeName(ctx context.Context, userID int64, name string) error {
	if errs := s.validator.ValidateUsername(name); errs != nil {
		return errs
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return passThrough(err, "Failed to update name")
	}
	return nil
}

func (s *userServiceImpl) ChangeRole(ctx context.Context, userID int64, role string) error {
	if errs := s.validator.ValidateRole(role); errs != nil {
		return errs
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return passThrough(err, "Failed to update role")
	}
	return nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return domain.NewValidationErrors(validation.MsgFillEmptyPassword)
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return domain.NewValidationErrors(MsgCurrentPasswordMismatch)
	}
	if errs := s.validator.ValidatePasswordChange(req.NewPassword, req.ConfirmPassword); errs != nil {
		return errs
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("Failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(digest)); err != nil {
		return passThrough(err, "Failed to update password")
	}
	logger.Get().Info("Password changed", zap.Int64("user_id", userID))
	return nil
}

// ChangeImage stores a new avatar and returns its object name. The previous
// image is removed only after the row points at the new one.
func (s *userServiceImpl) ChangeImage(ctx context.Context, userID int64, data []byte) (string, error) {
	contentType, err := storage.DetectContentType(data)
	if err != nil {
		return "", err
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}

	name, err := storage.NewObjectName(domain.UserImagePrefix, contentType)
	if err != nil {
		return "", err
	}
	if err := s.images.Save(ctx, name, contentType, data); err != nil {
		return "", domain.NewInternalError("Failed to save user image", err)
	}
	if err := s.users.UpdateImagePath(ctx, userID, name); err != nil {
		deleteImage(ctx, s.images, name)
		return "", passThrough(err, "Failed to update user image")
	}

	deleteImage(ctx, s.images, user.ImagePath)
	return name, nil
}
