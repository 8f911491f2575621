package service

import (
	"context"
	"errors"
	"time"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/metrics"
	"quizzy-quest/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MsgNotQuizOwner is returned when someone other than the owner edits or deletes a quiz.
const MsgNotQuizOwner = "You can not modify a quiz you did not create."

// QuizService manages the quiz aggregate: the quiz row, its question rows and its image.
type QuizService interface {
	CreateQuiz(ctx context.Context, ownerID int64, draft domain.QuizDraft, image *domain.ImageUpload) (int64, error)
	GetQuiz(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, error)
	// GetQuizForEdit reads straight from the store so the editor never sees a stale copy.
	GetQuizForEdit(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, error)
	UpdateQuiz(ctx context.Context, quizID, requesterID int64, draft domain.QuizDraft, image *domain.ImageUpload) error
	DeleteQuiz(ctx context.Context, quizID, requesterID int64) error
	ListPublicOthers(ctx context.Context, requesterID int64, t domain.QuizType) ([]domain.QuizSummary, error)
	ListOwn(ctx context.Context, ownerID int64, t domain.QuizType) ([]domain.QuizSummary, error)
	GetCreatedQuizWithAttempts(ctx context.Context, quizID, requesterID int64) (*domain.QuizWithAttempts, error)
}

type quizService struct {
	tx        domain.TransactionManager
	quizzes   domain.QuizRepository
	questions domain.QuestionRegistry
	answers   domain.QuizAnswerRepository
	users     domain.UserRepository
	images    domain.ImageStore
	access    AccessService
	cache     *QuizCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

// QuizServiceDeps groups the collaborators of NewQuizService. Cache and Metrics may be nil.
type QuizServiceDeps struct {
	Tx        domain.TransactionManager
	Quizzes   domain.QuizRepository
	Questions domain.QuestionRegistry
	Answers   domain.QuizAnswerRepository
	Users     domain.UserRepository
	Images    domain.ImageStore
	Access    AccessService
	Cache     *QuizCache
	Metrics   *metrics.Metrics
}

func NewQuizService(deps QuizServiceDeps) QuizService {
	return &quizService{
		tx:        deps.Tx,
		quizzes:   deps.Quizzes,
		questions: deps.Questions,
		answers:   deps.Answers,
		users:     deps.Users,
		images:    deps.Images,
		access:    deps.Access,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		now:       time.Now,
	}
}

// passThrough keeps user-facing errors intact and wraps everything else as internal.
func passThrough(err error, msg string) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if _, ok := domain.AsValidationErrors(err); ok {
		return err
	}
	return domain.NewInternalError(msg, err)
}

// storeImage writes the upload (or a generated default when upload is nil) and
// returns the object name.
func (s *quizService) storeImage(ctx context.Context, upload *domain.ImageUpload, seed string) (string, error) {
	src, err := storage.ResolveUpload(upload, seed)
	if err != nil {
		return "", err
	}
	name, err := storage.NewObjectName(domain.QuizImagePrefix, src.ContentType)
	if err != nil {
		return "", err
	}
	if err := s.images.Save(ctx, name, src.ContentType, src.Data); err != nil {
		return "", domain.NewInternalError("Failed to save quiz image", err)
	}
	return name, nil
}

// discardImage removes an image that is no longer referenced. Failures are only logged.
func (s *quizService) discardImage(ctx context.Context, name string, quizID int64) {
	if name == "" {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		logger.Get().Warn("Failed to delete quiz image",
			zap.String("image_path", name),
			zap.Int64("quiz_id", quizID),
			zap.Error(err))
	}
}

func (s *quizService) CreateQuiz(ctx context.Context, ownerID int64, draft domain.QuizDraft, image *domain.ImageUpload) (int64, error) {
	if err := draft.Validate(); err != nil {
		return 0, err
	}

	imagePath, err := s.storeImage(ctx, image, draft.Meta.Name)
	if err != nil {
		return 0, err
	}

	var quizID int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		store, err := s.questions.Store(draft.Type)
		if err != nil {
			return err
		}
		ids, err := store.BulkInsert(ctx, draft.Items)
		if err != nil {
			return err
		}

		now := s.now()
		quiz := &domain.Quiz{
			OwnerID:     ownerID,
			Name:        draft.Meta.Name,
			Description: draft.Meta.Description,
			Topic:       draft.Meta.Topic,
			Public:      draft.Meta.Public,
			ImagePath:   imagePath,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		quiz.SetQuestions(draft.Type, ids)

		quizID, err = s.quizzes.Create(ctx, quiz)
		return err
	})
	if err != nil {
		s.discardImage(ctx, imagePath, 0)
		logger.Get().Error("Failed to create quiz",
			zap.Int64("user_id", ownerID),
			zap.String("type", string(draft.Type)),
			zap.Error(err))
		return 0, passThrough(err, "Failed to create quiz")
	}

	s.metrics.QuizCreated(draft.Type)
	logger.Get().Info("Quiz created",
		zap.Int64("quiz_id", quizID),
		zap.Int64("user_id", ownerID),
		zap.Int("items", len(draft.Items)))
	return quizID, nil
}

func (s *quizService) GetQuiz(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, error) {
	if cached, ok := s.cache.Get(ctx, quizID); ok {
		return cached, nil
	}
	q, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, q)
	return q, nil
}

func (s *quizService) GetQuizForEdit(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, error) {
	return s.loadQuiz(ctx, quizID)
}

func (s *quizService) loadQuiz(ctx context.Context, quizID int64) (*domain.QuizWithQuestions, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	store, err := s.questions.Store(quiz.Type)
	if err != nil {
		return nil, domain.NewInternalError("Quiz has an unknown type", err)
	}
	questions, err := store.BulkFetch(ctx, quiz.QuestionIDs())
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz questions", err)
	}
	return &domain.QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

// loadOwned returns the quiz when requesterID owns it. Nothing is written on failure.
func (s *quizService) loadOwned(ctx context.Context, quizID, requesterID int64) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	return ownedBy(quiz, err, quizID, requesterID)
}

// lockOwned is loadOwned for use inside a transaction: the row stays locked
// until commit, so the question ids it returns cannot change underneath.
func (s *quizService) lockOwned(ctx context.Context, quizID, requesterID int64) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByIDForUpdate(ctx, quizID)
	return ownedBy(quiz, err, quizID, requesterID)
}

func ownedBy(quiz *domain.Quiz, err error, quizID, requesterID int64) (*domain.Quiz, error) {
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if !quiz.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError(MsgNotQuizOwner).WithContext("quiz_id", quizID)
	}
	return quiz, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, quizID, requesterID int64, draft domain.QuizDraft, image *domain.ImageUpload) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	// Reject early so a forbidden request never writes an image.
	if _, err := s.loadOwned(ctx, quizID, requesterID); err != nil {
		return err
	}

	var err error
	newImage := ""
	if image != nil && len(image.Data) > 0 {
		if newImage, err = s.storeImage(ctx, image, draft.Meta.Name); err != nil {
			return err
		}
	}

	var previous *domain.Quiz
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, quizID, requesterID)
		if err != nil {
			return err
		}
		previous = current

		// Old rows live in the table of the previous type.
		oldStore, err := s.questions.Store(current.Type)
		if err != nil {
			return err
		}
		if err := oldStore.BulkDelete(ctx, current.QuestionIDs()); err != nil {
			return err
		}

		newStore, err := s.questions.Store(draft.Type)
		if err != nil {
			return err
		}
		ids, err := newStore.BulkInsert(ctx, draft.Items)
		if err != nil {
			return err
		}

		updated := *current
		updated.Name = draft.Meta.Name
		updated.Description = draft.Meta.Description
		updated.Topic = draft.Meta.Topic
		updated.Public = draft.Meta.Public
		updated.UpdatedAt = s.now()
		updated.SetQuestions(draft.Type, ids)
		if newImage != "" {
			updated.ImagePath = newImage
		}
		return s.quizzes.Update(ctx, &updated)
	})
	if err != nil {
		s.discardImage(ctx, newImage, quizID)
		logger.Get().Error("Failed to update quiz",
			zap.Int64("quiz_id", quizID),
			zap.Int64("user_id", requesterID),
			zap.Error(err))
		return passThrough(err, "Failed to update quiz")
	}

	if newImage != "" && previous.ImagePath != newImage {
		s.discardImage(ctx, previous.ImagePath, quizID)
	}
	s.cache.Evict(ctx, quizID)
	logger.Get().Info("Quiz updated",
		zap.Int64("quiz_id", quizID),
		zap.String("old_type", string(previous.Type)),
		zap.String("type", string(draft.Type)))
	return nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, quizID, requesterID int64) error {
	var deleted *domain.Quiz
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, quizID, requesterID)
		if err != nil {
			return err
		}
		deleted = current

		store, err := s.questions.Store(current.Type)
		if err != nil {
			return err
		}
		if err := store.BulkDelete(ctx, current.QuestionIDs()); err != nil {
			return err
		}
		return s.quizzes.Delete(ctx, quizID)
	})
	if err != nil {
		if !domain.HasCode(err, domain.CodeForbidden) && !domain.HasCode(err, domain.CodeNotFound) {
			logger.Get().Error("Failed to delete quiz", zap.Int64("quiz_id", quizID), zap.Error(err))
		}
		return passThrough(err, "Failed to delete quiz")
	}

	s.discardImage(ctx, deleted.ImagePath, quizID)
	s.cache.Evict(ctx, quizID)
	logger.Get().Info("Quiz deleted", zap.Int64("quiz_id", quizID), zap.Int64("user_id", requesterID))
	return nil
}

func (s *quizService) ListPublicOthers(ctx context.Context, requesterID int64, t domain.QuizType) ([]domain.QuizSummary, error) {
	if !t.Valid() {
		return nil, domain.NewValidationErrors(domain.MsgInvalidQuizType)
	}
	quizzes, err := s.quizzes.ListPublicByType(ctx, t, requesterID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	return s.summarize(ctx, quizzes, requesterID)
}

func (s *quizService) ListOwn(ctx context.Context, ownerID int64, t domain.QuizType) ([]domain.QuizSummary, error) {
	if !t.Valid() {
		return nil, domain.NewValidationErrors(domain.MsgInvalidQuizType)
	}
	quizzes, err := s.quizzes.ListByOwnerAndType(ctx, ownerID, t)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	return s.summarize(ctx, quizzes, domain.AnonymousUserID)
}

// summarize resolves owners and, for a signed-in viewer, the answered flags.
func (s *quizService) summarize(ctx context.Context, quizzes []*domain.Quiz, viewerID int64) ([]domain.QuizSummary, error) {
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	if len(quizzes) == 0 {
		return summaries, nil
	}

	quizIDs := make([]int64, len(quizzes))
	ownerIDs := make([]int64, 0, len(quizzes))
	seen := make(map[int64]bool)
	for i, q := range quizzes {
		quizIDs[i] = q.ID
		if !seen[q.OwnerID] {
			seen[q.OwnerID] = true
			ownerIDs = append(ownerIDs, q.OwnerID)
		}
	}

	var owners map[int64]*domain.User
	answered := map[int64]bool{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owners, err = s.users.GetByIDs(gctx, ownerIDs)
		return err
	})
	if viewerID != domain.AnonymousUserID {
		g.Go(func() error {
			var err error
			answered, err = s.answers.AnsweredQuizIDs(gctx, viewerID, quizIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to resolve quiz summaries", err)
	}

	for _, q := range quizzes {
		owner := domain.UnknownUser()
		if u, ok := owners[q.OwnerID]; ok {
			owner = u.Identity()
		}
		summaries = append(summaries, domain.QuizSummary{Quiz: q, Owner: owner, IsAnswered: answered[q.ID]})
	}
	return summaries, nil
}

func (s *quizService) GetCreatedQuizWithAttempts(ctx context.Context, quizID, requesterID int64) (*domain.QuizWithAttempts, error) {
	decision, err := s.access.AboutOrEditAccess(ctx, quizID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	var quiz *domain.QuizWithQuestions
	var attempts []*domain.QuizAnswer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = s.loadQuiz(gctx, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.answers.ListByQuizID(gctx, quizID)
		if err != nil {
			return domain.NewInternalError("Failed to list attempts", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved, err := resolveAttempts(ctx, s.users, attempts)
	if err != nil {
		return nil, err
	}
	return &domain.QuizWithAttempts{QuizWithQuestions: *quiz, Attempts: resolved}, nil
}
