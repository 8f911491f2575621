package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"quizzy-quest/cmd/seed_initial_data/internal/seedmodels"
	"quizzy-quest/internal/adapter"
	"quizzy-quest/internal/config"
	"quizzy-quest/internal/database"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/dto"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/repository"
	"quizzy-quest/internal/service"
	"quizzy-quest/internal/storage"
	"quizzy-quest/internal/validation"

	"go.uber.org/zap"
)

const defaultSeedFilePath = "configs/seed_data/initial_quizzes.json"

type seeder struct {
	users   domain.UserRepository
	auth    service.AuthService
	quizzes service.QuizService
	log     *zap.Logger
}

func main() {
	seedFilePath := flag.String("file", defaultSeedFilePath, "path to the seed JSON file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	db, err := database.NewSQLXPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	images, err := storage.NewImageStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	validator, err := validation.NewValidator(cfg.Validation)
	if err != nil {
		log.Fatal("Failed to compile validation patterns", zap.Error(err))
	}

	users := repository.NewSQLXUserRepository(db)
	quizzes := repository.NewSQLXQuizRepository(db)
	answers := repository.NewSQLXQuizAnswerRepository(db)

	auth, err := service.NewAuthService(users, images, adapter.NewMailer(cfg.Mail), validator, cfg.JWT)
	if err != nil {
		log.Fatal("Failed to create AuthService", zap.Error(err))
	}
	s := &seeder{
		users: users,
		auth:  auth,
		quizzes: service.NewQuizService(service.QuizServiceDeps{
			Tx:        repository.NewTransactionManagerAdapter(db),
			Quizzes:   quizzes,
			Questions: repository.NewSQLXQuestionRegistry(db),
			Answers:   answers,
			Users:     users,
			Images:    images,
			Access:    service.NewAccessService(quizzes, answers),
		}),
		log: log,
	}

	log.Info("Loading seed data from file", zap.String("path", *seedFilePath))
	byteValue, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}

	var seed seedmodels.Seed
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Successfully unmarshalled seed data", zap.Int("owners_loaded", len(seed.Owners)))

	for _, owner := range seed.Owners {
		if err := s.seedOwner(ctx, owner); err != nil {
			log.Error("Error seeding owner", zap.String("email", owner.Email), zap.Error(err))
		}
	}
	log.Info("Initial data seeding process completed.")
}

// seedOwner signs the owner up when missing and creates each quiz. Owners that
// already author quizzes are skipped so the seeder can run repeatedly.
func (s *seeder) seedOwner(ctx context.Context, owner seedmodels.SeedOwner) error {
	user, err := s.users.GetByEmail(ctx, owner.Email)
	if err != nil {
		return fmt.Errorf("error looking up %s: %w", owner.Email, err)
	}
	if user == nil {
		s.log.Info("Owner not found, signing up.", zap.String("email", owner.Email))
		if _, err := s.auth.SignUp(ctx, dto.SignUpRequest{
			Name:            owner.Name,
			Email:           owner.Email,
			Password:        owner.Password,
			ConfirmPassword: owner.Password,
			TermsAccepted:   true,
		}); err != nil {
			return fmt.Errorf("failed to sign up %s: %w", owner.Email, err)
		}
		if user, err = s.users.GetByEmail(ctx, owner.Email); err != nil {
			return fmt.Errorf("error looking up %s after sign up: %w", owner.Email, err)
		}
		if user == nil {
			return fmt.Errorf("owner %s missing after sign up", owner.Email)
		}
	}

	existing := 0
	for _, t := range domain.QuizTypes {
		own, err := s.quizzes.ListOwn(ctx, user.ID, t)
		if err != nil {
			return fmt.Errorf("failed to list quizzes of %s: %w", owner.Email, err)
		}
		existing += len(own)
	}
	if existing > 0 {
		s.log.Info("Owner already has quizzes, skipping.", zap.String("email", owner.Email), zap.Int("quizzes", existing))
		return nil
	}

	for i, raw := range owner.Quizzes {
		draft, err := dto.ParseQuizRequest(raw)
		if err != nil {
			return fmt.Errorf("quiz %d of %s: %w", i+1, owner.Email, err)
		}
		id, err := s.quizzes.CreateQuiz(ctx, user.ID, draft, nil)
		if err != nil {
			return fmt.Errorf("failed to create quiz %q: %w", draft.Meta.Name, err)
		}
		s.log.Info("Successfully created quiz.", zap.Int64("id", id), zap.String("name", draft.Meta.Name))
	}
	return nil
}
