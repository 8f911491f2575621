// @title Quizzy Quest API
// @version 1.0
// @description Quiz authoring, access control and attempt scoring.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quizzy-quest/internal/adapter"
	"quizzy-quest/internal/cache"
	"quizzy-quest/internal/config"
	"quizzy-quest/internal/database"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/handler"
	"quizzy-quest/internal/logger"
	"quizzy-quest/internal/metrics"
	"quizzy-quest/internal/middleware"
	"quizzy-quest/internal/repository"
	"quizzy-quest/internal/service"
	"quizzy-quest/internal/storage"
	"quizzy-quest/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Connect to database and bring the schema up to date
	db, err := database.NewSQLXPostgresDB(startupCtx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(db.DB); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it quiz reads go straight to the store.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(startupCtx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis")
	} else {
		appLogger.Warn("Redis address is empty, quiz cache disabled")
	}

	images, err := storage.NewImageStore(startupCtx, cfg.Storage)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	mailer := adapter.NewMailer(cfg.Mail)
	validator, err := validation.NewValidator(cfg.Validation)
	if err != nil {
		appLogger.Fatal("Failed to compile validation patterns", zap.Error(err))
	}
	appMetrics := metrics.New()

	// Initialize repositories
	txManager := repository.NewTransactionManagerAdapter(db)
	quizRepository := repository.NewSQLXQuizRepository(db)
	answerRepository := repository.NewSQLXQuizAnswerRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	questionRegistry := repository.NewSQLXQuestionRegistry(db)

	// Initialize services
	accessService := service.NewAccessService(quizRepository, answerRepository)
	quizService := service.NewQuizService(service.QuizServiceDeps{
		Tx:        txManager,
		Quizzes:   quizRepository,
		Questions: questionRegistry,
		Answers:   answerRepository,
		Users:     userRepository,
		Images:    images,
		Access:    accessService,
		Cache:     service.NewQuizCache(cacheAdapter, cfg.Redis.QuizTTL),
		Metrics:   appMetrics,
	})
	answerService := service.NewAnswerService(answerRepository, userRepository, accessService, appMetrics)
	authService, err := service.NewAuthService(userRepository, images, mailer, validator, cfg.JWT)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository, answerRepository, images, validator)
	appLogger.Info("Services initialized")

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics(appMetrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return domain.NewInternalError("Database is unreachable", err)
		}
		if cacheAdapter != nil {
			if err := cacheAdapter.Ping(c.UserContext()); err != nil {
				appLogger.Warn("Health check: cache unreachable", zap.Error(err))
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(appMetrics.Handler()))

	if (cfg.Storage.Driver == "" || cfg.Storage.Driver == storage.DriverLocal) && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		app.Static(cfg.Storage.PublicURL, cfg.Storage.LocalDir)
	}

	handler.Routes{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService, images),
		Quizzes:    handler.NewQuizHandler(quizService, images),
		Access:     handler.NewAccessHandler(accessService),
		Answers:    handler.NewAnswerHandler(answerService),
		Tokens:     authService,
		Validation: middleware.NewValidationMiddleware(validator),
		Limiter:    middleware.NewRateLimiter(cfg.RateLimit),
	}.Register(app.Group("/api"))

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
