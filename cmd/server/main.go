package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/attempt-service/internal/cache"
	"github.com/quizforge/attempt-service/internal/config"
	"github.com/quizforge/attempt-service/internal/handlers"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/repositories/postgres"
	"github.com/quizforge/attempt-service/internal/sampler"
	"github.com/quizforge/attempt-service/internal/services"
	"github.com/quizforge/attempt-service/internal/utils"
	"github.com/quizforge/attempt-service/internal/validator"
	"github.com/quizforge/attempt-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	var questionRepo repositories.QuestionRepository = postgres.NewQuestionPostgreSQL(db)
	quizRepo := postgres.NewQuizPostgreSQL(db)
	attemptRepo := postgres.NewAttemptPostgreSQL(db)
	preferencesRepo := postgres.NewPreferencesPostgreSQL(db)

	// The cache is an optimization; a missing redis only costs reads.
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, question pool caching disabled", "error", err)
	} else {
		cacheService := cache.NewRedisCache(redisClient, logger)
		questionRepo = cache.NewCachedQuestionRepository(questionRepo, cacheService, logger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	attemptService := services.NewAttemptService(
		questionRepo, quizRepo, attemptRepo,
		sampler.New(nil), publisher, logger)
	quizService := services.NewQuizService(quizRepo, preferencesRepo, v, logger)
	questionService := services.NewQuestionService(questionRepo, v, logger)
	exportService := services.NewExportService(attemptRepo, logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager := handlers.NewHandlerManager(
		attemptService, exportService, quizService, questionService, v, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting attempt service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Let in-flight attempt record writes drain before exit.
	attemptService.WaitForPersistence()
}
