package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptquest/internal/config"
	"promptquest/internal/database"
	"promptquest/internal/domain"
	"promptquest/internal/handler"
	"promptquest/internal/logger"
	"promptquest/internal/middleware"
	"promptquest/internal/repository"
	"promptquest/internal/service"
	"promptquest/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

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

	ctx := context.Background()

	// Initialize the question store for the configured backend
	var questionRepository domain.QuestionRepository
	var txManager domain.TransactionManager
	var closeStore func()

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		appLogger.Info("Initializing SQLite question store",
			zap.String("path", cfg.Storage.SQLite.Path))

		db, err := database.NewSQLXSQLiteDB(cfg.Storage.SQLite.Path)
		if err != nil {
			appLogger.Fatal("Failed to open SQLite database", zap.Error(err))
		}
		if err := database.RunMigrations(db.DB, cfg.Storage.SQLite.MigrationsDir); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}

		questionRepository = repository.NewQuestionDatabaseAdapter(db)
		txManager = repository.NewTransactionManagerAdapter(db)
		closeStore = func() { db.Close() }

	case config.BackendBigQuery:
		appLogger.Info("Initializing BigQuery question store",
			zap.String("project", cfg.Storage.BigQuery.ProjectID),
			zap.String("dataset", cfg.Storage.BigQuery.Dataset))

		bq, err := warehouse.NewBigQueryAdapter(ctx, cfg.Storage.BigQuery)
		if err != nil {
			appLogger.Fatal("Failed to initialize BigQuery adapter", zap.Error(err))
		}

		questionRepository = bq
		txManager = warehouse.NewBestEffortTransactionManager()
		closeStore = func() { bq.Close() }

	default:
		appLogger.Fatal("Unsupported storage backend", zap.String("backend", cfg.Storage.Backend))
	}
	defer closeStore()

	// Initialize services
	quizService := service.NewQuizService(questionRepository)
	importService := service.NewImportService(questionRepository, txManager, cfg.Import.DefaultPath)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	adminHandler := handler.NewAdminHandler(importService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	// Routes
	api := app.Group("/api")

	quiz := api.Group("/quiz")
	quiz.Get("/questions", quizHandler.GetAllQuestions)
	quiz.Get("/sample", quizHandler.Sample)
	quiz.Post("/check", quizHandler.CheckAnswers)

	admin := api.Group("/admin")
	admin.Post("/import", adminHandler.Import)
	admin.Post("/import/default", adminHandler.ImportDefault)
	admin.Delete("/questions", adminHandler.ClearQuestions)
	admin.Get("/stats", adminHandler.Stats)

	// Start server with graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		appLogger.Info("Starting server", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
