package main

import (
	"context"
	"flag"
	"fmt"

	"promptquest/internal/config"
	"promptquest/internal/database"
	"promptquest/internal/domain"
	"promptquest/internal/logger"
	"promptquest/internal/repository"
	"promptquest/internal/service"
	"promptquest/internal/warehouse"

	"go.uber.org/zap"
)

func main() {
	filePath := flag.String("file", "", "path to a question bank document (defaults to the configured path)")
	clearFirst := flag.Bool("clear", false, "delete existing questions before importing")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		// Logger might not be initialized yet, so use fmt for this critical error
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Import process starting up...",
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("clear_first", *clearFirst))

	ctx := context.Background()

	var questionRepository domain.QuestionRepository
	var txManager domain.TransactionManager

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.NewSQLXSQLiteDB(cfg.Storage.SQLite.Path)
		if err != nil {
			log.Fatal("Failed to open SQLite database", zap.Error(err))
		}
		defer db.Close()
		if err := database.RunMigrations(db.DB, cfg.Storage.SQLite.MigrationsDir); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		questionRepository = repository.NewQuestionDatabaseAdapter(db)
		txManager = repository.NewTransactionManagerAdapter(db)

	case config.BackendBigQuery:
		bq, err := warehouse.NewBigQueryAdapter(ctx, cfg.Storage.BigQuery)
		if err != nil {
			log.Fatal("Failed to initialize BigQuery adapter", zap.Error(err))
		}
		defer bq.Close()
		questionRepository = bq
		txManager = warehouse.NewBestEffortTransactionManager()

	default:
		log.Fatal("Unsupported storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	importService := service.NewImportService(questionRepository, txManager, cfg.Import.DefaultPath)

	path := *filePath
	if path == "" {
		path = cfg.Import.DefaultPath
	}

	imported, err := importService.ImportFile(ctx, path, *clearFirst)
	if err != nil {
		log.Fatal("Import failed",
			zap.String("file", path),
			zap.Int("written_before_failure", imported),
			zap.Error(err))
	}

	log.Info("Import finished", zap.String("file", path), zap.Int("imported", imported))
}
