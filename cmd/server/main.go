package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/assistant"
	"github.com/hereandnowai/invoice-processor/internal/config"
	"github.com/hereandnowai/invoice-processor/internal/export"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/external/gemini"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/external/lark"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/external/openai"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/persistence/repository"
	"github.com/hereandnowai/invoice-processor/internal/infrastructure/storage"
	httpserver "github.com/hereandnowai/invoice-processor/internal/interfaces/http"
	"github.com/hereandnowai/invoice-processor/internal/invoice"
	"github.com/hereandnowai/invoice-processor/internal/session"
	"github.com/hereandnowai/invoice-processor/pkg/database"
	"github.com/hereandnowai/invoice-processor/pkg/utils"
)

func main() {
	// Credentials live in .env during development; a missing file is fine
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice processor",
		zap.String("provider", cfg.Extraction.Provider),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(cfg.Storage.BaseDir, 0755); err != nil {
		logger.Fatal("Failed to create storage directory", zap.Error(err))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create database directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(repository.Migrations()); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	files := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)
	previews := storage.NewPreviewStore(files)

	var extractor invoice.Extractor
	switch cfg.Extraction.Provider {
	case "gemini":
		geminiExtractor, err := gemini.NewExtractor(
			context.Background(),
			cfg.Extraction.Gemini.APIKey,
			cfg.Extraction.Gemini.Model,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize gemini extractor", zap.Error(err))
		}
		defer geminiExtractor.Close()
		extractor = geminiExtractor
	default:
		extractor = openai.NewExtractor(cfg.Extraction.OpenAI.APIKey, cfg.Extraction.OpenAI.Model, logger)
	}

	notifier := lark.NewNotifier(lark.Config{
		AppID:         cfg.Lark.AppID,
		AppSecret:     cfg.Lark.AppSecret,
		ReceiveID:     cfg.Lark.ReceiveID,
		ReceiveIDType: cfg.Lark.ReceiveIDType,
	}, logger)

	manager := invoice.NewManager(invoice.NewProcessor(extractor, logger), previews, notifier, logger)
	appSession := session.New(manager, repository.NewRecordRepository(db, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := appSession.Init(ctx); err != nil {
		logger.Fatal("Failed to restore session", zap.Error(err))
	}

	var responder assistant.Responder = openai.NewAssistant(
		cfg.Extraction.OpenAI.APIKey,
		cfg.Assistant.Model,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, manager, appSession, responder, export.NewExcelReporter(logger), files, utils.NewKVLogger(logger))

	if err := server.Start(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	if err := appSession.Teardown(context.Background()); err != nil {
		logger.Error("Failed to persist final session snapshot", zap.Error(err))
	}
	logger.Info("Server exited successfully")
}
