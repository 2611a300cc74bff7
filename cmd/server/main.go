package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"invoice-extractor/internal/config"
	"invoice-extractor/internal/export"
	"invoice-extractor/internal/jobs"
	"invoice-extractor/internal/llm"
	"invoice-extractor/internal/pipeline"
	"invoice-extractor/internal/server"
	"invoice-extractor/pkg/database"
	"invoice-extractor/pkg/utils"
)

func main() {
	// Local development credentials; missing .env is fine.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting invoice extraction service",
		zap.Int("port", cfg.Server.Port),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
		zap.String("llm_provider", cfg.LLM.Provider))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	for _, dir := range []string{cfg.Parser.UploadDir, cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	var opts pipeline.Options
	if cfg.LLM.Enabled {
		opts.LLM = &llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey(),
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			Timeout:  cfg.LLM.Timeout,
		}
	}
	parser, err := pipeline.NewParser(opts, logger)
	if err != nil {
		logger.Fatal("Failed to initialize parser", zap.Error(err))
	}

	store := jobs.NewStore(db, logger)
	writer := export.NewWriter(logger)
	srv := server.New(cfg, parser, store, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
	logger.Info("Server exited successfully")
}
