package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andresmz/legal-intake/internal/annex"
	"github.com/andresmz/legal-intake/internal/config"
	"github.com/andresmz/legal-intake/internal/exports"
	"github.com/andresmz/legal-intake/internal/interfaces/http"
	"github.com/andresmz/legal-intake/internal/letter"
	"github.com/andresmz/legal-intake/internal/mail"
	"github.com/andresmz/legal-intake/internal/preview"
	"github.com/andresmz/legal-intake/internal/registry"
	"github.com/andresmz/legal-intake/internal/repository"
	"github.com/andresmz/legal-intake/pkg/database"
	"github.com/andresmz/legal-intake/pkg/utils"
	"go.uber.org/zap"
)

func main() {
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

	logger.Info("Starting legal intake document service",
		zap.Int("port", cfg.Server.Port),
		zap.String("templates_dir", cfg.Templates.Dir))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
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

	if err := database.EnsureSchema(db, logger); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	dispatchRepo := repository.NewDispatchRepository(db, logger)
	exporter := exports.NewDispatchExporter(dispatchRepo, logger)

	templateStore := letter.NewLocalTemplateStore(cfg.Templates.Dir, logger)

	var converter letter.DocumentConverter
	if cfg.Converter.Enabled {
		converter = letter.NewLibreOfficeConverter(cfg.Converter.Binary, cfg.Converter.Timeout, logger)
	} else {
		logger.Warn("PDF conversion disabled, letters will be delivered as Word archives")
	}

	renderer, err := letter.NewRenderer(letter.Config{
		Store:     templateStore,
		Converter: converter,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize renderer", zap.Error(err))
	}

	merger := annex.NewMerger(logger)
	rasterizer := preview.NewRasterizer(logger)

	mailer := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)

	registryClient := registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout, logger)

	handlers := http.NewHandlers(
		renderer,
		merger,
		rasterizer,
		mailer,
		registryClient,
		dispatchRepo,
		exporter,
		logger,
	)

	server := http.NewServer(http.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Logger.Level == "debug",
	}, handlers, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
