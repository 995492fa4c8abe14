package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spesedash/internal/amqp"
	"spesedash/internal/config"
	applog "spesedash/internal/log"
	"spesedash/internal/sheets"
	gsheet "spesedash/internal/sheets/google"
	"spesedash/internal/storage"
	"spesedash/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	logger.Info("Starting spesedash-ingest")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ingest worker")
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Ingest worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ingest worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Mirror ingested expenses to Google Sheets (optional)
	var mirror sheets.ExpenseWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return err
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewIngestWorker(repo, mirror)
	logger.Info("Consuming expense events",
		applog.FieldOperation, applog.OpIngest,
		"queue", cfg.AMQPQueue)

	err = client.ConsumeExpenseRecorded(ctx, w.HandleExpenseRecorded)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
