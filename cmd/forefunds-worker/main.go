package main

import (
	"os"
	"time"

	"forefunds/internal/backend"
	"forefunds/internal/cli"
	"forefunds/internal/config"
	"forefunds/internal/log"
	"forefunds/internal/services"
	"forefunds/internal/sheets"
	gsheet "forefunds/internal/sheets/google"
	"forefunds/internal/worker"
)

const shutdownGracePeriod = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(config.Load(), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting forefunds-worker", log.FieldOperation, log.OpStartup)

	ctx, done := cli.GracefulShutdown(logger, shutdownGracePeriod, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	if !backendCfg.Type.Shared() {
		logger.Warn("The worker only sees its own data with the memory backend; use sqlite or postgres",
			"backend", backendCfg.Type)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	var mirror sheets.TransactionWriter
	if cfg.SheetsSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:      cfg.SheetsSpreadsheetID,
			SheetName:          cfg.SheetsSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountJSONFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	st := res.Store
	clock := services.Clock{Loc: cfg.Location()}
	// Writes land through the api process, so the worker reads the store directly.
	ledger := services.NewLedger(st, nil)
	rewardSvc := services.NewRewardService(st, st, ledger, clock, logger)
	profiles := services.NewProfileService(st, ledger, clock, logger)

	events := worker.NewEventWorker(services.NewEventHandler(rewardSvc), st, mirror, logger)
	sweeper := worker.NewStreakSweeper(profiles.SweepStreaks, cfg.StreakSweepInterval, logger)

	var consumer worker.Consumer
	if res.Broker != nil {
		consumer = res.Broker
	} else {
		logger.Warn("No AMQP broker available; running the streak sweep only")
	}

	if err := worker.Run(ctx, consumer, events, sweeper); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
