package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"forefunds/internal/analyzer"
	"forefunds/internal/auth"
	"forefunds/internal/backend"
	"forefunds/internal/cache"
	"forefunds/internal/cli"
	"forefunds/internal/config"
	"forefunds/internal/core"
	apphttp "forefunds/internal/http"
	"forefunds/internal/log"
	"forefunds/internal/services"
)

const (
	ledgerCacheSize     = 500
	ledgerCacheTTL      = 5 * time.Minute
	cacheSweepInterval  = 10 * time.Minute
	shutdownGracePeriod = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(config.Load(), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentApp)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	provider, err := newAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize analyzer", log.FieldError, err, log.FieldProvider, cfg.AnalyzerProvider)
		os.Exit(1)
	}

	clock := services.Clock{Loc: cfg.Location()}
	ledgerCache := cache.NewLRUCache[[]core.Transaction](ledgerCacheSize, ledgerCacheTTL)
	cacheManager := cache.NewManager(func(removed int) {
		logger.WithComponent(log.ComponentCache).Debug("Cache cleanup completed", log.FieldCount, removed)
	})
	cacheManager.Register(ledgerCache)
	cacheManager.StartCleanup(cacheSweepInterval)

	st := res.Store
	ledger := services.NewLedger(st, ledgerCache)
	rewardSvc := services.NewRewardService(st, st, ledger, clock, logger)

	var publisher services.EventPublisher
	if res.Broker != nil {
		publisher = res.Broker
	}
	events := services.NewEvents(publisher, services.NewEventHandler(rewardSvc), logger)
	dashboard := services.NewDashboardService(ledger, st, clock)

	var verifier auth.Verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	if cfg.AuthDevMode {
		logger.Warn("AUTH_DEV_MODE is enabled: accepting dev:<id>:<email> credentials")
		verifier = auth.DevVerifier{}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		RateLimitRPM:   cfg.RateLimitRPM,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Verifier:       verifier,
		Sessions:       auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL),
		Services: apphttp.Services{
			Transactions: services.NewTransactionService(st, ledger, events, clock, logger),
			Goals:        services.NewGoalService(st, events, clock),
			Profiles:     services.NewProfileService(st, ledger, clock, logger),
			Dashboard:    dashboard,
			Documents:    services.NewDocumentService(provider, st, ledger, events, clock, logger),
			Insights:     services.NewInsightService(provider, dashboard, clock),
		},
		Store:     st,
		Logger:    logger,
		CacheSize: ledgerCache.Size,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, shutdownGracePeriod, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting forefunds server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldProvider, cfg.AnalyzerProvider,
		"events_via_broker", res.Broker != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

// newAnalyzer returns nil when document analysis is switched off.
func newAnalyzer(ctx context.Context, cfg *config.Config, logger *log.Logger) (analyzer.Analyzer, error) {
	var provider analyzer.Provider
	switch cfg.AnalyzerProvider {
	case "gemini":
		p, err := analyzer.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		provider = p
	case "openai":
		provider = analyzer.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		logger.Info("Document analysis disabled", log.FieldProvider, cfg.AnalyzerProvider)
		return nil, nil
	}
	return analyzer.NewService(provider, cfg.AnalyzerConcurrency, cfg.AnalyzerTimeout, logger), nil
}
