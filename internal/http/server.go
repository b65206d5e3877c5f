package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"forefunds/internal/auth"
	"forefunds/internal/log"
	"forefunds/internal/middleware/ratelimit"
	"forefunds/internal/middleware/security"
	"forefunds/internal/middleware/trace"
	"forefunds/internal/services"
)

const (
	readyTimeout          = 2 * time.Second
	defaultMaxUploadBytes = 10 << 20
)

// Services groups the application services the handlers call.
type Services struct {
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Profiles     *services.ProfileService
	Dashboard    *services.DashboardService
	Documents    *services.DocumentService
	Insights     *services.InsightService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr           string
	RateLimitRPM   int
	MaxUploadBytes int64

	Verifier auth.Verifier
	Sessions *auth.Sessions
	Services Services
	Store    Pinger
	Logger   *log.Logger

	// CacheSize reports the ledger cache entry count for /metrics. Optional.
	CacheSize func() int
}

type Server struct {
	http.Server

	verifier       auth.Verifier
	sessions       *auth.Sessions
	svc            Services
	store          Pinger
	logger         *log.Logger
	maxUploadBytes int64
	cacheSize      func() int

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitRPM > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitRPM
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	s := &Server{
		verifier:       opts.Verifier,
		sessions:       opts.Sessions,
		svc:            opts.Services,
		store:          opts.Store,
		logger:         logger,
		maxUploadBytes: maxUpload,
		cacheSize:      opts.CacheSize,
		limiter:        ratelimit.NewLimiter(limitCfg),
		detector:       security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.flagSuspicious)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found.").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed.").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limit := s.limiter.Middleware(s.rateKey, s.onRateLimit)

	r.Route("/api", func(r chi.Router) {
		r.With(limit).Post("/auth/google", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.sessions.Middleware(writeError))
			r.Use(limit)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Get("/goal", s.handleGetGoal)
			r.Put("/goal", s.handleSetGoal)
			r.Delete("/goal", s.handleRemoveGoal)

			r.Get("/profile", s.handleProfile)
			r.Put("/profile/daily-goal", s.handleSetDailyGoal)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/dashboard/trend", s.handleTrend)
			r.Get("/dashboard/heatmap", s.handleHeatmap)
			r.Get("/dashboard/forescore", s.handleForeScore)

			r.Post("/documents/analyze", s.handleAnalyzeDocument)
			r.Get("/insights", s.handleInsights)

			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/achievements", s.handleAchievements)

			r.Post("/calc/tip", s.handleTip)
			r.Post("/calc/split", s.handleSplit)
			r.Post("/calc/split/rebalance", s.handleRebalance)
		})
	})
	return r
}

// flagSuspicious logs probe-like requests and lets them through.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

// rateKey limits signed-in users by id and everyone else by address.
func (s *Server) rateKey(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldPath, r.URL.Path,
		log.FieldUserID, auth.UserID(r.Context()))
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
}

// Shutdown stops background routines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
