package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/session"
)

// Deps are the collaborators the API serves.
type Deps struct {
	Sessions *session.Manager
	Expenses *services.ExpenseService
	Budgets  *services.BudgetService
	Profiles *services.ProfileService
	Chat     *services.ChatService
	Reports  *services.ReportService
	Exports  *services.ExportService

	// Ready reports whether backing stores are reachable. Nil means always
	// ready.
	Ready func(ctx context.Context) error

	RateLimitPerMinute int
	Logger             *applog.Logger
}

// Server is the JSON API.
type Server struct {
	http.Server

	sessions *session.Manager
	expenses *services.ExpenseService
	budgets  *services.BudgetService
	profiles *services.ProfileService
	chat     *services.ChatService
	reports  *services.ReportService
	exports  *services.ExportService
	ready    func(ctx context.Context) error
	logger   *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The rate limiter forgets idle clients only while its Run
// loop is active; see Limiter.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		sessions: deps.Sessions,
		expenses: deps.Expenses,
		budgets:  deps.Budgets,
		profiles: deps.Profiles,
		chat:     deps.Chat,
		reports:  deps.Reports,
		exports:  deps.Exports,
		ready:    deps.Ready,
		logger:   logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector: security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/session", s.handleLogin)
	mux.HandleFunc("DELETE /api/session", s.handleLogout)

	mux.HandleFunc("GET /api/profile", s.withSession(applog.OpRead, s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.withSession(applog.OpUpdate, s.handleUpdateProfile))

	mux.HandleFunc("GET /api/expenses", s.withSession(applog.OpList, s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withSession(applog.OpCreate, s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withSession(applog.OpUpdate, s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withSession(applog.OpDelete, s.handleDeleteExpense))

	mux.HandleFunc("GET /api/budgets", s.withSession(applog.OpRead, s.handleGetBudgets))
	mux.HandleFunc("PUT /api/budgets", s.withSession(applog.OpUpdate, s.handleReplaceBudgets))
	mux.HandleFunc("GET /api/budgets/recommendations", s.withSession(applog.OpRead, s.handleBudgetRecommendations))

	mux.HandleFunc("GET /api/dashboard", s.withSession(applog.OpRead, s.handleDashboard))
	mux.HandleFunc("GET /api/reports", s.withSession(applog.OpRead, s.handleReport))
	mux.HandleFunc("POST /api/reports/export", s.withSession(applog.OpExport, s.handleExport))
	mux.HandleFunc("GET /api/investments", s.withSession(applog.OpRead, s.handleInvestments))

	mux.HandleFunc("GET /api/chat", s.withSession(applog.OpRead, s.handleTranscript))
	mux.HandleFunc("POST /api/chat", s.withSession(applog.OpCreate, s.handleAsk))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// middleware wraps h outermost first: probe detection, tracing, security
// headers, then rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		ErrorResponse(r.Context(), http.StatusTooManyRequests, CodeRateLimited,
			"rate limit exceeded, please try again later").Write(w)
	})
	return s.detector.Middleware(s.tracer.Middleware(headers.Middleware(limited(h))))
}

// Limiter exposes the rate limiter so its cleanup loop can be run.
func (s *Server) Limiter() *ratelimit.Limiter { return s.limiter }

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			applog.FieldOperation, applog.OpShutdown,
			"requests", s.tracer.GetMetrics().TotalRequests,
			"rate_limited", s.limiter.GetMetrics().Limited,
			"suspicious", s.detector.GetMetrics().SuspiciousRequests)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ErrorResponse(r.Context(), http.StatusServiceUnavailable, CodeUnavailable, "not ready").Write(w)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
