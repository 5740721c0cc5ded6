package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"budgetwise/internal/backend"
	"budgetwise/internal/log"
	"budgetwise/internal/middleware/cors"
	"budgetwise/internal/middleware/ratelimit"
	"budgetwise/internal/middleware/security"
	"budgetwise/internal/middleware/trace"
)

// Config holds the HTTP-level settings of the server.
type Config struct {
	Addr               string
	RateLimitRPM       int
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
}

// Server is the REST API over the wired backend services.
type Server struct {
	http.Server
	svcs   *backend.Services
	logger *log.Logger

	router           *mux.Router
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	requestTimeout   time.Duration
	startedAt        time.Time

	shutdownOnce sync.Once
}

// NewServer builds the router and the middleware chain. The caller owns svcs.
func NewServer(cfg Config, svcs *backend.Services, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		svcs:             svcs,
		logger:           logger.WithComponent(log.ComponentHTTP),
		router:           mux.NewRouter(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
		securityDetector: security.NewDetector(),
		requestTimeout:   cfg.RequestTimeout,
		startedAt:        time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.routes()

	var h http.Handler = s.router
	h = cors.NewPolicy(cfg.CORSAllowedOrigins).Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.securityDetector.Middleware(logger)(h)
	h = s.traceMiddleware.Middleware(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such route").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit, s.logger))
	api.Use(s.withTimeout)

	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPatch)

	api.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/budgets/user/{userId:[0-9]+}", s.handleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id:[0-9]+}", s.handleUpdateBudget).Methods(http.MethodPatch)

	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/user/{userId:[0-9]+}", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/pay-period/{userId:[0-9]+}", s.handleListTransactionsByPeriod).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPatch)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/user/{userId:[0-9]+}", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals/{id:[0-9]+}", s.handleUpdateGoal).Methods(http.MethodPatch)
	api.HandleFunc("/goals/{id:[0-9]+}", s.handleDeleteGoal).Methods(http.MethodDelete)
	api.HandleFunc("/goals/{id:[0-9]+}/contributions", s.handleContribute).Methods(http.MethodPost)

	api.HandleFunc("/automations", s.handleCreateAutomation).Methods(http.MethodPost)
	api.HandleFunc("/automations/user/{userId:[0-9]+}", s.handleListAutomations).Methods(http.MethodGet)
	api.HandleFunc("/automations/{id:[0-9]+}", s.handleUpdateAutomation).Methods(http.MethodPatch)
	api.HandleFunc("/automations/{id:[0-9]+}", s.handleDeleteAutomation).Methods(http.MethodDelete)

	api.HandleFunc("/insights", s.handleListInsights).Methods(http.MethodGet)
	api.HandleFunc("/insights/author/{author}", s.handleListInsightsByAuthor).Methods(http.MethodGet)

	api.HandleFunc("/pay-period", s.handlePayPeriod).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/{userId:[0-9]+}", s.handleDashboard).Methods(http.MethodGet)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// withTimeout bounds the time a handler may spend on storage calls.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// rate limiter. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.rateLimiter.Stop()
	})
	return err
}
