// Package http exposes the budget services as a JSON REST API.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/middleware/owner"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/services"
)

// CategoryService is the category use-case surface the handlers depend on.
type CategoryService interface {
	Create(ctx context.Context, p core.CreateCategoryParams) (core.Category, error)
	Get(ctx context.Context, id int64) (core.Category, error)
	List(ctx context.Context, typ *core.CategoryType) ([]core.Category, error)
	Search(ctx context.Context, fragment string) ([]core.Category, error)
	Update(ctx context.Context, id int64, p core.UpdateCategoryParams) (core.Category, error)
	Delete(ctx context.Context, id int64) error
}

// AmountService is the amount use-case surface the handlers depend on.
type AmountService interface {
	Create(ctx context.Context, p core.CreateAmountParams) (core.Amount, error)
	Get(ctx context.Context, id int64) (core.Amount, error)
	List(ctx context.Context, categoryID *int64) ([]core.Amount, error)
	Update(ctx context.Context, id int64, p core.UpdateAmountParams) (core.Amount, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, start, end core.Date) (core.Summary, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config controls the listener and request guards.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
}

// Deps are the collaborators wired into the server.
type Deps struct {
	Categories CategoryService
	Amounts    AmountService
	Store      Pinger
	// Summaries is optional and only feeds readiness and metrics output.
	Summaries *services.SummaryCache
	Logger    *log.Logger
}

type Server struct {
	http.Server
	categories CategoryService
	amounts    AmountService
	store      Pinger
	summaries  *services.SummaryCache
	logger     *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	startedAt        time.Time

	shutdownOnce sync.Once
}

// NewServer builds the route table and middleware chain.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	limiterCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		categories:       deps.Categories,
		amounts:          deps.Amounts,
		store:            deps.Store,
		summaries:        deps.Summaries,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(limiterCfg),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		startedAt:        time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.middleware(mux),
		ReadTimeout:       orDefault(cfg.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      orDefault(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 60*time.Second),
	}
	return s
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/search", s.handleSearchCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /api/amounts", s.handleCreateAmount)
	mux.HandleFunc("GET /api/amounts", s.handleListAmounts)
	mux.HandleFunc("GET /api/amounts/summary", s.handleSummary)
	mux.HandleFunc("GET /api/amounts/{id}", s.handleGetAmount)
	mux.HandleFunc("PUT /api/amounts/{id}", s.handleUpdateAmount)
	mux.HandleFunc("DELETE /api/amounts/{id}", s.handleDeleteAmount)
}

// middleware wraps h so that tracing runs outermost and owner resolution innermost.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = owner.Middleware(h)
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.writeRateLimited)(h)
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(s.logger)(h)
	h = s.traceMiddleware.Middleware(h)
	return otelhttp.NewHandler(h, "budget-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	})
	return err
}
