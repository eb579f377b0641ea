// Package http exposes the JSON API: the template catalog, budget
// lifecycle, and the transaction query endpoints backed by the query
// engine. Handlers stay thin; domain rules live in the services and
// query packages.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"budgeteer/internal/cache"
	"budgeteer/internal/core"
	applog "budgeteer/internal/log"
	"budgeteer/internal/middleware/ratelimit"
	"budgeteer/internal/middleware/trace"
	"budgeteer/internal/services"
	"budgeteer/internal/storage"
)

const (
	dayFormat = "2006-01-02"

	readHeaderTimeout = 5 * time.Second

	cacheSize = 128
	cacheTTL  = 30 * time.Second
)

// Server is the API server. It embeds *http.Server so callers (and tests)
// can reach the composed handler directly.
type Server struct {
	*http.Server

	svc        *services.BudgetService
	store      *storage.SQLiteRepository
	structured *applog.StructuredLogger
	limiter    *ratelimit.Limiter
	caches     *cache.Manager

	// Read caches for the hot list endpoints. Writes invalidate through
	// invalidateBudget so stale reads last at most one TTL window.
	budgetsCache    *cache.LRUCache[[]core.Budget]
	categoriesCache *cache.LRUCache[[]core.Category]
}

// NewServer wires the router, middleware and caches. A nil logger falls
// back to the default text logger.
func NewServer(addr string, svc *services.BudgetService, store *storage.SQLiteRepository, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		svc:             svc,
		store:           store,
		structured:      applog.NewStructuredLogger(logger.WithComponent(applog.ComponentHTTP)),
		limiter:         ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		caches:          cache.NewManager(),
		budgetsCache:    cache.NewLRUCache[[]core.Budget](cacheSize, cacheTTL),
		categoriesCache: cache.NewLRUCache[[]core.Category](cacheSize, cacheTTL),
	}
	s.caches.Register(s.budgetsCache)
	s.caches.Register(s.categoriesCache)
	s.caches.StartCleanup(5 * time.Minute)

	tracer := trace.NewMiddleware(clientIP)

	r := chi.NewRouter()
	r.Use(tracer.Middleware)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	}))
	r.Use(s.limiter.Middleware(clientIP, nil))

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Get("/{templateID}", s.handleGetTemplate)
			r.Get("/{templateID}/summary", s.handleTemplateSummary)
			r.Post("/{templateID}/materialize", s.handleMaterializeTemplate)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)

			r.Route("/{budgetID}", func(r chi.Router) {
				r.Get("/", s.handleGetBudget)
				r.Post("/archive", s.handleArchiveBudget)
				r.Delete("/", s.handleDeleteBudget)

				r.Get("/transactions", s.handleListTransactions)
				r.Post("/transactions", s.handleCreateTransaction)
				r.Delete("/transactions/{transactionID}", s.handleDeleteTransaction)

				r.Get("/timeline", s.handleTimeline)
			})
		})
	})

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateBudget drops the cached views touched by a write to the given
// budget. The list cache is dropped for both keys since archiving moves a
// budget between the two views.
func (s *Server) invalidateBudget(budgetID string) {
	s.budgetsCache.Delete("active")
	s.budgetsCache.Delete("all")
	if budgetID != "" {
		s.categoriesCache.Delete(budgetID)
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
