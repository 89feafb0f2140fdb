package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finsage/internal/ledger"
	"finsage/internal/log"
	"finsage/internal/report"
	"finsage/internal/services"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Reports      *report.Service
	Transactions *services.TransactionService
	// Pinger backs /readyz; nil means the store has no connectivity check.
	Pinger ledger.Pinger
	Logger *log.Logger
}

type Server struct {
	http.Server
	router       chi.Router
	reports      *report.Service
	transactions *services.TransactionService
	pinger       ledger.Pinger
	logger       *log.Logger
	rateLimiter  *rateLimiter
	guard        *guardStats
	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// appMetrics counts successful writes for /metrics.
type appMetrics struct {
	created atomic.Int64
	updated atomic.Int64
	deleted atomic.Int64
	uptime  time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	router := chi.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		router:       router,
		reports:      deps.Reports,
		transactions: deps.Transactions,
		pinger:       deps.Pinger,
		logger:       logger,
		rateLimiter:  newRateLimiter(requestsPerMinute, time.Minute, time.Now),
		guard:        &guardStats{},
		appMetrics:   &appMetrics{uptime: time.Now()},
	}

	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(log.Middleware(logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	router.Use(s.withSecurityHeaders)

	router.Get("/healthz", s.handleHealth)
	router.Get("/readyz", s.handleReady)
	router.Get("/metrics", s.handleMetrics)

	router.Route("/api", func(r chi.Router) {
		r.Use(requireOwner)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/report", s.handleReport)
		r.Get("/charts", s.handleCharts)

		r.Route("/{kind}", func(r chi.Router) {
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	s.rateLimiter.start(context.Background())
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		ip := clientIP(r)

		if reason := suspiciousReason(r); reason != "" {
			s.guard.suspicious.Add(1)
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"reason", reason)
		}

		// Writes are rate limited per client
		if isWrite(r.Method) && !s.rateLimiter.allow(ip) {
			s.guard.rateLimited.Add(1)
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			TooManyRequestsError("rate limit exceeded, please try again later").
				Header("Retry-After", "60").
				Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.FromContext(ctx).HTTPCompleted(ctx, r, status, time.Since(start).Milliseconds(), ip)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
