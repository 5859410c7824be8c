// Package web serves the lead REST API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/config"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/metrics"
	"github.com/Kurama07a/buyer-lead-app/internal/web/middleware"
)

// Server is the HTTP server of the lead API.
type Server struct {
	cfg            *config.Config
	leads          *core.Service
	auth           *auth.Service
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	limiter        *middleware.RateLimiter
	importLimiter  *middleware.RateLimiter
	router         *chi.Mux
	server         *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics reports HTTP traffic to m and serves h on the metrics path.
// A nil h serves the default Prometheus registry.
func WithMetrics(m *metrics.Metrics, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = h
	}
}

// NewServer wires routes and middleware.
func NewServer(cfg *config.Config, leads *core.Service, authSvc *auth.Service, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		leads:  leads,
		auth:   authSvc,
		router: chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metricsHandler == nil {
		s.metricsHandler = promhttp.Handler()
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		if cfg.Rate.ImportLimit > 0 {
			s.importLimiter = middleware.NewRateLimiter(cfg.Rate.ImportLimit, 1)
		}
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics.ObserveHTTP))
	}
	s.router.Use(chimw.Compress(5))
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if len(s.cfg.Security.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Security.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, s.metricsHandler)
	}

	requireAuth := middleware.RequireAuth(s.auth, s.cfg.Auth.CookieName)
	timeout := chimw.Timeout(s.cfg.Server.RequestTimeout)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(timeout)
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(requireAuth).Get("/me", s.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// Imports run under their own deadline.
			r.Group(func(r chi.Router) {
				if s.importLimiter != nil {
					r.Use(s.importLimiter.Middleware)
				}
				r.Post("/leads/import", s.handleImport)
			})

			r.Group(func(r chi.Router) {
				r.Use(timeout)

				r.Get("/leads", s.handleListLeads)
				r.Post("/leads", s.handleCreateLead)
				r.Post("/leads/import/preview", s.handleImportPreview)
				r.Get("/leads/search", s.handleSearch)
				r.Get("/leads/export", s.handleExport)
				r.Get("/leads/{id}", s.handleGetLead)
				r.Put("/leads/{id}", s.handleUpdateLead)
				r.Delete("/leads/{id}", s.handleDeleteLead)
				r.Post("/leads/{id}/notes", s.handleAddNote)

				r.Get("/dashboard/stats", s.handleDashboardStats)
				r.Get("/dashboard/activities", s.handleActivities)

				r.With(middleware.RequireAdmin).Get("/admin/import-status", s.handleImportStatus)
			})
		})
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown. ctx only bounds the rate limiter cleanup loops.
func (s *Server) Start(ctx context.Context) error {
	if s.limiter != nil {
		go s.limiter.Cleanup(ctx, 3*time.Minute, 10*time.Minute)
	}
	if s.importLimiter != nil {
		go s.importLimiter.Cleanup(ctx, 3*time.Minute, 10*time.Minute)
	}

	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body. Encoding errors are logged
// since the status line is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
