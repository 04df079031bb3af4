// Package httpserver provides the HTTP REST API server for the news admin service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	"github.com/helixir/news-admin-service/internal/auth"
	"github.com/helixir/news-admin-service/internal/database"
	"github.com/helixir/news-admin-service/internal/domain"
	"github.com/helixir/news-admin-service/internal/observability"
	"github.com/helixir/news-admin-service/internal/service"
)

// NewsService is the set of news operations the HTTP layer depends on.
// *service.NewsService implements it.
type NewsService interface {
	GetOne(ctx context.Context, id int64) (*domain.NewsArticle, error)
	ListPage(ctx context.Context, req domain.PageRequest) (service.NewsPage, error)
	Search(ctx context.Context, query string, req domain.PageRequest) (service.NewsPage, error)
	Create(ctx context.Context, draft domain.NewsDraft, authorID int64) (*domain.NewsArticle, error)
	Update(ctx context.Context, id int64, patch domain.NewsPatch, updatedBy int64) (*domain.NewsArticle, error)
	Delete(ctx context.Context, id int64, deletedBy int64) (bool, error)
}

// HealthChecker reports database health. *database.DB implements it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// TokenVerifier turns a bearer token into a caller identity. *auth.JWTManager implements it.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

var (
	_ NewsService   = (*service.NewsService)(nil)
	_ HealthChecker = (*database.DB)(nil)
	_ TokenVerifier = (*auth.JWTManager)(nil)
)

// Server is the HTTP REST API server.
type Server struct {
	cfg          Config
	router       chi.Router
	httpServer   *http.Server
	news         NewsService
	health       HealthChecker
	verifier     TokenVerifier
	metrics      *observability.Metrics
	writeLimiter *rate.Limiter
	validate     *validator.Validate
	logger       zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// AdminRole is the role required for create, update and delete.
	AdminRole string

	// WriteRateLimit is the sustained rate of admin writes per second; zero disables limiting.
	WriteRateLimit float64
	WriteRateBurst int

	// DefaultPerPage applies when per_page is omitted; MaxPerPage caps it.
	DefaultPerPage int
	MaxPerPage     int
}

// NewServer creates a new HTTP server with all dependencies.
// metrics may be nil, in which case no HTTP metrics are recorded.
func NewServer(
	cfg Config,
	news NewsService,
	health HealthChecker,
	verifier TokenVerifier,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = domain.DefaultPerPage
	}
	if cfg.MaxPerPage <= 0 || cfg.MaxPerPage > domain.MaxPerPage {
		cfg.MaxPerPage = domain.MaxPerPage
	}

	s := &Server{
		cfg:      cfg,
		news:     news,
		health:   health,
		verifier: verifier,
		metrics:  metrics,
		validate: newValidator(),
		logger:   observability.WithComponent(logger, "http-server"),
	}
	if cfg.WriteRateLimit > 0 {
		s.writeLimiter = rate.NewLimiter(rate.Limit(cfg.WriteRateLimit), cfg.WriteRateBurst)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(correlationIDMiddleware)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
	}
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1/news", func(r chi.Router) {
		r.Get("/", s.listNews)
		r.Get("/search", s.searchNews)
		r.Get("/{newsID}", s.getNews)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.requireRole(s.cfg.AdminRole))
			r.Use(s.rateLimitWrites)

			r.Post("/", s.createNews)
			r.Put("/{newsID}", s.updateNews)
			r.Patch("/{newsID}", s.updateNews)
			r.Delete("/{newsID}", s.deleteNews)
		})
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server, waiting at most
// Config.ShutdownTimeout for in-flight requests when it is set.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler reports whether the service can take traffic.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
