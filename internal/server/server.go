package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"

	"tracker/internal/auth"
	"tracker/internal/tracker"
	"tracker/internal/validate"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the optional parts of the server.
type Options struct {
	// Mode is the gin mode; empty means release.
	Mode string
	// Redis backs the auth rate limiter. Nil disables limiting.
	Redis          *redis.Client
	AuthRateLimit  int
	AuthRateWindow time.Duration
	// Registry receives the HTTP metrics. Nil creates a private one.
	Registry *prometheus.Registry
}

// Server provides HTTP handlers for the project and task API.
type Server struct {
	engine   *gin.Engine
	tracker  *tracker.Service
	accounts *auth.Service
	health   Pinger
	logger   *slog.Logger
	metrics  *metrics
	limiter  *rateLimiter
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *tracker.Service, accounts *auth.Service, health Pinger, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Mode == "" {
		opts.Mode = gin.ReleaseMode
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(opts.Mode)
	registerValidators()

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	srv := &Server{
		engine:   router,
		tracker:  svc,
		accounts: accounts,
		health:   health,
		logger:   logger,
		metrics:  newMetrics(opts.Registry),
	}
	srv.limiter = newRateLimiter(opts.Redis, opts.AuthRateLimit, opts.AuthRateWindow, srv.metrics, logger)

	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(srv.accessLog())
	router.Use(srv.metrics.observe())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API, docs and ops handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", s.metrics.handler())

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		limited := api.Group("", s.limiter.middleware())
		handle(limited, http.MethodPost, "/register", s.handleRegister)
		handle(limited, http.MethodPost, "/token", s.handleToken)
		handle(api, http.MethodPost, "/token/refresh", s.handleRefresh)

		secured := api.Group("", s.authenticate())

		handle(secured, http.MethodGet, "/projects", s.handleListProjects)
		handle(secured, http.MethodPost, "/projects", s.handleCreateProject)
		handle(secured, http.MethodGet, "/projects/:id", s.handleGetProject)
		handle(secured, http.MethodPut, "/projects/:id", s.handleUpdateProject(false))
		handle(secured, http.MethodPatch, "/projects/:id", s.handleUpdateProject(true))
		handle(secured, http.MethodDelete, "/projects/:id", s.handleDeleteProject)

		handle(secured, http.MethodGet, "/tasks", s.handleListTasks)
		handle(secured, http.MethodPost, "/tasks", s.handleCreateTask)
		handle(secured, http.MethodGet, "/tasks/:id", s.handleGetTask)
		handle(secured, http.MethodPut, "/tasks/:id", s.handleUpdateTask(false))
		handle(secured, http.MethodPatch, "/tasks/:id", s.handleUpdateTask(true))
		handle(secured, http.MethodDelete, "/tasks/:id", s.handleDeleteTask)
	}

	s.mountDocs()
}

// handle registers path both with and without a trailing slash.
func handle(g *gin.RouterGroup, method, path string, h gin.HandlerFunc) {
	g.Handle(method, path, h)
	g.Handle(method, path+"/", h)
}

// handleHealth reports readiness based on the store connection.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
// Non-numeric ids cannot name a row, so they are reported as not found.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// respondError maps a service error to a status and JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	var fields validate.FieldErrors
	switch {
	case errors.As(err, &fields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongType):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is invalid or expired"})
	case errors.Is(err, tracker.ErrNoActor):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
	default:
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
