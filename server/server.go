package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/anoncampus/campusforum/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the forum REST backend
type Server struct {
	db      *sql.DB
	echo    *echo.Echo
	metrics *metrics
	limiter *rateLimiter
}

// New creates a new server connected to the Postgres database at dbURL
func New(dbURL string) (*Server, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		db:      db,
		metrics: newMetrics(reg),
		limiter: newRateLimiter(authRate, authBurst),
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	s.setupEcho(reg)

	return s, nil
}

func (s *Server) setupEcho(reg prometheus.Gatherer) {
	e := echo.New()
	e.HideBanner = true

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(s.metrics.middleware)

	e.GET("/health", s.handleHealth)
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1")

	// Public endpoints; the auth surface is rate limited per client IP
	api.POST("/auth/token", s.handleToken, s.limiter.middleware)
	api.POST("/users/", s.handleCreateUser, s.limiter.middleware)
	api.GET("/posts", s.handleListPosts)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/users/me", s.handleMe)
	protected.POST("/posts", s.handleCreatePost)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
