// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/lexanalytica/backend/internal/config"
	"github.com/lexanalytica/backend/internal/middleware"
	"go.uber.org/zap"
)

const (
	healthPath  = "/health"
	analyzePath = "/analyze-pdf"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Analyzer      Analyzer
	Version       string
	Model         string
	PromptVersion string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Analyze AnalyzeHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Model, deps.PromptVersion),
		Analyze: NewAnalyzeHandler(deps.Analyzer),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET(healthPath, handlers.Health.HandleHealth)

	// The web client posts to the trailing-slash form.
	e.POST(analyzePath+"/", handlers.Analyze.HandleAnalyzePDF)
	e.POST(analyzePath, handlers.Analyze.HandleAnalyzePDF)
}

// MiddlewareOptions carries what SetupMiddleware needs beyond the config.
type MiddlewareOptions struct {
	Logger *zap.Logger
	// Counter enables per-IP rate limiting when non-nil.
	Counter middleware.Counter
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, opts MiddlewareOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.HTTPErrorHandler = NewErrorHandler(cfg.IsDevelopment(), logger)

	// Client IPs feed the logs and the rate limiter; headers are ignored unless trusted.
	if cfg.Server.TrustProxyHeaders {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	if cfg.Advanced.EnableRequestLogging {
		e.Use(middleware.Logger(logger, middleware.SkipPaths(healthPath)))
	}

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))

	if cfg.Server.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.Server.BodyLimit))
	}

	if cfg.Server.EnableCompression {
		e.Use(echomw.GzipWithConfig(echomw.GzipConfig{
			Level: cfg.Server.CompressionLevel,
		}))
	}

	if opts.Counter != nil {
		e.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Counter: opts.Counter,
			Max:     cfg.RateLimit.Requests,
			Window:  time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			Logger:  logger,
			Skipper: func(c echo.Context) bool {
				return c.Request().Method == http.MethodOptions || c.Request().URL.Path == healthPath
			},
		}))
	}
}
