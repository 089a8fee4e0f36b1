package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/lexanalytica/backend/internal/api"
	"github.com/lexanalytica/backend/internal/config"
	"github.com/lexanalytica/backend/internal/extract"
	"github.com/lexanalytica/backend/internal/llm"
	"github.com/lexanalytica/backend/internal/logging"
	"github.com/lexanalytica/backend/internal/middleware"
	"github.com/lexanalytica/backend/internal/pipeline"
	"github.com/lexanalytica/backend/internal/prompt"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	flag.Parse()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Advanced.LogLevel, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx := context.Background()

	tmpl, err := prompt.LoadOrDefault(cfg.Prompt.Path)
	if err != nil {
		return fmt.Errorf("loading prompt: %w", err)
	}

	generator, err := llm.New(ctx, cfg.Model, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	analyzer := pipeline.New(extract.NewPDFExtractor(), generator, tmpl, pipeline.Options{
		Limits: pipeline.Limits{
			MaxFiles:     cfg.Limits.MaxFiles,
			MaxFileBytes: cfg.Limits.MaxFileBytes,
			MaxTextChars: cfg.Limits.MaxTextChars,
		},
		ModelTimeout:  time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		MaxConcurrent: cfg.Limits.MaxConcurrentAnalyses,
	}, logger.Named("pipeline"))

	mwOpts := api.MiddlewareOptions{Logger: logger.Named("http")}
	if cfg.RateLimit.RedisURL != "" {
		counter, err := middleware.NewRedisCounter(cfg.RateLimit.RedisURL)
		if err != nil {
			return err
		}
		defer counter.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = counter.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, rate limiting will let requests through", zap.Error(err))
		}
		mwOpts.Counter = counter
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, cfg, mwOpts)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Analyzer:      analyzer,
		Version:       Version,
		Model:         generator.Model(),
		PromptVersion: tmpl.Version,
	}))

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("version", Version),
			zap.String("buildTime", BuildTime),
			zap.String("model", generator.Model()),
			zap.String("promptVersion", tmpl.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
