package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tmsintake/internal/api"
	"tmsintake/internal/config"
	"tmsintake/internal/metrics"
	"tmsintake/internal/registry"
	"tmsintake/internal/schema"
	"tmsintake/internal/service"
	"tmsintake/internal/submission"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	// Misdeclared forms stop a development build; in production the
	// affected fields report themselves as misconfigured instead.
	reg := registry.Default()
	if err := reg.Lint(); err != nil {
		if cfg.IsDev() {
			return err
		}
		logger.Error("Form registry has configuration errors", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	client, err := submission.NewClient(submission.Config{
		Endpoint:    cfg.EmailAPIURL,
		APIKey:      cfg.EmailAPIKey,
		FromName:    cfg.EmailFromName,
		FromAddress: cfg.EmailFromAddress,
		To:          cfg.IntakeInbox,
		Timeout:     cfg.SubmitTimeout,
		ClinicName:  cfg.ClinicName,
		Source:      source,
		Location:    loc,
	}, reg, m, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := service.NewSessionService(reg, store, client, schema.NewCompilerWithCache(64), m, logger, loc)

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Outlives the submit timeout so a slow email API still gets a reply
	r.Use(middleware.Timeout(cfg.SubmitTimeout + 10*time.Second))

	// Mount API routes
	r.Mount("/v1", api.Routes(api.Dependencies{
		Sessions:    sessions,
		Log:         logger,
		ClinicPhone: cfg.ClinicPhone,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	// Start server
	logger.Info("Starting server", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown lets in-flight submissions finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}

// newStore picks Redis when REDIS_ADDR is set so replicas share sessions
func newStore(cfg *config.Config, logger *zap.Logger) (service.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("Using in-memory session store", zap.Int("size", cfg.SessionCacheSize))
		return service.NewMemoryStore(cfg.SessionCacheSize, cfg.SessionTTL), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	return service.NewRedisStore(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
}
