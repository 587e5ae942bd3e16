package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/health"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
)

const (
	defaultShutdownTimeout      = 20 * time.Second
	defaultHTTPDrainTimeout     = 10 * time.Second
	defaultObservabilityTimeout = 8 * time.Second
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Readiness     *health.ProbeRunner

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime, db *gorm.DB, readiness *health.ProbeRunner) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		DB:                           db,
		Readiness:                    readiness,
		ShutdownTimeout:              orDefault(cfg.ShutdownTimeout, defaultShutdownTimeout),
		ShutdownHTTPDrainTimeout:     orDefault(cfg.ShutdownHTTPDrainTimeout, defaultHTTPDrainTimeout),
		ShutdownObservabilityTimeout: orDefault(cfg.ShutdownObservabilityTimeout, defaultObservabilityTimeout),
	}
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.Info("server starting",
		"addr", ln.Addr().String(),
		"backend", a.Config.CatalogBackend,
		"auth_mode", a.Config.CatalogAuthMode,
	)

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Server.Serve(ln) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	}
	return a.Shutdown(context.Background())
}

// Shutdown drains HTTP first, then flushes telemetry, all within ShutdownTimeout.
func (a *App) Shutdown(ctx context.Context) error {
	totalCtx, cancel := context.WithTimeout(ctx, a.ShutdownTimeout)
	defer cancel()

	var errs []error
	httpCtx, httpCancel := context.WithTimeout(totalCtx, a.ShutdownHTTPDrainTimeout)
	if err := a.Server.Shutdown(httpCtx); err != nil {
		a.Logger.Error("failed to shutdown http server", "error", err)
		errs = append(errs, fmt.Errorf("shutdown http: %w", err))
	}
	httpCancel()

	if a.Observability != nil {
		obsCtx, obsCancel := context.WithTimeout(totalCtx, a.ShutdownObservabilityTimeout)
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			a.Logger.Error("failed to shutdown observability", "error", err)
			errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
		}
		obsCancel()
	}
	a.Logger.Info("server stopped")
	return errors.Join(errs...)
}
