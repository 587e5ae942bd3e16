package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/product-catalog-api/internal/config"

	"go.opentelemetry.io/otel/attribute"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the OTel providers for the process. Nil providers are disabled signals.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
			attribute.String("catalog.backend", cfg.CatalogBackend),
			attribute.String("catalog.auth_mode", cfg.CatalogAuthMode),
		),
		resource.WithHost(),
	)
}

type shutdownFunc struct {
	signal string
	fn     func(context.Context) error
}

// stages returns providers in shutdown order: traces and metrics flush before logs.
func (r *Runtime) stages() []shutdownFunc {
	var out []shutdownFunc
	if r.TracerProvider != nil {
		out = append(out, shutdownFunc{"traces", r.TracerProvider.Shutdown})
	}
	if r.MeterProvider != nil {
		out = append(out, shutdownFunc{"metrics", r.MeterProvider.Shutdown})
	}
	if r.LoggerProvider != nil {
		out = append(out, shutdownFunc{"logs", r.LoggerProvider.Shutdown})
	}
	return out
}

// InitRuntime starts logs, metrics and tracing. A failure shuts down the
// providers that already started.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	var err error
	if rt.LoggerProvider, err = InitLogs(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if rt.MeterProvider, err = InitMetrics(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, rt.Shutdown(ctx))
	}
	if rt.TracerProvider, err = InitTracing(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, rt.Shutdown(ctx))
	}
	return rt, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, s := range r.stages() {
		if err := s.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s provider: %w", s.signal, err))
		}
	}
	return errors.Join(errs...)
}
