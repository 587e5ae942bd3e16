package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedBackend = errors.New("backend has no relational store")

// nowUTC matches the microsecond precision postgres keeps for timestamps.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.CatalogBackend {
	case config.BackendPostgres:
		return postgres.Open(cfg.DatabaseURL), nil
	case config.BackendSQLite:
		return sqlite.Open(cfg.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.CatalogBackend)
	}
}

func Open(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        nowUTC,
	})
}

var openFunc = Open

// OpenWithRetry connects with bounded exponential backoff and returns a pinged
// handle. Configuration errors are not retried.
func OpenWithRetry(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "connect", time.Since(start))
	}()

	if _, err := dialector(cfg); err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "connect", "error")
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.DBConnectInitialBackoff
	b.MaxInterval = cfg.DBConnectMaxBackoff

	attempt := 0
	db, err := backoff.Retry(ctx, func() (*gorm.DB, error) {
		attempt++
		db, err := openFunc(cfg)
		if err != nil {
			observability.RecordDatabaseConnectAttempt(ctx, "error")
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			observability.RecordDatabaseConnectAttempt(ctx, "error")
			return nil, backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			observability.RecordDatabaseConnectAttempt(ctx, "error")
			return nil, err
		}
		observability.RecordDatabaseConnectAttempt(ctx, "success")
		return db, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(cfg.DBConnectMaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("database connect failed, retrying", "attempt", attempt, "next_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "connect", "error")
		return nil, fmt.Errorf("connect %s after %d attempts: %w", cfg.CatalogBackend, attempt, err)
	}
	observability.RecordDatabaseStartupEvent(ctx, "connect", "success")
	log.Info("database connected", "backend", cfg.CatalogBackend, "attempts", attempt)
	return db, nil
}
