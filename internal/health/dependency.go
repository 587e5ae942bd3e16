package health

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// DBChecker pings the SQL connection behind the persistent catalog backend.
type DBChecker struct {
	db *gorm.DB
}

// NewDBChecker returns nil for the memory backend, which has no database.
func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	if c.db == nil {
		return unhealthy("db", errors.New("db not configured"))
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy("db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy("db", err)
	}
	return healthy("db")
}

// ProductCounter is the slice of the catalog store the catalog check needs.
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

// CatalogChecker verifies the selected catalog backend answers a query.
// It works for every backend, including the in-memory store.
type CatalogChecker struct {
	store ProductCounter
}

func NewCatalogChecker(store ProductCounter) Checker {
	if store == nil {
		return nil
	}
	return &CatalogChecker{store: store}
}

func (c *CatalogChecker) Check(ctx context.Context) CheckResult {
	if _, err := c.store.Count(ctx); err != nil {
		return unhealthy("catalog", err)
	}
	return healthy("catalog")
}
