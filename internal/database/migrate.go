package database

import (
	"context"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"

	"gorm.io/gorm"
)

func models() []any {
	return []any{&domain.Product{}, &domain.User{}}
}

func Migrate(db *gorm.DB) error {
	ctx := context.Background()
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(models()...); err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(ctx, "migrate", "success")
	return nil
}

type TableStatus struct {
	Table   string `json:"table"`
	Present bool   `json:"present"`
}

// Status reports which managed tables already exist.
func Status(db *gorm.DB) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(models()))
	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out = append(out, TableStatus{
			Table:   stmt.Schema.Table,
			Present: db.Migrator().HasTable(m),
		})
	}
	return out, nil
}
