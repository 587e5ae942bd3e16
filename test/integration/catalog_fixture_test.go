package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/database"
	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
)

const integrationJWTSecret = "integration-secret-0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		CatalogBackend:          config.BackendSQLite,
		DatabaseURL:             fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		DBConnectMaxAttempts:    1,
		DBConnectInitialBackoff: time.Millisecond,
		DBConnectMaxBackoff:     time.Millisecond,
	}
	db, err := database.OpenWithRetry(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// seedFixedCatalog inserts the sample catalog plus edge-priced rows with fixed
// timestamps and mixed availability so results are comparable across stores.
func seedFixedCatalog(t *testing.T, repo repository.ProductRepository) {
	t.Helper()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	products := database.SampleProducts()
	products = append(products,
		domain.Product{
			Title: "Penny Sticker", Description: "Tiny vinyl sticker", Image: "https://example.com/sticker.png",
			Category: domain.CategoryToys, Price: decimal.RequireFromString("0.01"),
		},
		domain.Product{
			Title: "Émile Atlas", Description: "Collector edition atlas", Image: "https://example.com/atlas.png",
			Category: domain.CategoryBooks, Price: decimal.RequireFromString("99999999.99"),
		},
	)
	for i, p := range products {
		p.CreatedAt = base.Add(time.Duration(i/2) * time.Minute)
		p.Availability = i%3 != 1
		if err := repo.Create(context.Background(), &p); err != nil {
			t.Fatalf("seed %s: %v", p.Title, err)
		}
	}
}

// productDiff reports the first client-visible field that differs, or "".
func productDiff(want, got domain.Product) string {
	switch {
	case want.ID != got.ID:
		return fmt.Sprintf("id %d vs %d", want.ID, got.ID)
	case want.Title != got.Title:
		return fmt.Sprintf("title %q vs %q", want.Title, got.Title)
	case !want.Price.Equal(got.Price):
		return fmt.Sprintf("price %s vs %s", want.Price, got.Price)
	case want.Availability != got.Availability:
		return fmt.Sprintf("availability %v vs %v", want.Availability, got.Availability)
	case want.Category != got.Category:
		return fmt.Sprintf("category %s vs %s", want.Category, got.Category)
	}
	return ""
}

func assertSameProducts(t *testing.T, label string, want, got []domain.Product) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: result size mismatch want=%v got=%v", label, productIDs(want), productIDs(got))
	}
	for i := range want {
		if msg := productDiff(want[i], got[i]); msg != "" {
			t.Fatalf("%s: row %d differs: %s", label, i, msg)
		}
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func productIDs(products []domain.Product) []uint {
	out := make([]uint, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
