package integration

import (
	"context"
	"slices"
	"testing"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
)

func TestPostgresMatchesMemoryBackend(t *testing.T) {
	env := newPostgresIntegrationEnv(t)
	ctx := context.Background()

	memory := repository.NewMemoryProductRepository()
	persistent := repository.NewProductRepository(env.db)
	seedFixedCatalog(t, memory)
	seedFixedCatalog(t, persistent)

	filters := map[string]repository.ProductFilter{
		"default":         {},
		"search":          {Search: "SHIRT"},
		"search desc":     {Search: "quality"},
		"category":        {Categories: []domain.Category{domain.CategoryClothing}},
		"multi category":  {Categories: []domain.Category{domain.CategoryElectronics, domain.CategoryAccessories}},
		"price window":    {MinPrice: decPtr("20"), MaxPrice: decPtr("200"), SortBy: repository.SortPriceAsc},
		"price desc":      {SortBy: repository.SortPriceDesc},
		"name asc":        {SortBy: repository.SortNameAsc},
		"name desc":       {SortBy: repository.SortNameDesc},
		"inverted bounds": {MinPrice: decPtr("500"), MaxPrice: decPtr("1")},
		"edge prices":     {MinPrice: decPtr("0.01"), MaxPrice: decPtr("99999999.99"), SortBy: repository.SortPriceDesc},
		"accent search":   {Search: "ÉMILE"},
	}
	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			want, err := memory.List(ctx, filter)
			if err != nil {
				t.Fatalf("memory list: %v", err)
			}
			got, err := persistent.List(ctx, filter)
			if err != nil {
				t.Fatalf("postgres list: %v", err)
			}
			assertSameProducts(t, "postgres vs memory", want, got)
		})
	}

	for _, cat := range domain.Categories {
		want, _ := memory.FindByCategory(ctx, cat, 1, 4)
		got, err := persistent.FindByCategory(ctx, cat, 1, 4)
		if err != nil {
			t.Fatalf("postgres find by category: %v", err)
		}
		if !slices.Equal(productIDs(want), productIDs(got)) {
			t.Fatalf("related mismatch for %s: memory=%v postgres=%v", cat, productIDs(want), productIDs(got))
		}
	}
}

func TestPostgresPriceRoundTripsExactly(t *testing.T) {
	env := newPostgresIntegrationEnv(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(env.db)

	for _, tc := range []struct {
		price     string
		available bool
	}{
		{"19.99", true},
		{"0.01", false},
		{"99999999.99", false},
	} {
		p := &domain.Product{
			Title: "Cap " + tc.price, Description: "d", Image: "http://x/i.png",
			Category: domain.CategoryClothing, Price: *decPtr(tc.price), Availability: tc.available,
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.FindByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !got.Price.Equal(*decPtr(tc.price)) {
			t.Fatalf("expected exact price %s, got %s", tc.price, got.Price)
		}
		if got.Availability != tc.available {
			t.Fatalf("availability=%v stored as %v", tc.available, got.Availability)
		}
	}
}
