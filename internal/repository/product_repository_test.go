package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"

	"github.com/shopspring/decimal"
)

type productRepoFactory struct {
	name string
	make func(t *testing.T) ProductRepository
}

func productRepoFactories() []productRepoFactory {
	return []productRepoFactory{
		{name: "memory", make: func(t *testing.T) ProductRepository { return NewMemoryProductRepository() }},
		{name: "gorm_sqlite", make: func(t *testing.T) ProductRepository { return NewProductRepository(newRepositoryDBForTest(t)) }},
	}
}

func TestProductRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	for _, f := range productRepoFactories() {
		t.Run(f.name, func(t *testing.T) {
			repo := f.make(t)

			created := make([]*domain.Product, 0, 3)
			for i := 0; i < 3; i++ {
				p := &domain.Product{
					Title:        fmt.Sprintf("Product %c", 'A'+i),
					Description:  "desc",
					Image:        "https://example.com/p.png",
					Category:     domain.CategoryBooks,
					Price:        decimal.NewFromInt(int64(10 + i)),
					Availability: true,
				}
				if err := repo.Create(ctx, p); err != nil {
					t.Fatalf("create product %d: %v", i, err)
				}
				if p.ID == 0 || p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
					t.Fatalf("expected id and timestamps assigned, got %+v", p)
				}
				created = append(created, p)
			}
			if created[0].ID == created[1].ID || created[1].ID == created[2].ID {
				t.Fatalf("expected unique ids, got %d %d %d", created[0].ID, created[1].ID, created[2].ID)
			}

			loaded, err := repo.FindByID(ctx, created[0].ID)
			if err != nil {
				t.Fatalf("find by id: %v", err)
			}
			if loaded.Title != created[0].Title || !loaded.Price.Equal(created[0].Price) || loaded.Category != domain.CategoryBooks {
				t.Fatalf("loaded product mismatch: got %+v want %+v", loaded, created[0])
			}

			title := "Renamed"
			price := decimal.RequireFromString("99.5")
			updated, err := repo.Update(ctx, created[0].ID, ProductUpdate{Title: &title, Price: &price})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Title != "Renamed" || !updated.Price.Equal(price) || updated.Description != "desc" {
				t.Fatalf("unexpected updated product: %+v", updated)
			}
			if updated.UpdatedAt.Before(created[0].UpdatedAt) {
				t.Fatalf("expected updatedAt to move forward: before=%s after=%s", created[0].UpdatedAt, updated.UpdatedAt)
			}

			touched, err := repo.Update(ctx, created[1].ID, ProductUpdate{})
			if err != nil {
				t.Fatalf("empty update: %v", err)
			}
			if touched.Title != created[1].Title {
				t.Fatalf("empty update changed fields: %+v", touched)
			}

			if err := repo.DeleteByID(ctx, created[1].ID); err != nil {
				t.Fatalf("delete by id: %v", err)
			}
			if _, err := repo.FindByID(ctx, created[1].ID); !errors.Is(err, ErrProductNotFound) {
				t.Fatalf("expected not found after delete, got %v", err)
			}
			n, err := repo.Count(ctx)
			if err != nil || n != 2 {
				t.Fatalf("expected count 2, got %d err=%v", n, err)
			}
		})
	}
}

func TestProductRepositoryNotFoundCases(t *testing.T) {
	ctx := context.Background()
	for _, f := range productRepoFactories() {
		t.Run(f.name, func(t *testing.T) {
			repo := f.make(t)
			if _, err := repo.FindByID(ctx, 999); !errors.Is(err, ErrProductNotFound) {
				t.Fatalf("expected ErrProductNotFound, got %v", err)
			}
			title := "x"
			if _, err := repo.Update(ctx, 999, ProductUpdate{Title: &title}); !errors.Is(err, ErrProductNotFound) {
				t.Fatalf("expected ErrProductNotFound on update, got %v", err)
			}
			if err := repo.DeleteByID(ctx, 999); !errors.Is(err, ErrProductNotFound) {
				t.Fatalf("expected ErrProductNotFound on delete, got %v", err)
			}
		})
	}
}

func TestMemoryProductRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	p := &domain.Product{Title: "Watch", Description: "d", Image: "i", Category: domain.CategoryAccessories, Price: decimal.NewFromInt(149)}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	p.Title = "mutated after create"
	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Title = "mutated after read"
	again, _ := repo.FindByID(ctx, p.ID)
	if again.Title != "Watch" {
		t.Fatalf("expected stored copy to be isolated, got %q", again.Title)
	}
}

// seedParityCatalog inserts the same rows, with fixed timestamps, into repo.
func seedParityCatalog(t *testing.T, repo ProductRepository) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []struct {
		title, desc string
		cat         domain.Category
		price       string
		offset      time.Duration
		available   bool
	}{
		{"Sneakers", "Comfortable running shoes", domain.CategoryShoes, "49", 0, true},
		{"T-Shirt", "Cotton tee", domain.CategoryClothing, "12.99", time.Minute, false},
		{"headphones", "Noise cancelling audio", domain.CategoryElectronics, "38", 2 * time.Minute, true},
		{"Smartphone", "Flagship phone with great audio", domain.CategoryElectronics, "699", 3 * time.Minute, true},
		{"Watch", "Classic wrist watch", domain.CategoryAccessories, "149", 3 * time.Minute, false},
		{"Bag", "Leather bag, 100% hand made", domain.CategoryAccessories, "89.5", 4 * time.Minute, true},
		{"Jeans", "Denim jeans", domain.CategoryClothing, "49", 5 * time.Minute, true},
		{"Laptop", "Thin and light", domain.CategoryElectronics, "999.99", 6 * time.Minute, false},
		{"Émile Novel", "A book", domain.CategoryBooks, "13", 6 * time.Minute, true},
		{"Rare Atlas", "Collector edition", domain.CategoryBooks, "99999999.99", 7 * time.Minute, false},
		{"Sticker", "Tiny vinyl sticker", domain.CategoryToys, "0.01", 8 * time.Minute, true},
	}
	for _, row := range rows {
		p := &domain.Product{
			Title:        row.title,
			Description:  row.desc,
			Image:        "https://example.com/" + row.title + ".png",
			Category:     row.cat,
			Price:        decimal.RequireFromString(row.price),
			Availability: row.available,
			CreatedAt:    base.Add(row.offset),
		}
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed %s: %v", row.title, err)
		}
	}
}

func parityFilters() map[string]ProductFilter {
	return map[string]ProductFilter{
		"default":              {},
		"search title":         {Search: "PHONE"},
		"search description":   {Search: "audio"},
		"search literal pct":   {Search: "100%"},
		"single category":      {Categories: []domain.Category{domain.CategoryElectronics}},
		"multi category":       {Categories: []domain.Category{domain.CategoryClothing, domain.CategoryShoes}},
		"min price":            {MinPrice: decPtr("49")},
		"max price":            {MaxPrice: decPtr("49")},
		"price window":         {MinPrice: decPtr("13"), MaxPrice: decPtr("149"), SortBy: SortPriceAsc},
		"price desc":           {SortBy: SortPriceDesc},
		"name asc":             {SortBy: SortNameAsc},
		"name desc":            {SortBy: SortNameDesc},
		"combined":             {Search: "e", Categories: []domain.Category{domain.CategoryElectronics, domain.CategoryClothing}, MaxPrice: decPtr("700"), SortBy: SortNameAsc},
		"empty result":         {Search: "nothing matches this"},
		"inverted price range": {MinPrice: decPtr("500"), MaxPrice: decPtr("10")},
		"edge prices":          {MinPrice: decPtr("0.01"), MaxPrice: decPtr("99999999.99"), SortBy: SortPriceDesc},
		"sub-dollar only":      {MaxPrice: decPtr("0.99")},
		"search accent":        {Search: "émile"},
		"search upper accent":  {Search: "ÉMILE"},
	}
}

func TestProductRepositoryBackendParity(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryProductRepository()
	persistent := NewProductRepository(newRepositoryDBForTest(t))
	seedParityCatalog(t, memory)
	seedParityCatalog(t, persistent)

	for name, filter := range parityFilters() {
		t.Run(name, func(t *testing.T) {
			want, err := memory.List(ctx, filter)
			if err != nil {
				t.Fatalf("memory list: %v", err)
			}
			got, err := persistent.List(ctx, filter)
			if err != nil {
				t.Fatalf("gorm list: %v", err)
			}
			if !slices.Equal(ids(want), ids(got)) {
				t.Fatalf("backend order mismatch: memory=%v gorm=%v", ids(want), ids(got))
			}
			for i := range want {
				if msg := diffProduct(want[i], got[i]); msg != "" {
					t.Fatalf("product %d differs between backends: %s", want[i].ID, msg)
				}
			}
		})
	}

	for _, cat := range []domain.Category{domain.CategoryElectronics, domain.CategoryAccessories, domain.CategoryToys} {
		want, _ := memory.FindByCategory(ctx, cat, 3, 2)
		got, err := persistent.FindByCategory(ctx, cat, 3, 2)
		if err != nil {
			t.Fatalf("gorm find by category: %v", err)
		}
		if !slices.Equal(ids(want), ids(got)) {
			t.Fatalf("related mismatch for %s: memory=%v gorm=%v", cat, ids(want), ids(got))
		}
	}
}

// diffProduct compares the client-visible fields the parity suites care about.
func diffProduct(want, got domain.Product) string {
	switch {
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

func TestProductRepositoryStoresFieldsExactly(t *testing.T) {
	ctx := context.Background()
	for _, f := range productRepoFactories() {
		t.Run(f.name, func(t *testing.T) {
			repo := f.make(t)
			for _, tc := range []struct {
				price     string
				available bool
			}{
				{"0.01", false},
				{"12.30", true},
				{"99999999.99", false},
			} {
				p := &domain.Product{
					Title:        "Item " + tc.price,
					Description:  "d",
					Image:        "i",
					Category:     domain.CategoryToys,
					Price:        decimal.RequireFromString(tc.price),
					Availability: tc.available,
				}
				if err := repo.Create(ctx, p); err != nil {
					t.Fatalf("create: %v", err)
				}
				got, err := repo.FindByID(ctx, p.ID)
				if err != nil {
					t.Fatalf("find: %v", err)
				}
				if got.Availability != tc.available {
					t.Fatalf("availability=%v stored as %v", tc.available, got.Availability)
				}
				if !got.Price.Equal(p.Price) {
					t.Fatalf("price %s stored as %s", p.Price, got.Price)
				}
			}

			unavailable := false
			p := &domain.Product{Title: "Toggle", Description: "d", Image: "i", Category: domain.CategoryToys, Price: decimal.NewFromInt(5), Availability: true}
			if err := repo.Create(ctx, p); err != nil {
				t.Fatalf("create: %v", err)
			}
			updated, err := repo.Update(ctx, p.ID, ProductUpdate{Availability: &unavailable})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			reloaded, _ := repo.FindByID(ctx, p.ID)
			if updated.Availability || reloaded.Availability {
				t.Fatalf("expected availability=false after update, got %v/%v", updated.Availability, reloaded.Availability)
			}
		})
	}
}

func TestSQLiteNonASCIISearchMatchesMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newRepositoryDBForTest(t))
	seedParityCatalog(t, repo)

	for _, needle := range []string{"émile", "ÉMILE", "É"} {
		got, err := repo.List(ctx, ProductFilter{Search: needle})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if !slices.Equal(ids(got), []uint{9}) {
			t.Fatalf("search %q: expected [9], got %v", needle, ids(got))
		}
	}
}

func TestFindByCategoryLimitsAfterOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	seedParityCatalog(t, repo)

	got, err := repo.FindByCategory(ctx, domain.CategoryElectronics, 0, 2)
	if err != nil {
		t.Fatalf("find by category: %v", err)
	}
	// Electronics in insertion order: headphones(3), Smartphone(4), Laptop(8).
	if !slices.Equal(ids(got), []uint{8, 4}) {
		t.Fatalf("expected most recent two electronics, got %v", ids(got))
	}
	excluded, _ := repo.FindByCategory(ctx, domain.CategoryElectronics, 8, 10)
	if slices.Contains(ids(excluded), 8) {
		t.Fatalf("expected excluded id to be absent, got %v", ids(excluded))
	}
}
