package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/security"

	"github.com/shopspring/decimal"
)

// SampleProducts is the built-in sample catalog used by the memory backend and `seed apply`.
func SampleProducts() []domain.Product {
	item := func(title, desc, image string, cat domain.Category, price int64) domain.Product {
		return domain.Product{
			Title:        title,
			Description:  desc,
			Image:        image,
			Category:     cat,
			Price:        decimal.NewFromInt(price),
			Availability: true,
		}
	}
	const img = "https://images.unsplash.com/photo-%s?q=80&w=800&auto=format&fit=crop"
	return []domain.Product{
		item("Sneakers",
			"Comfortable and stylish canvas sneakers perfect for everyday wear. Features durable construction and cushioned insoles for all-day comfort.",
			fmt.Sprintf(img, "1542291026-7eec264c27ff"), domain.CategoryShoes, 49),
		item("T-Shirt",
			"Classic cotton t-shirt with a comfortable fit. Made from soft, breathable fabric ideal for casual wear. Available in multiple colors.",
			fmt.Sprintf(img, "1541099649105-f69ad21f3246"), domain.CategoryClothing, 13),
		item("Headphones",
			"High-quality over-ear headphones with excellent sound quality and noise isolation. Perfect for music lovers and professionals.",
			fmt.Sprintf(img, "1546435770-a3e426bf472b"), domain.CategoryElectronics, 38),
		item("Smartphone",
			"Latest generation smartphone with advanced camera system, powerful processor, and long-lasting battery. Features a stunning display and premium build quality.",
			fmt.Sprintf(img, "1511707171634-5f897ff02aa9"), domain.CategoryElectronics, 699),
		item("Watch",
			"Elegant minimalist watch with a sleek black design. Features a leather strap and precision movement. Perfect for both casual and formal occasions.",
			fmt.Sprintf(img, "1511385348-a52b4a160dc2"), domain.CategoryAccessories, 149),
		item("Bag",
			"Stylish leather cross-body bag with multiple compartments. Crafted from premium materials with attention to detail. Perfect for daily essentials.",
			fmt.Sprintf(img, "1525966222134-fcfa99b8ae77"), domain.CategoryAccessories, 89),
		item("Jeans",
			"Classic fit jeans made from high-quality denim. Comfortable and durable with a timeless design. Perfect for everyday wear.",
			fmt.Sprintf(img, "1514996937319-344454492b37"), domain.CategoryClothing, 59),
		item("Laptop",
			"Powerful laptop with high-performance specifications. Features a crisp display, fast processor, and ample storage. Ideal for work, gaming, and creative projects.",
			fmt.Sprintf(img, "1517336714731-489689fd1ca8"), domain.CategoryElectronics, 999),
	}
}

type SeedReport struct {
	InsertedProducts int  `json:"inserted_products"`
	ExistingProducts int  `json:"existing_products"`
	Noop             bool `json:"noop"`
}

// SeedSampleProducts inserts SampleProducts only into an empty catalog.
func SeedSampleProducts(ctx context.Context, repo repository.ProductRepository) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	existing, err := repo.Count(ctx)
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
		return nil, err
	}
	report := &SeedReport{ExistingProducts: int(existing)}
	if existing > 0 {
		report.Noop = true
		observability.RecordDatabaseStartupEvent(ctx, "seed", "noop")
		return report, nil
	}
	for _, p := range SampleProducts() {
		if err := repo.Create(ctx, &p); err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
			return nil, fmt.Errorf("seed product %q: %w", p.Title, err)
		}
		report.InsertedProducts++
	}
	observability.RecordDatabaseStartupEvent(ctx, "seed", "success")
	return report, nil
}

// EnsureUser provisions a login account. An existing account with the same
// email is returned untouched with created=false.
func EnsureUser(ctx context.Context, users repository.UserRepository, email, password, name string) (*domain.User, bool, error) {
	normalized := repository.NormalizeEmail(email)
	if normalized == "" {
		return nil, false, errors.New("email is required")
	}
	if password == "" {
		return nil, false, errors.New("password is required")
	}

	existing, err := users.FindByEmail(ctx, normalized)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: normalized, PasswordHash: hash}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		u.Name = &trimmed
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			existing, findErr := users.FindByEmail(ctx, normalized)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}
