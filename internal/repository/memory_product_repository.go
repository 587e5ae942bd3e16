package repository

import (
	"context"
	"sync"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
)

// MemoryProductRepository keeps the catalog in process memory. Every read
// returns copies so callers never alias stored rows.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uint]domain.Product
	nextID   uint
	now      func() time.Time
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]domain.Product),
		nextID:   1,
		now:      storeNow,
	}
}

func (r *MemoryProductRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sortProducts(out, filter.SortBy)
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "list", "success")
	return out, nil
}

func (r *MemoryProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	r.mu.RLock()
	p, ok := r.products[id]
	r.mu.RUnlock()
	if !ok {
		observability.RecordRepositoryOperation(ctx, backendMemory, "product", "find_by_id", "not_found")
		return nil, ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "find_by_id", "success")
	return &p, nil
}

// FindByCategory orders before truncating so the limit keeps the most recent rows.
func (r *MemoryProductRepository) FindByCategory(ctx context.Context, category domain.Category, excludeID uint, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	out := make([]domain.Product, 0)
	for id, p := range r.products {
		if id != excludeID && p.Category == category {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sortProducts(out, SortDefault)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "find_by_category", "success")
	return out, nil
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	product.ID = r.nextID
	r.nextID++
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}
	r.products[product.ID] = *product
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "create", "success")
	return nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, id uint, update ProductUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		observability.RecordRepositoryOperation(ctx, backendMemory, "product", "update", "not_found")
		return nil, ErrProductNotFound
	}
	update.applyTo(&p, r.now())
	r.products[id] = p
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "update", "success")
	return &p, nil
}

func (r *MemoryProductRepository) DeleteByID(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		observability.RecordRepositoryOperation(ctx, backendMemory, "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	delete(r.products, id)
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "delete_by_id", "success")
	return nil
}

func (r *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	observability.RecordRepositoryOperation(ctx, backendMemory, "product", "count", "success")
	return int64(len(r.products)), nil
}
