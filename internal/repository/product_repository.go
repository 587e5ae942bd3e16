package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
)

//go:generate mockgen -destination=gomock/mock_repository.go -package=gomock . ProductRepository,UserRepository

var ErrProductNotFound = errors.New("product not found")

const (
	backendGorm   = "gorm"
	backendMemory = "memory"
)

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	FindByCategory(ctx context.Context, category domain.Category, excludeID uint, limit int) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uint, update ProductUpdate) (*domain.Product, error)
	DeleteByID(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type GormProductRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db, now: storeNow}
}

// storeNow is UTC truncated to the microsecond precision postgres keeps.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (r *GormProductRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	pushed, residual := filter.splitPredicates(r.db.Dialector.Name())
	for _, pred := range pushed {
		q = q.Where(pred.Query, pred.Args...)
	}
	order := orderFor(filter.SortBy)
	if order.sql != "" {
		q = q.Order(order.sql)
	} else {
		q = q.Order(recencyOrderSQL)
	}
	var products []domain.Product
	if err := q.Find(&products).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "list", "error")
		return nil, err
	}
	if len(residual) > 0 {
		products = slices.DeleteFunc(products, func(p domain.Product) bool {
			for _, pred := range residual {
				if !pred.matches(filter, p) {
					return true
				}
			}
			return false
		})
	}
	if order.sql == "" {
		sortProducts(products, filter.SortBy)
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "list", "success")
	return products, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, backendGorm, "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "find_by_id", "success")
	return &product, nil
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, category domain.Category, excludeID uint, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ?", string(category), excludeID).
		Order(recencyOrderSQL).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "find_by_category", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "find_by_category", "success")
	return products, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := r.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "create", "success")
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, id uint, update ProductUpdate) (*domain.Product, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(update.columns(r.now()))
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "update", "error")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "update", "not_found")
		return nil, ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "update", "success")
	return r.FindByID(ctx, id)
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "delete_by_id", "success")
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, backendGorm, "product", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "product", "count", "success")
	return n, nil
}
