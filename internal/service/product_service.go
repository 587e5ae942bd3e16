package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"

	"github.com/shopspring/decimal"
)

type ListProductsInput struct {
	Search     string
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
}

type CreateProductInput struct {
	Title        string
	Description  string
	Image        string
	Category     string
	Price        *decimal.Decimal
	Availability *bool
}

type UpdateProductInput struct {
	Title        *string
	Description  *string
	Image        *string
	Category     *string
	Price        *decimal.Decimal
	Availability *bool
}

type ProductServiceImpl struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductServiceImpl {
	return &ProductServiceImpl{repo: repo}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "bad_request"
	case errors.Is(err, repository.ErrProductNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func startOperation(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartCatalogSpan(ctx, "product."+op)
	return ctx, func(err error) {
		outcome := outcomeFor(err)
		observability.RecordProductOperation(ctx, op, outcome, time.Since(start))
		observability.EndCatalogSpan(span, outcome, err)
	}
}

func (s *ProductServiceImpl) List(ctx context.Context, input ListProductsInput) (products []domain.Product, err error) {
	ctx, done := startOperation(ctx, "list")
	defer func() { done(err) }()

	sortKey, ok := repository.ParseSortKey(input.SortBy)
	if !ok {
		return nil, ErrInvalidSort
	}
	filter := repository.ProductFilter{
		Search:   strings.TrimSpace(input.Search),
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		SortBy:   sortKey,
	}
	for _, raw := range input.Categories {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		cat, ok := domain.ParseCategory(raw)
		if !ok {
			return nil, ErrProductInvalidCategory
		}
		filter.Categories = append(filter.Categories, cat)
	}

	products, err = s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	observability.RecordProductListResultSize(ctx, string(sortKey), len(products))
	return products, nil
}

func (s *ProductServiceImpl) GetByID(ctx context.Context, id uint) (product *domain.Product, err error) {
	ctx, done := startOperation(ctx, "get")
	defer func() { done(err) }()

	return s.repo.FindByID(ctx, id)
}

// GetRelated returns up to limit other products in the same category, most recent first.
func (s *ProductServiceImpl) GetRelated(ctx context.Context, id uint, limit int) (products []domain.Product, err error) {
	ctx, done := startOperation(ctx, "related")
	defer func() { done(err) }()

	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	source, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByCategory(ctx, source.Category, source.ID, limit)
}

func checkPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return ErrProductInvalidPrice
	}
	if !domain.PriceStorable(p) {
		return ErrProductPriceOutOfRange
	}
	return nil
}

func (s *ProductServiceImpl) Create(ctx context.Context, input CreateProductInput) (product *domain.Product, err error) {
	ctx, done := startOperation(ctx, "create")
	defer func() { done(err) }()

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	image := strings.TrimSpace(input.Image)
	if title == "" || description == "" || image == "" || strings.TrimSpace(input.Category) == "" || input.Price == nil {
		return nil, ErrProductMissingFields
	}
	if err := checkPrice(*input.Price); err != nil {
		return nil, err
	}
	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		return nil, ErrProductInvalidCategory
	}
	availability := true
	if input.Availability != nil {
		availability = *input.Availability
	}

	product = &domain.Product{
		Title:        title,
		Description:  description,
		Image:        image,
		Category:     category,
		Price:        *input.Price,
		Availability: availability,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies only the supplied fields. An empty input still refreshes updatedAt.
func (s *ProductServiceImpl) Update(ctx context.Context, id uint, input UpdateProductInput) (product *domain.Product, err error) {
	ctx, done := startOperation(ctx, "update")
	defer func() { done(err) }()

	var update repository.ProductUpdate
	for _, f := range []struct {
		in  *string
		out **string
	}{
		{input.Title, &update.Title},
		{input.Description, &update.Description},
		{input.Image, &update.Image},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return nil, ErrProductEmptyField
		}
		*f.out = &v
	}
	if input.Category != nil {
		cat, ok := domain.ParseCategory(*input.Category)
		if !ok {
			return nil, ErrProductInvalidCategory
		}
		update.Category = &cat
	}
	if input.Price != nil {
		if err := checkPrice(*input.Price); err != nil {
			return nil, err
		}
		price := *input.Price
		update.Price = &price
	}
	update.Availability = input.Availability

	return s.repo.Update(ctx, id, update)
}

func (s *ProductServiceImpl) DeleteByID(ctx context.Context, id uint) (err error) {
	ctx, done := startOperation(ctx, "delete")
	defer func() { done(err) }()

	return s.repo.DeleteByID(ctx, id)
}
