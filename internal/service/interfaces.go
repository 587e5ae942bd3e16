package service

import (
	"context"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=gomock/mock_service.go -package=gomock

type ProductService interface {
	List(ctx context.Context, input ListProductsInput) ([]domain.Product, error)
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	GetRelated(ctx context.Context, id uint, limit int) ([]domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uint, input UpdateProductInput) (*domain.Product, error)
	DeleteByID(ctx context.Context, id uint) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context, userID uint) (*domain.PublicUser, error)
}
