package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user email already exists")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// NormalizeEmail is the stored form of an email address. Both stores apply it
// on every write and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, r.translate(ctx, "find_by_id", err)
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, r.translate(ctx, "find_by_email", err)
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "user", "find_by_email", "success")
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.translate(ctx, "create", err)
	}
	observability.RecordRepositoryOperation(ctx, backendGorm, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) translate(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		observability.RecordRepositoryOperation(ctx, backendGorm, "user", op, "not_found")
		return ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		observability.RecordRepositoryOperation(ctx, backendGorm, "user", op, "conflict")
		return ErrUserEmailExists
	default:
		observability.RecordRepositoryOperation(ctx, backendGorm, "user", op, "error")
		return err
	}
}

type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[uint]domain.User
	byEmail map[string]uint
	nextID  uint
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[uint]domain.User),
		byEmail: make(map[string]uint),
		nextID:  1,
	}
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	r.mu.RLock()
	u, ok := r.users[id]
	r.mu.RUnlock()
	if !ok {
		observability.RecordRepositoryOperation(ctx, backendMemory, "user", "find_by_id", "not_found")
		return nil, ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, backendMemory, "user", "find_by_id", "success")
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		observability.RecordRepositoryOperation(ctx, backendMemory, "user", "find_by_email", "not_found")
		return nil, ErrUserNotFound
	}
	u := r.users[id]
	observability.RecordRepositoryOperation(ctx, backendMemory, "user", "find_by_email", "success")
	return &u, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = NormalizeEmail(user.Email)
	if _, exists := r.byEmail[user.Email]; exists {
		observability.RecordRepositoryOperation(ctx, backendMemory, "user", "create", "conflict")
		return ErrUserEmailExists
	}
	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = storeNow()
	}
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	observability.RecordRepositoryOperation(ctx, backendMemory, "user", "create", "success")
	return nil
}
