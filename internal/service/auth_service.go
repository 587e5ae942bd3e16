package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/security"
)

type AccessTokenSigner interface {
	SignAccessToken(userID uint, email string, ttl time.Duration) (string, error)
}

type LoginResult struct {
	Token     string            `json:"token"`
	User      domain.PublicUser `json:"user"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens AccessTokenSigner
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens AccessTokenSigner, ttl time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, ttl: ttl, now: time.Now}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnVerify runs a verification against a throwaway hash so unknown emails
// cost roughly the same as wrong passwords.
func burnVerify(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = security.HashPassword("catalog-login-placeholder")
	})
	if dummyHash != "" {
		_, _ = security.VerifyPassword(dummyHash, password)
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidCredentials):
			status = "invalid_credentials"
		case errors.Is(err, ErrValidation):
			status = "bad_request"
		default:
			status = "error"
		}
		observability.RecordAuthLogin(ctx, status)
		observability.RecordAuthRequestDuration(ctx, "login", status, time.Since(start))
	}()

	normalized := repository.NormalizeEmail(email)
	if normalized == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			burnVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify stored credential for user %d: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	issuedAt := s.now().UTC()
	token, err := s.tokens.SignAccessToken(user.ID, user.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &LoginResult{
		Token:     token,
		User:      user.Public(),
		ExpiresAt: issuedAt.Add(s.ttl).Truncate(time.Second),
	}, nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID uint) (*domain.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}
