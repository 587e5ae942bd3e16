package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sandeepkv93/product-catalog-api/internal/http/response"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

type AccessTokenParser interface {
	ParseAccessToken(raw string) (*security.Claims, error)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// AuthMiddleware requires a valid bearer token: a missing token is 401, a
// token that fails verification is 403.
func AuthMiddleware(tokens AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "header")
				response.Error(w, r, http.StatusUnauthorized, "Access token required")
				return
			}
			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid", "header")
				response.Error(w, r, http.StatusForbidden, "Invalid or expired token")
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid", "header")
			AddRequestLogAttrs(r.Context(), slog.Uint64("user_id", uint64(claims.UserID)))
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthFor applies AuthMiddleware only to the listed methods.
func RequireAuthFor(tokens AccessTokenParser, methods ...string) func(http.Handler) http.Handler {
	guarded := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		guarded[strings.ToUpper(m)] = struct{}{}
	}
	auth := AuthMiddleware(tokens)
	return func(next http.Handler) http.Handler {
		protected := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := guarded[r.Method]; ok {
				protected.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
