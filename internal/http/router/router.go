package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/health"
	"github.com/sandeepkv93/product-catalog-api/internal/http/handler"
	"github.com/sandeepkv93/product-catalog-api/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-api/internal/http/response"
)

const maxBodyBytes = 1 << 20

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	ProductHandler *handler.ProductHandler
	Tokens         middleware.AccessTokenParser
	AuthMode       string
	CORSOrigins    []string
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

// productGuard returns the middleware applied to every product route for the
// configured auth mode.
func productGuard(mode string, tokens middleware.AccessTokenParser) func(http.Handler) http.Handler {
	switch mode {
	case config.AuthModeNone:
		return func(next http.Handler) http.Handler { return next }
	case config.AuthModeAll:
		return middleware.AuthMiddleware(tokens)
	default:
		return middleware.RequireAuthFor(tokens, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok", "message": "Server is running"})
	})
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"status": "unready",
			"error":  "Dependencies are not ready",
			"checks": results,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", dep.AuthHandler.Login)
			r.With(middleware.AuthMiddleware(dep.Tokens)).Get("/me", dep.AuthHandler.Me)
		})
		r.Route("/products", func(r chi.Router) {
			r.Use(productGuard(dep.AuthMode, dep.Tokens))
			r.Get("/", dep.ProductHandler.List)
			r.Post("/", dep.ProductHandler.Create)
			r.Get("/{id}", dep.ProductHandler.GetByID)
			r.Get("/{id}/related", dep.ProductHandler.Related)
			r.Put("/{id}", dep.ProductHandler.Update)
			r.Delete("/{id}", dep.ProductHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
