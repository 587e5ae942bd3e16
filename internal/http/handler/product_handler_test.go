package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/service"
	servicegomock "github.com/sandeepkv93/product-catalog-api/internal/service/gomock"
)

func productRouterForTest(h *ProductHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/related", h.Related)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func decodeErrorForTest(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rr.Body.String())
	}
	return body.Error
}

func TestProductHandlerList(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockProductService(ctrl)
	r := productRouterForTest(NewProductHandler(svc, 4))

	t.Run("parses filters", func(t *testing.T) {
		svc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in service.ListProductsInput) ([]domain.Product, error) {
			if in.Search != "cap" || in.SortBy != "price_asc" {
				t.Fatalf("unexpected search/sort %+v", in)
			}
			if len(in.Categories) != 2 || in.Categories[0] != "Clothing" || in.Categories[1] != "Shoes" {
				t.Fatalf("unexpected categories %v", in.Categories)
			}
			if in.MinPrice == nil || !in.MinPrice.Equal(decimal.RequireFromString("10.5")) || in.MaxPrice != nil {
				t.Fatalf("unexpected bounds %v %v", in.MinPrice, in.MaxPrice)
			}
			return []domain.Product{{ID: 1, Title: "Cap", Price: decimal.NewFromInt(12)}}, nil
		})
		req := httptest.NewRequest(http.MethodGet, "/api/products?search=cap&category=Clothing&category=Shoes&minPrice=10.5&sortBy=price_asc", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
		var body struct {
			Products []map[string]any `json:"products"`
			Total    int              `json:"total"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body.Total != 1 || body.Products[0]["price"] != "12" {
			t.Fatalf("unexpected body %s", rr.Body.String())
		}
	})

	t.Run("empty result is an array", func(t *testing.T) {
		svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		if strings.TrimSpace(rr.Body.String()) != `{"products":[],"total":0}` {
			t.Fatalf("unexpected body %s", rr.Body.String())
		}
	})

	t.Run("malformed price bound rejected before service", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products?maxPrice=cheap", nil))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != "maxPrice must be a number" {
			t.Fatalf("expected 400 for bad maxPrice, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidSort)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products?sortBy=rating", nil))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != service.ErrInvalidSort.Error() {
			t.Fatalf("expected 400 invalid sort, got %d %s", rr.Code, rr.Body.String())
		}
	})
}

func TestProductHandlerGetAndRelated(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockProductService(ctrl)
	r := productRouterForTest(NewProductHandler(svc, 3))

	t.Run("malformed id never reaches service", func(t *testing.T) {
		svc.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/12abc", nil))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != "Invalid product id" {
			t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("missing product is 404", func(t *testing.T) {
		svc.EXPECT().GetByID(gomock.Any(), uint(99)).Return(nil, repository.ErrProductNotFound)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/99", nil))
		if rr.Code != http.StatusNotFound || decodeErrorForTest(t, rr) != "Product not found" {
			t.Fatalf("expected 404, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("related uses default limit", func(t *testing.T) {
		svc.EXPECT().GetRelated(gomock.Any(), uint(5), 3).Return([]domain.Product{{ID: 7}}, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/5/related", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("related explicit limit passes through", func(t *testing.T) {
		svc.EXPECT().GetRelated(gomock.Any(), uint(5), 0).Return(nil, service.ErrInvalidLimit)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/5/related?limit=0", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("related non-numeric limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/5/related?limit=abc", nil))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != service.ErrInvalidLimit.Error() {
			t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
		}
	})
}

func TestProductHandlerWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockProductService(ctrl)
	r := productRouterForTest(NewProductHandler(svc, 4))

	t.Run("create accepts string and number prices", func(t *testing.T) {
		for _, price := range []string{`29.99`, `"29.99"`} {
			svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in service.CreateProductInput) (*domain.Product, error) {
				if in.Price == nil || !in.Price.Equal(decimal.RequireFromString("29.99")) {
					t.Fatalf("unexpected price %v", in.Price)
				}
				return &domain.Product{ID: 9, Title: in.Title, Price: *in.Price}, nil
			})
			body := `{"title":"Cap","description":"d","image":"http://x/y.png","category":"Clothing","price":` + price + `}`
			req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
			}
		}
	})

	t.Run("create validation error", func(t *testing.T) {
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, service.ErrProductMissingFields)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"x"}`)))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != "Missing required fields" {
			t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("create rejects malformed json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":`)))
		if rr.Code != http.StatusBadRequest || decodeErrorForTest(t, rr) != "Invalid request body" {
			t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("update forwards only present fields", func(t *testing.T) {
		svc.EXPECT().Update(gomock.Any(), uint(3), gomock.Any()).DoAndReturn(func(_ context.Context, _ uint, in service.UpdateProductInput) (*domain.Product, error) {
			if in.Title != nil || in.Availability == nil || *in.Availability {
				t.Fatalf("unexpected update input %+v", in)
			}
			return &domain.Product{ID: 3}, nil
		})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/products/3", strings.NewReader(`{"availability":false}`)))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("update missing product", func(t *testing.T) {
		svc.EXPECT().Update(gomock.Any(), uint(404), gomock.Any()).Return(nil, repository.ErrProductNotFound)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/products/404", strings.NewReader(`{}`)))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		svc.EXPECT().DeleteByID(gomock.Any(), uint(3)).Return(nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/products/3", nil))
		var body map[string]string
		_ = json.Unmarshal(rr.Body.Bytes(), &body)
		if rr.Code != http.StatusOK || body["message"] != "Product deleted successfully" {
			t.Fatalf("unexpected delete response %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("delete rejects malformed id", func(t *testing.T) {
		svc.EXPECT().DeleteByID(gomock.Any(), gomock.Any()).Times(0)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/products/-1", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
