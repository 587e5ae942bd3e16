package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/http/response"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/service"
)

type ProductHandler struct {
	svc                 service.ProductService
	relatedDefaultLimit int
}

func NewProductHandler(svc service.ProductService, relatedDefaultLimit int) *ProductHandler {
	if relatedDefaultLimit < 1 {
		relatedDefaultLimit = 4
	}
	return &ProductHandler{svc: svc, relatedDefaultLimit: relatedDefaultLimit}
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type relatedProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type productWriteRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Image        *string          `json:"image"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Availability *bool            `json:"availability"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parsePriceParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// categoryParams accepts both repeated and comma-separated category values.
func categoryParams(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["category"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	minPrice, err := parsePriceParam(r, "minPrice")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "minPrice must be a number")
		return
	}
	maxPrice, err := parsePriceParam(r, "maxPrice")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "maxPrice must be a number")
		return
	}

	products, err := h.svc.List(r.Context(), service.ListProductsInput{
		Search:     r.URL.Query().Get("search"),
		Categories: categoryParams(r),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     r.URL.Query().Get("sortBy"),
	})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			response.Error(w, r, http.StatusBadRequest, msg)
			return
		}
		response.Internal(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	response.JSON(w, r, http.StatusOK, productListResponse{Products: products, Total: len(products)})
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.svc.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "Product not found")
			return
		}
		response.Internal(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func (h *ProductHandler) Related(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}
	limit := h.relatedDefaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, service.ErrInvalidLimit.Error())
			return
		}
	}

	products, err := h.svc.GetRelated(r.Context(), productID, limit)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		default:
			response.Internal(w, r, err)
		}
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	response.JSON(w, r, http.StatusOK, relatedProductsResponse{Products: products})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body productWriteRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateProductInput{
		Title:        deref(body.Title),
		Description:  deref(body.Description),
		Image:        deref(body.Image),
		Category:     deref(body.Category),
		Price:        body.Price,
		Availability: body.Availability,
	})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			observability.EmitAudit(r, observability.AuditInput{
				EventName:   "product.create",
				ActorUserID: actorID(r),
				TargetType:  "product",
				Action:      "create",
				Outcome:     "rejected",
				Reason:      "validation_failed",
			})
			response.Error(w, r, http.StatusBadRequest, msg)
			return
		}
		response.Internal(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.create",
		ActorUserID: actorID(r),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(created.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "product_created",
	})
	response.JSON(w, r, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}
	var body productWriteRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := h.svc.Update(r.Context(), productID, service.UpdateProductInput{
		Title:        body.Title,
		Description:  body.Description,
		Image:        body.Image,
		Category:     body.Category,
		Price:        body.Price,
		Availability: body.Availability,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			response.Error(w, r, http.StatusBadRequest, err.Error())
		default:
			response.Internal(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.update",
		ActorUserID: actorID(r),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(productID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "product_updated",
	})
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.svc.DeleteByID(r.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "Product not found")
			return
		}
		response.Internal(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "product.delete",
		ActorUserID: actorID(r),
		TargetType:  "product",
		TargetID:    strconv.FormatUint(uint64(productID), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "product_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
