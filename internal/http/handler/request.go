package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/product-catalog-api/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-api/internal/http/response"
	"github.com/sandeepkv93/product-catalog-api/internal/service"
)

var errInvalidPathID = errors.New("invalid path id")

func parsePathID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidPathID
	}
	return uint(id), nil
}

// productIDParam reads the {id} route parameter and tags the access log with it.
func productIDParam(r *http.Request) (uint, error) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, err
	}
	middleware.AddRequestLogAttrs(r.Context(), slog.Uint64("product_id", uint64(id)))
	return id, nil
}

// decodeJSON writes the 4xx response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.Error(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		response.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// validationMessage returns the client-facing message when err is a validation failure.
func validationMessage(err error) (string, bool) {
	if !errors.Is(err, service.ErrValidation) {
		return "", false
	}
	return err.Error(), true
}

func actorID(r *http.Request) string {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return formatUserID(claims.UserID)
}

func formatUserID(id uint) string { return strconv.FormatUint(uint64(id), 10) }
