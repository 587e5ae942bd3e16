package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"
	"github.com/sandeepkv93/product-catalog-api/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-api/internal/http/response"
	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type meResponse struct {
	User domain.PublicUser `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		status = "bad_request"
		return
	}

	result, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			status = "bad_request"
			response.Error(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			status = "failure"
			observability.EmitAudit(r, observability.AuditInput{
				EventName:  "auth.login",
				TargetType: "user",
				Action:     "login",
				Outcome:    "failure",
				Reason:     "invalid_credentials",
			})
			response.Error(w, r, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		default:
			status = "error"
			response.Internal(w, r, err)
		}
		return
	}

	uid := formatUserID(result.User.ID)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: uid,
		TargetType:  "user",
		TargetID:    uid,
		Action:      "login",
		Outcome:     "success",
		Reason:      "credentials_verified",
	})
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "Access token required")
		return
	}
	user, err := h.authSvc.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "User not found")
			return
		}
		response.Internal(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, meResponse{User: *user})
}
