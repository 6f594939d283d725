package handler

import (
	"errors"
	"net/http"

	"github.com/eventhub/eventhub-go/internal/middleware"
	"github.com/eventhub/eventhub-go/internal/model"
	"github.com/eventhub/eventhub-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/v1/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Access Denied"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), id.UserID())
	if err != nil {
		// the account behind a still-valid token was removed
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse(err.Error()))
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
