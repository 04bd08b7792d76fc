package handlers

import (
	"net/http"

	"babykicks-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Guest issues a token for the guest sentinel identity.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.LoginGuest(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Login signs in through the identity provider and folds guest history into
// the account's store.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.Login(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logout switches the caller back to the guest identity.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.Logout(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
