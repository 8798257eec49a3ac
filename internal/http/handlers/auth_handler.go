package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/http/response"
)

// Register handles self-service registration. The new account starts
// unapproved; the returned token carries identity but approved-only
// endpoints reject it until an admin approves the account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

// Login handles user authentication
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}
