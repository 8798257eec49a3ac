package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openshelf/libris/internal/domain"
	mw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/internal/http/response"
)

// ListUsers returns all users (admin only, enforced by the router).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.authService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	infos := make([]*domain.UserInfo, len(users))
	for i := range users {
		infos[i] = users[i].ToUserInfo()
	}

	response.WriteJSON(w, http.StatusOK, infos)
}

// GetUser returns a single user. Callers may read their own record; admins
// may read anyone's.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	identity, _ := mw.IdentityFrom(r)
	if !identity.CanActOn(id) {
		response.Forbidden(w, "Forbidden")
		return
	}

	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// UpdateUser updates a user's own profile. Only name and phone are mutable;
// the target must be the caller, admins included.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	identity, _ := mw.IdentityFrom(r)
	if !identity.IsSelf(id) {
		response.Forbidden(w, "Forbidden")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// ApproveUser transitions a pending account to approved (admin only).
func (h *Handlers) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.authService.Approve(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// PromoteUser grants the admin flag (admin only).
func (h *Handlers) PromoteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.authService.Promote(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// DeleteUser removes a user (admin only).
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
