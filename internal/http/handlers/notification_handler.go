package handlers

import (
	"net/http"

	mw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/internal/http/response"
)

// ListNotifications returns the calling user's notifications.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	identity, _ := mw.IdentityFrom(r)
	limit, offset := parsePagination(r)

	notifications, err := h.notificationService.ListByUser(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.Get(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	identity, _ := mw.IdentityFrom(r)
	if !identity.IsSelf(notification.UserID) {
		response.Forbidden(w, "Forbidden")
		return
	}

	notification, err = h.notificationService.MarkRead(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, notification)
}
