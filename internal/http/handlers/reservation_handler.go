package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openshelf/libris/internal/domain"
	mw "github.com/openshelf/libris/internal/http/middleware"
	"github.com/openshelf/libris/internal/http/response"
)

// CreateReservation places a reservation for the calling user.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	identity, _ := mw.IdentityFrom(r)

	var req domain.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Reservation created successfully",
		"reservation": reservation,
	})
}

// ListReservations returns every reservation (admin only).
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	reservations, err := h.reservationService.List(r.Context(), limit, offset)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, reservations)
}

// ListMyReservations returns the calling user's reservations.
func (h *Handlers) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	identity, _ := mw.IdentityFrom(r)
	limit, offset := parsePagination(r)

	reservations, err := h.reservationService.ListByUser(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, reservations)
}

// GetReservation returns one reservation, visible to its owner and admins.
func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	identity, _ := mw.IdentityFrom(r)
	if !identity.CanActOn(reservation.UserID) {
		response.Forbidden(w, "Forbidden")
		return
	}

	response.WriteJSON(w, http.StatusOK, reservation)
}

// UpdateReservation changes a reservation's status (admin only).
func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	var req domain.UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	reservation, err := h.reservationService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, reservation)
}

// CancelReservation cancels a reservation. Owners and admins only.
func (h *Handlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	identity, _ := mw.IdentityFrom(r)
	if !identity.CanActOn(reservation.UserID) {
		response.Forbidden(w, "Forbidden")
		return
	}

	if err := h.reservationService.Cancel(r.Context(), id); err != nil {
		response.WriteDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
