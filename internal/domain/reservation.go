package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationApproved ReservationStatus = "approved"
	ReservationRejected ReservationStatus = "rejected"
	ReservationReturned ReservationStatus = "returned"
	ReservationCanceled ReservationStatus = "canceled"
)

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(s) {
	case ReservationPending, ReservationApproved, ReservationRejected, ReservationReturned, ReservationCanceled:
		return ReservationStatus(s), true
	default:
		return "", false
	}
}

type Reservation struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user"`
	BookID    int64             `json:"book"`
	StartDate time.Time         `json:"startDate"`
	EndDate   time.Time         `json:"endDate"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// IsTerminal reports whether the reservation can no longer change state.
func (r *Reservation) IsTerminal() bool {
	switch r.Status {
	case ReservationRejected, ReservationReturned, ReservationCanceled:
		return true
	default:
		return false
	}
}

type CreateReservationRequest struct {
	BookID    int64     `json:"book"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type UpdateReservationRequest struct {
	Status string `json:"status"`
}

func (r *CreateReservationRequest) Validate() error {
	if r.BookID == 0 {
		return fmt.Errorf("%w: book is required", ErrValidation)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrValidation)
	}
	if !r.EndDate.After(r.StartDate) {
		return fmt.Errorf("%w: endDate must be after startDate", ErrValidation)
	}
	return nil
}

func (r *UpdateReservationRequest) Validate() error {
	if _, ok := ParseReservationStatus(r.Status); !ok {
		return fmt.Errorf("%w: unknown reservation status %q", ErrValidation, r.Status)
	}
	return nil
}
