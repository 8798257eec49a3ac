package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/pkg/events"
	"github.com/openshelf/libris/pkg/logger"
)

type ReservationService interface {
	Create(ctx context.Context, userID int64, req *domain.CreateReservationRequest) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, req *domain.UpdateReservationRequest) (*domain.Reservation, error)
	Cancel(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Reservation, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error)
}

type reservationService struct {
	reservationRepo postgres.ReservationRepository
	bookRepo        postgres.BookRepository
	eventBus        events.Publisher
}

func NewReservationService(
	reservationRepo postgres.ReservationRepository,
	bookRepo postgres.BookRepository,
	eventBus events.Publisher,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		eventBus:        eventBus,
	}
}

func (s *reservationService) Create(ctx context.Context, userID int64, req *domain.CreateReservationRequest) (*domain.Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up book: %w", err)
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}

	reservation, err := s.reservationRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.ReservationCreated, events.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		BookID:        reservation.BookID,
		BookTitle:     book.Title,
		StartDate:     reservation.StartDate,
		EndDate:       reservation.EndDate,
		CreatedAt:     reservation.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish reservation.created", "error", err, "reservation_id", reservation.ID)
	}

	return reservation, nil
}

func (s *reservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil {
		return nil, domain.ErrNotFound
	}
	return reservation, nil
}

func (s *reservationService) UpdateStatus(ctx context.Context, id int64, req *domain.UpdateReservationRequest) (*domain.Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	status, _ := domain.ParseReservationStatus(req.Status)

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status == status {
		return current, nil
	}
	if !canTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: cannot move reservation from %s to %s", domain.ErrValidation, current.Status, status)
	}

	reservation, err := s.reservationRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	if reservation == nil {
		return nil, domain.ErrNotFound
	}

	s.publishStatusChange(ctx, reservation)

	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == domain.ReservationCanceled {
		return nil
	}
	if current.IsTerminal() {
		return fmt.Errorf("%w: reservation is already %s", domain.ErrValidation, current.Status)
	}

	reservation, err := s.reservationRepo.UpdateStatus(ctx, id, domain.ReservationCanceled)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if reservation == nil {
		return domain.ErrNotFound
	}

	book, err := s.bookRepo.FindByID(ctx, reservation.BookID)
	title := ""
	if err == nil && book != nil {
		title = book.Title
	}

	if err := s.eventBus.Publish(ctx, events.ReservationCanceled, events.ReservationCanceledEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		BookTitle:     title,
		CanceledAt:    time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish reservation.canceled", "error", err, "reservation_id", reservation.ID)
	}

	return nil
}

func (s *reservationService) List(ctx context.Context, limit, offset int) ([]domain.Reservation, error) {
	reservations, err := s.reservationRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	reservations, err := s.reservationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) publishStatusChange(ctx context.Context, reservation *domain.Reservation) {
	book, err := s.bookRepo.FindByID(ctx, reservation.BookID)
	title := ""
	if err == nil && book != nil {
		title = book.Title
	}

	if err := s.eventBus.Publish(ctx, events.ReservationUpdated, events.ReservationUpdatedEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		BookTitle:     title,
		Status:        string(reservation.Status),
		UpdatedAt:     reservation.UpdatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish reservation.updated", "error", err, "reservation_id", reservation.ID)
	}
}

// canTransition encodes the reservation lifecycle: pending -> approved or
// rejected, approved -> returned, and any non-terminal state -> canceled.
func canTransition(from, to domain.ReservationStatus) bool {
	switch from {
	case domain.ReservationPending:
		return to == domain.ReservationApproved || to == domain.ReservationRejected || to == domain.ReservationCanceled
	case domain.ReservationApproved:
		return to == domain.ReservationReturned || to == domain.ReservationCanceled
	default:
		return false
	}
}
