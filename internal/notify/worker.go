package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/mailer"
	"github.com/openshelf/libris/internal/repo/postgres"
	"github.com/openshelf/libris/pkg/events"
	"github.com/openshelf/libris/pkg/logger"
)

// Worker consumes account and reservation events, records in-app
// notifications and sends email through the configured mailer.
type Worker struct {
	userRepo         postgres.UserRepository
	notificationRepo postgres.NotificationRepository
	mailer           mailer.Service
	bus              events.Subscriber
}

func NewWorker(
	userRepo postgres.UserRepository,
	notificationRepo postgres.NotificationRepository,
	mailer mailer.Service,
	bus events.Subscriber,
) *Worker {
	return &Worker{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		bus:              bus,
	}
}

// Start registers the queue subscriptions. Handlers run on the event bus's
// delivery goroutines; failures are logged and the event is dropped.
func (w *Worker) Start() error {
	const queue = "libris-notify"

	if err := w.bus.QueueSubscribe(events.UserApproved, queue, w.handleUserApproved); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.UserApproved, err)
	}
	if err := w.bus.QueueSubscribe(events.ReservationUpdated, queue, w.handleReservationUpdated); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.ReservationUpdated, err)
	}
	if err := w.bus.QueueSubscribe(events.ReservationCanceled, queue, w.handleReservationCanceled); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.ReservationCanceled, err)
	}

	return nil
}

func (w *Worker) handleUserApproved(msg *events.Message) {
	var evt events.UserApprovedEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("failed to decode user.approved event", "error", err)
		return
	}

	ctx := context.Background()

	w.record(ctx, evt.UserID, "Your account has been approved", domain.NotificationAccountStatus)

	if err := w.mailer.SendAccountApproved(evt.Email, evt.Name); err != nil {
		logger.Error("failed to send approval email", "error", err, "user_id", evt.UserID)
	}
}

func (w *Worker) handleReservationUpdated(msg *events.Message) {
	var evt events.ReservationUpdatedEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("failed to decode reservation.updated event", "error", err)
		return
	}

	ctx := context.Background()

	message := fmt.Sprintf("Your reservation for %q is now %s", evt.BookTitle, evt.Status)
	w.record(ctx, evt.UserID, message, domain.NotificationReservationStatus)
	w.email(ctx, evt.UserID, evt.BookTitle, evt.Status)
}

func (w *Worker) handleReservationCanceled(msg *events.Message) {
	var evt events.ReservationCanceledEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("failed to decode reservation.canceled event", "error", err)
		return
	}

	ctx := context.Background()

	message := fmt.Sprintf("Your reservation for %q has been canceled", evt.BookTitle)
	w.record(ctx, evt.UserID, message, domain.NotificationReservationStatus)
	w.email(ctx, evt.UserID, evt.BookTitle, string(domain.ReservationCanceled))
}

func (w *Worker) record(ctx context.Context, userID int64, message string, kind domain.NotificationType) {
	if _, err := w.notificationRepo.Create(ctx, userID, message, kind); err != nil {
		logger.Error("failed to record notification", "error", err, "user_id", userID)
	}
}

func (w *Worker) email(ctx context.Context, userID int64, bookTitle, status string) {
	user, err := w.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		logger.Error("failed to resolve notification recipient", "error", err, "user_id", userID)
		return
	}

	if err := w.mailer.SendReservationStatus(user.Email, user.Name, bookTitle, status); err != nil {
		logger.Error("failed to send reservation email", "error", err, "user_id", userID)
	}
}
