package service

import (
	"context"
	"fmt"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/internal/repo/postgres"
)

type NotificationService interface {
	Get(ctx context.Context, id int64) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
}

type notificationService struct {
	notificationRepo postgres.NotificationRepository
}

func NewNotificationService(notificationRepo postgres.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	notification, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if notification == nil {
		return nil, domain.ErrNotFound
	}
	return notification, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	notification, err := s.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if notification == nil {
		return nil, domain.ErrNotFound
	}
	return notification, nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
