package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/libris/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, userID int64, message string, kind domain.NotificationType) (*domain.Notification, error)
	FindByID(ctx context.Context, id int64) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationCols = `id, user_id, message, type, is_read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, userID int64, message string, kind domain.NotificationType) (*domain.Notification, error) {
	const q = `
		INSERT INTO notifications (user_id, message, type, is_read)
		VALUES ($1, $2, $3, false)
		RETURNING ` + notificationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanNotification(r.pool.QueryRow(ctx, q, userID, message, kind))
}

func (r *notificationRepository) FindByID(ctx context.Context, id int64) (*domain.Notification, error) {
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanNotification(r.pool.QueryRow(ctx, q, id))
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	const q = `
		UPDATE notifications SET is_read = true
		WHERE id = $1
		RETURNING ` + notificationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanNotification(r.pool.QueryRow(ctx, q, id))
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	const q = `
		SELECT ` + notificationCols + `
		FROM notifications
		WHERE user_id = $3
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, clampLimit(limit), clampOffset(offset), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
