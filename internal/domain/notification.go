package domain

import "time"

type NotificationType string

const (
	NotificationReservationStatus NotificationType = "reservation_status"
	NotificationAccountStatus     NotificationType = "account_status"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
