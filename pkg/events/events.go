package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/openshelf/libris/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	UserApproved        = "user.approved"
	ReservationCreated  = "reservation.created"
	ReservationUpdated  = "reservation.updated"
	ReservationCanceled = "reservation.canceled"
)

type UserApprovedEvent struct {
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ApprovedAt time.Time `json:"approved_at"`
}

type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	BookID        int64     `json:"book_id"`
	BookTitle     string    `json:"book_title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReservationUpdatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	BookTitle     string    `json:"book_title"`
	Status        string    `json:"status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ReservationCanceledEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	BookTitle     string    `json:"book_title"`
	CanceledAt    time.Time `json:"canceled_at"`
}
