package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is one entry in an order's append-only message ledger.
// Events are never updated or deleted.
type NotificationEvent struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"orderId" db:"order_id"`
	Message string    `json:"message" db:"message"`
	SentAt  time.Time `json:"sentAt" db:"sent_at"`
}

// NotifyRequest is the payload for a free-form admin message.
type NotifyRequest struct {
	Message string `json:"message"`
}

// NotifyResponse returns the recorded event. DeliveryWarning is set when the
// outbound channel rejected the message; the event is recorded regardless.
type NotifyResponse struct {
	Event           *NotificationEvent `json:"event"`
	DeliveryWarning string             `json:"delivery_warning,omitempty"`
}
