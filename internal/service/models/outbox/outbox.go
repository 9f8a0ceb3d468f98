package outbox

import (
	"time"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
)

// Message represents a notification that failed to be delivered and is
// waiting for a retry.
type Message struct {
	ID          int64
	Event       string
	Payload     []byte
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}

// NotificationPayload is the serialized body of an outbox message. It carries
// everything needed to rebuild the notification on retry.
type NotificationPayload struct {
	Event order.Event `json:"event"`
	Order order.Order `json:"order"`
}
