package ioutboxrepo

import (
	"context"
	"time"

	"github.com/Buggy1111/tlacenka/internal/service/models/outbox"
)

// Repository stores notifications that failed to deliver so the outbox
// worker can retry them.
type Repository interface {
	Insert(ctx context.Context, msg outbox.Message) error
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.Message, error)
	Delete(ctx context.Context, id int64) error
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
}
