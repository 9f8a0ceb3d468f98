package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/Buggy1111/tlacenka/internal/dal/interfaces/ioutboxrepo"
	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/models/outbox"
	"github.com/spf13/viper"
)

// notifier delivers a notification and reports whether it was sent.
type notifier interface {
	Notify(ctx context.Context, event order.Event, o order.Order) bool
}

// Worker redelivers notifications that failed at order time. Messages are
// polled from the outbox table and dropped after MaxRetries attempts.
type Worker struct {
	outboxRepo   ioutboxrepo.Repository
	notifier     notifier
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(outboxRepo ioutboxrepo.Repository, n notifier) *Worker {
	pollIntervalSeconds := viper.GetInt("notifications.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 30
	}

	batchSize := viper.GetInt("notifications.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 50
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		notifier:     n,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins redelivering queued notifications.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Redelivering queued notifications", "count", len(messages))

	for _, msg := range messages {
		w.processMessage(ctx, msg)
	}
}

func (w *Worker) processMessage(ctx context.Context, msg outbox.Message) {
	var payload outbox.NotificationPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Error("Dropping undecodable outbox message", "outbox_id", msg.ID, "error", err)
		w.deleteMessage(ctx, msg.ID)

		return
	}

	if w.notifier.Notify(ctx, payload.Event, payload.Order) {
		w.deleteMessage(ctx, msg.ID)
		slog.Info("Notification redelivered", "outbox_id", msg.ID, "event", msg.Event)

		return
	}

	newRetryCount := msg.RetryCount + 1
	if newRetryCount >= msg.MaxRetries {
		slog.Error("Giving up on notification after max retries",
			"outbox_id", msg.ID,
			"event", msg.Event,
			"retries", newRetryCount,
		)
		w.deleteMessage(ctx, msg.ID)

		return
	}

	// Exponential backoff: 60s, 120s, 240s, ...
	backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30
	nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

	slog.Warn("Notification delivery failed again, will retry",
		"outbox_id", msg.ID,
		"retry_count", newRetryCount,
		"next_retry", nextRetryAt,
	)

	if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, "delivery failed", nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}

func (w *Worker) deleteMessage(ctx context.Context, id int64) {
	if err := w.outboxRepo.Delete(ctx, id); err != nil {
		slog.Error("Failed to delete message from outbox", "outbox_id", id, "error", err)
	}
}
