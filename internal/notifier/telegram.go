package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
)

const sendTimeout = 5 * time.Second

// TelegramNotifier delivers order notifications to an operator through the
// Telegram bot API. Delivery is best-effort: failures are logged, never
// propagated, and a missing configuration turns every call into a skip.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramNotifier() *TelegramNotifier {
	return &TelegramNotifier{
		botToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		chatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		client:   &http.Client{Timeout: sendTimeout},
	}
}

// Enabled reports whether notification credentials are configured.
func (n *TelegramNotifier) Enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// Notify formats and sends a message for the event. It returns whether the
// message was actually delivered.
func (n *TelegramNotifier) Notify(ctx context.Context, event order.Event, o order.Order) bool {
	if !n.Enabled() {
		slog.Info("Telegram not configured, skipping notification", "event", event)

		return false
	}

	var message string
	switch event {
	case order.EventOrderCancelled:
		message = formatCancellationNotification(o)
	default:
		message = formatOrderNotification(o)
	}

	if err := n.send(ctx, message); err != nil {
		slog.Error("Failed to send Telegram notification", "event", event, "order_id", o.ID, "error", err)

		return false
	}

	slog.Info("Telegram notification sent", "event", event, "order_id", o.ID)

	return true
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	body, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram responded with status %s", resp.Status)
	}

	return nil
}

func formatOrderNotification(o order.Order) string {
	emoji := "📦"
	if o.PackageSize == order.PackageSize2Kg {
		emoji = "📦📦"
	}

	return fmt.Sprintf(`🥩 <b>Nová objednávka!</b>

👤 <b>%s %s</b>
%s <b>%s tlačenka</b>
💰 <b>%s Kč</b>
🔢 Objednávka č. <b>%d</b>

🕐 %s`,
		o.CustomerName,
		o.CustomerSurname,
		emoji,
		o.PackageSize,
		o.TotalPrice,
		o.OrderNumber,
		o.CreatedAt.Format("2.1.2006 15:04"),
	)
}

func formatCancellationNotification(o order.Order) string {
	return fmt.Sprintf(`❌ <b>Objednávka zrušena</b>

👤 <b>%s %s</b>
📦 <b>%s tlačenka</b>
💰 <b>%s Kč</b>
🔢 Objednávka č. <b>%d</b>`,
		o.CustomerName,
		o.CustomerSurname,
		o.PackageSize,
		o.TotalPrice,
		o.OrderNumber,
	)
}
