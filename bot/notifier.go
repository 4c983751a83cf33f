package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"restaurant-telegram/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DedupWindow suppresses a repeated kind/id/status message to the same guest.
const DedupWindow = 30 * time.Second

// APITimeout bounds every Bot API call; Send takes no context.
const APITimeout = 10 * time.Second

// Store is what the notifier reads and writes.
type Store interface {
	GetClient(ctx context.Context, id int64) (models.Client, error)
	SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]string) error
	SentNotificationWithin(ctx context.Context, kind string, id int64, status string, window time.Duration) (bool, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier messages guests through the restaurant bot when the staff changes their orders or bookings.
type Notifier struct {
	api   sender
	store Store
	log   *slog.Logger
}

func New(token string, store Store, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: APITimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Info("telegram notifier ready", "bot", api.Self.UserName)
	return &Notifier{api: api, store: store, log: log}, nil
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, o models.Order) {
	text := OrderStatusText(o)
	if text == "" {
		return
	}
	n.notify(ctx, o.ClientID, text, map[string]string{
		"kind":   "order",
		"id":     strconv.FormatInt(o.ID, 10),
		"status": o.Status,
	})
}

func (n *Notifier) BookingConfirmationChanged(ctx context.Context, b models.Booking) {
	n.notify(ctx, b.ClientID, BookingText(b), map[string]string{
		"kind":   "booking",
		"id":     strconv.FormatInt(b.ID, 10),
		"status": BookingStatus(b.IsConfirmed),
	})
}

// ProductStockChanged is not announced to guests.
func (n *Notifier) ProductStockChanged(context.Context, models.Product) {}

func (n *Notifier) notify(ctx context.Context, clientID int64, text string, meta map[string]string) {
	log := n.log.With("kind", meta["kind"], "id", meta["id"], "status", meta["status"], "client_id", clientID)

	client, err := n.store.GetClient(ctx, clientID)
	if err != nil {
		log.Warn("notification skipped: client lookup failed", "error", err)
		return
	}
	if client.IsBlocked {
		log.Info("notification skipped: client is blocked")
		return
	}
	id, _ := strconv.ParseInt(meta["id"], 10, 64)
	sent, err := n.store.SentNotificationWithin(ctx, meta["kind"], id, meta["status"], DedupWindow)
	if err != nil {
		log.Warn("notification dedup check failed", "error", err)
	} else if sent {
		log.Debug("notification skipped: already sent")
		return
	}

	if err := ctx.Err(); err != nil {
		log.Warn("notification dropped", "error", err)
		return
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(client.TelegramID, text)); err != nil {
		log.Error("telegram send failed", "error", err)
		return
	}
	if err := n.store.SaveOutboundMessage(ctx, client.TelegramID, text, meta); err != nil {
		log.Error("failed to record outbound message", "error", err)
	}
}

// BookingStatus names the confirmation state the way messages and events do.
func BookingStatus(confirmed bool) string {
	if confirmed {
		return "confirmed"
	}
	return "pending"
}

func OrderStatusText(o models.Order) string {
	switch o.Status {
	case models.OrderStatusPreparing:
		return fmt.Sprintf("Ваш заказ №%d (стол %d) готовится.", o.ID, o.Table)
	case models.OrderStatusDelivered:
		return fmt.Sprintf("Ваш заказ №%d доставлен. Приятного аппетита!", o.ID)
	case models.OrderStatusCancelled:
		return fmt.Sprintf("Ваш заказ №%d отменен.", o.ID)
	}
	return ""
}

func BookingText(b models.Booking) string {
	when := b.ReservedAt.Local().Format("02.01.2006 в 15:04")
	if b.IsConfirmed {
		return fmt.Sprintf("Ваша бронь на %s подтверждена. Гостей: %d. Ждем вас!", when, b.QuantityGuests)
	}
	return fmt.Sprintf("Ваша бронь на %s ожидает подтверждения.", when)
}
