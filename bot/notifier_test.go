package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"restaurant-telegram/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type savedMessage struct {
	chatID int64
	meta   map[string]string
}

type fakeStore struct {
	clients map[int64]models.Client
	saved   []savedMessage
}

func (f *fakeStore) GetClient(_ context.Context, id int64) (models.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return c, errors.New("not found")
	}
	return c, nil
}

func (f *fakeStore) SaveOutboundMessage(_ context.Context, chatID int64, _ string, meta map[string]string) error {
	f.saved = append(f.saved, savedMessage{chatID: chatID, meta: meta})
	return nil
}

func (f *fakeStore) SentNotificationWithin(_ context.Context, kind string, id int64, status string, _ time.Duration) (bool, error) {
	for _, s := range f.saved {
		if s.meta["kind"] == kind && s.meta["id"] == strconv.FormatInt(id, 10) && s.meta["status"] == status {
			return true, nil
		}
	}
	return false, nil
}

func newTestNotifier() (*Notifier, *fakeSender, *fakeStore) {
	api := &fakeSender{}
	store := &fakeStore{clients: map[int64]models.Client{
		1: {ID: 1, TelegramID: 5001},
		2: {ID: 2, TelegramID: 5002, IsBlocked: true},
	}}
	return &Notifier{api: api, store: store, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, api, store
}

func TestOrderStatusNotification(t *testing.T) {
	n, api, store := newTestNotifier()
	ctx := context.Background()
	order := models.Order{ID: 7, Table: 3, ClientID: 1, Status: models.OrderStatusDelivered}

	n.OrderStatusChanged(ctx, order)
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages", len(api.sent))
	}
	if api.sent[0].ChatID != 5001 || !strings.Contains(api.sent[0].Text, "№7 доставлен") {
		t.Errorf("message = %+v", api.sent[0])
	}
	if len(store.saved) != 1 || store.saved[0].meta["status"] != "delivered" {
		t.Errorf("saved = %+v", store.saved)
	}

	// Repeated within the window: suppressed.
	n.OrderStatusChanged(ctx, order)
	if len(api.sent) != 1 {
		t.Errorf("duplicate notification sent")
	}

	order.Status = models.OrderStatusCancelled
	n.OrderStatusChanged(ctx, order)
	if len(api.sent) != 2 || !strings.Contains(api.sent[1].Text, "отменен") {
		t.Errorf("status change should be sent: %+v", api.sent)
	}
}

func TestBlockedClientIsNotNotified(t *testing.T) {
	n, api, store := newTestNotifier()
	n.BookingConfirmationChanged(context.Background(), models.Booking{ID: 1, ClientID: 2, IsConfirmed: true})
	if len(api.sent) != 0 || len(store.saved) != 0 {
		t.Errorf("blocked client notified: %+v", api.sent)
	}
}

func TestSendFailureIsNotRecorded(t *testing.T) {
	n, api, store := newTestNotifier()
	api.err = errors.New("forbidden: bot was blocked by the user")
	n.BookingConfirmationChanged(context.Background(), models.Booking{ID: 1, ClientID: 1, IsConfirmed: true})
	if len(store.saved) != 0 {
		t.Error("failed sends must not be recorded")
	}
}

func TestExpiredContextDropsNotification(t *testing.T) {
	n, api, _ := newTestNotifier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.OrderStatusChanged(ctx, models.Order{ID: 3, ClientID: 1, Status: models.OrderStatusDelivered})
	if len(api.sent) != 0 {
		t.Error("message sent after the deadline")
	}
}

func TestUnknownClientIsSkipped(t *testing.T) {
	n, api, _ := newTestNotifier()
	n.OrderStatusChanged(context.Background(), models.Order{ID: 1, ClientID: 99, Status: models.OrderStatusPreparing})
	if len(api.sent) != 0 {
		t.Error("message sent to unknown client")
	}
}

func TestTexts(t *testing.T) {
	if OrderStatusText(models.Order{ID: 1, Status: "odd"}) != "" {
		t.Error("unknown status must produce no text")
	}
	if got := OrderStatusText(models.Order{ID: 4, Table: 2, Status: models.OrderStatusPreparing}); got != "Ваш заказ №4 (стол 2) готовится." {
		t.Errorf("preparing text = %q", got)
	}
	at := time.Date(2026, 3, 8, 19, 30, 0, 0, time.Local)
	if got := BookingText(models.Booking{ReservedAt: at, QuantityGuests: 4, IsConfirmed: true}); got != "Ваша бронь на 08.03.2026 в 19:30 подтверждена. Гостей: 4. Ждем вас!" {
		t.Errorf("confirmed text = %q", got)
	}
	if got := BookingText(models.Booking{ReservedAt: at}); !strings.Contains(got, "ожидает подтверждения") {
		t.Errorf("pending text = %q", got)
	}
	if BookingStatus(true) != "confirmed" || BookingStatus(false) != "pending" {
		t.Error("booking status names")
	}
}
