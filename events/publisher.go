package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"restaurant-telegram/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "restaurant_events"

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends domain events to the restaurant_events topic exchange.
// Failures are logged; the admin request that caused the event is never failed.
type Publisher struct {
	conn *amqp.Connection
	ch   channel
	log  *slog.Logger

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
}

func Dial(url string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Close()
}

// Event is the JSON body of every published message.
type Event struct {
	Type       string    `json:"type"`
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	ClientID   int64     `json:"client_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func StockStatus(hidden bool) string {
	if hidden {
		return "hidden"
	}
	return "visible"
}

func ConfirmationStatus(confirmed bool) string {
	if confirmed {
		return "confirmed"
	}
	return "pending"
}

// OrderStatusEvent builds the routing key and body for an order status change.
func OrderStatusEvent(o models.Order, now time.Time) (string, Event) {
	return "order.status." + o.Status, Event{
		Type: "order.status", ID: o.ID, Status: o.Status, ClientID: o.ClientID, OccurredAt: now, Data: o,
	}
}

func BookingConfirmationEvent(b models.Booking, now time.Time) (string, Event) {
	status := ConfirmationStatus(b.IsConfirmed)
	return "booking.confirmation." + status, Event{
		Type: "booking.confirmation", ID: b.ID, Status: status, ClientID: b.ClientID, OccurredAt: now, Data: b,
	}
}

func ProductStockEvent(pr models.Product, now time.Time) (string, Event) {
	status := StockStatus(pr.Stock)
	return "product.stock." + status, Event{
		Type: "product.stock", ID: pr.ID, Status: status, OccurredAt: now, Data: pr,
	}
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o models.Order) {
	key, ev := OrderStatusEvent(o, time.Now().UTC())
	p.publish(ctx, key, ev)
}

func (p *Publisher) BookingConfirmationChanged(ctx context.Context, b models.Booking) {
	key, ev := BookingConfirmationEvent(b, time.Now().UTC())
	p.publish(ctx, key, ev)
}

func (p *Publisher) ProductStockChanged(ctx context.Context, pr models.Product) {
	key, ev := ProductStockEvent(pr, time.Now().UTC())
	p.publish(ctx, key, ev)
}

func (p *Publisher) publish(ctx context.Context, key string, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event", "routing_key", key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, Exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    ev.OccurredAt,
		Headers:      amqp.Table{"x-source": "restaurant-admin"},
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish event failed", "routing_key", key, "id", ev.ID, "error", err)
		return
	}
	p.log.Debug("event published", "routing_key", key, "id", ev.ID)
}
