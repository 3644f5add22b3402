package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/common/mq"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Event routing keys consumed by the external notification service.
const (
	KeyOrderClaimed    = "order.claimed"
	KeyBookingAccepted = "order.booking_accepted"
	KeyFundsUnlocked   = "wallet.funds_unlocked"
	KeyAlertRaised     = "alert.raised"
)

type OrderClaimedEvent struct {
	OrderID   string    `json:"order_id"`
	GuideID   string    `json:"guide_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type BookingAcceptedEvent struct {
	OrderID   string `json:"order_id"`
	GuideID   string `json:"guide_id"`
	TouristID string `json:"tourist_id"`
}

type FundsUnlockedEvent struct {
	EntryID string  `json:"entry_id"`
	GuideID string  `json:"guide_id"`
	Amount  float64 `json:"amount"`
}

type AlertRaisedEvent struct {
	OrderID       string  `json:"order_id"`
	GuideID       string  `json:"guide_id"`
	ReminderCount int     `json:"reminder_count"`
	TotalPenalty  float64 `json:"total_penalty"`
}

// Notifier publishes domain events to the shared topic exchange.
// Delivery is fire-and-forget: a failed publish is logged by the caller
// and never rolls back the mutation that produced the event.
type Notifier struct {
	rmq      *mq.RabbitMQ
	exchange string
	log      *logrus.Entry
}

func NewNotifier(rmq *mq.RabbitMQ, exchange string, log *logrus.Entry) (*Notifier, error) {
	if err := rmq.Chan.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &Notifier{rmq: rmq, exchange: exchange, log: log}, nil
}

func (n *Notifier) OrderClaimed(ctx context.Context, ev OrderClaimedEvent) error {
	return n.publish(ctx, KeyOrderClaimed, ev)
}

func (n *Notifier) BookingAccepted(ctx context.Context, ev BookingAcceptedEvent) error {
	return n.publish(ctx, KeyBookingAccepted, ev)
}

func (n *Notifier) FundsUnlocked(ctx context.Context, ev FundsUnlockedEvent) error {
	return n.publish(ctx, KeyFundsUnlocked, ev)
}

func (n *Notifier) AlertRaised(ctx context.Context, ev AlertRaisedEvent) error {
	return n.publish(ctx, KeyAlertRaised, ev)
}

func (n *Notifier) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", key, err)
	}

	if err := n.rmq.Chan.PublishWithContext(
		ctx,
		n.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		n.log.WithError(err).WithField("routing_key", key).Error("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	n.log.WithField("routing_key", key).Debug("event published")
	return nil
}
