// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"food-ordering-api/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body written for every order event.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    uint               `json:"order_id"`
	UserID     uint               `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	FromStatus models.OrderStatus `json:"from_status,omitempty"`
	Total      decimal.Decimal    `json:"total"`
	ActorID    uint               `json:"actor_id,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Placed builds the event emitted after a successful checkout.
func Placed(order *models.Order) OrderEvent {
	return OrderEvent{
		Type:       TypeOrderPlaced,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

// StatusChanged builds the event emitted after a status update.
func StatusChanged(order *models.Order, from models.OrderStatus, actorID uint) OrderEvent {
	return OrderEvent{
		Type:       TypeOrderStatusChanged,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		FromStatus: from,
		Total:      order.TotalPrice,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// KafkaPublisher writes events keyed by order id so one order's events stay ordered.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
