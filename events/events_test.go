package events

import (
	"context"
	"encoding/json"
	"testing"

	"food-ordering-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBuilders(t *testing.T) {
	order := &models.Order{
		ID:         7,
		UserID:     3,
		Status:     models.StatusPreparing,
		TotalPrice: decimal.RequireFromString("19.98"),
	}

	placed := Placed(order)
	assert.Equal(t, TypeOrderPlaced, placed.Type)
	assert.Equal(t, uint(7), placed.OrderID)
	assert.Empty(t, placed.FromStatus)
	assert.False(t, placed.OccurredAt.IsZero())

	changed := StatusChanged(order, models.StatusPending, 9)
	assert.Equal(t, TypeOrderStatusChanged, changed.Type)
	assert.Equal(t, models.StatusPending, changed.FromStatus)
	assert.Equal(t, uint(9), changed.ActorID)

	raw, err := json.Marshal(changed)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "order.status_changed", body["type"])
	assert.Equal(t, "19.98", body["total"])
	assert.Equal(t, "Pending", body["from_status"])
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "orders")
	assert.Equal(t, "orders", p.Writer.Topic)
	assert.True(t, p.Writer.AllowAutoTopicCreation)
	require.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{Type: TypeOrderPlaced}))
}
