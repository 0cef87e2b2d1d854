package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/fjod/storefront/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	e := OrderStatusChanged("ord-1", domain.OrderStatusShipped)

	msg, err := buildMessage(e)
	require.NoError(t, err)

	assert.Equal(t, []byte("ord-1"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderStatusChanged, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "ord-1", decoded["order_id"])
	assert.Equal(t, e.ID.String(), decoded["id"])
	assert.Equal(t, map[string]any{"status": "shipped"}, decoded["payload"])
}

func TestOrderPlaced_Payload(t *testing.T) {
	req := domain.OrderRequest{
		Products:      []domain.OrderItemRequest{{Product: "p1", Quantity: 2}},
		Pricing:       domain.Pricing{Subtotal: 200, Shipping: 49, Discount: 100, Total: 149},
		PaymentMethod: domain.PaymentUPI,
	}

	e := OrderPlaced("ord-9", req)

	assert.Equal(t, TypeOrderPlaced, e.Type)
	assert.Equal(t, domain.ID("ord-9"), e.OrderID)
	payload := e.Payload.(map[string]any)
	assert.Equal(t, req.Pricing, payload["pricing"])
	assert.Equal(t, domain.PaymentUPI, payload["payment_method"])
}

func TestKafkaPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	defer func() {
		_ = kafkaContainer.Terminate(ctx)
	}()

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	topic := "storefront-events-test"
	publisher := NewKafkaPublisher(topic, brokers...)
	defer publisher.Close()

	writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	// the first write may fail while the topic is being created
	require.Eventually(t, func() bool {
		return publisher.Publish(writeCtx, OrderStatusChanged("ord-1", domain.OrderStatusDelivered)) == nil
	}, 30*time.Second, time.Second)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
	defer cancelRead()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)

	assert.Equal(t, "ord-1", string(msg.Key))
	assert.Equal(t, TypeOrderStatusChanged, string(msg.Headers[0].Value))
}
