//go:build e2e

package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"mentor-booking/internal/infra/events"
	"mentor-booking/internal/usecase/shared"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRabbit(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestRabbitPublisher_RoutesByEventType(t *testing.T) {
	url := startRabbit(t)

	var pub *events.RabbitPublisher
	require.Eventually(t, func() bool {
		var err error
		pub, err = events.NewRabbitPublisher(url, "booking.exchange")
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	defer pub.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "booking.confirmed", "booking.exchange", false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	ctx := context.Background()
	failed := shared.BookingEvent{Type: shared.EventBookingPaymentFailed, BookingID: uuid.New()}
	confirmed := shared.BookingEvent{
		Type:          shared.EventBookingConfirmed,
		BookingID:     uuid.New(),
		OrderID:       "MB261016101500ABC123",
		PaymentStatus: "paid",
		BookingStatus: "confirmed",
		AmountCents:   150000,
		Currency:      "INR",
		OccurredAt:    time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(ctx, failed))
	require.NoError(t, pub.Publish(ctx, confirmed))

	select {
	case d := <-deliveries:
		assert.Equal(t, "booking.confirmed", d.RoutingKey)
		assert.Equal(t, "application/json", d.ContentType)
		var got shared.BookingEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, confirmed.BookingID, got.BookingID)
		assert.Equal(t, confirmed.OrderID, got.OrderID)
	case <-time.After(10 * time.Second):
		t.Fatal("no delivery for booking.confirmed")
	}

	select {
	case d := <-deliveries:
		t.Fatalf("unexpected delivery with key %s", d.RoutingKey)
	case <-time.After(300 * time.Millisecond):
	}
}
