package kafka_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flywheel/pkg/channels/kafka"
	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func startKafka(t *testing.T) []string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	return brokers
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	brokers := startKafka(t)

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "flywheel-test")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	bus := eventbus.NewWatermillEventBus(pub, sub, logger)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	received := make(chan events.Event, 1)
	require.NoError(t, bus.Handle(events.WorkflowBuiltEvent, func(_ context.Context, event events.Event) error {
		received <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	built := &events.WorkflowBuilt{
		BaseEvent: events.NewBaseEvent(events.WorkflowBuiltEvent),
		Name:      "Kafka round trip",
	}
	require.NoError(t, bus.Publish(ctx, "version-1", built))

	select {
	case event := <-received:
		got, ok := event.(*events.WorkflowBuilt)
		require.True(t, ok)
		assert.Equal(t, built.ID, got.ID)
		assert.Equal(t, "Kafka round trip", got.Name)
	case <-time.After(60 * time.Second):
		t.Fatal("event was not delivered")
	}
}
