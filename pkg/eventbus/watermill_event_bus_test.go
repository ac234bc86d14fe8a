package eventbus_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/flywheel/pkg/channels/gochannel"
	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) (eventbus.EventBus, message.Publisher) {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, slog.Default())

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus, pub
}

type received struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *received) handler(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *received) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]events.Event(nil), r.events...)
}

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	got := &received{}
	require.NoError(t, bus.Handle(events.TweetPublishedEvent, got.handler))
	require.NoError(t, bus.Subscribe(ctx))

	published := &events.TweetPublished{
		BaseEvent: events.NewBaseEvent(events.TweetPublishedEvent),
		TweetID:   "1790000000000000001",
		Text:      "Agents are eating SaaS",
	}
	require.NoError(t, bus.Publish(ctx, "publish", published))

	assert.Eventually(t, func() bool {
		return len(got.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	event, ok := got.snapshot()[0].(*events.TweetPublished)
	require.True(t, ok)
	assert.Equal(t, published.ID, event.ID)
	assert.Equal(t, published.TweetID, event.TweetID)
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	got := &received{}
	require.NoError(t, bus.Handle(events.DirectMessageSentEvent, got.handler))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "build", &events.WorkflowBuilt{
		BaseEvent: events.NewBaseEvent(events.WorkflowBuiltEvent),
		Name:      "ignored",
	}))
	require.NoError(t, bus.Publish(ctx, "dm", &events.DirectMessageSent{
		BaseEvent:    events.NewBaseEvent(events.DirectMessageSentEvent),
		RecipientIDs: []string{"12"},
	}))

	assert.Eventually(t, func() bool {
		return len(got.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, events.DirectMessageSentEvent, got.snapshot()[0].GetType())
}

func TestWatermillEventBus_DropsUndecodablePayload(t *testing.T) {
	bus, pub := newBus(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	got := &received{}
	require.NoError(t, bus.Handle(events.WorkflowBuiltEvent, got.handler))
	require.NoError(t, bus.Subscribe(ctx))

	broken := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	broken.Metadata.Set(events.EventTypeMetadataKey, string(events.WorkflowBuiltEvent))
	require.NoError(t, pub.Publish(events.Topic, broken))

	valid, err := json.Marshal(&events.WorkflowBuilt{
		BaseEvent: events.NewBaseEvent(events.WorkflowBuiltEvent),
		Name:      "after broken",
	})
	require.NoError(t, err)

	follow := message.NewMessage(watermill.NewUUID(), valid)
	follow.Metadata.Set(events.EventTypeMetadataKey, string(events.WorkflowBuiltEvent))
	require.NoError(t, pub.Publish(events.Topic, follow))

	assert.Eventually(t, func() bool {
		return len(got.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "after broken", got.snapshot()[0].(*events.WorkflowBuilt).Name)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus, _ := newBus(t)

	assert.NotEmpty(t, bus.GenerateID())
	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}

func TestWatermillEventBus_HandlerSeesKey(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	keys := make(chan string, 1)
	require.NoError(t, bus.Handle(events.ContentGeneratedEvent, func(ctx context.Context, _ events.Event) error {
		keys <- eventbus.KeyFromContext(ctx)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "generate", &events.ContentGenerated{
		BaseEvent: events.NewBaseEvent(events.ContentGeneratedEvent),
		Topic:     "AI agents",
	}))

	select {
	case key := <-keys:
		assert.Equal(t, "generate", key)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}
}

func TestKeyFromContext_Missing(t *testing.T) {
	assert.Empty(t, eventbus.KeyFromContext(context.Background()))
}
