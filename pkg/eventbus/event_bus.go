// Package eventbus provides the publish/subscribe plumbing that carries
// flywheel activity events.
package eventbus

import (
	"context"

	"github.com/dukex/flywheel/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event events.Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event events.Event) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

type keyContextKey struct{}

func withKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, keyContextKey{}, key)
}

// KeyFromContext returns the key an event was published under, inside an
// EventHandler.
func KeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(keyContextKey{}).(string)

	return key
}
