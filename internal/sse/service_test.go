// Connection registry tests in Chalkboard.

package sse

import (
	"Chalkboard/internal/entity"
	"Chalkboard/pkg/log"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// nopRepository stands in for the redis mirror, registry tests must not need a live DB.
type nopRepository struct{}

func (nopRepository) AddClient(ctx context.Context, logger log.Logger, clientID string) error {
	return nil
}
func (nopRepository) RemoveClient(ctx context.Context, logger log.Logger, clientID string) error {
	return nil
}
func (nopRepository) Clear(ctx context.Context, logger log.Logger) error {
	return nil
}

// Global instance of log.Logger to be used during registry testing.
var logger log.Logger = log.New("test")

// Global context
var ctx context.Context = context.Background()

func newTestClient(id string, buffer int) *entity.SSEClient {
	return &entity.SSEClient{
		ID:      id,
		Channel: make(chan []byte, buffer),
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	client := newTestClient("tab-1", 1)
	registry.Register(ctx, client)
	// Registering the same client again must not create a second entry
	registry.Register(ctx, client)

	assert.Equal(t, 1, registry.Count())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	client := newTestClient("tab-1", 1)
	registry.Register(ctx, client)
	assert.Equal(t, 1, registry.Count())

	// Both the close signal and a failed-write cleanup may unregister,
	// the second call must be a no-op rather than a panic
	registry.Unregister(ctx, client.ID)
	assert.NotPanics(t, func() {
		registry.Unregister(ctx, client.ID)
	})
	assert.Equal(t, 0, registry.Count())
}

func TestUnregisterUnknownClient(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	assert.NotPanics(t, func() {
		registry.Unregister(ctx, "never-registered")
	})
	assert.Equal(t, 0, registry.Count())
}

func TestBroadcastFanOut(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	first := newTestClient("tab-1", 1)
	second := newTestClient("tab-2", 1)
	third := newTestClient("tab-3", 1)
	registry.Register(ctx, first)
	registry.Register(ctx, second)
	registry.Register(ctx, third)

	registry.Broadcast(ctx, entity.ConnectedEvent())

	for _, client := range []*entity.SSEClient{first, second, third} {
		payload, ok := <-client.Channel
		assert.True(t, ok)

		var event entity.Event
		assert.Nil(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "connected", event.Type)
	}
	assert.Equal(t, 3, registry.Count())
}

func TestBroadcastDropsDeadConnection(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	healthy := newTestClient("tab-1", 1)
	// An unbuffered channel with no reader rejects the write,
	// the channel-level analogue of a dead socket
	dead := newTestClient("tab-2", 0)
	other := newTestClient("tab-3", 1)
	registry.Register(ctx, healthy)
	registry.Register(ctx, dead)
	registry.Register(ctx, other)

	registry.Broadcast(ctx, entity.IllustrationEvent("https://img/x.png", entity.StoryContext{}))

	// The two healthy clients still got the event
	for _, client := range []*entity.SSEClient{healthy, other} {
		payload, ok := <-client.Channel
		assert.True(t, ok)
		assert.Contains(t, string(payload), "story-illustration")
	}

	// The dead client self-healed out of the registry and its channel is closed
	assert.Equal(t, 2, registry.Count())
	_, open := <-dead.Channel
	assert.False(t, open)
}

func TestBroadcastAfterFailureKeepsDelivering(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	dead := newTestClient("tab-1", 0)
	healthy := newTestClient("tab-2", 2)
	registry.Register(ctx, dead)
	registry.Register(ctx, healthy)

	// First broadcast removes the dead connection, second one must still flow
	registry.Broadcast(ctx, entity.ConnectedEvent())
	registry.Broadcast(ctx, entity.IllustrationEvent("https://img/y.png", entity.StoryContext{}))

	assert.Equal(t, 1, registry.Count())
	assert.Len(t, healthy.Channel, 2)
}

func TestCleanupClosesEveryConnection(t *testing.T) {
	registry := NewRegistry(nopRepository{}, logger)

	first := newTestClient("tab-1", 1)
	second := newTestClient("tab-2", 1)
	registry.Register(ctx, first)
	registry.Register(ctx, second)

	assert.Nil(t, registry.Cleanup(ctx))
	assert.Equal(t, 0, registry.Count())

	_, open := <-first.Channel
	assert.False(t, open)
	_, open = <-second.Channel
	assert.False(t, open)
}
