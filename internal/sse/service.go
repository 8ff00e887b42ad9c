// Service layer of Server-Sent-Events (SSE) in Chalkboard.
// Holds the registry of live event-stream connections and fans broadcasts out to them.

package sse

import (
	"Chalkboard/internal/entity"
	"Chalkboard/pkg/log"
	"context"
	"encoding/json"
	"sync"
)

type Service interface {
	// Register adds a live connection to the registry, no-op if already present.
	Register(ctx context.Context, client *entity.SSEClient)
	// Unregister removes a connection from the registry, no-op if absent.
	// Safe to call more than once for the same client.
	Unregister(ctx context.Context, clientID string)
	// Broadcast delivers one event to every registered connection.
	// A connection which cannot take the write is removed as a side effect,
	// delivery to the remaining connections is never aborted.
	Broadcast(ctx context.Context, event entity.Event)
	// Count returns the number of currently registered connections.
	Count() int
	// Cleanup closes every registered connection, called during server shutdown.
	Cleanup(ctx context.Context) error
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
type registry struct {
	// mu guards clients, handlers run on separate goroutines so
	// insert / delete / iterate-and-remove need mutual exclusion.
	mu      sync.Mutex
	clients map[string]chan []byte
	repo    Repository
	logger  log.Logger
}

// NewRegistry returns a connection registry owned by the caller.
// Constructed explicitly so every test can use its own instance.
func NewRegistry(repo Repository, logger log.Logger) Service {
	return &registry{
		clients: make(map[string]chan []byte),
		repo:    repo,
		logger:  logger,
	}
}

func (r *registry) Register(ctx context.Context, client *entity.SSEClient) {
	r.mu.Lock()
	if _, ok := r.clients[client.ID]; ok {
		r.mu.Unlock()
		return
	}
	r.clients[client.ID] = client.Channel
	total := len(r.clients)
	r.mu.Unlock()

	r.logger.WithCtx(ctx).Info().Msgf("Registered SSE client %s, %d connected", client.ID, total)
	// Best-effort mirror of connected clients into the DB, registry state is authoritative.
	if dberr := r.repo.AddClient(ctx, r.logger, client.ID); dberr != nil {
		r.logger.WithCtx(ctx).Error().Err(dberr).Msg("Couldn't mirror SSE client into DB")
	}
}

func (r *registry) Unregister(ctx context.Context, clientID string) {
	r.mu.Lock()
	ch, ok := r.clients[clientID]
	if ok {
		// Whoever removes the entry closes the channel, exactly once.
		delete(r.clients, clientID)
		close(ch)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	r.logger.WithCtx(ctx).Info().Msgf("Closed SSE connection : %s", clientID)
	if dberr := r.repo.RemoveClient(ctx, r.logger, clientID); dberr != nil {
		r.logger.WithCtx(ctx).Error().Err(dberr).Msg("Couldn't remove SSE client mirror from DB")
	}
}

func (r *registry) Broadcast(ctx context.Context, event entity.Event) {
	payload, jsonerr := json.Marshal(event)
	if jsonerr != nil {
		r.logger.WithCtx(ctx).Error().Err(jsonerr).Msgf("Couldn't serialize %s event", event.Type)
		return
	}

	var stale []string
	r.mu.Lock()
	for id, ch := range r.clients {
		select {
		case ch <- payload:
		default:
			// Connection can't take the write, most likely dead or stuck.
			// Drop it here so one bad connection never breaks delivery to the rest.
			delete(r.clients, id)
			close(ch)
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stale {
		r.logger.WithCtx(ctx).Warn().Msgf("Dropped unresponsive SSE client %s during %s broadcast", id, event.Type)
		if dberr := r.repo.RemoveClient(ctx, r.logger, id); dberr != nil {
			r.logger.WithCtx(ctx).Error().Err(dberr).Msg("Couldn't remove SSE client mirror from DB")
		}
	}
}

func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *registry) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	for id, ch := range r.clients {
		delete(r.clients, id)
		close(ch)
	}
	r.mu.Unlock()
	r.logger.Info().Msg("Closed all open SSE connections.")
	return r.repo.Clear(ctx, r.logger)
}
