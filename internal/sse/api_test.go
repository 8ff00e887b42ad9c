// Event-stream API tests in Chalkboard.

package sse

import (
	"Chalkboard/internal/entity"
	"Chalkboard/internal/test"
	"Chalkboard/pkg/middlewares"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Global instance of gin MockRouter to be used during stream API testing.
var mockRouter *gin.Engine

// Registry wired into the stream endpoint under test.
var streamRegistry Service

// Singleton to make sure the stream route is registered only once.
var setupOnce sync.Once

// httptest.ResponseRecorder lacks CloseNotify which gin's Stream requires,
// this wrapper supplies it.
type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyingRecorder() *closeNotifyingRecorder {
	return &closeNotifyingRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return r.closed
}

// Helper to build up a mock router instance with the stream endpoint registered.
func setupStreamRouter() {
	setupOnce.Do(func() {
		mockRouter = test.MockRouter()
		streamRegistry = NewRegistry(nopRepository{}, logger)
		APIHandlers(mockRouter, streamRegistry, middlewares.SSEHeadersMiddleware(), logger)
	})
}

func TestStreamDeliversBroadcastsInOrder(t *testing.T) {
	setupStreamRouter()

	recorder := newCloseNotifyingRecorder()
	reqCtx, cancel := context.WithCancel(ctx)
	req := httptest.NewRequest(http.MethodGet, "/events/story-illustrations", nil).WithContext(reqCtx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		mockRouter.ServeHTTP(recorder, req)
	}()

	// The connection registers itself once the opening write went through
	assert.Eventually(t, func() bool {
		return streamRegistry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	sctx := entity.StoryContext{Characters: "a dragon", Mood: "magical"}
	streamRegistry.Broadcast(ctx, entity.GenerationStartedEvent(sctx))
	streamRegistry.Broadcast(ctx, entity.IllustrationEvent("https://img/x.png", sctx))

	// Give the handler a moment to drain its channel, then hang up
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", recorder.Header().Get("Cache-Control"))

	body := recorder.Body.String()
	connectedAt := strings.Index(body, `"type":"connected"`)
	startedAt := strings.Index(body, `"type":"generation-started"`)
	illustrationAt := strings.Index(body, `"type":"story-illustration"`)

	assert.True(t, connectedAt >= 0)
	assert.True(t, startedAt > connectedAt)
	assert.True(t, illustrationAt > startedAt)
	assert.Contains(t, body, `"imageUrl":"https://img/x.png"`)
	assert.Contains(t, body, `"characters":"a dragon"`)
	// Every message rides the data-only SSE framing
	assert.Contains(t, body, "data: {")

	// The closed connection leaves the registry
	assert.Eventually(t, func() bool {
		return streamRegistry.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStreamClientDisconnectUnregisters(t *testing.T) {
	setupStreamRouter()

	recorder := newCloseNotifyingRecorder()
	reqCtx, cancel := context.WithCancel(ctx)
	req := httptest.NewRequest(http.MethodGet, "/events/story-illustrations", nil).WithContext(reqCtx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		mockRouter.ServeHTTP(recorder, req)
	}()

	assert.Eventually(t, func() bool {
		return streamRegistry.Count() == 1
	}, time.Second, 10*time.Millisecond)

	// Tab close / navigation shows up as request-context cancellation
	cancel()
	<-done

	assert.Eventually(t, func() bool {
		return streamRegistry.Count() == 0
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, recorder.Body.String(), `"type":"connected"`)
}
