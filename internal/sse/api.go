// Exposes the event-stream REST API of Chalkboard.

package sse

import (
	"Chalkboard/internal/entity"
	"Chalkboard/pkg/log"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

// Interval between keep-alive comment lines written on every open stream.
// Stops intermediary proxies from silently dropping idle connections.
const heartbeatInterval = 30 * time.Second

// Send buffer per connection, a client which falls this far behind is dropped.
const clientBufferSize = 8

// Registers the REST API handlers related to internal package sse onto the gin server.
func APIHandlers(router *gin.Engine, service Service, sseHeaders gin.HandlerFunc, logger log.Logger) {
	router.GET("/events/story-illustrations", sseHeaders, streamHandler(service, logger))
}

// streamHandler holds one long-lived event-stream connection open per portal tab.
// The connection walks OPENING -> OPEN -> CLOSED, registration only happens
// after the opening write succeeded.
func streamHandler(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		client := &entity.SSEClient{
			ID:      xid.New().String(),
			Channel: make(chan []byte, clientBufferSize),
		}

		// Flush the stream headers right away so the browser's connection
		// promise resolves without waiting for the first event.
		gctx.Writer.Flush()

		payload, jsonerr := json.Marshal(entity.ConnectedEvent())
		if jsonerr != nil {
			gctx.Status(http.StatusInternalServerError)
			return
		}
		if _, werr := fmt.Fprintf(gctx.Writer, "data: %s\n\n", payload); werr != nil {
			// Opening write failed, the client is already gone.
			// Never register a connection whose opening write failed.
			logger.WithCtx(gctx).Warn().Err(werr).Msg("Opening SSE write failed, abandoning connection")
			return
		}
		gctx.Writer.Flush()

		service.Register(gctx, client)
		defer service.Unregister(gctx, client.ID)

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		gctx.Stream(func(w io.Writer) bool {
			select {
			// Broadcast arrived for this client
			case msg, ok := <-client.Channel:
				if !ok {
					// Registry dropped us, most likely a failed write or shutdown
					return false
				}
				fmt.Fprintf(w, "data: %s\n\n", msg)
				return true
			// Keep-alive comment line, ignored by EventSource per the SSE spec
			case <-heartbeat.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				return true
			// Client exit
			case <-gctx.Request.Context().Done():
				return false
			}
		})
	}
}
