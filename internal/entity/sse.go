// Structure of Server-Sent-Events (SSE) connections in Chalkboard.

package entity

// SSEClient uniquely defines one open event-stream connection.
// One browser tab maps to exactly one client.
type SSEClient struct {
	// Unique Client ID
	ID string
	// Channel carrying serialized events to the connection handler
	Channel chan []byte
}
