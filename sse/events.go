// Package sse provides Server-Sent Events (SSE) support for real-time streaming.
package sse

// Generic SSE event type constants (infrastructure only).
// Domain-specific event types are defined by the application.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive is used for keep-alive comments.
	EventTypeKeepAlive = "keepalive"

	// EventTypeMessage is a generic message event.
	EventTypeMessage = "message"
)
