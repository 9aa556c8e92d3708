package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/audtext/logger"
)

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

// ServeSSE handles an SSE connection subscribed to a topic.
// This is the main entry point called from HTTP handlers.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, topic string) {
	// Check SSE support (requires http.Flusher interface)
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("[SSE] Streaming not supported", map[string]interface{}{
			"topic": topic,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Disable write deadline for SSE connections using ResponseController.
	// SSE connections are long-lived and must not be terminated by the
	// server's WriteTimeout setting.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Warn("[SSE] Could not disable write deadline", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		// Continue anyway - the connection might still work with keep-alives
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Create and register client
	client := NewClient(topic)
	hub.Register(client)
	defer func() {
		hub.Unregister(client)
	}()

	// Send initial connection event
	connectedData, _ := json.Marshal(ConnectedEvent{
		ClientID: client.ID(),
		Topic:    topic,
	})
	_, _ = fmt.Fprintf(w, "event: %s\n", EventTypeConnected)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", connectedData)
	flusher.Flush()

	logger.Debug("[SSE] Client connected", map[string]interface{}{
		"client_id":   client.ID(),
		"topic":       topic,
		"remote_addr": r.RemoteAddr,
	})

	// Event loop - stream events to client
	// Keep-alive interval should be less than proxy timeouts (typically 60s).
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			// Client disconnected (browser closed, network issue, etc.)
			logger.Debug("[SSE] Client disconnected", map[string]interface{}{
				"client_id": client.ID(),
				"reason":    ctx.Err().Error(),
			})
			return

		case event, ok := <-client.Events():
			if !ok {
				// Channel closed, client unregistered
				logger.Debug("[SSE] Events channel closed", map[string]interface{}{
					"client_id": client.ID(),
				})
				return
			}
			// Send event in SSE format: data: {...}\n\n
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()

		case <-keepAlive.C:
			// Send keep-alive comment (SSE spec: lines starting with : are comments)
			// This keeps the connection alive through proxies and load balancers
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}
