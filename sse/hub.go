package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/audtext/logger"
)

// Client represents one subscriber on a topic.
type Client struct {
	id     string      // Unique client ID
	topic  string      // Topic the client is subscribed to
	events chan []byte // Channel for sending events to the client
}

// NewClient creates a new client subscribed to the given topic.
func NewClient(topic string) *Client {
	return &Client{
		id:     uuid.New().String(),
		topic:  topic,
		events: make(chan []byte, 256), // Buffered channel
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Topic returns the topic the client is subscribed to.
func (c *Client) Topic() string {
	return c.topic
}

// Events returns the channel for receiving events.
func (c *Client) Events() <-chan []byte {
	return c.events
}

// Send sends data to the client's event channel.
// Returns false if the channel is full (client is slow).
func (c *Client) Send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		// Channel full, client is too slow
		logger.Warn("[SSE] Client channel full, dropping subscriber", map[string]interface{}{
			"client_id": c.id,
			"topic":     c.topic,
		})
		return false
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.events)
}

// Hub manages topic subscriptions and message broadcasting. All subscriber-set
// mutations happen on the hub's own goroutine; only reads take the lock
// elsewhere. A subscriber whose delivery fails is pruned from its topic, and a
// topic whose subscriber set becomes empty is dropped entirely.
type Hub struct {
	topics     map[string]map[*Client]struct{} // topic -> subscriber set
	register   chan *Client                    // Channel for registering clients
	unregister chan *Client                    // Channel for unregistering clients
	broadcast  chan *Message                   // Channel for broadcasting messages
	done       chan struct{}                   // Signals the hub to stop
	stopped    bool                            // Whether the hub has been stopped
	mu         sync.RWMutex                    // Protects topics map for reads
}

// Message represents a message to broadcast to one topic.
type Message struct {
	Topic string // Topic whose subscribers receive the event
	Data  []byte // Event data to send
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main event loop.
// It blocks until Stop is called. This should be run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.topics[client.topic]
			if !ok {
				set = make(map[*Client]struct{})
				h.topics[client.topic] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			logger.Debug("[SSE_HUB] Client registered", map[string]interface{}{
				"client_id": client.id,
				"topic":     client.topic,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			logger.Debug("[SSE_HUB] Client unregistered", map[string]interface{}{
				"client_id": client.id,
				"topic":     client.topic,
			})

		case msg := <-h.broadcast:
			h.broadcastToTopic(msg.Topic, msg.Data)
		}
	}
}

// Stop signals the hub to shut down. It closes all client connections
// and causes Run to return. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

// closeAllClients disconnects all clients during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, set := range h.topics {
		for client := range set {
			client.Close()
		}
		delete(h.topics, topic)
	}
	logger.Debug("[SSE_HUB] All clients closed during shutdown")
}

// removeLocked deletes a client from its topic and drops the topic when it
// becomes empty. Callers must hold the write lock.
func (h *Hub) removeLocked(client *Client) {
	set, ok := h.topics[client.topic]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	client.Close()
	if len(set) == 0 {
		delete(h.topics, client.topic)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends data to all subscribers of the topic.
func (h *Hub) Broadcast(topic string, data []byte) {
	h.broadcast <- &Message{
		Topic: topic,
		Data:  data,
	}
}

// broadcastToTopic sends data to every subscriber of the topic, pruning
// subscribers whose delivery fails. A slow subscriber never blocks delivery
// to the others. This is called from the hub's main goroutine.
func (h *Hub) broadcastToTopic(topic string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.topics[topic]
	if !ok {
		logger.Debug("[SSE_HUB] No subscribers for topic", map[string]interface{}{
			"topic": topic,
		})
		return
	}

	sent := 0
	for client := range set {
		if client.Send(data) {
			sent++
			continue
		}
		h.removeLocked(client)
	}

	logger.Debug("[SSE_HUB] Broadcast sent", map[string]interface{}{
		"topic":     topic,
		"delivered": sent,
		"data_size": len(data),
	})
}

// SubscriberCount returns the number of subscribers on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ClientCount returns the total number of connected clients across all topics.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.topics {
		total += len(set)
	}
	return total
}
