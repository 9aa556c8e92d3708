// Package progress publishes task progress events to listeners subscribed
// through the event hub.
package progress

import (
	"encoding/json"

	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/sse"
)

// Event is the wire payload pushed to progress listeners. The shape matches
// what the web client renders, so field names are part of the API.
type Event struct {
	TaskID         string  `json:"task_id"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	Message        string  `json:"message"`
	CurrentSegment *int    `json:"current_segment,omitempty"`
}

// Sink receives progress events for a task.
type Sink interface {
	Publish(ev Event)
}

// Topic returns the hub topic carrying events for the given task.
func Topic(taskID string) string {
	return "task:" + taskID
}

// HubSink publishes progress events to an sse.Hub, one topic per task.
type HubSink struct {
	hub *sse.Hub
	log *logger.Logger
}

// NewHubSink creates a sink backed by the given hub.
func NewHubSink(hub *sse.Hub) *HubSink {
	return &HubSink{
		hub: hub,
		log: logger.WithComponent("progress"),
	}
}

// Publish serializes the event and broadcasts it to the task's topic.
// Marshalling failures are logged and dropped; progress delivery is
// best-effort and never blocks the task.
func (s *HubSink) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).Error("marshal progress event")
		return
	}
	s.hub.Broadcast(Topic(ev.TaskID), data)
}

// FromTask builds an event from a task snapshot.
func FromTask(t task.Task) Event {
	return Event{
		TaskID:   t.ID,
		Status:   string(t.Status),
		Progress: t.Progress,
		Message:  t.Message,
	}
}

// compile-time check
var _ Sink = (*HubSink)(nil)
