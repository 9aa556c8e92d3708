// Package task defines transcription task state and the in-memory store
// tracking it across the task lifecycle.
package task

import (
	"time"
)

// Status is the lifecycle state of a transcription task.
type Status string

// Task lifecycle states. A task moves pending -> processing -> completed
// or failed; the terminal states never transition again.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Segment is a time-aligned portion of a completed transcript.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result holds the output of a completed transcription.
type Result struct {
	Language  string    `json:"language"`
	Duration  float64   `json:"duration"`
	Segments  []Segment `json:"segments"`
	FullText  string    `json:"full_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is the unit of work tracked by the store.
type Task struct {
	ID        string    `json:"task_id"`
	Status    Status    `json:"status"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
