package task

import (
	"sync"
	"time"

	"github.com/skillsenselab/audtext/errors"
)

// entry wraps a task with its own lock so updates to distinct tasks never
// contend with each other. The store map itself is guarded by mu.
type entry struct {
	mu   sync.Mutex
	task Task
}

// Store is an in-memory task registry safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates an empty task store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
	}
}

// Create registers a new task in the pending state and returns a snapshot.
func (s *Store) Create(id string) Task {
	t := Task{
		ID:        id,
		Status:    StatusPending,
		Progress:  0,
		Message:   "Task queued",
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries[id] = &entry{task: t}
	s.mu.Unlock()

	return t
}

// Get returns a snapshot of the task with the given id.
func (s *Store) Get(id string) (Task, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Task{}, errors.NotFound("task", id)
	}

	e.mu.Lock()
	snapshot := cloneTask(e.task)
	e.mu.Unlock()
	return snapshot, nil
}

// Update applies mutate to the task under its lock and returns the updated
// snapshot. The mutator sees the live task and may change any field.
func (s *Store) Update(id string, mutate func(*Task)) (Task, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Task{}, errors.NotFound("task", id)
	}

	e.mu.Lock()
	mutate(&e.task)
	snapshot := cloneTask(e.task)
	e.mu.Unlock()
	return snapshot, nil
}

// Delete removes the task with the given id. Missing ids are a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Count returns the number of tracked tasks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cloneTask deep-copies the task so callers never share the stored
// result slice with a concurrent updater.
func cloneTask(t Task) Task {
	out := t
	if t.Result != nil {
		r := *t.Result
		r.Segments = make([]Segment, len(t.Result.Segments))
		copy(r.Segments, t.Result.Segments)
		out.Result = &r
	}
	return out
}
