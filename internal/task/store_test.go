package task

import (
	"sync"
	"testing"

	"github.com/skillsenselab/audtext/errors"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore()

	created := store.Create("abc12345")
	if created.Status != StatusPending {
		t.Errorf("expected pending status, got %s", created.Status)
	}
	if created.Progress != 0 {
		t.Errorf("expected 0 progress, got %f", created.Progress)
	}

	got, err := store.Get("abc12345")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "abc12345" {
		t.Errorf("expected id 'abc12345', got '%s'", got.ID)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Get("missing")
	if err == nil {
		t.Fatal("expected error for missing task")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	store.Create("abc12345")

	updated, err := store.Update("abc12345", func(tk *Task) {
		tk.Status = StatusProcessing
		tk.Progress = 42.5
		tk.Message = "Transcribing..."
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != StatusProcessing {
		t.Errorf("expected processing, got %s", updated.Status)
	}
	if updated.Progress != 42.5 {
		t.Errorf("expected 42.5, got %f", updated.Progress)
	}

	got, _ := store.Get("abc12345")
	if got.Message != "Transcribing..." {
		t.Errorf("expected message persisted, got '%s'", got.Message)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Update("missing", func(tk *Task) {
		tk.Progress = 50
	})
	if !errors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestStore_Get_ReturnsSnapshot(t *testing.T) {
	store := NewStore()
	store.Create("abc12345")
	store.Update("abc12345", func(tk *Task) {
		tk.Result = &Result{
			Language: "en",
			Segments: []Segment{{ID: 0, Start: 0, End: 1, Text: "hello"}},
		}
	})

	got, _ := store.Get("abc12345")
	got.Result.Segments[0].Text = "mutated"
	got.Result.Language = "xx"

	again, _ := store.Get("abc12345")
	if again.Result.Segments[0].Text != "hello" {
		t.Error("expected stored segments to be isolated from caller mutation")
	}
	if again.Result.Language != "en" {
		t.Error("expected stored result to be isolated from caller mutation")
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	store.Create("abc12345")

	store.Delete("abc12345")
	if _, err := store.Get("abc12345"); !errors.IsNotFound(err) {
		t.Error("expected task to be gone after delete")
	}

	// Deleting again is a no-op.
	store.Delete("abc12345")
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := NewStore()
	store.Create("a")
	store.Create("b")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update("a", func(tk *Task) { tk.Progress++ })
		}()
		go func() {
			defer wg.Done()
			store.Update("b", func(tk *Task) { tk.Progress++ })
		}()
	}
	wg.Wait()

	a, _ := store.Get("a")
	b, _ := store.Get("b")
	if a.Progress != 100 || b.Progress != 100 {
		t.Errorf("expected 100 increments each, got a=%f b=%f", a.Progress, b.Progress)
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 tasks, got %d", store.Count())
	}
}
