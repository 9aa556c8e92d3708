package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/sse"
)

func TestTopic(t *testing.T) {
	if Topic("abc12345") != "task:abc12345" {
		t.Errorf("unexpected topic '%s'", Topic("abc12345"))
	}
}

func TestFromTask(t *testing.T) {
	ev := FromTask(task.Task{
		ID:       "abc12345",
		Status:   task.StatusProcessing,
		Progress: 37.5,
		Message:  "Transcribing...",
	})

	if ev.TaskID != "abc12345" {
		t.Errorf("unexpected task id '%s'", ev.TaskID)
	}
	if ev.Status != "processing" {
		t.Errorf("unexpected status '%s'", ev.Status)
	}
	if ev.Progress != 37.5 {
		t.Errorf("unexpected progress %f", ev.Progress)
	}
	if ev.CurrentSegment != nil {
		t.Error("expected no current segment from a bare snapshot")
	}
}

func TestHubSink_Publish(t *testing.T) {
	hub := sse.NewHub()
	go hub.Run()
	defer hub.Stop()

	client := sse.NewClient(Topic("abc12345"))
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	seg := 3
	sink := NewHubSink(hub)
	sink.Publish(Event{
		TaskID:         "abc12345",
		Status:         "processing",
		Progress:       62.0,
		Message:        "Transcribing segment 3",
		CurrentSegment: &seg,
	})
	time.Sleep(10 * time.Millisecond)

	select {
	case data := <-client.Events():
		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if got["task_id"] != "abc12345" {
			t.Errorf("unexpected task_id %v", got["task_id"])
		}
		if got["progress"] != 62.0 {
			t.Errorf("unexpected progress %v", got["progress"])
		}
		if got["current_segment"] != 3.0 {
			t.Errorf("unexpected current_segment %v", got["current_segment"])
		}
	default:
		t.Fatal("expected event on subscriber channel")
	}
}

func TestEvent_OmitsCurrentSegmentWhenNil(t *testing.T) {
	data, err := json.Marshal(Event{TaskID: "x", Status: "pending"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	json.Unmarshal(data, &got)
	if _, present := got["current_segment"]; present {
		t.Error("expected current_segment to be omitted when nil")
	}
}
