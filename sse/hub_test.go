package sse

import (
	"testing"
	"time"
)

func TestClient_NewClient(t *testing.T) {
	client := NewClient("task:abc123")

	if client.Topic() != "task:abc123" {
		t.Errorf("expected topic 'task:abc123', got '%s'", client.Topic())
	}
	if client.ID() == "" {
		t.Error("expected a generated client ID")
	}
	if client.Events() == nil {
		t.Error("expected events channel to be set")
	}
}

func TestClient_Send_Success(t *testing.T) {
	client := NewClient("task:abc123")

	ok := client.Send([]byte("test message"))
	if !ok {
		t.Error("expected send to succeed")
	}

	select {
	case msg := <-client.Events():
		if string(msg) != "test message" {
			t.Errorf("expected 'test message', got '%s'", string(msg))
		}
	default:
		t.Error("expected message in channel")
	}
}

func TestClient_Send_ChannelFull(t *testing.T) {
	client := NewClient("task:abc123")

	// Fill the channel (size is 256)
	for i := 0; i < 256; i++ {
		client.Send([]byte("msg"))
	}

	ok := client.Send([]byte("overflow"))
	if ok {
		t.Error("expected send to fail when channel is full")
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient("task:abc123")

	hub.Register(client)
	time.Sleep(10 * time.Millisecond) // Wait for registration

	if hub.SubscriberCount("task:abc123") != 1 {
		t.Errorf("expected 1 subscriber after register, got %d", hub.SubscriberCount("task:abc123"))
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.SubscriberCount("task:abc123") != 0 {
		t.Errorf("expected 0 subscribers after unregister, got %d", hub.SubscriberCount("task:abc123"))
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected empty topic to be dropped, got %d clients", hub.ClientCount())
	}
}

func TestHub_Broadcast_OnlyTopicSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub := NewClient("task:abc")
	other := NewClient("task:xyz")

	hub.Register(sub)
	hub.Register(other)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("task:abc", []byte("event for abc"))
	time.Sleep(10 * time.Millisecond)

	select {
	case msg := <-sub.Events():
		if string(msg) != "event for abc" {
			t.Errorf("expected 'event for abc', got '%s'", string(msg))
		}
	default:
		t.Error("expected subscriber to receive event")
	}

	select {
	case msg := <-other.Events():
		t.Errorf("expected no event for other topic, got '%s'", string(msg))
	default:
	}
}

func TestHub_Broadcast_TwoSubscribersBothReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	sub1 := NewClient("task:abc")
	sub2 := NewClient("task:abc")

	hub.Register(sub1)
	hub.Register(sub2)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast("task:abc", []byte("terminal"))
	time.Sleep(10 * time.Millisecond)

	for i, sub := range []*Client{sub1, sub2} {
		select {
		case msg := <-sub.Events():
			if string(msg) != "terminal" {
				t.Errorf("subscriber %d: expected 'terminal', got '%s'", i, string(msg))
			}
		default:
			t.Errorf("subscriber %d: expected event", i)
		}
		// Exactly once: no second copy.
		select {
		case msg := <-sub.Events():
			t.Errorf("subscriber %d: unexpected second event '%s'", i, string(msg))
		default:
		}
	}
}

func TestHub_Broadcast_PrunesFailedSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := NewClient("task:abc")
	healthy := NewClient("task:abc")

	hub.Register(slow)
	hub.Register(healthy)
	time.Sleep(10 * time.Millisecond)

	// Saturate the slow subscriber's buffer so the next delivery fails.
	for i := 0; i < 256; i++ {
		slow.Send([]byte("fill"))
	}

	hub.Broadcast("task:abc", []byte("event"))
	time.Sleep(10 * time.Millisecond)

	if hub.SubscriberCount("task:abc") != 1 {
		t.Errorf("expected failed subscriber to be pruned, got %d subscribers", hub.SubscriberCount("task:abc"))
	}

	// The healthy subscriber still got the event.
	select {
	case msg := <-healthy.Events():
		if string(msg) != "event" {
			t.Errorf("expected 'event', got '%s'", string(msg))
		}
	default:
		t.Error("expected healthy subscriber to receive event")
	}
}

func TestHub_Stop_ClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient("task:abc")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Stop()
	time.Sleep(10 * time.Millisecond)

	for {
		if _, open := <-client.Events(); !open {
			return
		}
	}
}
