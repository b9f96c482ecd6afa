package cache

import (
	"testing"
)

func TestHubBroadcastWithoutSubscribersIsNoOp(t *testing.T) {
	NewHub().Broadcast(NewDataNotification())
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	hub.Broadcast(NewDataNotification())

	select {
	case msg := <-a:
		if msg.Type != "NEW_DATA" {
			t.Fatalf("unexpected type: %s", msg.Type)
		}
	default:
		t.Fatalf("subscriber a missed the broadcast")
	}
	select {
	case <-b:
	default:
		t.Fatalf("subscriber b missed the broadcast")
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()

	hub.Broadcast(NewDataNotification())

	select {
	case msg := <-ch:
		t.Fatalf("cancelled subscriber must not receive, got %+v", msg)
	default:
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overflow the buffer; extra broadcasts are dropped, not blocked on.
	for i := 0; i < 10; i++ {
		hub.Broadcast(NewDataNotification())
	}

	if got := len(ch); got != cap(ch) {
		t.Fatalf("expected a full buffer of %d, got %d", cap(ch), got)
	}
}
