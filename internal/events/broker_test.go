package events

import (
	"strings"
	"testing"
	"time"
)

func recvTimeout(t *testing.T, ch chan []byte, d time.Duration) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return msg
	case <-time.After(d):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe(1)
	ch2 := b.Subscribe(1)
	ch3 := b.Subscribe(2)

	if n := b.ClientCount(); n != 3 {
		t.Errorf("ClientCount = %d, want 3", n)
	}

	b.Unsubscribe(1, ch1)
	if n := b.ClientCount(); n != 2 {
		t.Errorf("ClientCount after unsubscribe = %d, want 2", n)
	}

	// Unsubscribing an unknown channel is a no-op.
	b.Unsubscribe(1, make(chan []byte))
	if n := b.ClientCount(); n != 2 {
		t.Errorf("ClientCount = %d, want 2", n)
	}

	b.Unsubscribe(1, ch2)
	b.Unsubscribe(2, ch3)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestPublish_OwnerScoped(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	alice := b.Subscribe(1)
	bob := b.Subscribe(2)

	b.Publish(1, NoteCreated, 42)

	msg := recvTimeout(t, alice, time.Second)
	if !strings.Contains(string(msg), "event: note.created") {
		t.Errorf("event frame = %q", msg)
	}
	if !strings.Contains(string(msg), `{"id":42}`) {
		t.Errorf("payload = %q", msg)
	}

	// Bob must not see alice's event.
	select {
	case leaked := <-bob:
		t.Errorf("event leaked to another owner: %q", leaked)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_AllOwnerClients(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe(1)
	ch2 := b.Subscribe(1)

	b.Publish(1, NoteUpdated, 7)

	for _, ch := range []chan []byte{ch1, ch2} {
		msg := recvTimeout(t, ch, time.Second)
		if !strings.Contains(string(msg), "event: note.updated") {
			t.Errorf("event frame = %q", msg)
		}
	}
}

func TestClose(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(1)

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after Close")
	}

	// All operations are safe after Close.
	b.Publish(1, NoteDeleted, 1)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount after Close = %d, want 0", n)
	}
	if ch := b.Subscribe(1); ch != nil {
		select {
		case _, ok := <-ch:
			if ok {
				t.Error("subscribe after Close returned a live channel")
			}
		default:
			t.Error("subscribe after Close returned an open channel")
		}
	}
	b.Close() // idempotent
}
