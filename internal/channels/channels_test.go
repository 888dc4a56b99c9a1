package channels

import "testing"

func TestSubscribeUnsubscribe(t *testing.T) {
	m := NewManager()
	m.Subscribe("test-channel", 1)
	subs := m.Subscribers("test-channel")
	if len(subs) != 1 || subs[0] != 1 {
		t.Fatalf("Subscribers = %v, want [1]", subs)
	}

	m.Unsubscribe("test-channel", 1)
	if subs := m.Subscribers("test-channel"); len(subs) != 0 {
		t.Fatalf("Subscribers after unsubscribe = %v, want empty", subs)
	}
}

func TestPublishPop(t *testing.T) {
	m := NewManager()
	m.Subscribe("test-channel", 1)
	m.Publish("test-channel", "Hello")

	content, ok := m.RPop("test-channel")
	if !ok || content != "Hello" {
		t.Fatalf("RPop = (%q, %v), want (Hello, true)", content, ok)
	}
	if _, ok := m.RPop("test-channel"); ok {
		t.Fatal("expected empty queue after single pop")
	}
}

func TestFIFOOrdering(t *testing.T) {
	m := NewManager()
	m.Publish("c", "one")
	m.Publish("c", "two")
	m.Publish("c", "three")

	if got := m.QueueLength("c"); got != 3 {
		t.Fatalf("QueueLength = %d, want 3", got)
	}
	for _, want := range []string{"one", "two", "three"} {
		got, ok := m.RPop("c")
		if !ok || got != want {
			t.Fatalf("RPop = (%q, %v), want (%q, true)", got, ok, want)
		}
	}
	if _, ok := m.RPop("c"); ok {
		t.Fatal("fourth RPop should find an empty queue")
	}
}

func TestMultipleSubscribersPublishReturnsCount(t *testing.T) {
	m := NewManager()
	m.Subscribe("test-channel", 1)
	m.Subscribe("test-channel", 2)
	m.Subscribe("test-channel", 3)

	count := m.Publish("test-channel", "Broadcast")
	if count != 3 {
		t.Fatalf("Publish subscriber count = %d, want 3", count)
	}
	if subs := m.Subscribers("test-channel"); len(subs) != 3 {
		t.Fatalf("Subscribers = %v, want 3 entries", subs)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	m := NewManager()
	m.Subscribe("channel1", 1)
	m.Subscribe("channel2", 1)
	m.Subscribe("channel3", 1)

	m.UnsubscribeAll(1)

	for _, name := range []string{"channel1", "channel2", "channel3"} {
		if subs := m.Subscribers(name); len(subs) != 0 {
			t.Fatalf("%s subscribers = %v, want empty", name, subs)
		}
	}
}

func TestChannelAutoDeletesWhenEmptyAndUnsubscribed(t *testing.T) {
	m := NewManager()
	m.Subscribe("ephemeral", 1)
	m.Publish("ephemeral", "msg")
	m.RPop("ephemeral")
	m.Unsubscribe("ephemeral", 1)

	found := false
	for _, name := range m.ListChannels() {
		if name == "ephemeral" {
			found = true
		}
	}
	if found {
		t.Fatal("channel with no subscribers and empty queue should be auto-deleted")
	}
}

func TestChannelSurvivesWithPendingQueueAfterLastUnsubscribe(t *testing.T) {
	m := NewManager()
	m.Subscribe("pending", 1)
	m.Publish("pending", "still here")
	m.Unsubscribe("pending", 1)

	if got := m.QueueLength("pending"); got != 1 {
		t.Fatalf("QueueLength = %d, want 1 (channel must survive while queue non-empty)", got)
	}
}
