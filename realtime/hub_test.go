package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"badgekit/core"
	"badgekit/engine"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	id1, ch1 := h.Subscribe(4)
	id2, ch2 := h.Subscribe(4)
	defer h.Unsubscribe(id1)
	defer h.Unsubscribe(id2)

	n := engine.Notification{Badge: core.BadgeTeacher, Recipient: "bob"}
	h.Broadcast(context.Background(), n)

	for _, ch := range []<-chan engine.Notification{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Badge != core.BadgeTeacher || got.Recipient != "bob" {
				t.Fatalf("unexpected notification: %+v", got)
			}
		default:
			t.Fatal("subscriber did not receive broadcast")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	h.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// broadcasting after unsubscribe must not panic
	h.Broadcast(context.Background(), engine.Notification{Badge: core.BadgeGuru})
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	defer h.Unsubscribe(id)

	h.Broadcast(context.Background(), engine.Notification{Badge: core.BadgeStudent})
	h.Broadcast(context.Background(), engine.Notification{Badge: core.BadgeCritic})

	got := <-ch
	if got.Badge != core.BadgeStudent {
		t.Fatalf("first notification should survive, got %+v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("overflow should be dropped, got %+v", extra)
	default:
	}
}

func TestMarshalJSON(t *testing.T) {
	ref := core.ContentRef("a1")
	b := MarshalJSON(engine.Notification{Badge: core.BadgeNiceAnswer, Recipient: "bob", Content: &ref})

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["badge"] != "nice-answer" || decoded["recipient"] != "bob" || decoded["content"] != "a1" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}
