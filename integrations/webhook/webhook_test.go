package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"badgekit/core"
	"badgekit/engine"
)

func TestSinkPostsNotification(t *testing.T) {
	var mu sync.Mutex
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	ref := core.ContentRef("q1")
	sink.OnAward(engine.Notification{Badge: core.BadgeNiceQuestion, Recipient: "alice", Content: &ref})

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(bodies))
	}
	var n engine.Notification
	if err := json.Unmarshal(bodies[0], &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.Badge != core.BadgeNiceQuestion || n.Recipient != "alice" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestSinkFansOut(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	mkServer := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[name]++
			mu.Unlock()
		}))
	}
	s1 := mkServer("one")
	defer s1.Close()
	s2 := mkServer("two")
	defer s2.Close()

	sink := New([]string{s1.URL, s2.URL})
	sink.OnAward(engine.Notification{Badge: core.BadgeScholar, Recipient: "alice"})

	mu.Lock()
	defer mu.Unlock()
	if hits["one"] != 1 || hits["two"] != 1 {
		t.Fatalf("both endpoints should be hit once: %v", hits)
	}
}

func TestSinkToleratesFailures(t *testing.T) {
	var mu sync.Mutex
	delivered := 0
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}))
	defer good.Close()

	// the dead endpoint fails silently, the live one still gets the post
	sink := New([]string{"http://127.0.0.1:1/unreachable", good.URL})
	sink.OnAward(engine.Notification{Badge: core.BadgeCritic, Recipient: "carol"})

	mu.Lock()
	defer mu.Unlock()
	if delivered != 1 {
		t.Fatalf("live endpoint should still receive, got %d", delivered)
	}
}

func TestSinkNoEndpoints(t *testing.T) {
	sink := New(nil)
	// must be a no-op, not a panic
	sink.OnAward(engine.Notification{Badge: core.BadgeGuru, Recipient: "bob"})
}
