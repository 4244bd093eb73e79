package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mem "badgekit/adapters/memory"
	"badgekit/engine"
)

func newTestEvaluator(t *testing.T) (*engine.Evaluator, *mem.Scoreboard) {
	t.Helper()
	board := mem.NewScoreboard()
	reg := engine.MustRegistry(engine.DefaultRules(engine.DefaultThresholds())...)
	ev := engine.NewEvaluator(reg, board, mem.NewAwardStore(), engine.NewBus(engine.DispatchSync))
	t.Cleanup(ev.Close)
	return ev, board
}

func postEvent(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIngestEventAwards(t *testing.T) {
	ev, board := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api"})

	board.PostQuestion("q1", "alice")
	board.Upvote("carol", "q1")

	rec := postEvent(t, handler, `{"kind":"vote_up","actor":"carol","content":"q1","content_kind":"question"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/awards/alice/student", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec2.Body.Bytes(), &resp)
	if resp["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", resp["count"])
	}
}

func TestIngestEventValidation(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api"})

	rec := postEvent(t, handler, `{"kind":"nonsense","actor":"carol"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: expected 400, got %d", rec.Code)
	}

	rec = postEvent(t, handler, `{"kind":"vote_up","actor":"  ","content":"q1","content_kind":"question"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank actor: expected 400, got %d", rec.Code)
	}

	rec = postEvent(t, handler, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body: expected 400, got %d", rec.Code)
	}
}

func TestListBadges(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var badges []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &badges)
	if len(badges) != 14 {
		t.Fatalf("expected 14 badges, got %d", len(badges))
	}
	scopes := map[string]bool{}
	for _, b := range badges {
		scopes[b["scope"].(string)] = true
	}
	if !scopes["per-user-lifetime"] || !scopes["per-content-item"] {
		t.Fatalf("both scopes should appear: %v", scopes)
	}
}

func TestAwardCountValidation(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/awards/alice/bad%20key", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{
		PathPrefix:      "/api",
		APIKeys:         []string{"secret"},
		AllowCORSOrigin: "*",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}

	req3 := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	req3.Header.Set("X-API-Key", "wrong")
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec3.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	handler := NewMux(ev, nil, Options{PathPrefix: "/api", AllowCORSOrigin: "*"})

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}
