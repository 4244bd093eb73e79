package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	wsadapter "badgekit/adapters/websocket"
	"badgekit/core"
	"badgekit/engine"
	"badgekit/realtime"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
}

// eventPayload is the wire form of an inbound domain event.
type eventPayload struct {
	Kind        core.EventKind   `json:"kind"`
	Actor       core.UserID      `json:"actor"`
	Subject     core.UserID      `json:"subject,omitempty"`
	Content     core.ContentRef  `json:"content"`
	ContentKind core.ContentKind `json:"content_kind"`
	Delta       int              `json:"delta,omitempty"`
	Time        time.Time        `json:"time,omitempty"`
}

// NewMux builds an http.Handler exposing the engine's ingest/query surface
// and a WebSocket notification stream.
// Routes:
//   - POST {prefix}/events
//   - GET  {prefix}/awards/{user}/{badge}
//   - GET  {prefix}/badges
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
func NewMux(ev *engine.Evaluator, hub *realtime.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, ev)
	})

	// WebSocket notifications
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	// Event ingest
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/events"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		var payload eventPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "body must be a JSON event", nil)
			return
		}
		if !core.ValidKind(payload.Kind) {
			writeError(w, http.StatusBadRequest, "invalid_kind", "unknown event kind", nil)
			return
		}
		when := payload.Time
		if when.IsZero() {
			when = time.Now().UTC()
		}
		event := core.Event{
			Kind:        payload.Kind,
			Actor:       payload.Actor,
			Subject:     payload.Subject,
			Content:     payload.Content,
			ContentKind: payload.ContentKind,
			Delta:       payload.Delta,
			Time:        when,
		}
		if err := ev.Handle(r.Context(), event); err != nil {
			if errors.Is(err, engine.ErrInvalidEvent) {
				writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
				return
			}
			// Store failure: the event is not processed and safe to retry.
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error(), nil)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, map[string]any{"processed": true})
	})

	// Badge introspection
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/badges"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		type badgeInfo struct {
			Key   core.BadgeKey `json:"key"`
			Scope string        `json:"scope"`
		}
		rules := ev.Registry().Rules()
		out := make([]badgeInfo, 0, len(rules))
		for _, rule := range rules {
			out = append(out, badgeInfo{Key: rule.Key(), Scope: rule.Scope().String()})
		}
		writeJSON(w, out)
	})

	// Award counts
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/awards/"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		parts := split(path, '/')
		if len(parts) != 3 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		user, err := core.NormalizeUserID(core.UserID(parts[1]))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), nil)
			return
		}
		badge := core.BadgeKey(parts[2])
		if err := core.ValidateBadgeKey(badge); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_badge", err.Error(), nil)
			return
		}
		count, err := ev.Count(r.Context(), badge, user)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"badge": badge, "recipient": user, "count": count})
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	return handler
}

// Helpers

// healthCheck verifies the award store answers a lightweight query.
func healthCheck(w http.ResponseWriter, r *http.Request, ev *engine.Evaluator) {
	_, err := ev.Count(r.Context(), core.BadgeStudent, core.UserID("healthcheck_probe"))

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"store": "ok",
		},
	}

	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["store"] = "failed"
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, status)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func split(p string, sep rune) []string {
	var parts []string
	cur := make([]rune, 0, len(p))
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for _, r := range p {
		if r == sep {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAPIKeyAuth enforces a shared API key list.
func withAPIKeyAuth(next http.Handler, apiKeys []string) http.Handler {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key", nil)
			return
		}
		if _, ok := allowed[key]; !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return ""
}
