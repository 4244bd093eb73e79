// Package kit assembles an award evaluator from parts, with in-memory
// defaults that keep it usable without external services.
package kit

import (
	"context"
	"log/slog"

	"badgekit/adapters/memory"
	"badgekit/core"
	"badgekit/engine"
	"badgekit/realtime"
)

// Option configures the evaluator builder.
type Option func(*config)

type config struct {
	scores     core.ScoreProvider
	store      engine.AwardStore
	rules      []core.Rule
	thresholds engine.Thresholds
	mode       engine.DispatchMode
	hub        *realtime.Hub
	log        *slog.Logger
}

// WithScores sets the score provider backing rule predicates.
func WithScores(p core.ScoreProvider) Option { return func(c *config) { c.scores = p } }

// WithAwardStore sets the durable award store.
func WithAwardStore(s engine.AwardStore) Option { return func(c *config) { c.store = s } }

// WithRules replaces the default rule set entirely.
func WithRules(rules []core.Rule) Option { return func(c *config) { c.rules = rules } }

// WithThresholds rebuilds the default rule set against custom bounds.
func WithThresholds(t engine.Thresholds) Option { return func(c *config) { c.thresholds = t } }

// WithDispatchMode selects sync or async notification dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive every award notification.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLogger sets the evaluator's logger.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.log = l } }

// New builds a configured Evaluator. If not provided, defaults are used:
//   - store: in-memory
//   - scores: in-memory scoreboard
//   - rules: DefaultRules over DefaultThresholds
//   - dispatch: async
func New(opts ...Option) (*engine.Evaluator, error) {
	cfg := &config{mode: engine.DispatchAsync, thresholds: engine.DefaultThresholds()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.store == nil {
		cfg.store = memory.NewAwardStore()
	}
	if cfg.scores == nil {
		cfg.scores = memory.NewScoreboard()
	}
	if cfg.rules == nil {
		cfg.rules = engine.DefaultRules(cfg.thresholds)
	}
	registry, err := engine.NewRegistry(cfg.rules...)
	if err != nil {
		return nil, err
	}
	bus := engine.NewBus(cfg.mode)
	ev := engine.NewEvaluator(registry, cfg.scores, cfg.store, bus)
	if cfg.log != nil {
		ev.WithLogger(cfg.log)
	}
	if cfg.hub != nil {
		bus.Subscribe(engine.KeyAll, func(ctx context.Context, n engine.Notification) {
			cfg.hub.Broadcast(ctx, n)
		})
	}
	return ev, nil
}
