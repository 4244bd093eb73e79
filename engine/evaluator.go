package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"badgekit/core"
)

// ErrInvalidEvent marks malformed inbound events: unknown kind or empty
// actor. These are caller errors, never retryable.
var ErrInvalidEvent = errors.New("invalid event")

// Evaluator orchestrates one evaluation pass per incoming event: find the
// candidate rules, run each predicate against current provider state, and
// attempt the atomic award for each that qualifies.
type Evaluator struct {
	registry *Registry
	scores   core.ScoreProvider
	store    AwardStore
	bus      *Bus
	log      *slog.Logger
}

func NewEvaluator(registry *Registry, scores core.ScoreProvider, store AwardStore, bus *Bus) *Evaluator {
	if registry == nil || scores == nil || store == nil || bus == nil {
		panic("NewEvaluator requires non-nil registry, scores, store, and bus")
	}
	return &Evaluator{registry: registry, scores: scores, store: store, bus: bus, log: slog.Default()}
}

// WithLogger replaces the evaluator's logger (defaults to slog.Default).
func (e *Evaluator) WithLogger(log *slog.Logger) *Evaluator {
	if log != nil {
		e.log = log
	}
	return e
}

// Handle evaluates every rule triggered by the event. A rule that cannot
// read required state silently does not qualify and never aborts its
// siblings. Store failures are collected and returned; the event is then
// considered not-processed and is safe to re-deliver, because every award
// attempt is idempotent.
func (e *Evaluator) Handle(ctx context.Context, ev core.Event) error {
	if !core.ValidKind(ev.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	actor, err := core.NormalizeUserID(ev.Actor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	ev.Actor = actor

	var errs []error
	for _, rule := range e.registry.RulesFor(ev.Kind) {
		claim, err := rule.Evaluate(ctx, ev, e.scores)
		if err != nil {
			// StateUnavailable and any other provider failure mean this rule
			// does not qualify for this event.
			e.log.Debug("rule skipped",
				"badge", rule.Key(), "event", ev.Kind, "content", ev.Content, "error", err)
			continue
		}
		if claim == nil {
			continue
		}
		created, err := e.store.InsertIfAbsent(ctx, claim.Badge, claim.Recipient, claim.Content)
		if err != nil {
			errs = append(errs, fmt.Errorf("award %s to %s: %w", claim.Badge, claim.Recipient, err))
			continue
		}
		if !created {
			continue
		}
		e.log.Info("badge awarded", "badge", claim.Badge, "recipient", claim.Recipient)
		e.bus.Publish(ctx, Notification{
			Badge:     claim.Badge,
			Recipient: claim.Recipient,
			Content:   claim.Content,
			Time:      time.Now().UTC(),
		})
	}
	return errors.Join(errs...)
}

// Count reports how many awards of the badge the recipient holds.
func (e *Evaluator) Count(ctx context.Context, badge core.BadgeKey, recipient core.UserID) (int, error) {
	normalized, err := core.NormalizeUserID(recipient)
	if err != nil {
		return 0, err
	}
	return e.store.Count(ctx, badge, normalized)
}

// Subscribe convenience method mirroring Bus.Subscribe.
func (e *Evaluator) Subscribe(key core.BadgeKey, handler func(context.Context, Notification)) func() {
	return e.bus.Subscribe(key, handler)
}

// Registry exposes the rule set, e.g. for introspection endpoints.
func (e *Evaluator) Registry() *Registry { return e.registry }

func (e *Evaluator) Close() { e.bus.Close() }
