package engine

import (
	"fmt"

	"badgekit/core"
)

// Registry maps event kinds to the rules triggered by them. It is built once
// at startup and read-only afterwards; registering two rules under the same
// badge key is a fatal configuration error.
type Registry struct {
	byKind map[core.EventKind][]core.Rule
	byKey  map[core.BadgeKey]core.Rule
	order  []core.Rule
}

// NewRegistry builds a registry from the given rules, preserving their
// order.
func NewRegistry(rules ...core.Rule) (*Registry, error) {
	r := &Registry{
		byKind: make(map[core.EventKind][]core.Rule),
		byKey:  make(map[core.BadgeKey]core.Rule),
	}
	for _, rule := range rules {
		if err := r.register(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on configuration errors; intended
// for process startup paths.
func MustRegistry(rules ...core.Rule) *Registry {
	r, err := NewRegistry(rules...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) register(rule core.Rule) error {
	key := rule.Key()
	if err := core.ValidateBadgeKey(key); err != nil {
		return fmt.Errorf("register rule: %w", err)
	}
	if _, dup := r.byKey[key]; dup {
		return fmt.Errorf("register rule: duplicate badge key %q", key)
	}
	r.byKey[key] = rule
	r.order = append(r.order, rule)
	for _, kind := range rule.Kinds() {
		r.byKind[kind] = append(r.byKind[kind], rule)
	}
	return nil
}

// RulesFor returns the rules whose trigger kinds include the given kind, in
// registration order. The returned slice must not be mutated.
func (r *Registry) RulesFor(kind core.EventKind) []core.Rule {
	return r.byKind[kind]
}

// Rule looks up a registered rule by badge key.
func (r *Registry) Rule(key core.BadgeKey) (core.Rule, bool) {
	rule, ok := r.byKey[key]
	return rule, ok
}

// Rules returns all registered rules in registration order.
func (r *Registry) Rules() []core.Rule {
	return r.order
}
