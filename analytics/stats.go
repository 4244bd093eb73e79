package analytics

import (
	"context"
	"sync"
	"time"

	"badgekit/core"
	"badgekit/engine"
)

// Hook receives award notifications for KPI aggregation.
type Hook interface {
	OnAward(n engine.Notification)
}

// Bridge fans one notification stream out to multiple hooks.
type Bridge struct{ hooks []Hook }

func NewBridge(hooks ...Hook) *Bridge { return &Bridge{hooks: hooks} }

func (b *Bridge) OnAward(n engine.Notification) {
	for _, h := range b.hooks {
		h.OnAward(n)
	}
}

// Attach subscribes a hook to every badge on the bus, returning the
// unsubscribe func.
func Attach(bus *engine.Bus, h Hook) func() {
	return bus.Subscribe(engine.KeyAll, func(_ context.Context, n engine.Notification) {
		h.OnAward(n)
	})
}

// AwardStats aggregates running award counts by badge, recipient, and day.
type AwardStats struct {
	mu          sync.RWMutex
	total       int64
	byBadge     map[core.BadgeKey]int64
	byRecipient map[core.UserID]int64
	byDay       map[string]int64
}

func NewAwardStats() *AwardStats {
	return &AwardStats{
		byBadge:     map[core.BadgeKey]int64{},
		byRecipient: map[core.UserID]int64{},
		byDay:       map[string]int64{},
	}
}

func (s *AwardStats) OnAward(n engine.Notification) {
	day := n.Time.UTC().Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byBadge[n.Badge]++
	s.byRecipient[n.Recipient]++
	s.byDay[day]++
}

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	Total       int64                   `json:"total"`
	ByBadge     map[core.BadgeKey]int64 `json:"by_badge"`
	ByRecipient map[core.UserID]int64   `json:"by_recipient"`
	ByDay       map[string]int64        `json:"by_day"`
	TakenAt     time.Time               `json:"taken_at"`
}

func (s *AwardStats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Total:       s.total,
		ByBadge:     make(map[core.BadgeKey]int64, len(s.byBadge)),
		ByRecipient: make(map[core.UserID]int64, len(s.byRecipient)),
		ByDay:       make(map[string]int64, len(s.byDay)),
		TakenAt:     time.Now().UTC(),
	}
	for k, v := range s.byBadge {
		snap.ByBadge[k] = v
	}
	for k, v := range s.byRecipient {
		snap.ByRecipient[k] = v
	}
	for k, v := range s.byDay {
		snap.ByDay[k] = v
	}
	return snap
}

// Total returns the running total of awards observed.
func (s *AwardStats) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// CountFor returns awards observed for one badge.
func (s *AwardStats) CountFor(badge core.BadgeKey) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byBadge[badge]
}

var _ Hook = (*AwardStats)(nil)
var _ Hook = (*Bridge)(nil)
