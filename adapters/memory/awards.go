package memory

import (
	"context"
	"sync"
	"time"

	"badgekit/core"
	"badgekit/engine"
)

// AwardStore is a concurrent in-memory engine.AwardStore. One mutex guards
// the uniqueness map, which makes InsertIfAbsent atomic — the in-process
// equivalent of a unique index.
type AwardStore struct {
	mu     sync.Mutex
	byKey  map[string]core.Award
	counts map[string]int
	awards []core.Award
}

func NewAwardStore() *AwardStore {
	return &AwardStore{
		byKey:  make(map[string]core.Award),
		counts: make(map[string]int),
	}
}

// scopeKey is the uniqueness key: (badge, content) when the award is
// content-scoped, (badge, recipient) otherwise.
func scopeKey(badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) string {
	if content != nil {
		return string(badge) + "|c|" + string(*content)
	}
	return string(badge) + "|u|" + string(recipient)
}

func countKey(badge core.BadgeKey, recipient core.UserID) string {
	return string(badge) + "|" + string(recipient)
}

func (s *AwardStore) InsertIfAbsent(_ context.Context, badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scopeKey(badge, recipient, content)
	if _, exists := s.byKey[key]; exists {
		return false, nil
	}
	award := core.Award{Badge: badge, Recipient: recipient, GrantedAt: time.Now().UTC()}
	if content != nil {
		ref := *content
		award.Content = &ref
	}
	s.byKey[key] = award
	s.counts[countKey(badge, recipient)]++
	s.awards = append(s.awards, award)
	return true, nil
}

func (s *AwardStore) Count(_ context.Context, badge core.BadgeKey, recipient core.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[countKey(badge, recipient)], nil
}

// AwardsFor returns copies of all awards held by the recipient, in grant
// order.
func (s *AwardStore) AwardsFor(_ context.Context, recipient core.UserID) ([]core.Award, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Award
	for _, a := range s.awards {
		if a.Recipient == recipient {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ engine.AwardStore = (*AwardStore)(nil)
