package engine

import (
	"context"

	"badgekit/core"
)

// AwardStore is the durable record of grants and the engine's only shared
// mutable state. InsertIfAbsent must be atomic — backed by a storage-layer
// uniqueness constraint on (badge, recipient) for lifetime badges and
// (badge, content) for content-scoped ones — never a check-then-act
// sequence.
type AwardStore interface {
	// InsertIfAbsent records the award unless one already exists for its
	// scope key, reporting whether it was newly created.
	InsertIfAbsent(ctx context.Context, badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) (bool, error)
	// Count returns how many awards of the badge the recipient holds.
	Count(ctx context.Context, badge core.BadgeKey, recipient core.UserID) (int, error)
}
