package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// UserID uniquely identifies a user in the community domain.
type UserID string

// ContentRef identifies a content item (question or answer) owned by the
// external content subsystem.
type ContentRef string

// ContentKind distinguishes the two content shapes the engine knows about.
type ContentKind string

const (
	KindQuestion ContentKind = "question"
	KindAnswer   ContentKind = "answer"
)

// BadgeKey names an achievement definition.
type BadgeKey string

// The closed set of badges the engine evaluates. Thresholded badges read
// their numeric bound from configuration; the set itself is fixed at build
// time.
const (
	BadgeDisciplined     BadgeKey = "disciplined"
	BadgePeerPressure    BadgeKey = "peer-pressure"
	BadgeTeacher         BadgeKey = "teacher"
	BadgeNiceAnswer      BadgeKey = "nice-answer"
	BadgeNiceQuestion    BadgeKey = "nice-question"
	BadgeSelfLearner     BadgeKey = "self-learner"
	BadgePopularQuestion BadgeKey = "popular-question"
	BadgeStudent         BadgeKey = "student"
	BadgeSupporter       BadgeKey = "supporter"
	BadgeCritic          BadgeKey = "critic"
	BadgeCivicDuty       BadgeKey = "civic-duty"
	BadgeScholar         BadgeKey = "scholar"
	BadgeGuru            BadgeKey = "guru"
	BadgeEnlightened     BadgeKey = "enlightened"
)

// Scope is the key space over which a badge's uniqueness is enforced.
type Scope int

const (
	// ScopeLifetime allows at most one award per (badge, recipient), ever.
	ScopeLifetime Scope = iota
	// ScopeContent allows at most one award per (badge, content item); the
	// same recipient may earn the badge again on a different item.
	ScopeContent
)

func (s Scope) String() string {
	if s == ScopeContent {
		return "per-content-item"
	}
	return "per-user-lifetime"
}

// Award is a concrete grant of a badge to a user. Awards are never deleted
// or mutated by the engine once created.
type Award struct {
	Badge     BadgeKey    `json:"badge"`
	Recipient UserID      `json:"recipient"`
	Content   *ContentRef `json:"content,omitempty"`
	GrantedAt time.Time   `json:"granted_at"`
}

// Claim is a rule's verdict that an award should be attempted. The content
// ref is nil exactly when the badge's scope is lifetime.
type Claim struct {
	Badge     BadgeKey
	Recipient UserID
	Content   *ContentRef
}

// ErrStateUnavailable reports that a referenced content item or user could
// not be resolved, typically because it vanished between event emission and
// evaluation. Rules treat it as "does not qualify".
var ErrStateUnavailable = errors.New("referenced state unavailable")

// ScoreProvider exposes current-truth score and vote state owned by the
// external content/vote subsystem. The engine only ever reads it and never
// caches results across events.
type ScoreProvider interface {
	// Score returns the current net score of a content item.
	Score(ctx context.Context, ref ContentRef) (int, error)
	// ViewCount returns the current view count of a question.
	ViewCount(ctx context.Context, ref ContentRef) (int, error)
	// VotesCastBy returns the lifetime number of votes the user has cast.
	VotesCastBy(ctx context.Context, user UserID) (int, error)
	// IsAccepted reports whether an answer is currently the accepted one.
	IsAccepted(ctx context.Context, ref ContentRef) (bool, error)
	// AuthorOf returns the author of a content item.
	AuthorOf(ctx context.Context, ref ContentRef) (UserID, error)
	// AskerOf returns the asker of a question. For an answer ref it returns
	// the asker of the question the answer belongs to.
	AskerOf(ctx context.Context, ref ContentRef) (UserID, error)
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateBadgeKey ensures a non-empty badge key with a simple charset check.
func ValidateBadgeKey(b BadgeKey) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return errors.New("empty badge key")
	}
	// simple check: alnum, dash, underscore
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return errors.New("invalid badge key")
	}
	return nil
}
