package core

import "context"

// Rule encapsulates one badge: its trigger kinds, its uniqueness scope, and
// the predicate deciding whether an event (plus current state) qualifies the
// recipient. Rules are immutable after registration.
//
// Evaluate returns a nil Claim when the event does not qualify. A
// StateUnavailable error from the provider means the rule silently does not
// qualify for this event; callers must not let it abort sibling rules.
type Rule interface {
	Key() BadgeKey
	Kinds() []EventKind
	Scope() Scope
	Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error)
}

// DeletionScoreRule awards when a user deletes their own content after its
// score crossed a configured bound: at least MinScore for the upvote
// flavour, at most -MinScore when Downvoted is set. Repeatable per deleted
// item. The provider must still resolve soft-deleted content at evaluation
// time; hard-deleted state simply never qualifies.
type DeletionScoreRule struct {
	Badge     BadgeKey
	MinScore  int
	Downvoted bool
}

func (r DeletionScoreRule) Key() BadgeKey      { return r.Badge }
func (r DeletionScoreRule) Kinds() []EventKind { return []EventKind{EventDeleteContent} }
func (r DeletionScoreRule) Scope() Scope       { return ScopeContent }

func (r DeletionScoreRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	author, err := scores.AuthorOf(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if author != ev.Actor {
		return nil, nil
	}
	score, err := scores.Score(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if r.Downvoted {
		if score > -r.MinScore {
			return nil, nil
		}
	} else if score < r.MinScore {
		return nil, nil
	}
	ref := ev.Content
	return &Claim{Badge: r.Badge, Recipient: author, Content: &ref}, nil
}

// FirstAnswerScoreRule awards once per user for life when any answer of
// theirs reaches MinScore. A retracted downvote can raise the score past the
// bound, so it triggers alongside upvotes.
type FirstAnswerScoreRule struct {
	Badge    BadgeKey
	MinScore int
}

func (r FirstAnswerScoreRule) Key() BadgeKey { return r.Badge }
func (r FirstAnswerScoreRule) Kinds() []EventKind {
	return []EventKind{EventVoteUp, EventVoteRetractDown}
}
func (r FirstAnswerScoreRule) Scope() Scope { return ScopeLifetime }

func (r FirstAnswerScoreRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindAnswer {
		return nil, nil
	}
	ok, author, err := answerAtScore(ctx, scores, ev.Content, r.MinScore)
	if err != nil || !ok {
		return nil, err
	}
	return &Claim{Badge: r.Badge, Recipient: author}, nil
}

// AnswerScoreRule awards per distinct answer reaching MinScore. With
// SelfAnswered set it only qualifies when the answer author also asked the
// question.
type AnswerScoreRule struct {
	Badge        BadgeKey
	MinScore     int
	SelfAnswered bool
}

func (r AnswerScoreRule) Key() BadgeKey      { return r.Badge }
func (r AnswerScoreRule) Kinds() []EventKind { return []EventKind{EventVoteUp} }
func (r AnswerScoreRule) Scope() Scope       { return ScopeContent }

func (r AnswerScoreRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindAnswer {
		return nil, nil
	}
	ok, author, err := answerAtScore(ctx, scores, ev.Content, r.MinScore)
	if err != nil || !ok {
		return nil, err
	}
	if r.SelfAnswered {
		asker, err := scores.AskerOf(ctx, ev.Content)
		if err != nil {
			return nil, err
		}
		if asker != author {
			return nil, nil
		}
	}
	ref := ev.Content
	return &Claim{Badge: r.Badge, Recipient: author, Content: &ref}, nil
}

// QuestionScoreRule awards per distinct question reaching MinScore.
type QuestionScoreRule struct {
	Badge    BadgeKey
	MinScore int
}

func (r QuestionScoreRule) Key() BadgeKey      { return r.Badge }
func (r QuestionScoreRule) Kinds() []EventKind { return []EventKind{EventVoteUp} }
func (r QuestionScoreRule) Scope() Scope       { return ScopeContent }

func (r QuestionScoreRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindQuestion {
		return nil, nil
	}
	score, err := scores.Score(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if score < r.MinScore {
		return nil, nil
	}
	author, err := scores.AuthorOf(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	ref := ev.Content
	return &Claim{Badge: r.Badge, Recipient: author, Content: &ref}, nil
}

// ViewCountRule awards per distinct question whose view count reaches
// MinViews.
type ViewCountRule struct {
	Badge    BadgeKey
	MinViews int
}

func (r ViewCountRule) Key() BadgeKey      { return r.Badge }
func (r ViewCountRule) Kinds() []EventKind { return []EventKind{EventViewContent} }
func (r ViewCountRule) Scope() Scope       { return ScopeContent }

func (r ViewCountRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindQuestion {
		return nil, nil
	}
	views, err := scores.ViewCount(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if views < r.MinViews {
		return nil, nil
	}
	author, err := scores.AuthorOf(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	ref := ev.Content
	return &Claim{Badge: r.Badge, Recipient: author, Content: &ref}, nil
}

// VoteRole selects which party a first-vote badge goes to.
type VoteRole int

const (
	// RoleAuthor awards the author of the voted content.
	RoleAuthor VoteRole = iota
	// RoleVoter awards the user who cast the vote.
	RoleVoter
)

// FirstVoteRule awards once per user for life on the first qualifying vote:
// either the first vote received on their content (RoleAuthor) or the first
// vote they cast (RoleVoter). OnlyKind, when set, restricts the content
// shape the vote must land on.
type FirstVoteRule struct {
	Badge     BadgeKey
	Trigger   EventKind
	Recipient VoteRole
	OnlyKind  ContentKind
}

func (r FirstVoteRule) Key() BadgeKey      { return r.Badge }
func (r FirstVoteRule) Kinds() []EventKind { return []EventKind{r.Trigger} }
func (r FirstVoteRule) Scope() Scope       { return ScopeLifetime }

func (r FirstVoteRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if r.OnlyKind != "" && ev.ContentKind != r.OnlyKind {
		return nil, nil
	}
	if r.Recipient == RoleVoter {
		return &Claim{Badge: r.Badge, Recipient: ev.Actor}, nil
	}
	author, err := scores.AuthorOf(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	return &Claim{Badge: r.Badge, Recipient: author}, nil
}

// VoteCountRule awards once per user for life when their lifetime count of
// votes cast reaches MinVotes. The counter is read from the provider, never
// diffed from deltas, so a later retraction cannot revoke the award and a
// re-crossing cannot duplicate it.
type VoteCountRule struct {
	Badge    BadgeKey
	MinVotes int
}

func (r VoteCountRule) Key() BadgeKey      { return r.Badge }
func (r VoteCountRule) Kinds() []EventKind { return []EventKind{EventVoteUp, EventVoteDown} }
func (r VoteCountRule) Scope() Scope       { return ScopeLifetime }

func (r VoteCountRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	cast, err := scores.VotesCastBy(ctx, ev.Actor)
	if err != nil {
		return nil, err
	}
	if cast < r.MinVotes {
		return nil, nil
	}
	return &Claim{Badge: r.Badge, Recipient: ev.Actor}, nil
}

// FirstAcceptedRule awards the asker once per life on their first accepted
// answer, whatever its score. Re-checking acceptance on either trigger keeps
// the outcome identical regardless of event order; the store's uniqueness
// guard absorbs the duplicate attempt.
type FirstAcceptedRule struct {
	Badge BadgeKey
}

func (r FirstAcceptedRule) Key() BadgeKey { return r.Badge }
func (r FirstAcceptedRule) Kinds() []EventKind {
	return []EventKind{EventAcceptAnswer, EventVoteUp}
}
func (r FirstAcceptedRule) Scope() Scope { return ScopeLifetime }

func (r FirstAcceptedRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindAnswer {
		return nil, nil
	}
	accepted, err := scores.IsAccepted(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}
	asker, err := scores.AskerOf(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	return &Claim{Badge: r.Badge, Recipient: asker}, nil
}

// AcceptedScoreRule awards the answer author per distinct answer that is
// currently accepted and currently at MinScore or above. The predicate reads
// both facts fresh on every trigger, so "accept then upvote" and "upvote
// then accept" converge on the same single award.
type AcceptedScoreRule struct {
	Badge    BadgeKey
	MinScore int
}

func (r AcceptedScoreRule) Key() BadgeKey { return r.Badge }
func (r AcceptedScoreRule) Kinds() []EventKind {
	return []EventKind{EventAcceptAnswer, EventVoteUp}
}
func (r AcceptedScoreRule) Scope() Scope { return ScopeContent }

func (r AcceptedScoreRule) Evaluate(ctx context.Context, ev Event, scores ScoreProvider) (*Claim, error) {
	if ev.ContentKind != KindAnswer {
		return nil, nil
	}
	accepted, err := scores.IsAccepted(ctx, ev.Content)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}
	ok, author, err := answerAtScore(ctx, scores, ev.Content, r.MinScore)
	if err != nil || !ok {
		return nil, err
	}
	ref := ev.Content
	return &Claim{Badge: r.Badge, Recipient: author, Content: &ref}, nil
}

// answerAtScore reports whether the answer's current score has reached min,
// returning the answer author on success.
func answerAtScore(ctx context.Context, scores ScoreProvider, ref ContentRef, min int) (bool, UserID, error) {
	score, err := scores.Score(ctx, ref)
	if err != nil {
		return false, "", err
	}
	if score < min {
		return false, "", nil
	}
	author, err := scores.AuthorOf(ctx, ref)
	if err != nil {
		return false, "", err
	}
	return true, author, nil
}
