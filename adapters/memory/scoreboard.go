package memory

import (
	"context"
	"fmt"
	"sync"

	"badgekit/core"
)

// Scoreboard is an in-memory stand-in for the external content/vote
// subsystem: it tracks questions, answers, scores, views, votes cast, and
// acceptance, and hands back the domain event for each mutation so callers
// can feed an evaluator. Deletion is soft — scores stay readable at
// evaluation time, which the deletion badges depend on; Remove simulates
// content vanishing entirely.
type Scoreboard struct {
	mu        sync.Mutex
	posts     map[core.ContentRef]*post
	accepted  map[core.ContentRef]core.ContentRef // question -> accepted answer
	votesCast map[core.UserID]int
}

type post struct {
	kind     core.ContentKind
	author   core.UserID
	question core.ContentRef // set for answers
	score    int
	views    int
	deleted  bool
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		posts:     make(map[core.ContentRef]*post),
		accepted:  make(map[core.ContentRef]core.ContentRef),
		votesCast: make(map[core.UserID]int),
	}
}

// PostQuestion registers a question authored by the user.
func (b *Scoreboard) PostQuestion(ref core.ContentRef, author core.UserID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts[ref] = &post{kind: core.KindQuestion, author: author}
}

// PostAnswer registers an answer to the given question.
func (b *Scoreboard) PostAnswer(ref core.ContentRef, author core.UserID, question core.ContentRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts[ref] = &post{kind: core.KindAnswer, author: author, question: question}
}

// SetScore forces a content item's score, mirroring test fixtures that
// position a score just under a threshold.
func (b *Scoreboard) SetScore(ref core.ContentRef, score int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.posts[ref]; ok {
		p.score = score
	}
}

// Upvote applies an upvote and returns the matching event.
func (b *Scoreboard) Upvote(voter core.UserID, ref core.ContentRef) core.Event {
	return b.vote(voter, ref, +1, core.NewVoteUp)
}

// Downvote applies a downvote and returns the matching event.
func (b *Scoreboard) Downvote(voter core.UserID, ref core.ContentRef) core.Event {
	return b.vote(voter, ref, -1, core.NewVoteDown)
}

// RetractUpvote undoes an upvote: score and the voter's lifetime cast count
// both drop.
func (b *Scoreboard) RetractUpvote(voter core.UserID, ref core.ContentRef) core.Event {
	return b.retract(voter, ref, -1, core.NewVoteRetractUp)
}

// RetractDownvote undoes a downvote, raising the score back up.
func (b *Scoreboard) RetractDownvote(voter core.UserID, ref core.ContentRef) core.Event {
	return b.retract(voter, ref, +1, core.NewVoteRetractDown)
}

func (b *Scoreboard) vote(voter core.UserID, ref core.ContentRef, delta int, mk func(core.UserID, core.ContentRef, core.ContentKind) core.Event) core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind := core.KindQuestion
	if p, ok := b.posts[ref]; ok {
		p.score += delta
		kind = p.kind
	}
	b.votesCast[voter]++
	return mk(voter, ref, kind)
}

func (b *Scoreboard) retract(voter core.UserID, ref core.ContentRef, delta int, mk func(core.UserID, core.ContentRef, core.ContentKind) core.Event) core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind := core.KindQuestion
	if p, ok := b.posts[ref]; ok {
		p.score += delta
		kind = p.kind
	}
	if b.votesCast[voter] > 0 {
		b.votesCast[voter]--
	}
	return mk(voter, ref, kind)
}

// Accept marks the answer as the accepted one for its question, replacing
// any previous acceptance.
func (b *Scoreboard) Accept(asker core.UserID, answer core.ContentRef) core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.posts[answer]; ok && p.kind == core.KindAnswer {
		b.accepted[p.question] = answer
	}
	return core.NewAcceptAnswer(asker, answer)
}

// View records one view of a question.
func (b *Scoreboard) View(viewer core.UserID, question core.ContentRef) core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.posts[question]; ok {
		p.views++
	}
	return core.NewViewContent(viewer, question)
}

// Delete soft-deletes the content; its state remains readable.
func (b *Scoreboard) Delete(actor core.UserID, ref core.ContentRef) core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind := core.KindQuestion
	if p, ok := b.posts[ref]; ok {
		p.deleted = true
		kind = p.kind
	}
	return core.NewDeleteContent(actor, ref, kind)
}

// Remove hard-deletes the content: subsequent provider reads fail with
// StateUnavailable.
func (b *Scoreboard) Remove(ref core.ContentRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.posts, ref)
}

// ScoreProvider

func (b *Scoreboard) lookup(ref core.ContentRef) (*post, error) {
	if p, ok := b.posts[ref]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("content %s: %w", ref, core.ErrStateUnavailable)
}

func (b *Scoreboard) Score(_ context.Context, ref core.ContentRef) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(ref)
	if err != nil {
		return 0, err
	}
	return p.score, nil
}

func (b *Scoreboard) ViewCount(_ context.Context, ref core.ContentRef) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(ref)
	if err != nil {
		return 0, err
	}
	return p.views, nil
}

func (b *Scoreboard) VotesCastBy(_ context.Context, user core.UserID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.votesCast[user], nil
}

func (b *Scoreboard) IsAccepted(_ context.Context, ref core.ContentRef) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(ref)
	if err != nil {
		return false, err
	}
	return p.kind == core.KindAnswer && b.accepted[p.question] == ref, nil
}

func (b *Scoreboard) AuthorOf(_ context.Context, ref core.ContentRef) (core.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(ref)
	if err != nil {
		return "", err
	}
	return p.author, nil
}

func (b *Scoreboard) AskerOf(_ context.Context, ref core.ContentRef) (core.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookup(ref)
	if err != nil {
		return "", err
	}
	if p.kind == core.KindAnswer {
		q, err := b.lookup(p.question)
		if err != nil {
			return "", err
		}
		return q.author, nil
	}
	return p.author, nil
}

var _ core.ScoreProvider = (*Scoreboard)(nil)
