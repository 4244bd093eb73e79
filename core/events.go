package core

import "time"

// EventKind enumerates the domain occurrences the engine reacts to.
type EventKind string

const (
	EventVoteUp          EventKind = "vote_up"
	EventVoteDown        EventKind = "vote_down"
	EventVoteRetractUp   EventKind = "vote_retract_up"
	EventVoteRetractDown EventKind = "vote_retract_down"
	EventAcceptAnswer    EventKind = "accept_answer"
	EventDeleteContent   EventKind = "delete_content"
	EventViewContent     EventKind = "view_content"
)

// Event is an immutable record of one domain occurrence, produced by the
// content/vote subsystem. Subject carries the author of the content acted
// upon when the producer knows it; rules fall back to the ScoreProvider
// otherwise.
type Event struct {
	Kind        EventKind   `json:"kind"`
	Actor       UserID      `json:"actor"`
	Subject     UserID      `json:"subject,omitempty"`
	Content     ContentRef  `json:"content"`
	ContentKind ContentKind `json:"content_kind"`
	Delta       int         `json:"delta,omitempty"`
	Time        time.Time   `json:"time"`
}

func newEvent(kind EventKind, actor UserID, ref ContentRef, ck ContentKind, delta int) Event {
	return Event{Kind: kind, Actor: actor, Content: ref, ContentKind: ck, Delta: delta, Time: time.Now().UTC()}
}

func NewVoteUp(actor UserID, ref ContentRef, kind ContentKind) Event {
	return newEvent(EventVoteUp, actor, ref, kind, 1)
}

func NewVoteDown(actor UserID, ref ContentRef, kind ContentKind) Event {
	return newEvent(EventVoteDown, actor, ref, kind, -1)
}

func NewVoteRetractUp(actor UserID, ref ContentRef, kind ContentKind) Event {
	return newEvent(EventVoteRetractUp, actor, ref, kind, -1)
}

func NewVoteRetractDown(actor UserID, ref ContentRef, kind ContentKind) Event {
	return newEvent(EventVoteRetractDown, actor, ref, kind, 1)
}

func NewAcceptAnswer(actor UserID, answer ContentRef) Event {
	return newEvent(EventAcceptAnswer, actor, answer, KindAnswer, 0)
}

func NewDeleteContent(actor UserID, ref ContentRef, kind ContentKind) Event {
	return newEvent(EventDeleteContent, actor, ref, kind, 0)
}

func NewViewContent(actor UserID, question ContentRef) Event {
	return newEvent(EventViewContent, actor, question, KindQuestion, 0)
}

// ValidKind reports whether k is one of the engine-known event kinds.
func ValidKind(k EventKind) bool {
	switch k {
	case EventVoteUp, EventVoteDown, EventVoteRetractUp, EventVoteRetractDown,
		EventAcceptAnswer, EventDeleteContent, EventViewContent:
		return true
	}
	return false
}
