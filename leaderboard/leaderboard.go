package leaderboard

import (
	"context"
	"sync"

	"badgekit/core"
	"badgekit/engine"
)

// Entry represents one user's position by total awards earned.
type Entry struct {
	User   core.UserID
	Awards int64
}

// Board abstracts ranked award-count operations.
type Board interface {
	Update(user core.UserID, awards int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}

// Tracker keeps a Board current by consuming award notifications.
type Tracker struct {
	mu    sync.Mutex
	board Board
	total map[core.UserID]int64
}

func NewTracker(board Board) *Tracker {
	return &Tracker{board: board, total: map[core.UserID]int64{}}
}

// Attach subscribes the tracker to every badge on the bus. Returns the
// unsubscribe func.
func (t *Tracker) Attach(bus *engine.Bus) func() {
	return bus.Subscribe(engine.KeyAll, t.OnAward)
}

// OnAward bumps the recipient's total and repositions them on the board.
func (t *Tracker) OnAward(_ context.Context, n engine.Notification) {
	t.mu.Lock()
	t.total[n.Recipient]++
	total := t.total[n.Recipient]
	t.mu.Unlock()
	t.board.Update(n.Recipient, total)
}
