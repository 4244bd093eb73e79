package engine

import (
	"context"
	"sync"
	"time"

	"badgekit/core"
)

// Notification announces one newly created award. It is the engine's only
// outbound signal; delivery (email, toast, feed) belongs to external
// consumers.
type Notification struct {
	Badge     core.BadgeKey    `json:"badge"`
	Recipient core.UserID      `json:"recipient"`
	Content   *core.ContentRef `json:"content,omitempty"`
	Time      time.Time        `json:"time"`
}

// KeyAll subscribes a handler to notifications for every badge.
const KeyAll core.BadgeKey = "*"

type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

type subscription struct {
	id  int64
	key core.BadgeKey
	fn  func(context.Context, Notification)
}

// Bus provides thread-safe pub/sub of award notifications with sync and
// async dispatch.
type Bus struct {
	mode         DispatchMode
	mu           sync.RWMutex
	subs         map[core.BadgeKey]map[int64]subscription
	nextID       int64
	asyncQueue   chan Notification
	asyncWorkers int
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewBus(mode DispatchMode) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		mode:         mode,
		subs:         make(map[core.BadgeKey]map[int64]subscription),
		asyncQueue:   make(chan Notification, 2048),
		asyncWorkers: 4,
		ctx:          ctx,
		cancel:       cancel,
	}
	if mode == DispatchAsync {
		b.startWorkers()
	}
	return b
}

func (b *Bus) startWorkers() {
	for i := 0; i < b.asyncWorkers; i++ {
		go func() {
			for {
				select {
				case n := <-b.asyncQueue:
					b.dispatchSync(context.Background(), n)
				case <-b.ctx.Done():
					return
				}
			}
		}()
	}
}

// Close stops async workers.
func (b *Bus) Close() {
	b.cancel()
	// allow workers to drain briefly
	time.Sleep(10 * time.Millisecond)
}

// Subscribe registers a handler for one badge key, or for all badges via
// KeyAll. Returns an unsubscribe func.
func (b *Bus) Subscribe(key core.BadgeKey, handler func(context.Context, Notification)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.subs[key] == nil {
		b.subs[key] = make(map[int64]subscription)
	}
	b.subs[key][id] = subscription{id: id, key: key, fn: handler}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m := b.subs[key]; m != nil {
			delete(m, id)
		}
	}
}

// Publish sends a notification to matching subscribers.
func (b *Bus) Publish(ctx context.Context, n Notification) {
	if b.mode == DispatchAsync {
		select {
		case b.asyncQueue <- n:
		default:
			// Drop if queue full to preserve latency; alternative is blocking
		}
		return
	}
	b.dispatchSync(ctx, n)
}

func (b *Bus) dispatchSync(ctx context.Context, n Notification) {
	b.mu.RLock()
	// copy to avoid holding lock during callbacks
	handlers := make([]func(context.Context, Notification), 0, len(b.subs[n.Badge])+len(b.subs[KeyAll]))
	for _, s := range b.subs[n.Badge] {
		handlers = append(handlers, s.fn)
	}
	for _, s := range b.subs[KeyAll] {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, n)
	}
}
