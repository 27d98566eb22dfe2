// Package watch is an in-process change feed. Writers call Notify with the keys they touched;
// subscribers re-run their query and receive the full result each time.
package watch

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Snapshot is one delivery: the query result at the time of a change, or the query error.
type Snapshot[T any] struct {
	Value T
	Err   error
}

type handle struct {
	owner  string
	key    string
	wake   chan struct{}
	cancel context.CancelFunc
}

type slot struct {
	owner string
	key   string
}

// Hub routes change notifications to subscriptions.
type Hub struct {
	mu    sync.Mutex
	byKey map[string]map[*handle]struct{}
	owned map[slot]*handle
}

func NewHub() *Hub {
	return &Hub{
		byKey: make(map[string]map[*handle]struct{}),
		owned: make(map[slot]*handle),
	}
}

// Notify wakes every subscription on the given keys. It never blocks.
func (h *Hub) Notify(keys ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range keys {
		for sub := range h.byKey[key] {
			select {
			case sub.wake <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers returns the number of live subscriptions on key.
func (h *Hub) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byKey[key])
}

// CloseAll cancels every subscription, e.g. on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.owned {
		sub.cancel()
	}
}

// register adds sub and returns the handle it replaces, if any.
func (h *Hub) register(sub *handle) *handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := slot{owner: sub.owner, key: sub.key}
	prev := h.owned[s]
	if prev != nil {
		delete(h.byKey[prev.key], prev)
	}
	h.owned[s] = sub
	if h.byKey[sub.key] == nil {
		h.byKey[sub.key] = make(map[*handle]struct{})
	}
	h.byKey[sub.key][sub] = struct{}{}
	return prev
}

func (h *Hub) unregister(sub *handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.byKey[sub.key], sub)
	if len(h.byKey[sub.key]) == 0 {
		delete(h.byKey, sub.key)
	}
	s := slot{owner: sub.owner, key: sub.key}
	if h.owned[s] == sub {
		delete(h.owned, s)
	}
}

// Subscription delivers snapshots on C until it is closed, replaced, or its context ends.
// C is closed when the subscription stops.
type Subscription[T any] struct {
	C <-chan Snapshot[T]

	handle *handle
	done   chan struct{}
}

// Subscribe runs query once immediately and again after every Notify on key.
// An owner holds at most one subscription per key: subscribing again cancels the previous one.
// C only ever holds the newest snapshot, so a slow reader skips intermediate results.
func Subscribe[T any](ctx context.Context, hub *Hub, owner, key string, query func(context.Context) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &handle{
		owner:  owner,
		key:    key,
		wake:   make(chan struct{}, 1),
		cancel: cancel,
	}
	out := make(chan Snapshot[T], 1)
	sub := &Subscription[T]{C: out, handle: h, done: make(chan struct{})}

	// The initial run is queued before the handle is visible to Notify.
	h.wake <- struct{}{}
	if prev := hub.register(h); prev != nil {
		log.Debug("Replacing subscription", "owner", owner, "key", key)
		prev.cancel()
	}

	go func() {
		defer close(sub.done)
		defer close(out)
		defer hub.unregister(h)

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.wake:
			}

			value, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			// Drop an undelivered snapshot; this goroutine is the only sender so the send cannot block.
			select {
			case <-out:
			default:
			}
			out <- Snapshot[T]{Value: value, Err: err}
		}
	}()
	return sub
}

// Close stops the subscription and waits for its goroutine to exit. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.handle.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
