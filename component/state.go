package component

import "sync"

// ChangeFunc subscribers are notified with the value before and after a
// Swap.
type ChangeFunc func(old, new any)

// unsubscribeFunc cancels a Subscribe registration.
type unsubscribeFunc func()

// Cell is a mutable, watchable container holding a component's private
// state (spec §9, "Watchers"). It exposes read, swap, and subscribe —
// nothing else touches the value directly. State is carried as `any`,
// mirroring the dynamically-typed values the spec's payloads and
// snapshots already traffic in; a component author who wants static
// typing wraps read/swap with their own accessor functions around a
// concrete struct stored in the Cell.
type Cell struct {
	mu    sync.RWMutex
	value any

	subMu  sync.Mutex
	subs   map[int]ChangeFunc
	nextID int
}

// NewCell creates a Cell holding the given initial value.
func NewCell(initial any) *Cell {
	return &Cell{value: initial, subs: make(map[int]ChangeFunc)}
}

// Read returns the current value.
func (c *Cell) Read() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Swap applies fn to the current value, stores the result, and notifies
// subscribers with the old and new values. Every Swap is treated as a
// transition — the change watcher (spec §4.6) is responsible for
// deciding whether a transition warrants a new snapshot publication.
func (c *Cell) Swap(fn func(any) any) (old, new any) {
	c.mu.Lock()
	old = c.value
	new = fn(old)
	c.value = new
	c.mu.Unlock()

	c.subMu.Lock()
	watchers := make([]ChangeFunc, 0, len(c.subs))
	for _, w := range c.subs {
		watchers = append(watchers, w)
	}
	c.subMu.Unlock()

	for _, w := range watchers {
		w(old, new)
	}
	return old, new
}

// Subscribe registers a callback invoked on every Swap with the old and
// new values. Returns a function that cancels the subscription.
func (c *Cell) Subscribe(fn ChangeFunc) unsubscribeFunc {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}
