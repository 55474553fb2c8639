package chanutil

import (
	"context"
	"sync"
)

// Mult is a fan-out primitive: every subscriber receives every value
// taken from the source channel. A slow subscriber back-pressures the
// source — Mult deliberately does not drop values, unlike a typical
// best-effort broadcast bus, because the switchboard relies on it to
// preserve message ordering end to end (spec §9, "Channel mult/pub").
type Mult[T any] struct {
	mu   sync.Mutex
	subs map[<-chan T]chan T
	done chan struct{}
}

// NewMult starts a Mult that copies every value read from src to each
// current subscriber. It stops once src is closed or ctx is done, closing
// every subscriber channel in turn.
func NewMult[T any](ctx context.Context, src <-chan T) *Mult[T] {
	m := &Mult[T]{
		subs: make(map[<-chan T]chan T),
		done: make(chan struct{}),
	}
	go m.run(ctx, src)
	return m
}

func (m *Mult[T]) run(ctx context.Context, src <-chan T) {
	defer close(m.done)
	defer m.closeAll()
	for {
		select {
		case v, ok := <-src:
			if !ok {
				return
			}
			m.broadcast(ctx, v)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Mult[T]) broadcast(ctx context.Context, v T) {
	m.mu.Lock()
	targets := make([]chan T, 0, len(m.subs))
	for _, ch := range m.subs {
		targets = append(targets, ch)
	}
	m.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- v:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Mult[T]) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = make(map[<-chan T]chan T)
}

// Tap adds a subscriber with the given buffer depth and returns its
// receive-only channel. The caller must keep draining it (or call
// Untap) — Mult blocks the whole fan-out on a stalled subscriber.
func (m *Mult[T]) Tap(bufSize int) <-chan T {
	ch := make(chan T, bufSize)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[ch] = ch
	return ch
}

// Untap removes a subscriber previously returned by Tap and closes its
// channel. Safe to call more than once for the same channel.
func (m *Mult[T]) Untap(ch <-chan T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(c)
	}
}

// Done returns a channel closed once the Mult's source is exhausted.
func (m *Mult[T]) Done() <-chan struct{} {
	return m.done
}
