package chanutil

import (
	"context"
	"sync"
)

// Pub is a mult partitioned by a key function: each subscriber chooses
// which topic keys it wants to receive. Like Mult, Pub does not drop:
// values are routed one at a time, so a stalled subscriber holds up
// every later value, whatever its topic.
type Pub[T any, K comparable] struct {
	keyFn func(T) K

	mu     sync.Mutex
	topics map[K]map[chan T]struct{}
	done   chan struct{}
}

// NewPub starts a Pub that reads src and routes each value to every
// subscriber registered for keyFn(value). It stops once src is closed or
// ctx is done.
func NewPub[T any, K comparable](ctx context.Context, src <-chan T, keyFn func(T) K) *Pub[T, K] {
	p := &Pub[T, K]{
		keyFn:  keyFn,
		topics: make(map[K]map[chan T]struct{}),
		done:   make(chan struct{}),
	}
	go p.run(ctx, src)
	return p
}

func (p *Pub[T, K]) run(ctx context.Context, src <-chan T) {
	defer close(p.done)
	defer p.closeAll()
	for {
		select {
		case v, ok := <-src:
			if !ok {
				return
			}
			p.route(ctx, v)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pub[T, K]) route(ctx context.Context, v T) {
	key := p.keyFn(v)
	p.mu.Lock()
	subs := p.topics[key]
	targets := make([]chan T, 0, len(subs))
	for ch := range subs {
		targets = append(targets, ch)
	}
	p.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- v:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pub[T, K]) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, subs := range p.topics {
		for ch := range subs {
			close(ch)
		}
	}
	p.topics = make(map[K]map[chan T]struct{})
}

// Subscribe registers a subscriber for a single topic key and returns
// its receive-only channel.
func (p *Pub[T, K]) Subscribe(key K, bufSize int) <-chan T {
	ch := make(chan T, bufSize)
	p.mu.Lock()
	defer p.mu.Unlock()
	subs, ok := p.topics[key]
	if !ok {
		subs = make(map[chan T]struct{})
		p.topics[key] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber from a topic and closes its channel.
func (p *Pub[T, K]) Unsubscribe(key K, ch <-chan T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs, ok := p.topics[key]
	if !ok {
		return
	}
	for c := range subs {
		// Identity match: ch is the receive-only view of the same
		// channel returned by Subscribe, so range comparison against
		// the map's own chan T keys works directly once we find it by
		// scanning (topic sets are small: component out-channels rarely
		// fan out to more than a handful of message types at once).
		var asRecv <-chan T = c
		if asRecv == ch {
			delete(subs, c)
			close(c)
			return
		}
	}
}

// Done returns a channel closed once the Pub's source is exhausted.
func (p *Pub[T, K]) Done() <-chan struct{} {
	return p.done
}
