package chanutil

import (
	"context"
	"testing"
	"time"
)

func TestMultFanOutToAllSubscribers(t *testing.T) {
	src := make(chan int, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMult[int](ctx, src)
	const n = 3
	taps := make([]<-chan int, n)
	for i := range taps {
		taps[i] = m.Tap(1)
	}

	src <- 7

	for i, ch := range taps {
		select {
		case got := <-ch:
			if got != 7 {
				t.Errorf("tap %d: got %d, want 7", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("tap %d: timed out waiting for broadcast", i)
		}
	}
}

func TestMultUntapStopsDelivery(t *testing.T) {
	src := make(chan int, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMult[int](ctx, src)
	ch := m.Tap(1)
	m.Untap(ch)

	// Reading from an untapped channel must see it closed, not hang.
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected untapped channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for untapped channel to close")
	}
}

func TestMultClosesSubscribersWhenSourceCloses(t *testing.T) {
	src := make(chan int)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMult[int](ctx, src)
	ch := m.Tap(1)
	close(src)

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() never closed after source closed")
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber channel never closed")
	}
}

func TestMultUntapIsIdempotent(t *testing.T) {
	src := make(chan int, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMult[int](ctx, src)
	ch := m.Tap(1)
	m.Untap(ch)
	m.Untap(ch) // Must not panic on double close.
}
