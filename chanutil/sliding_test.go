package chanutil

import (
	"testing"
	"time"
)

func TestSlidingWriterDropsOldest(t *testing.T) {
	w := NewSlidingWriter[int](1)

	if dropped := w.Send(1); dropped {
		t.Error("first send into empty buffer should not report a drop")
	}
	if dropped := w.Send(2); !dropped {
		t.Error("second send into a full buffer should report a drop")
	}

	got := <-w.Chan()
	if got != 2 {
		t.Errorf("got %d, want 2 (the newest value)", got)
	}
}

func TestSlidingWriterNeverBlocks(t *testing.T) {
	w := NewSlidingWriter[int](2)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			w.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked with nothing draining Chan()")
	}
}

func TestSlidingWriterMinimumCapacity(t *testing.T) {
	w := NewSlidingWriter[int](0)
	if cap(w.Chan()) != 1 {
		t.Errorf("capacity = %d, want 1 (minimum enforced)", cap(w.Chan()))
	}
}
