package component

import (
	"testing"
	"time"

	"github.com/nugget/compruntime/chanutil"
)

func TestEmitsBufferedUntilSystemReady(t *testing.T) {
	c, err := New("widget",
		WithOutChan(chanutil.BufferSpec(4)),
		WithHandler(testPing, func(ctx *Context) {
			ctx.Emit(OutMessage{Type: testPong})
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	out := c.OutMult().Tap(4)

	c.InChan() <- Delivery{Msg: Message{Type: testPing}}

	select {
	case d := <-out:
		t.Fatalf("emission leaked onto the out-channel before SystemReady: %v", d.Msg.Type)
	case <-time.After(100 * time.Millisecond):
	}

	c.SystemReady()

	recvOrTimeout(t, out, "buffered emission released by SystemReady")
}

func TestSystemReadyIsIdempotent(t *testing.T) {
	publishes := 0
	c, err := New("widget", WithStateFn(func(emit EmitFunc) (any, func()) { return 1, nil }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	snaps := c.SnapshotMult().Tap(4)
	c.SystemReady()
	c.SystemReady() // Second call must be a no-op.

	recvOrTimeout(t, snaps, "initial snapshot")
	publishes++

	select {
	case d := <-snaps:
		t.Fatalf("extra snapshot published by the redundant SystemReady call: %v", d.Msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}

	if publishes != 1 {
		t.Fatalf("publishes = %d, want 1", publishes)
	}
}
