package component

import (
	"testing"

	"github.com/nugget/compruntime/msgtype"
)

func TestCmdGetStateRepliesWithSnapshot(t *testing.T) {
	c, err := New("widget", WithStateFn(func(emit EmitFunc) (any, func()) {
		return map[string]any{"count": 3}, nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	out := c.OutMult().Tap(4)
	c.SystemReady()

	c.InChan() <- Delivery{Msg: Message{Type: msgtype.CmdGetState}}

	d := recvOrTimeout(t, out, "state/snapshot reply")
	if d.Msg.Type != msgtype.StateSnapshot {
		t.Fatalf("got type %v, want %v", d.Msg.Type, msgtype.StateSnapshot)
	}
	body, ok := d.Msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload is %T, want map[string]any", d.Msg.Payload)
	}
	if body["cmp_id"] != "widget" {
		t.Errorf("cmp_id = %v, want %q", body["cmp_id"], "widget")
	}
	snap, ok := body["snapshot"].(map[string]any)
	if !ok || snap["count"] != 3 {
		t.Errorf("snapshot = %v, want map with count=3", body["snapshot"])
	}
}

func TestCmdPublishStatePublishesSnapshot(t *testing.T) {
	c, err := New("widget", WithStateFn(func(emit EmitFunc) (any, func()) {
		return 5, nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	snaps := c.SnapshotMult().Tap(4)
	// Drain the initial snapshot SystemReady publishes.
	c.SystemReady()
	recvOrTimeout(t, snaps, "initial snapshot from SystemReady")

	c.InChan() <- Delivery{Msg: Message{Type: msgtype.CmdPublishState}}

	d := recvOrTimeout(t, snaps, "snapshot after cmd/publish-state")
	if d.Msg.Type != msgtype.AppState {
		t.Errorf("got type %v, want %v", d.Msg.Type, msgtype.AppState)
	}
	if d.Msg.Payload != 5 {
		t.Errorf("got payload %v, want 5", d.Msg.Payload)
	}
	if d.Meta.From != "widget" {
		t.Errorf("Meta.From = %q, want %q", d.Meta.From, "widget")
	}
}
