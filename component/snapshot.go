package component

import (
	"reflect"
	"sync/atomic"
	"time"

	"github.com/nugget/compruntime/firehose"
	"github.com/nugget/compruntime/msgtype"
)

// snapshotPublisher is the closure described in spec §4.5: reads the
// watched state, applies the snapshot transform, and emits the result
// on the sliding-out channel plus (optionally) a firehose envelope.
type snapshotPublisher struct {
	cmpID         string
	state         *Cell
	watch         WatchFunc
	xform         SnapshotXformFunc
	slidingOut    *port
	firehosePort  *port
	snapsOnFireho bool
}

// Publish performs one snapshot publication (spec §4.5 steps 1-4).
func (p *snapshotPublisher) Publish() {
	watched := p.watch(p.state.Read())
	snapshot := p.xform(watched)

	p.slidingOut.Send(Delivery{
		Msg:  Message{Type: msgtype.AppState, Payload: snapshot},
		Meta: Meta{From: p.cmpID, CorrID: freshID(), Tag: freshID()},
	})

	if p.snapsOnFireho {
		env := firehose.Envelope{CmpID: p.cmpID, Snapshot: snapshot, TS: nowMillis()}
		p.firehosePort.Send(Delivery{
			Msg:  Message{Type: msgtype.FirehoseCmpPublishState, Payload: env},
			Meta: Meta{CmpSeq: []string{p.cmpID}, CorrID: freshID(), Tag: freshID()},
		})
	}
}

// changed reports whether a Swap from old to new changed the watched
// value.
func (p *snapshotPublisher) changed(old, new any) bool {
	return !reflect.DeepEqual(p.watch(old), p.watch(new))
}

// changeWatcher implements spec §4.6: a subscriber on the state cell
// that schedules a snapshot publication on every observed transition.
// Two scheduling disciplines are supported:
//
//   - Immediate (default): publish synchronously from the Subscribe
//     callback.
//   - Rate-limited via frame tick: set a dirty flag from the callback; a
//     periodic ticker publishes and clears the flag if set. Intended for
//     UI-facing runtimes where snapshot production must be capped to a
//     display refresh rate (nominally ~60Hz).
//
// Both guarantee: (a) no snapshot is published unless the state actually
// changed since the last publish, and (b) after the last change, at
// least one snapshot is eventually published.
type changeWatcher struct {
	publisher *snapshotPublisher
	dirty     atomic.Bool

	stopTick chan struct{}
}

// newImmediateWatcher returns a watcher that publishes synchronously on
// every state transition that changes the watched value.
func newImmediateWatcher(p *snapshotPublisher) ChangeFunc {
	return func(old, new any) {
		if p.changed(old, new) {
			p.Publish()
		}
	}
}

// newFrameTickWatcher starts a ticker at the given rate that publishes
// once per tick iff a change was observed since the last publish. It
// returns the ChangeFunc to subscribe with and a stop function.
func newFrameTickWatcher(p *snapshotPublisher, rate time.Duration) (ChangeFunc, func()) {
	w := &changeWatcher{publisher: p, stopTick: make(chan struct{})}
	ticker := time.NewTicker(rate)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if w.dirty.CompareAndSwap(true, false) {
					w.publisher.Publish()
				}
			case <-w.stopTick:
				return
			}
		}
	}()

	onChange := func(old, new any) {
		if p.changed(old, new) {
			w.dirty.Store(true)
		}
	}
	stop := func() { close(w.stopTick) }
	return onChange, stop
}
