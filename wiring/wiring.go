// Package wiring provides a minimal, illustrative connector between two
// components' channels. It is deliberately thin — spec §1 places the
// real switchboard (topology management, dynamic reconfiguration, pipe
// routing by message type) out of scope for this core. This package
// exists only so the componentdemo CLI and the tests have something to
// wire a two-component pipeline together with.
package wiring

import (
	"context"

	"github.com/nugget/compruntime/component"
	"github.com/nugget/compruntime/msgtype"
)

// Pipe forwards every value a source component emits on its out-channel
// to a destination component's ordered in-channel, until ctx is done or
// the source's out-channel is exhausted. It taps the source's out mult
// so other subscribers (e.g. a firehose recorder) keep working
// independently.
func Pipe(ctx context.Context, src, dst *component.Component) {
	ch := src.OutMult().Tap(8)
	go func() {
		defer src.OutMult().Untap(ch)
		for {
			select {
			case d, ok := <-ch:
				if !ok {
					return
				}
				select {
				case dst.InChan() <- d:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PipeTopic forwards only messages of type t from src's type-keyed out
// publisher to dst's ordered in-channel.
func PipeTopic(ctx context.Context, src, dst *component.Component, t msgtype.Type) {
	ch := src.OutPub().Subscribe(t, 8)
	go func() {
		defer src.OutPub().Unsubscribe(t, ch)
		for {
			select {
			case d, ok := <-ch:
				if !ok {
					return
				}
				select {
				case dst.InChan() <- d:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ReadySignal calls SystemReady on every component in order. The real
// switchboard would do this only after establishing every Pipe/PipeTopic
// connection (spec §4.8).
func ReadySignal(components ...*component.Component) {
	for _, c := range components {
		c.SystemReady()
	}
}
