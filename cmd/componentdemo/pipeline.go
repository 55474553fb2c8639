package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nugget/compruntime/component"
	"github.com/nugget/compruntime/firehose"
	"github.com/nugget/compruntime/internal/runtimeconfig"
	"github.com/nugget/compruntime/msgtype"
	"github.com/nugget/compruntime/wiring"
)

var (
	// DemoPing carries an integer sequence number into the echo
	// component.
	DemoPing = msgtype.New("demo", "ping")
	// DemoPong is what the echo component relays downstream after
	// bumping its own echo count.
	DemoPong = msgtype.New("demo", "pong")
)

// pingPongPipeline wires an echo component (replies to demo/ping with
// demo/pong, tracking how many it has seen) into a counter component
// (tallies every demo/pong it receives in its state cell).
type pingPongPipeline struct {
	echo    *component.Component
	counter *component.Component
	rec     *firehose.Recorder
	cancel  context.CancelFunc
}

func newPingPongPipeline(ctx context.Context, cfg runtimeconfig.Config, logger *slog.Logger) *pingPongPipeline {
	pipeCtx, cancel := context.WithCancel(ctx)

	echoOpts := []component.Option{
		component.WithLogger(logger),
		component.WithStateFn(func(emit component.EmitFunc) (any, func()) {
			return 0, nil
		}),
		component.WithHandler(DemoPing, func(c *component.Context) {
			_, newCount := c.State.Swap(func(v any) any { return v.(int) + 1 })
			c.Emit(component.OutMessage{
				Type:    DemoPong,
				Payload: newCount,
				Meta:    component.Meta{Tag: c.Meta.Tag},
			})
		}),
	}
	if cfg.ThrottleMS > 0 {
		echoOpts = append(echoOpts, component.WithThrottleMS(cfg.ThrottleMS))
	}
	if cfg.FrameTickMS > 0 {
		echoOpts = append(echoOpts, component.WithFrameTick(time.Duration(cfg.FrameTickMS)*time.Millisecond))
	}
	echo, err := component.New("echo", echoOpts...)
	if err != nil {
		logger.Error("failed to build echo component", "error", err)
		panic(err)
	}

	counterOpts := []component.Option{
		component.WithLogger(logger),
		component.WithStateFn(func(emit component.EmitFunc) (any, func()) {
			return map[string]int{"pongs_seen": 0}, nil
		}),
		component.WithHandler(DemoPong, func(c *component.Context) {
			c.State.Swap(func(v any) any {
				m := v.(map[string]int)
				out := map[string]int{"pongs_seen": m["pongs_seen"] + 1, "last_echo_count": c.Payload.(int)}
				return out
			})
		}),
	}
	counter, err := component.New("counter", counterOpts...)
	if err != nil {
		logger.Error("failed to build counter component", "error", err)
		panic(err)
	}

	wiring.Pipe(pipeCtx, echo, counter)
	wiring.ReadySignal(echo, counter)

	rec := firehose.NewRecorder()
	if cfg.Firehose.Enabled {
		recordFirehose(pipeCtx, echo, rec, logger, cfg.Firehose.Print)
		recordFirehose(pipeCtx, counter, rec, logger, cfg.Firehose.Print)
	}

	return &pingPongPipeline{echo: echo, counter: counter, rec: rec, cancel: cancel}
}

// recordFirehose taps c's firehose fan-out and appends every envelope to
// rec, optionally logging it as it arrives.
func recordFirehose(ctx context.Context, c *component.Component, rec *firehose.Recorder, logger *slog.Logger, print bool) {
	ch := c.FirehoseMult().Tap(16)
	go func() {
		defer c.FirehoseMult().Untap(ch)
		for {
			select {
			case d, ok := <-ch:
				if !ok {
					return
				}
				env, _ := d.Msg.Payload.(firehose.Envelope)
				rec.Record(d.Msg.Type, env)
				if print {
					logger.Debug("firehose", "type", d.Msg.Type.String(), "cmp_id", env.CmpID)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendPing delivers a demo/ping with sequence number i to the echo
// component's ordered in-channel, blocking if it is full.
func (p *pingPongPipeline) SendPing(i int) {
	p.echo.InChan() <- component.Delivery{
		Msg: component.Message{Type: DemoPing, Payload: i},
	}
}

// CounterSnapshot returns the counter component's current state.
func (p *pingPongPipeline) CounterSnapshot() any {
	return p.counter.StateSnapshot()
}

// FirehoseEntries returns everything recorded by the firehose tap so
// far.
func (p *pingPongPipeline) FirehoseEntries() []firehose.Entry {
	return p.rec.Entries()
}

// Shutdown stops both components and the relay goroutines wired between
// them.
func (p *pingPongPipeline) Shutdown() {
	p.cancel()
	p.echo.Shutdown()
	p.counter.Shutdown()
}
