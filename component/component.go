// Package component implements the per-component runtime described by
// the message-passing core: construction, the four-channel set plus the
// firehose observability stream, message-handler dispatch, and
// state-snapshot publication. The switchboard that wires components
// together is deliberately not part of this package.
package component

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nugget/compruntime/chanutil"
	"github.com/nugget/compruntime/firehose"
	"github.com/nugget/compruntime/msgtype"
)

// Component is the assembled runtime for one addressable unit: its
// channel set, state cell, handler registry, emit function, and
// lifecycle hooks (spec §3, "Component record").
type Component struct {
	id  string
	cfg Config

	inPort         *port
	slidingInPort  *port
	putPort        *port
	outPort        *port
	slidingOutPort *port
	firehosePort   *port

	outMult      *chanutil.Mult[Delivery]
	outPub       *chanutil.Pub[Delivery, msgtype.Type]
	snapMult     *chanutil.Mult[Delivery]
	firehoseMult *chanutil.Mult[Delivery]

	state *Cell

	handlers         HandlerMap
	allMsgsHandler   HandlerFunc
	unhandledHandler HandlerFunc
	statePubHandler  HandlerFunc

	publisher *snapshotPublisher
	unwatch   unsubscribeFunc
	stopTick  func()

	logger *slog.Logger

	runCtx    context.Context
	runCancel context.CancelFunc

	readyOnce sync.Once
	ready     chan struct{}

	closed atomic.Bool

	stateShutdown func()
	shutdownOnce  sync.Once

	wg    sync.WaitGroup
	stats stats
}

// ConfigError is returned by New when a buffer spec or other
// construction input is malformed. Construction aborts immediately;
// nothing is started (spec §7, "Configuration error").
type ConfigError = chanutil.ConfigError

// New builds and starts a component (spec §4.7, the factory). Both
// handler loops are running by the time New returns; emitted output is
// buffered in the internal put-channel until SystemReady is called.
func New(id string, opts ...Option) (*Component, error) {
	if id == "" {
		return nil, fmt.Errorf("component: id must not be empty")
	}

	b := newBuildOptions()
	for _, opt := range opts {
		opt(b)
	}
	cfg := b.cfg
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	for t := range b.handlers {
		if t.InFirehoseNamespace() {
			return nil, fmt.Errorf("component: handler registered for reserved firehose type %s: the firehose domain is produced by the core and must not be handled directly", t)
		}
	}

	inPort, err := newPort("in-chan", cfg.InChan)
	if err != nil {
		return nil, err
	}
	slidingInPort, err := newPort("sliding-in-chan", cfg.SlidingInChan)
	if err != nil {
		return nil, err
	}
	putPort, err := newPort("out-chan (put)", cfg.OutChan)
	if err != nil {
		return nil, err
	}
	outPort, err := newPort("out-chan", cfg.OutChan)
	if err != nil {
		return nil, err
	}
	slidingOutPort, err := newPort("sliding-out-chan", cfg.SlidingOutChan)
	if err != nil {
		return nil, err
	}
	firehosePort, err := newPort("firehose-chan", cfg.FirehoseChan)
	if err != nil {
		return nil, err
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	c := &Component{
		id:               id,
		cfg:              cfg,
		inPort:           inPort,
		slidingInPort:    slidingInPort,
		putPort:          putPort,
		outPort:          outPort,
		slidingOutPort:   slidingOutPort,
		firehosePort:     firehosePort,
		handlers:         b.handlers,
		allMsgsHandler:   b.allMsgsHandler,
		unhandledHandler: b.unhandledHandler,
		statePubHandler:  b.statePubHandler,
		logger:           cfg.Logger,
		runCtx:           runCtx,
		runCancel:        runCancel,
		ready:            make(chan struct{}),
	}

	// Step 4: invoke the user-supplied state initializer with the emit
	// function to obtain the state cell and optional shutdown closure.
	var initial any
	if b.stateFn != nil {
		initial, c.stateShutdown = b.stateFn(c.emit)
	}
	c.state = NewCell(initial)

	// Steps 5-6: derive the watched value and build the snapshot
	// publisher.
	c.publisher = &snapshotPublisher{
		cmpID:         id,
		state:         c.state,
		watch:         b.watch,
		xform:         b.snapshotXform,
		slidingOut:    slidingOutPort,
		firehosePort:  firehosePort,
		snapsOnFireho: cfg.SnapshotsOnFirehose,
	}

	// Step 7: attach the fan-out mult to the out-channel, a topic
	// publisher keyed on message type tapped off the mult, and a topic
	// publisher for snapshots on the sliding-out channel.
	c.outMult = chanutil.NewMult[Delivery](runCtx, outPort.Recv())
	c.outPub = chanutil.NewPub[Delivery, msgtype.Type](runCtx, c.outMult.Tap(8), func(d Delivery) msgtype.Type { return d.Msg.Type })
	c.snapMult = chanutil.NewMult[Delivery](runCtx, slidingOutPort.Recv())
	c.firehoseMult = chanutil.NewMult[Delivery](runCtx, firehosePort.Recv())

	// Step 8: install the change watcher.
	if b.frameTick > 0 {
		onChange, stop := newFrameTickWatcher(c.publisher, b.frameTick)
		c.unwatch = c.state.Subscribe(onChange)
		c.stopTick = stop
	} else {
		c.unwatch = c.state.Subscribe(newImmediateWatcher(c.publisher))
	}

	// Step 9: start both handler loops.
	c.wg.Add(2)
	go c.orderedLoop()
	go c.slidingLoop()

	return c, nil
}

// ID returns the component's stable identifier.
func (c *Component) ID() string { return c.id }

// InChan returns the ordered in-channel. Callers (the switchboard) send
// on it directly; it blocks when full (spec §3, "in-chan": FIFO buffer).
func (c *Component) InChan() chan<- Delivery { return c.inPort.ch }

// SlidingIn delivers d on the sliding-in-channel, dropping the oldest
// buffered value if full. Never blocks.
func (c *Component) SlidingIn(d Delivery) { c.slidingInPort.Send(d) }

// OutMult returns the fan-out mult over the out-channel.
func (c *Component) OutMult() *chanutil.Mult[Delivery] { return c.outMult }

// OutPub returns the type-keyed publisher over the out-channel.
func (c *Component) OutPub() *chanutil.Pub[Delivery, msgtype.Type] { return c.outPub }

// SnapshotMult returns the fan-out mult over the sliding-out (state
// snapshot) channel.
func (c *Component) SnapshotMult() *chanutil.Mult[Delivery] { return c.snapMult }

// FirehoseMult returns the fan-out mult over the firehose channel.
func (c *Component) FirehoseMult() *chanutil.Mult[Delivery] { return c.firehoseMult }

// StateSnapshot is a pure, read-only accessor for the current state cell
// value (spec §3, "state-snapshot reader").
func (c *Component) StateSnapshot() any { return c.state.Read() }

// Stats returns a point-in-time snapshot of the component's counters.
func (c *Component) Stats() Stats { return c.stats.snapshot() }

// SystemReady splices the put-channel into the out-channel — releasing
// any messages buffered since construction — and publishes the initial
// snapshot once to seed downstream state views (spec §4.8). It is
// idempotent: only the first call has effect.
func (c *Component) SystemReady() {
	c.readyOnce.Do(func() {
		close(c.ready)
		c.wg.Add(1)
		go c.spliceLoop()
		c.publisher.Publish()
	})
}

// spliceLoop forwards everything buffered (and subsequently emitted) on
// the put-channel to the out-channel, for the remaining lifetime of the
// component.
func (c *Component) spliceLoop() {
	defer c.wg.Done()
	for {
		select {
		case d, ok := <-c.putPort.Recv():
			if !ok {
				return
			}
			c.outPort.Send(d)
		case <-c.runCtx.Done():
			return
		}
	}
}

// Shutdown closes the component's input channels, which causes both
// handler loops (and the splice loop, once started) to exit cleanly,
// then invokes the state-owned shutdown closure if one was supplied.
// Shutdown blocks until all loops have exited. Safe to call more than
// once.
func (c *Component) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.closed.Store(true)
		c.inPort.Close()
		c.slidingInPort.Close()
		c.runCancel()
		if c.unwatch != nil {
			c.unwatch()
		}
		if c.stopTick != nil {
			c.stopTick()
		}
		c.wg.Wait()
		c.putPort.Close()
		c.outPort.Close()
		c.slidingOutPort.Close()
		c.firehosePort.Close()
		if c.stateShutdown != nil {
			c.stateShutdown()
		}
	})
}

// isShutdown reports whether Shutdown has been called.
func (c *Component) isShutdown() bool { return c.closed.Load() }

// emit is the put-fn bound to this component (spec §4.3).
func (c *Component) emit(out OutMessage) {
	if c.isShutdown() {
		c.logger.Warn("emit after shutdown dropped", "cmp_id", c.id, "type", out.Type.String())
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("emit panicked, component shutting down mid-send", "cmp_id", c.id, "panic", r)
		}
	}()

	meta := out.Meta.Clone()
	meta.CmpSeq = appendSeq(meta.CmpSeq, c.id, Out)
	meta.Timings = stampTiming(meta.Timings, c.id, false, nowMillis())
	meta.CorrID = freshID()
	if meta.Tag == "" {
		meta.Tag = freshID()
	}

	delivery := Delivery{Msg: Message{Type: out.Type, Payload: out.Payload}, Meta: meta}
	c.putPort.Send(delivery)
	c.stats.emitted.Add(1)

	if !c.cfg.MsgsOnFirehose {
		return
	}
	if out.Type.InFirehoseNamespace() {
		if dropped := c.firehosePort.Send(delivery); dropped {
			c.stats.fhDropped.Add(1)
		}
		return
	}
	env := firehose.Envelope{CmpID: c.id, Msg: delivery.Msg, MsgMeta: delivery.Meta, TS: nowMillis()}
	fhDelivery := Delivery{
		Msg:  Message{Type: msgtype.FirehoseCmpPut, Payload: env},
		Meta: Meta{CmpSeq: []string{c.id}, CorrID: freshID(), Tag: freshID()},
	}
	if dropped := c.firehosePort.Send(fhDelivery); dropped {
		c.stats.fhDropped.Add(1)
	}
}

// publishState triggers the snapshot publisher, exposed to handlers via
// Context.PublishState and to the built-in cmd/publish-state command.
func (c *Component) publishState() { c.publisher.Publish() }

// throttle sleeps the configured ThrottleMS between sliding-in
// invocations; a non-positive value disables the delay.
func (c *Component) throttle() {
	if c.cfg.ThrottleMS <= 0 {
		return
	}
	time.Sleep(time.Duration(c.cfg.ThrottleMS) * time.Millisecond)
}
