package component

import (
	"github.com/nugget/compruntime/firehose"
	"github.com/nugget/compruntime/msgtype"
)

// orderedLoop is the handler loop for the ordered in-channel (spec §4.4,
// "Ordered input path"). One iteration processes exactly one message;
// the only suspension point is the channel receive itself.
func (c *Component) orderedLoop() {
	defer c.wg.Done()
	for delivery := range c.inPort.Recv() {
		c.dispatchOrdered(delivery)
	}
}

func (c *Component) dispatchOrdered(delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.stats.panics.Add(1)
			c.logger.Error("handler panicked",
				"cmp_id", c.id,
				"msg_type", delivery.Msg.Type.String(),
				"panic", r,
			)
		}
	}()

	meta := delivery.Meta.Clone()
	meta.CmpSeq = appendSeq(meta.CmpSeq, c.id, In)
	meta.Timings = stampTiming(meta.Timings, c.id, true, nowMillis())

	ctx := &Context{
		Msg:          delivery.Msg,
		Meta:         meta,
		Type:         delivery.Msg.Type,
		Payload:      delivery.Msg.Payload,
		State:        c.state,
		PublishState: c.publishState,
		Emit:         c.emit,
	}

	if c.cfg.MsgsOnFirehose && !ctx.Type.InFirehoseNamespace() {
		c.sendFirehoseSystem(msgtype.FirehoseCmpRecv, firehose.Envelope{
			CmpID:   c.id,
			Msg:     ctx.Msg,
			MsgMeta: meta,
			TS:      nowMillis(),
		})
	}

	switch ctx.Type {
	case msgtype.CmdGetState:
		c.emit(OutMessage{
			Type:    msgtype.StateSnapshot,
			Payload: map[string]any{"cmp_id": c.id, "snapshot": c.state.Read()},
		})
	case msgtype.CmdPublishState:
		c.publishState()
	}

	if h, ok := c.handlers[ctx.Type]; ok {
		h(ctx)
	} else if c.unhandledHandler != nil {
		c.unhandledHandler(ctx)
	}

	if c.allMsgsHandler != nil {
		c.allMsgsHandler(ctx)
	}

	c.stats.processed.Add(1)
}

// slidingLoop is the handler loop for the sliding-in channel (spec §4.4,
// "Sliding input path"). It throttles itself after every message,
// back-pressuring high-rate producers.
func (c *Component) slidingLoop() {
	defer c.wg.Done()
	for delivery := range c.slidingInPort.Recv() {
		c.dispatchSliding(delivery)
		c.throttle()
	}
}

func (c *Component) dispatchSliding(delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.stats.panics.Add(1)
			c.logger.Error("state-pub handler panicked",
				"cmp_id", c.id,
				"msg_type", delivery.Msg.Type.String(),
				"panic", r,
			)
		}
	}()

	meta := delivery.Meta.Clone()
	meta.CmpSeq = appendSeq(meta.CmpSeq, c.id, In)
	meta.Timings = stampTiming(meta.Timings, c.id, true, nowMillis())

	ctx := &Context{
		Msg:          delivery.Msg,
		Meta:         meta,
		Type:         delivery.Msg.Type,
		Payload:      delivery.Msg.Payload,
		State:        c.state,
		PublishState: c.publishState,
		Emit:         c.emit,
	}

	if c.statePubHandler != nil {
		c.statePubHandler(ctx)
	}

	if c.cfg.SnapshotsOnFirehose && !ctx.Type.InFirehoseNamespace() {
		c.sendFirehoseSystem(msgtype.FirehoseCmpRecvState, firehose.Envelope{
			CmpID: c.id,
			Msg:   ctx.Msg,
			TS:    nowMillis(),
		})
	}

	c.stats.processed.Add(1)
}

// sendFirehoseSystem wraps env in a Delivery for t and sends it directly
// to the firehose port. Unlike emit(), this path is internal to the
// handler loop itself (recv-side envelopes), not a user emission, so it
// does not go through the put-channel. It is a no-op once Shutdown has
// begun, since the firehose mult may already have stopped reading.
func (c *Component) sendFirehoseSystem(t msgtype.Type, env firehose.Envelope) {
	if c.isShutdown() {
		return
	}
	if dropped := c.firehosePort.Send(Delivery{
		Msg:  Message{Type: t, Payload: env},
		Meta: Meta{CmpSeq: []string{c.id}, CorrID: freshID(), Tag: freshID()},
	}); dropped {
		c.stats.fhDropped.Add(1)
	}
}
