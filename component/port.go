package component

import "github.com/nugget/compruntime/chanutil"

// port is a single channel owned by a component, built from a
// chanutil.Spec: either a plain bounded channel (producers block at
// capacity) or a chanutil.SlidingWriter (producers never block; oldest
// values are dropped). This is the channel factory described in spec
// §4.1.
type port struct {
	spec    chanutil.Spec
	ch      chan Delivery
	sliding *chanutil.SlidingWriter[Delivery]
}

// newPort validates spec and builds the backing channel. An unknown
// buffer kind is a configuration error that must abort construction
// (spec §4.1).
func newPort(field string, spec chanutil.Spec) (*port, error) {
	validated, err := chanutil.New(field, spec)
	if err != nil {
		return nil, err
	}
	switch validated.Kind {
	case chanutil.Sliding:
		sw := chanutil.NewSlidingWriter[Delivery](validated.N)
		return &port{spec: validated, ch: sw.Chan(), sliding: sw}, nil
	default: // chanutil.Buffer
		return &port{spec: validated, ch: make(chan Delivery, validated.N)}, nil
	}
}

// Send delivers d. FIFO ports block the caller when full; sliding ports
// never block, dropping the oldest buffered value instead (reported via
// the return value).
func (p *port) Send(d Delivery) (dropped bool) {
	if p.sliding != nil {
		return p.sliding.Send(d)
	}
	p.ch <- d
	return false
}

// Recv returns the receive side, for the handler loop or a downstream
// Mult/Pub to read from.
func (p *port) Recv() <-chan Delivery {
	return p.ch
}

// Close closes the underlying channel. Callers must ensure no further
// Send calls race with Close (emit and the handler loops' firehose sends
// check the component's shutdown flag first, and Shutdown closes the
// output ports only after the handler loops have exited).
func (p *port) Close() {
	if p.sliding != nil {
		p.sliding.Close()
		return
	}
	close(p.ch)
}
