// Package firehose defines the observability envelope format wrapped
// around every message a component sends, receives, or publishes as
// state, plus a small in-process recorder used by tests and examples to
// observe a firehose stream without standing up a switchboard.
package firehose

import (
	"sync"

	"github.com/nugget/compruntime/msgtype"
)

// Envelope is the payload carried by a firehose/* message. Exactly one
// of Msg/MsgMeta (ordinary traffic) or Snapshot (state traffic) is
// populated, per the envelope shape described in spec §4.3/§4.4/§4.5.
type Envelope struct {
	CmpID    string         `json:"cmp_id"`
	Msg      any            `json:"msg,omitempty"`
	MsgMeta  any            `json:"msg_meta,omitempty"`
	Snapshot any            `json:"snapshot,omitempty"`
	TS       int64          `json:"ts"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Recorder collects firehose envelopes in memory, keyed by message
// type, for assertions in tests and for the componentdemo CLI's
// "print firehose traffic" mode. It is deliberately simple — a real
// switchboard would instead tap chanutil.Mult/Pub onto each
// component's firehose channel and forward to an external sink.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry pairs a recorded envelope with the reserved type it arrived on.
type Entry struct {
	Type     msgtype.Type
	Envelope Envelope
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an entry. Safe for concurrent use.
func (r *Recorder) Record(t msgtype.Type, env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Type: t, Envelope: env})
}

// Entries returns a snapshot copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// CountByType returns how many recorded entries match t.
func (r *Recorder) CountByType(t msgtype.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Type == t {
			n++
		}
	}
	return n
}
