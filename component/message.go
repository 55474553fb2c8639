package component

import (
	"time"

	"github.com/google/uuid"
	"github.com/nugget/compruntime/msgtype"
)

// Message is an ordered (type, payload) pair. Metadata travels alongside
// it, never inlined into Payload (spec §3).
type Message struct {
	Type    msgtype.Type
	Payload any
}

// Timing records when a message entered and/or left a single component.
type Timing struct {
	InTS  int64 `json:"in_ts,omitempty"`
	OutTS int64 `json:"out_ts,omitempty"`
}

// Meta is the out-of-band metadata record attached to every message in
// flight (spec §3). The zero value represents "no metadata yet" — the
// state a handler starts from when authoring a brand-new reply.
type Meta struct {
	// CmpSeq is the ordered sequence of component IDs the message has
	// traversed.
	CmpSeq []string
	// CorrID is assigned fresh on every emit; it distinguishes
	// individual sends, including retransmissions of the same logical
	// message.
	CorrID string
	// Tag is preserved across a logical message's full path. Assigned on
	// first emit if absent, never rewritten once set.
	Tag string
	// Timings accumulates per-component {in-ts, out-ts} pairs as the
	// message flows from component to component.
	Timings map[string]Timing
	// From is populated on state-snapshot messages with the publishing
	// component's ID.
	From string
}

// Clone returns a deep-enough copy of m safe to mutate independently.
func (m Meta) Clone() Meta {
	out := Meta{
		CorrID: m.CorrID,
		Tag:    m.Tag,
		From:   m.From,
	}
	if m.CmpSeq != nil {
		out.CmpSeq = append([]string(nil), m.CmpSeq...)
	}
	if m.Timings != nil {
		out.Timings = make(map[string]Timing, len(m.Timings))
		for k, v := range m.Timings {
			out.Timings[k] = v
		}
	}
	return out
}

// Direction identifies which side of a component a message is crossing,
// for the purposes of the cmp-seq append rule (spec §4.2).
type Direction int

const (
	// Out marks an emission leaving a component via put-fn.
	Out Direction = iota
	// In marks a reception entering a component's handler loop.
	In
)

// appendSeq implements spec §4.2's sequence-append rule: append cmp-id
// if either the sequence is empty or the direction is in; otherwise
// leave the sequence unchanged. Always returns a fresh slice so callers
// never alias the input.
func appendSeq(seq []string, cmpID string, dir Direction) []string {
	if dir == In || len(seq) == 0 {
		out := make([]string, 0, len(seq)+1)
		out = append(out, seq...)
		out = append(out, cmpID)
		return out
	}
	return append([]string(nil), seq...)
}

// freshID generates a 128-bit random identifier with negligible
// collision probability (spec §4.2).
func freshID() string {
	return uuid.NewString()
}

// nowMillis returns wall-clock milliseconds since the epoch. Not
// required to be monotonic (spec §4.2).
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// stampTiming records ts for cmpID in timings, preserving any existing
// entry's other field. Returns a new map; the input is not mutated.
func stampTiming(timings map[string]Timing, cmpID string, in bool, ts int64) map[string]Timing {
	out := make(map[string]Timing, len(timings)+1)
	for k, v := range timings {
		out[k] = v
	}
	t := out[cmpID]
	if in {
		t.InTS = ts
	} else {
		t.OutTS = ts
	}
	out[cmpID] = t
	return out
}
