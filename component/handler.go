package component

import "github.com/nugget/compruntime/msgtype"

// Delivery is what actually travels on a component's channels: a
// message plus the metadata accumulated so far.
type Delivery struct {
	Msg  Message
	Meta Meta
}

// OutMessage is what a handler hands to EmitFunc. Meta is optional. The
// emit function keeps its Tag if set, appends the component ID to CmpSeq
// only when CmpSeq is empty (a non-empty one signals a forwarded message),
// adds this component's out-ts to Timings, and carries From through
// unchanged; CorrID is always replaced with a fresh one (spec §4.3).
type OutMessage struct {
	Type    msgtype.Type
	Payload any
	Meta    Meta
}

// EmitFunc is the sole means by which handlers produce output. It is
// bound per component and closes over the component's identity so every
// emission is tagged correctly. It never returns an error: failures
// (e.g. emitting after shutdown) are logged internally and otherwise
// swallowed, per spec §4.3/§7.
type EmitFunc func(OutMessage)

// Context is passed to every handler invocation (spec §4.4, "Handler
// context").
type Context struct {
	// Msg is the full message as received, Meta its accumulated
	// metadata.
	Msg  Message
	Meta Meta

	// Type and Payload destructure Msg for convenience.
	Type    msgtype.Type
	Payload any

	// State is the component's state cell.
	State *Cell

	// PublishState triggers the snapshot publisher immediately, exactly
	// as the built-in cmd/publish-state command does.
	PublishState func()

	// Emit produces output.
	Emit EmitFunc
}

// HandlerFunc reacts to one dispatched message.
type HandlerFunc func(ctx *Context)

// HandlerMap maps a message type to its handler. Built once at
// component creation and never mutated thereafter (spec §9, "Dynamic
// dispatch").
type HandlerMap map[msgtype.Type]HandlerFunc

// StateInitFunc is invoked once during construction with the component's
// emit function, and returns the initial state value plus an optional
// shutdown closure that releases any state-owned resources. Either
// return value may be zero (nil state, nil shutdown).
type StateInitFunc func(emit EmitFunc) (state any, shutdown func())

// SnapshotXformFunc projects the watched value into a publishable
// snapshot. Defaults to the identity function.
type SnapshotXformFunc func(watched any) any

// WatchFunc projects the full state value into the derived value the
// snapshot publisher and change watcher observe. Defaults to the
// identity function.
type WatchFunc func(state any) any

func identitySnapshotXform(v any) any { return v }
func identityWatch(v any) any         { return v }
