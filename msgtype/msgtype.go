// Package msgtype defines the namespaced symbolic tag used to identify
// message types across the component runtime, along with the reserved
// tags the core itself consumes and produces.
package msgtype

import (
	"fmt"
	"strings"
)

// Type is a namespaced message tag: a domain ("cmd", "firehose", "app")
// paired with a name ("get-state", "cmp-recv"). It is the key used by a
// component's handler registry and by Pub subscribers.
type Type struct {
	Domain string
	Name   string
}

// New builds a Type from a domain and name. Neither may be empty.
func New(domain, name string) Type {
	return Type{Domain: domain, Name: name}
}

// String renders the type as "domain/name".
func (t Type) String() string {
	return t.Domain + "/" + t.Name
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.Domain == "" && t.Name == ""
}

// Parse splits a "domain/name" string into a Type at its first slash.
// Both parts must be non-empty, otherwise it returns an error; any
// further slashes stay in the name ("a/b/c" parses as a, b/c).
func Parse(s string) (Type, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Type{}, fmt.Errorf("msgtype: invalid type %q, want \"domain/name\"", s)
	}
	return Type{Domain: parts[0], Name: parts[1]}, nil
}

// InFirehoseNamespace reports whether t belongs to the reserved
// "firehose" domain. User-defined message types must not use this
// domain; the core rejects it in handler-map registration.
func (t Type) InFirehoseNamespace() bool {
	return t.Domain == FirehoseDomain
}

// FirehoseDomain is the reserved domain name for observability envelopes.
const FirehoseDomain = "firehose"

// Reserved message types the core itself consumes or produces. See
// spec §6.
var (
	// CmdGetState requests an immediate state/snapshot reply.
	CmdGetState = Type{Domain: "cmd", Name: "get-state"}
	// CmdPublishState triggers a snapshot publication on sliding-out.
	CmdPublishState = Type{Domain: "cmd", Name: "publish-state"}
	// StateSnapshot is the reply to CmdGetState.
	StateSnapshot = Type{Domain: "state", Name: "snapshot"}
	// AppState is published on the sliding-out channel whenever the
	// state cell changes.
	AppState = Type{Domain: "app", Name: "state"}

	// FirehoseCmpRecv wraps a message received on the ordered in-channel.
	FirehoseCmpRecv = Type{Domain: FirehoseDomain, Name: "cmp-recv"}
	// FirehoseCmpRecvState wraps a message received on the sliding-in channel.
	FirehoseCmpRecvState = Type{Domain: FirehoseDomain, Name: "cmp-recv-state"}
	// FirehoseCmpPut wraps a message emitted via put-fn.
	FirehoseCmpPut = Type{Domain: FirehoseDomain, Name: "cmp-put"}
	// FirehoseCmpPublishState wraps a snapshot publication.
	FirehoseCmpPublishState = Type{Domain: FirehoseDomain, Name: "cmp-publish-state"}
)
