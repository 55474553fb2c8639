package component

import (
	"log/slog"
	"time"

	"github.com/nugget/compruntime/chanutil"
	"github.com/nugget/compruntime/msgtype"
)

// Config is the effective, defaulted channel/behavior configuration for
// a component (spec §3's option table).
type Config struct {
	InChan         chanutil.Spec
	SlidingInChan  chanutil.Spec
	OutChan        chanutil.Spec
	SlidingOutChan chanutil.Spec
	FirehoseChan   chanutil.Spec

	// ThrottleMS is the minimum delay between sliding-in handler
	// invocations.
	ThrottleMS int

	MsgsOnFirehose      bool
	SnapshotsOnFirehose bool

	// ReloadCmp is a development flag honoured by the switchboard; it is
	// opaque to the core and simply carried through.
	ReloadCmp bool

	// Logger receives lifecycle and error-boundary logging. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the spec §3 defaults.
func DefaultConfig() Config {
	return Config{
		InChan:              chanutil.BufferSpec(1),
		SlidingInChan:       chanutil.SlidingSpec(1),
		OutChan:             chanutil.BufferSpec(1),
		SlidingOutChan:      chanutil.SlidingSpec(1),
		FirehoseChan:        chanutil.BufferSpec(1),
		ThrottleMS:          1,
		MsgsOnFirehose:      true,
		SnapshotsOnFirehose: true,
		ReloadCmp:           true,
	}
}

// buildOptions accumulates everything New needs: the §3 channel/behavior
// config plus the top-level construction arguments spec §6 lists
// alongside it (state-fn, handler-map, all-msgs-handler, etc).
type buildOptions struct {
	cfg Config

	stateFn          StateInitFunc
	handlers         HandlerMap
	allMsgsHandler   HandlerFunc
	unhandledHandler HandlerFunc
	statePubHandler  HandlerFunc
	snapshotXform    SnapshotXformFunc
	watch            WatchFunc

	frameTick time.Duration
}

func newBuildOptions() *buildOptions {
	return &buildOptions{
		cfg:           DefaultConfig(),
		handlers:      make(HandlerMap),
		snapshotXform: identitySnapshotXform,
		watch:         identityWatch,
	}
}

// Option configures a Component at construction time. Options are
// applied over DefaultConfig in the order given (spec §4.7 step 1:
// "merge user options over defaults").
type Option func(*buildOptions)

// WithInChan overrides the ordered in-channel buffer spec.
func WithInChan(spec chanutil.Spec) Option { return func(b *buildOptions) { b.cfg.InChan = spec } }

// WithSlidingInChan overrides the sliding-in-channel buffer spec.
func WithSlidingInChan(spec chanutil.Spec) Option {
	return func(b *buildOptions) { b.cfg.SlidingInChan = spec }
}

// WithOutChan overrides the ordered out-channel buffer spec.
func WithOutChan(spec chanutil.Spec) Option { return func(b *buildOptions) { b.cfg.OutChan = spec } }

// WithSlidingOutChan overrides the sliding-out-channel buffer spec.
func WithSlidingOutChan(spec chanutil.Spec) Option {
	return func(b *buildOptions) { b.cfg.SlidingOutChan = spec }
}

// WithFirehoseChan overrides the firehose channel buffer spec.
func WithFirehoseChan(spec chanutil.Spec) Option {
	return func(b *buildOptions) { b.cfg.FirehoseChan = spec }
}

// WithThrottleMS overrides the sliding-in throttle delay.
func WithThrottleMS(ms int) Option { return func(b *buildOptions) { b.cfg.ThrottleMS = ms } }

// WithMsgsOnFirehose toggles ordinary-message firehose envelopes. Relay
// components must pass false to avoid feeding back on themselves (spec
// §5, "Firehose back-pressure").
func WithMsgsOnFirehose(on bool) Option { return func(b *buildOptions) { b.cfg.MsgsOnFirehose = on } }

// WithSnapshotsOnFirehose toggles state-snapshot firehose envelopes.
func WithSnapshotsOnFirehose(on bool) Option {
	return func(b *buildOptions) { b.cfg.SnapshotsOnFirehose = on }
}

// WithReloadCmp sets the development reload flag (opaque to the core).
func WithReloadCmp(on bool) Option { return func(b *buildOptions) { b.cfg.ReloadCmp = on } }

// WithLogger overrides the component's logger.
func WithLogger(l *slog.Logger) Option { return func(b *buildOptions) { b.cfg.Logger = l } }

// WithStateFn installs the state initializer invoked once at
// construction with the component's emit function.
func WithStateFn(fn StateInitFunc) Option { return func(b *buildOptions) { b.stateFn = fn } }

// WithHandlers installs the full type→handler map in one call.
func WithHandlers(m HandlerMap) Option {
	return func(b *buildOptions) {
		for t, h := range m {
			b.handlers[t] = h
		}
	}
}

// WithHandler registers a single handler for msg type t.
func WithHandler(t msgtype.Type, h HandlerFunc) Option {
	return func(b *buildOptions) { b.handlers[t] = h }
}

// WithAllMsgsHandler installs the catch-all handler, invoked on every
// ordered-input message regardless of type (spec §4.4).
func WithAllMsgsHandler(h HandlerFunc) Option {
	return func(b *buildOptions) { b.allMsgsHandler = h }
}

// WithUnhandledHandler installs the fallback invoked when an
// ordered-input message's type has no registered handler.
func WithUnhandledHandler(h HandlerFunc) Option {
	return func(b *buildOptions) { b.unhandledHandler = h }
}

// WithStatePubHandler installs the handler invoked on every sliding-in
// message.
func WithStatePubHandler(h HandlerFunc) Option {
	return func(b *buildOptions) { b.statePubHandler = h }
}

// WithSnapshotXform overrides the watched-value→snapshot projection used
// by the snapshot publisher. Defaults to identity.
func WithSnapshotXform(fn SnapshotXformFunc) Option {
	return func(b *buildOptions) { b.snapshotXform = fn }
}

// WithWatch overrides the state→watched-value projection. Defaults to
// identity.
func WithWatch(fn WatchFunc) Option {
	return func(b *buildOptions) { b.watch = fn }
}

// WithFrameTick switches the change watcher from the default immediate
// discipline to the rate-limited frame-tick discipline (spec §4.6):
// transitions set a dirty flag, and a ticker at the given rate publishes
// once per tick iff the flag is set. Intended for UI-facing runtimes
// that must cap snapshot production to a display refresh rate.
func WithFrameTick(rate time.Duration) Option {
	return func(b *buildOptions) { b.frameTick = rate }
}
