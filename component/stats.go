package component

import "sync/atomic"

// Stats is a point-in-time snapshot of a component's counters, modeled
// on the teacher's plain read-only health-status snapshot (compare
// connwatch.ServiceStatus / Watcher.Status()).
type Stats struct {
	MessagesProcessed int64
	MessagesEmitted   int64
	HandlerPanics     int64
	FirehoseDropped   int64
}

type stats struct {
	processed  atomic.Int64
	emitted    atomic.Int64
	panics     atomic.Int64
	fhDropped  atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		MessagesProcessed: s.processed.Load(),
		MessagesEmitted:   s.emitted.Load(),
		HandlerPanics:     s.panics.Load(),
		FirehoseDropped:   s.fhDropped.Load(),
	}
}
