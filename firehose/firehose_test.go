package firehose

import (
	"testing"

	"github.com/nugget/compruntime/msgtype"
)

func TestRecorderCountByType(t *testing.T) {
	r := NewRecorder()
	recv := msgtype.Type{Domain: "firehose", Name: "cmp-recv"}
	put := msgtype.Type{Domain: "firehose", Name: "cmp-put"}

	r.Record(recv, Envelope{CmpID: "a"})
	r.Record(recv, Envelope{CmpID: "a"})
	r.Record(put, Envelope{CmpID: "a"})

	if got := r.CountByType(recv); got != 2 {
		t.Errorf("CountByType(recv) = %d, want 2", got)
	}
	if got := r.CountByType(put); got != 1 {
		t.Errorf("CountByType(put) = %d, want 1", got)
	}
}

func TestRecorderEntriesReturnsSnapshotCopy(t *testing.T) {
	r := NewRecorder()
	r.Record(msgtype.Type{Domain: "firehose", Name: "cmp-recv"}, Envelope{CmpID: "a"})

	entries := r.Entries()
	entries[0].Envelope.CmpID = "mutated"

	if got := r.Entries()[0].Envelope.CmpID; got != "a" {
		t.Errorf("Recorder state mutated through returned slice: got %q, want %q", got, "a")
	}
}

func TestRecorderEmpty(t *testing.T) {
	r := NewRecorder()
	if got := len(r.Entries()); got != 0 {
		t.Errorf("new recorder has %d entries, want 0", got)
	}
	if got := r.CountByType(msgtype.Type{Domain: "firehose", Name: "cmp-recv"}); got != 0 {
		t.Errorf("CountByType on empty recorder = %d, want 0", got)
	}
}
