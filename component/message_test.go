package component

import "testing"

func TestAppendSeqOnReceiveAlwaysAppends(t *testing.T) {
	seq := appendSeq([]string{"a"}, "b", In)
	if got, want := len(seq), 2; got != want {
		t.Fatalf("len(seq) = %d, want %d", got, want)
	}
	if seq[1] != "b" {
		t.Errorf("seq[1] = %q, want %q", seq[1], "b")
	}
}

func TestAppendSeqOnEmitOnlyAppendsWhenEmpty(t *testing.T) {
	fresh := appendSeq(nil, "a", Out)
	if len(fresh) != 1 || fresh[0] != "a" {
		t.Errorf("fresh emit seq = %v, want [a]", fresh)
	}

	unchanged := appendSeq([]string{"a"}, "b", Out)
	if len(unchanged) != 1 || unchanged[0] != "a" {
		t.Errorf("forwarding emit seq = %v, want unchanged [a]", unchanged)
	}
}

func TestAppendSeqDoesNotAliasInput(t *testing.T) {
	original := []string{"a"}
	out := appendSeq(original, "b", In)
	out[0] = "mutated"
	if original[0] != "a" {
		t.Error("appendSeq aliased the input slice's backing array")
	}
}

func TestMetaCloneIsIndependent(t *testing.T) {
	m := Meta{
		CmpSeq:  []string{"a"},
		Timings: map[string]Timing{"a": {InTS: 1}},
	}
	clone := m.Clone()
	clone.CmpSeq[0] = "mutated"
	clone.Timings["a"] = Timing{InTS: 99}

	if m.CmpSeq[0] != "a" {
		t.Error("Clone aliased CmpSeq")
	}
	if m.Timings["a"].InTS != 1 {
		t.Error("Clone aliased Timings")
	}
}

func TestFreshIDIsUnique(t *testing.T) {
	a, b := freshID(), freshID()
	if a == "" || b == "" {
		t.Fatal("freshID returned an empty string")
	}
	if a == b {
		t.Error("two calls to freshID produced the same value")
	}
}

func TestStampTimingPreservesOtherField(t *testing.T) {
	timings := stampTiming(nil, "a", true, 100)
	timings = stampTiming(timings, "a", false, 200)

	got := timings["a"]
	if got.InTS != 100 || got.OutTS != 200 {
		t.Errorf("timings[a] = %+v, want {InTS:100 OutTS:200}", got)
	}
}

func TestEmitAlwaysAssignsFreshCorrID(t *testing.T) {
	c, err := New("widget", WithHandler(testPing, func(ctx *Context) {
		ctx.Emit(OutMessage{Type: testPong, Meta: Meta{CorrID: "should-be-ignored"}})
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	out := c.OutMult().Tap(4)
	c.SystemReady()
	c.InChan() <- Delivery{Msg: Message{Type: testPing}}

	d := recvOrTimeout(t, out, "emitted message")
	if d.Meta.CorrID == "" || d.Meta.CorrID == "should-be-ignored" {
		t.Errorf("CorrID = %q, want a freshly generated id", d.Meta.CorrID)
	}
}

func TestEmitPreservesCallerSuppliedTag(t *testing.T) {
	c, err := New("widget", WithHandler(testPing, func(ctx *Context) {
		ctx.Emit(OutMessage{Type: testPong, Meta: Meta{Tag: "keep-me"}})
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	out := c.OutMult().Tap(4)
	c.SystemReady()
	c.InChan() <- Delivery{Msg: Message{Type: testPing}}

	d := recvOrTimeout(t, out, "emitted message")
	if d.Meta.Tag != "keep-me" {
		t.Errorf("Tag = %q, want %q", d.Meta.Tag, "keep-me")
	}
}
