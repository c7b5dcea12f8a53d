package serde

import (
	"testing"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

func drainRingKinds(t *testing.T, doc string) []taggedEvent {
	t.Helper()
	rd := xmlgo.NewReaderString(doc)
	ring := newEventRing(rd, 0, nil)
	var out []taggedEvent
	for {
		ev, err := ring.takeFront()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, ev)
		if ev.kind == xmlgo.KindEOF {
			return out
		}
	}
}

func TestRingDepthConvention(t *testing.T) {
	events := drainRingKinds(t, `<a><b/><c>x</c></a>`)

	byName := map[string]taggedEvent{}
	for _, ev := range events {
		if ev.kind == xmlgo.KindStart || ev.kind == xmlgo.KindEmpty {
			byName[string(ev.name)] = ev
		}
	}
	if byName["a"].depth != 0 {
		t.Fatalf("root depth = %d, want 0", byName["a"].depth)
	}
	if byName["b"].depth != 1 || byName["c"].depth != 1 {
		t.Fatalf("children depth = %d/%d, want 1/1", byName["b"].depth, byName["c"].depth)
	}

	var aEnd taggedEvent
	for _, ev := range events {
		if ev.kind == xmlgo.KindEnd && string(ev.name) == "a" {
			aEnd = ev
		}
	}
	if aEnd.depth != byName["a"].depth {
		t.Fatalf("a's own End depth = %d, want %d", aEnd.depth, byName["a"].depth)
	}
}

func TestFindAndTakeSkipsInterleavedSiblings(t *testing.T) {
	rd := xmlgo.NewReaderString(`<root><a>1</a><b>x</b><a>2</a></root>`)
	ring := newEventRing(rd, RingUnbounded, nil)

	root, rootIdx, ok, err := ring.findAndTake(0, 0, nameMatch([]byte("root")))
	if err != nil || !ok {
		t.Fatalf("expected root match, ok=%v err=%v", ok, err)
	}
	baseDepth := root.depth + 1

	first, idx1, ok, err := ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a")))
	if err != nil || !ok {
		t.Fatalf("expected first <a>, ok=%v err=%v", ok, err)
	}
	if first.kind != xmlgo.KindStart {
		t.Fatalf("expected Start, got %v", first.kind)
	}
	_ = idx1

	second, _, ok, err := ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a")))
	if err != nil || !ok {
		t.Fatalf("expected second <a> past the interleaved <b>, ok=%v err=%v", ok, err)
	}
	if second.kind != xmlgo.KindStart {
		t.Fatalf("expected Start, got %v", second.kind)
	}
}

func TestFindAndTakeDisabledStopsAtFirstMismatch(t *testing.T) {
	rd := xmlgo.NewReaderString(`<root><a>1</a><b>x</b><a>2</a></root>`)
	ring := newEventRing(rd, 0, nil)

	root, rootIdx, ok, err := ring.findAndTake(0, 0, nameMatch([]byte("root")))
	if err != nil || !ok {
		t.Fatalf("expected root match, ok=%v err=%v", ok, err)
	}
	baseDepth := root.depth + 1

	if _, _, ok, err := ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a"))); err != nil || !ok {
		t.Fatalf("expected first <a>, ok=%v err=%v", ok, err)
	}
	_, _, ok, err = ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected the disabled ring to stop at the interleaved <b>, not skip past it")
	}
}

func TestFindAndTakeDisabledSkipsWhitespaceAndComments(t *testing.T) {
	rd := xmlgo.NewReaderString("<root>\n  <!--c--><a>1</a>\n  <a>2</a>\n</root>")
	ring := newEventRing(rd, 0, nil)

	root, rootIdx, ok, err := ring.findAndTake(0, 0, nameMatch([]byte("root")))
	if err != nil || !ok {
		t.Fatalf("expected root match, ok=%v err=%v", ok, err)
	}
	baseDepth := root.depth + 1

	first, _, ok, err := ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a")))
	if err != nil || !ok {
		t.Fatalf("expected first <a> past leading whitespace/comment, ok=%v err=%v", ok, err)
	}
	if first.kind != xmlgo.KindStart {
		t.Fatalf("expected Start, got %v", first.kind)
	}

	second, _, ok, err := ring.findAndTake(rootIdx, baseDepth, nameMatch([]byte("a")))
	if err != nil || !ok {
		t.Fatalf("expected second <a> past interleaved whitespace, ok=%v err=%v", ok, err)
	}
	if second.kind != xmlgo.KindStart {
		t.Fatalf("expected Start, got %v", second.kind)
	}
}
