package serde

import (
	"log/slog"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// taggedEvent is an xml.Event copied into owned storage and annotated with
// the nesting depth at which it occurs, as held by eventRing.
//
// depth follows one convention for every kind: it is the level shared by an
// element and its own closing tag and its siblings — recorded *before*
// incrementing on Start, and *after* decrementing on End. A direct child of
// an element recorded at depth D is itself recorded at depth D+1; the
// element's own closing End event is the first same-or-shallower entry
// recorded back at depth D.
type taggedEvent struct {
	kind  xmlgo.EventKind
	name  []byte
	attr  []byte
	data  []byte
	depth int
}

// eventRing implements the bounded-memory list-reordering window: a
// forward-only queue of taggedEvents pulled from an xml.Reader, scanned by
// findAndTake to let one field's sequence run skip past another field's
// interleaved siblings without losing them.
type eventRing struct {
	rd       *xmlgo.Reader
	limit    int // 0 disables reordering, RingUnbounded removes the cap
	buf      []taggedEvent
	curDepth int
	logger   *slog.Logger
}

func newEventRing(rd *xmlgo.Reader, limit int, logger *slog.Logger) *eventRing {
	return &eventRing{rd: rd, limit: limit, logger: logger}
}

// newReplayRing builds an eventRing over an already-materialized slice of
// events instead of a live xml.Reader — used to re-decode a subtree that
// was buffered once (e.g. to discover a variant's tag) without re-parsing
// or disturbing the original stream. Exhausting the slice reads as EOF.
// logger carries through the enclosing Decoder/Stream's configured logger so
// replay-ring tracing isn't silently dropped from it.
func newReplayRing(events []taggedEvent, logger *slog.Logger) *eventRing {
	return &eventRing{buf: events, limit: RingUnbounded, logger: logger}
}

func (r *eventRing) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return discardLogger
}

func (r *eventRing) scanningEnabled() bool { return r.limit != 0 }

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *eventRing) pull() error {
	ev, err := r.rd.Read()
	if err != nil {
		return errInvalidXML(err)
	}
	te := taggedEvent{
		kind: ev.Kind,
		name: copyBytes(ev.Name),
		attr: copyBytes(ev.Attr),
		data: copyBytes(ev.Data),
	}
	switch ev.Kind {
	case xmlgo.KindStart:
		te.depth = r.curDepth
		r.curDepth++
	case xmlgo.KindEnd:
		r.curDepth--
		te.depth = r.curDepth
	default:
		te.depth = r.curDepth
	}
	r.buf = append(r.buf, te)
	r.log().Debug("ring admission", "kind", te.kind, "name", string(te.name), "depth", te.depth, "buffered", len(r.buf))
	return nil
}

// at ensures the ring holds at least i+1 entries, pulling more from the
// underlying reader as needed, and returns entry i.
func (r *eventRing) at(i int) (taggedEvent, error) {
	for len(r.buf) <= i {
		if r.rd == nil {
			return taggedEvent{kind: xmlgo.KindEOF}, nil
		}
		if r.limit > 0 && len(r.buf) >= r.limit {
			return taggedEvent{}, errTooManyEvents(r.limit)
		}
		if err := r.pull(); err != nil {
			return taggedEvent{}, err
		}
	}
	return r.buf[i], nil
}

func (r *eventRing) removeAt(i int) {
	r.log().Debug("ring eviction", "kind", r.buf[i].kind, "name", string(r.buf[i].name), "index", i)
	r.buf = append(r.buf[:i], r.buf[i+1:]...)
}

// front returns entry 0 without removing it.
func (r *eventRing) front() (taggedEvent, error) { return r.at(0) }

func (r *eventRing) takeFront() (taggedEvent, error) {
	ev, err := r.at(0)
	if err != nil {
		return taggedEvent{}, err
	}
	r.removeAt(0)
	return ev, nil
}

// findIndex scans forward starting at index `start` for the first entry at
// depth == baseDepth satisfying match, without removing anything, and
// returns its index. `start` scopes the search to the caller's own subtree:
// an enclosing struct's still-deferred siblings sit at indices below
// `start` and must never be considered, since a coincidentally-matching
// name nested inside one of them would otherwise be mistaken for a child of
// the element currently being decoded. Entries deeper than baseDepth
// (descendants of an already-skipped sibling within this same subtree) are
// passed over transparently, as are Text/CData/Comment/PI/DocType siblings
// at baseDepth itself (insignificant nodes, never a match candidate, and
// not what "reordering disabled" is about). Scanning stops with ok=false at
// end of input, at the enclosing element's own closing tag (depth ==
// baseDepth-1, End), or — when the ring is disabled (limit == 0) — at the
// first same-depth Start/Empty sibling that fails match, reproducing a
// naive non-reordering decoder's behaviour.
func (r *eventRing) findIndex(start, baseDepth int, match func(taggedEvent) bool) (int, bool, error) {
	for i := start; ; i++ {
		ev, err := r.at(i)
		if err != nil {
			return 0, false, err
		}
		if ev.kind == xmlgo.KindEOF {
			return 0, false, nil
		}
		if ev.depth == baseDepth-1 && ev.kind == xmlgo.KindEnd {
			return 0, false, nil
		}
		if ev.depth == baseDepth {
			if match(ev) {
				return i, true, nil
			}
			isElement := ev.kind == xmlgo.KindStart || ev.kind == xmlgo.KindEmpty
			if isElement && !r.scanningEnabled() {
				return 0, false, nil
			}
		}
	}
}

// popAt removes and returns the entry at index i. Callers that keep
// consuming a subtree rooted at the event just removed from i should keep
// popping at the same index i: removing an entry shifts everything after
// it down by one, so index i then holds whatever followed in document
// order — precisely the next unconsumed member of that subtree, undisturbed
// by any entries still deferred ahead of it (at indices < i) for an outer
// field's turn.
func (r *eventRing) popAt(i int) (taggedEvent, error) {
	ev, err := r.at(i)
	if err != nil {
		return taggedEvent{}, err
	}
	r.removeAt(i)
	return ev, nil
}

// findAndTake locates the first entry matching findIndex's rules (scoped to
// start) and pops it, returning the event, the ring index its removal
// leaves behind for continued subtree consumption, and whether a match was
// found.
func (r *eventRing) findAndTake(start, baseDepth int, match func(taggedEvent) bool) (taggedEvent, int, bool, error) {
	i, ok, err := r.findIndex(start, baseDepth, match)
	if err != nil || !ok {
		return taggedEvent{}, 0, false, err
	}
	ev, err := r.popAt(i)
	if err != nil {
		return taggedEvent{}, 0, false, err
	}
	return ev, i, true, nil
}

func nameMatch(name []byte) func(taggedEvent) bool {
	return func(ev taggedEvent) bool {
		return (ev.kind == xmlgo.KindStart || ev.kind == xmlgo.KindEmpty) && string(ev.name) == string(name)
	}
}
