package serde

import (
	"reflect"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// Decoder drives a reflect.Value decode from a single xml.Reader, buffering
// through an eventRing so that one field's sequence run can skip past
// another field's interleaved siblings without losing them.
type Decoder struct {
	ring *eventRing
	cfg  config
}

// NewDecoder wraps rd. The returned Decoder reads exactly one root element
// (or, for a slice/array target, a run of sibling elements) per Decode call.
func NewDecoder(rd *xmlgo.Reader, opts ...Option) *Decoder {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Decoder{ring: newEventRing(rd, cfg.ringLimit, cfg.logger), cfg: cfg}
}

// Decode reads one XML value into v, which must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errUnsupported("Decode target must be a non-nil pointer")
	}
	target := rv.Elem()

	if err := d.skipProlog(); err != nil {
		return err
	}

	if isSequenceTarget(target) {
		return decodeTopLevelSequence(target, d.ring, d.cfg)
	}

	idx, ok, err := d.ring.findIndex(0, 0, startOrEmpty)
	if err != nil {
		return err
	}
	if !ok {
		return errExpectedStart("document root")
	}
	ev, err := d.ring.popAt(idx)
	if err != nil {
		return err
	}
	return decodeElement(target, d.ring, ev, idx, d.cfg)
}

// skipProlog advances past any leading Decl, Comment, PI and DocType events
// that precede the document's root element.
func (d *Decoder) skipProlog() error {
	for {
		ev, err := d.ring.front()
		if err != nil {
			return err
		}
		switch ev.kind {
		case xmlgo.KindDecl, xmlgo.KindComment, xmlgo.KindPI, xmlgo.KindDocType, xmlgo.KindText:
			if _, err := d.ring.takeFront(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func startOrEmpty(ev taggedEvent) bool {
	return ev.kind == xmlgo.KindStart || ev.kind == xmlgo.KindEmpty
}

func isSequenceTarget(v reflect.Value) bool {
	k := v.Kind()
	return (k == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8) || k == reflect.Array
}

// decodeTopLevelSequence decodes a run of document-root sibling elements
// into a slice or array, used when the Decode target itself is a sequence
// rather than a single record.
func decodeTopLevelSequence(v reflect.Value, ring *eventRing, cfg config) error {
	isArray := v.Kind() == reflect.Array
	elemType := v.Type().Elem()
	var elems []reflect.Value

	for {
		idx, ok, err := ring.findIndex(0, 0, startOrEmpty)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		ev, err := ring.popAt(idx)
		if err != nil {
			return err
		}
		ep := reflect.New(elemType).Elem()
		if err := decodeElement(ep, ring, ev, idx, cfg); err != nil {
			return err
		}
		elems = append(elems, ep)
	}

	if isArray {
		if len(elems) != v.Len() {
			return errCustom("invalid length %d, expected %d", len(elems), v.Len())
		}
		for i, e := range elems {
			v.Index(i).Set(e)
		}
		return nil
	}
	out := reflect.MakeSlice(v.Type(), len(elems), len(elems))
	for i, e := range elems {
		out.Index(i).Set(e)
	}
	v.Set(out)
	return nil
}

// decodeElement decodes the subtree rooted at ev (already popped from ring
// at index idx) into v. v may be a pointer, a variant-registered interface
// or concrete type, a struct, or a scalar leaf.
func decodeElement(v reflect.Value, ring *eventRing, ev taggedEvent, idx int, cfg config) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	if vs, ok := lookupVariant(v.Type()); ok {
		return decodeVariant(v, vs, ring, ev, idx, cfg)
	}

	if v.Kind() == reflect.Struct {
		return decodeStruct(v, ring, ev, idx, cfg)
	}

	text, err := readScalarContent(ring, ev, idx, isRawType(v.Type()))
	if err != nil {
		return err
	}
	return decodeScalar(v, text, string(ev.name))
}

// readScalarContent consumes ev's subtree (ev itself already popped, idx is
// where its continuation sits) and returns its concatenated text content. A
// nested element is an error: a leaf target has no children. Text segments
// are unescaped unless raw is set, in which case they're passed through
// still-escaped — matching decodeScalar's Raw/[]byte handling, which expects
// the bytes as they appeared in the document. CData is never unescaped,
// raw or not: it carries no entity references by construction.
func readScalarContent(ring *eventRing, ev taggedEvent, idx int, raw bool) ([]byte, error) {
	if ev.kind == xmlgo.KindEmpty {
		return nil, nil
	}
	var buf []byte
	for {
		child, err := ring.popAt(idx)
		if err != nil {
			return nil, err
		}
		switch child.kind {
		case xmlgo.KindEOF:
			return nil, errUnexpectedEOF(string(ev.name))
		case xmlgo.KindEnd:
			if child.depth == ev.depth {
				return buf, nil
			}
			return nil, errUnexpectedEnd(string(ev.name))
		case xmlgo.KindText:
			if raw {
				buf = append(buf, child.data...)
				continue
			}
			unescaped, uerr := xmlgo.Unescape(child.data)
			if uerr != nil {
				return nil, errInvalidXML(uerr)
			}
			buf = append(buf, unescaped...)
		case xmlgo.KindCData:
			buf = append(buf, child.data...)
		case xmlgo.KindComment, xmlgo.KindPI, xmlgo.KindDocType:
			// dropped: not part of scalar content
		case xmlgo.KindStart, xmlgo.KindEmpty:
			return nil, errUnexpectedStart(string(ev.name))
		}
	}
}
