package serde

import (
	"reflect"
	"sync"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// VariantKind selects how a registered variant type's concrete case is
// identified in the document.
type VariantKind int

const (
	// VariantExternal represents each case as a differently-named element;
	// there is no wrapper, the element name itself is the tag.
	VariantExternal VariantKind = iota
	// VariantInternal wraps every case in one fixed element and carries the
	// tag as a field (attribute or child, per TagIsAttr) alongside the
	// case's own fields in that same element.
	VariantInternal
	// VariantAdjacent wraps every case in one fixed element containing a
	// TagField child and a ContentField child; a case type with no fields
	// may omit the ContentField child.
	VariantAdjacent
	// VariantUntagged tries each case's own shape in turn against one fixed
	// wrapper element's content, keeping the first that decodes cleanly.
	VariantUntagged
)

// VariantCase associates one tag value with the concrete type that
// represents it.
type VariantCase struct {
	Tag  string
	Type reflect.Type
}

// VariantScheme describes how to decode one interface type's registered
// variant. TagField/TagIsAttr/ContentField only apply to the tagging
// strategies that use them.
type VariantScheme struct {
	Kind         VariantKind
	TagField     string
	TagIsAttr    bool
	ContentField string
	Cases        []VariantCase
}

func (s VariantScheme) caseType(tag string) (reflect.Type, bool) {
	for _, c := range s.Cases {
		if c.Tag == tag {
			return c.Type, true
		}
	}
	return nil, false
}

var variantRegistry sync.Map // reflect.Type (an interface type) -> VariantScheme

// RegisterVariant records how to decode values of interface type T. Call it
// once at init time for every enum-like field type a document may contain;
// T is almost always an interface, since a concrete struct field has only
// one shape and needs no scheme.
func RegisterVariant[T any](scheme VariantScheme) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	variantRegistry.Store(t, scheme)
}

func lookupVariant(t reflect.Type) (VariantScheme, bool) {
	v, ok := variantRegistry.Load(t)
	if !ok {
		return VariantScheme{}, false
	}
	return v.(VariantScheme), true
}

// externalCaseMatch reports whether a buffered Start/Empty event's name is
// one of scheme's externally-tagged case names.
func externalCaseMatch(scheme VariantScheme) func(taggedEvent) bool {
	return func(ev taggedEvent) bool {
		if ev.kind != xmlgo.KindStart && ev.kind != xmlgo.KindEmpty {
			return false
		}
		_, ok := scheme.caseType(string(ev.name))
		return ok
	}
}

// decodeVariant decodes ev (and, for Internal/Adjacent/Untagged, its
// subtree) into v, an interface-kind field with a registered VariantScheme.
func decodeVariant(v reflect.Value, scheme VariantScheme, ring *eventRing, ev taggedEvent, idx int, cfg config) error {
	switch scheme.Kind {
	case VariantExternal:
		ct, ok := scheme.caseType(string(ev.name))
		if !ok {
			return errCustom("unknown variant tag %q", string(ev.name))
		}
		cfg.log().Debug("variant case selected", "kind", "external", "tag", string(ev.name), "type", ct)
		inst := reflect.New(ct).Elem()
		if err := decodeElement(inst, ring, ev, idx, cfg); err != nil {
			return err
		}
		v.Set(inst)
		return nil

	case VariantInternal:
		children, err := materializeSubtree(ring, idx, ev)
		if err != nil {
			return err
		}
		tag, err := internalTagValue(scheme, ev, children, cfg)
		if err != nil {
			return err
		}
		ct, ok := scheme.caseType(tag)
		if !ok {
			return errCustom("unknown variant tag %q", tag)
		}
		cfg.log().Debug("variant case selected", "kind", "internal", "tag", tag, "type", ct)
		inst := reflect.New(ct).Elem()
		if err := decodeFromMaterialized(inst, ev, children, cfg); err != nil {
			return err
		}
		v.Set(inst)
		return nil

	case VariantAdjacent:
		return decodeAdjacentVariant(v, scheme, ring, ev, idx, cfg)

	case VariantUntagged:
		children, err := materializeSubtree(ring, idx, ev)
		if err != nil {
			return err
		}
		var lastErr error
		for _, c := range scheme.Cases {
			inst := reflect.New(c.Type).Elem()
			if derr := decodeFromMaterialized(inst, ev, children, cfg); derr != nil {
				lastErr = derr
				continue
			}
			cfg.log().Debug("variant case selected", "kind", "untagged", "type", c.Type)
			v.Set(inst)
			return nil
		}
		if lastErr == nil {
			lastErr = errCustom("no variant case matched element %q", string(ev.name))
		}
		return lastErr

	default:
		return errUnsupported("unknown variant scheme kind")
	}
}

func decodeAdjacentVariant(v reflect.Value, scheme VariantScheme, ring *eventRing, ev taggedEvent, idx int, cfg config) error {
	children, err := materializeSubtree(ring, idx, ev)
	if err != nil {
		return err
	}

	tagScratch := newReplayRing(append([]taggedEvent(nil), children...), cfg.logger)
	tagEv, tagIdx, ok, err := tagScratch.findAndTake(0, ev.depth+1, nameMatch([]byte(scheme.TagField)))
	if err != nil {
		return err
	}
	if !ok {
		return errCustom("missing tag element %q", scheme.TagField)
	}
	tagText, err := readScalarContent(tagScratch, tagEv, tagIdx, false)
	if err != nil {
		return err
	}
	ct, ok := scheme.caseType(string(tagText))
	if !ok {
		return errCustom("unknown variant tag %q", string(tagText))
	}
	cfg.log().Debug("variant case selected", "kind", "adjacent", "tag", string(tagText), "type", ct)
	inst := reflect.New(ct).Elem()

	contentScratch := newReplayRing(append([]taggedEvent(nil), children...), cfg.logger)
	contentEv, contentIdx, ok, err := contentScratch.findAndTake(0, ev.depth+1, nameMatch([]byte(scheme.ContentField)))
	if err != nil {
		return err
	}
	if !ok {
		// A unit case (no fields) carries no content element at all; only
		// error when the case actually has fields that need filling.
		if ct.Kind() == reflect.Struct && ct.NumField() == 0 {
			v.Set(inst)
			return nil
		}
		return errCustom("missing content element %q", scheme.ContentField)
	}
	if err := decodeElement(inst, contentScratch, contentEv, contentIdx, cfg); err != nil {
		return err
	}
	v.Set(inst)
	return nil
}

// internalTagValue finds the discriminator value for an internally-tagged
// variant: either an attribute on ev itself, or a child element among
// children, without consuming the original children slice (decodeVariant
// still needs it intact to decode the chosen case's own fields).
func internalTagValue(scheme VariantScheme, ev taggedEvent, children []taggedEvent, cfg config) (string, error) {
	if scheme.TagIsAttr {
		attrs := xmlgo.NewAttributes(ev.attr)
		for {
			a, ok, err := attrs.Next()
			if err != nil {
				return "", errInvalidXML(err)
			}
			if !ok {
				break
			}
			if string(a.Name) == scheme.TagField {
				unescaped, uerr := xmlgo.Unescape(a.Value)
				if uerr != nil {
					return "", errInvalidXML(uerr)
				}
				return string(unescaped), nil
			}
		}
		return "", errCustom("missing tag attribute %q", scheme.TagField)
	}

	scratch := newReplayRing(append([]taggedEvent(nil), children...), cfg.logger)
	tagEv, tagIdx, ok, err := scratch.findAndTake(0, ev.depth+1, nameMatch([]byte(scheme.TagField)))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errCustom("missing tag element %q", scheme.TagField)
	}
	text, err := readScalarContent(scratch, tagEv, tagIdx, false)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// materializeSubtree consumes ev's entire subtree (already popped,
// continuing at idx) and returns its events — children plus ev's own
// closing tag — without decoding them, so the caller can inspect them (to
// find a variant tag) before committing to a decode target.
func materializeSubtree(ring *eventRing, idx int, ev taggedEvent) ([]taggedEvent, error) {
	if ev.kind == xmlgo.KindEmpty {
		return nil, nil
	}
	var collected []taggedEvent
	for {
		child, err := ring.popAt(idx)
		if err != nil {
			return nil, err
		}
		collected = append(collected, child)
		switch child.kind {
		case xmlgo.KindEOF:
			return nil, errUnexpectedEOF(string(ev.name))
		case xmlgo.KindEnd:
			if child.depth == ev.depth {
				return collected, nil
			}
		}
	}
}

// decodeFromMaterialized re-decodes ev's subtree from a previously
// materialized event slice, leaving the original ring and slice untouched
// (it copies the slice into a fresh replay ring each call).
func decodeFromMaterialized(v reflect.Value, ev taggedEvent, children []taggedEvent, cfg config) error {
	r := newReplayRing(append([]taggedEvent(nil), children...), cfg.logger)
	return decodeElement(v, r, ev, 0, cfg)
}
