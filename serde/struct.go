package serde

import (
	"reflect"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// decodeStruct decodes the subtree rooted at ev (already popped from ring
// at index idx) into the struct value v, field by field, in the struct's
// declaration order. A single-value child field's lookup may skip past
// other, not-yet-due fields' elements; a sequence field's lookup repeats
// until no further match remains at this scope. Both rely on
// eventRing.findAndTake to buffer what they skip so a later field's turn
// can still find it.
func decodeStruct(v reflect.Value, ring *eventRing, ev taggedEvent, idx int, cfg config) error {
	plan := getStructPlan(v.Type())
	seen := map[*fieldPlan]bool{}

	if err := decodeAttrs(v, plan, ev.attr, seen); err != nil {
		return err
	}
	if ev.kind == xmlgo.KindEmpty {
		return validateRequired(v, plan, seen)
	}

	baseDepth := ev.depth + 1
	if err := processChildFields(v, plan, ring, idx, baseDepth, cfg, seen); err != nil {
		return err
	}
	if err := drainRemainder(v, plan, ring, idx, ev.depth, cfg); err != nil {
		return err
	}
	return validateRequired(v, plan, seen)
}

// decodeAttrs fills every attribute-bound field of v (and, recursively, of
// any ,flatten substruct, which sees the same attribute span) from attrSpan.
func decodeAttrs(v reflect.Value, plan *structPlan, attrSpan []byte, seen map[*fieldPlan]bool) error {
	attrs := xmlgo.NewAttributes(attrSpan)
	for {
		a, ok, err := attrs.Next()
		if err != nil {
			return errInvalidXML(err)
		}
		if !ok {
			break
		}
		fp, ok := plan.attrByName[string(a.Name)]
		if !ok {
			continue // unknown attribute: ignored
		}
		fv := v.Field(fp.index)
		value := a.Value
		if !isRawType(fv.Type()) {
			unescaped, uerr := xmlgo.Unescape(a.Value)
			if uerr != nil {
				return errInvalidXML(uerr)
			}
			value = unescaped
		}
		if err := decodeScalar(fv, value, fp.name); err != nil {
			return err
		}
		seen[fp] = true
	}

	for _, ff := range plan.flattenFields {
		fv, ok := settleStructField(v.Field(ff.index))
		if !ok {
			continue
		}
		if err := decodeAttrs(fv, getStructPlan(fv.Type()), attrSpan, seen); err != nil {
			return err
		}
	}
	return nil
}

// processChildFields walks plan.fields in declaration order, resolving
// each attribute/$value field's sibling elsewhere and each child field via
// the ring. ,flatten fields recurse into the same ring scope (idx,
// baseDepth unchanged) since a flattened struct's children appear directly
// among its embedder's children, not one nesting level deeper.
func processChildFields(v reflect.Value, plan *structPlan, ring *eventRing, idx, baseDepth int, cfg config, seen map[*fieldPlan]bool) error {
	for _, fp := range plan.fields {
		switch fp.kind {
		case fieldAttr, fieldValue:
			continue
		case fieldFlatten:
			fv, ok := settleStructField(v.Field(fp.index))
			if !ok {
				continue
			}
			if err := processChildFields(fv, getStructPlan(fv.Type()), ring, idx, baseDepth, cfg, seen); err != nil {
				return err
			}
		case fieldChild:
			if err := decodeChildField(v, fp, ring, idx, baseDepth, cfg, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// settleStructField dereferences a (possibly pointer) struct field,
// allocating it if it's a nil pointer, and reports whether it's usable as
// a struct (false for a non-struct ,flatten field, which is a caller bug
// we silently ignore rather than panic on).
func settleStructField(fv reflect.Value) (reflect.Value, bool) {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	return fv, fv.Kind() == reflect.Struct
}

func decodeChildField(v reflect.Value, fp *fieldPlan, ring *eventRing, idx, baseDepth int, cfg config, seen map[*fieldPlan]bool) error {
	fv := v.Field(fp.index)
	match := nameMatch([]byte(fp.name))
	if fp.isVariant {
		elemType := fv.Type()
		if fp.isSequence {
			elemType = elemType.Elem()
		}
		if scheme, ok := lookupVariant(elemType); ok && scheme.Kind == VariantExternal {
			match = externalCaseMatch(scheme)
		}
	}

	if !fp.isSequence {
		ev, foundIdx, ok, err := ring.findAndTake(idx, baseDepth, match)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		seen[fp] = true
		return decodeElement(fv, ring, ev, foundIdx, cfg)
	}

	isArray := fv.Kind() == reflect.Array
	elemType := fv.Type().Elem()
	var elems []reflect.Value
	for {
		ev, foundIdx, ok, err := ring.findAndTake(idx, baseDepth, match)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		ep := reflect.New(elemType).Elem()
		if err := decodeElement(ep, ring, ev, foundIdx, cfg); err != nil {
			return err
		}
		elems = append(elems, ep)
	}
	if len(elems) > 0 {
		seen[fp] = true
	}

	if isArray {
		if len(elems) != fv.Len() {
			return errCustom("invalid length %d for field %s, expected %d", len(elems), fp.name, fv.Len())
		}
		for i, e := range elems {
			fv.Index(i).Set(e)
		}
		return nil
	}
	out := reflect.MakeSlice(fv.Type(), len(elems), len(elems))
	for i, e := range elems {
		out.Index(i).Set(e)
	}
	fv.Set(out)
	return nil
}

// drainRemainder consumes whatever is left in this element's scope after
// every declared field has had its turn: the $value field's text or
// leftover child elements, and anything genuinely unclaimed, up to and
// including the element's own closing tag.
func drainRemainder(v reflect.Value, plan *structPlan, ring *eventRing, idx, enclosingDepth int, cfg config) error {
	var textBuf []byte
	var seqElems []reflect.Value
	valueIsSeq := plan.valueField != nil && plan.valueField.isSequence
	valueIsScalar := plan.valueField != nil && !plan.valueField.isSequence
	valueIsRaw := valueIsScalar && isRawType(v.Field(plan.valueField.index).Type())

	for {
		peek, err := ring.at(idx)
		if err != nil {
			return err
		}
		if peek.kind == xmlgo.KindEOF {
			return errUnexpectedEOF("")
		}
		if peek.depth == enclosingDepth && peek.kind == xmlgo.KindEnd {
			if _, err := ring.popAt(idx); err != nil {
				return err
			}
			break
		}

		ev, err := ring.popAt(idx)
		if err != nil {
			return err
		}
		switch ev.kind {
		case xmlgo.KindText:
			if valueIsScalar {
				if valueIsRaw {
					textBuf = append(textBuf, ev.data...)
					continue
				}
				unescaped, uerr := xmlgo.Unescape(ev.data)
				if uerr != nil {
					return errInvalidXML(uerr)
				}
				textBuf = append(textBuf, unescaped...)
			}
		case xmlgo.KindCData:
			if valueIsScalar {
				textBuf = append(textBuf, ev.data...)
			}
		case xmlgo.KindComment, xmlgo.KindPI, xmlgo.KindDocType:
			// not part of any field's content
		case xmlgo.KindStart, xmlgo.KindEmpty:
			if valueIsSeq {
				elemType := v.Field(plan.valueField.index).Type().Elem()
				ep := reflect.New(elemType).Elem()
				if err := decodeElement(ep, ring, ev, idx, cfg); err != nil {
					return err
				}
				seqElems = append(seqElems, ep)
			} else if err := skipSubtree(ring, idx, ev); err != nil {
				return err
			}
		}
	}

	if plan.valueField == nil {
		return nil
	}
	fv := v.Field(plan.valueField.index)
	if valueIsSeq {
		out := reflect.MakeSlice(fv.Type(), len(seqElems), len(seqElems))
		for i, e := range seqElems {
			out.Index(i).Set(e)
		}
		fv.Set(out)
		return nil
	}
	return decodeScalar(fv, textBuf, "$value")
}

// skipSubtree discards ev's entire subtree (already popped, continuing at
// idx) without decoding it: the element's own closing tag is identified by
// sharing ev's depth, regardless of how deeply nested its descendants are.
func skipSubtree(ring *eventRing, idx int, ev taggedEvent) error {
	if ev.kind == xmlgo.KindEmpty {
		return nil
	}
	for {
		child, err := ring.popAt(idx)
		if err != nil {
			return err
		}
		switch child.kind {
		case xmlgo.KindEOF:
			return errUnexpectedEOF(string(ev.name))
		case xmlgo.KindEnd:
			if child.depth == ev.depth {
				return nil
			}
		}
	}
}

// validateRequired errors if any non-pointer, non-sequence, non-omitempty
// attribute or child field was never filled — Go's stand-in for the
// required-vs-Option<T> distinction a Rust struct derive would enforce.
func validateRequired(v reflect.Value, plan *structPlan, seen map[*fieldPlan]bool) error {
	for _, fp := range plan.fields {
		switch fp.kind {
		case fieldAttr, fieldChild:
			if seen[fp] || fp.isSequence || fp.omitempty || fp.ptr {
				continue
			}
			return errCustom("missing field %q", fp.name)
		case fieldFlatten:
			ft := v.Field(fp.index).Type()
			elemType := ft
			fv := v.Field(fp.index)
			if ft.Kind() == reflect.Pointer {
				elemType = ft.Elem()
				if fv.IsNil() {
					fv = reflect.New(elemType).Elem()
				} else {
					fv = fv.Elem()
				}
			}
			if err := validateRequired(fv, getStructPlan(elemType), seen); err != nil {
				return err
			}
		}
	}
	return nil
}
