package serde

import (
	"reflect"
	"strings"
	"sync"
)

// fieldKind classifies how a struct field binds to the document, derived
// from its `xml:"..."` tag.
type fieldKind int

const (
	fieldChild fieldKind = iota
	fieldAttr
	fieldValue
	fieldFlatten
)

// fieldPlan is the resolved binding for one exported struct field. A
// single fieldPlan instance is shared by structPlan.fields and whichever
// lookup map (attrByName/childByName/valueField/flattenFields) indexes it,
// so its address is a stable identity usable as a decode-time "have we
// filled this field yet" marker.
type fieldPlan struct {
	index      int
	name       string
	kind       fieldKind
	isSequence bool
	omitempty  bool
	ptr        bool
	isVariant  bool
}

// structPlan is the cached, tag-derived field table for one reflect.Type.
// Built once per type and reused across every Decode call for that type,
// so repeat decodes never re-walk struct tags.
type structPlan struct {
	fields             []*fieldPlan
	attrByName         map[string]*fieldPlan
	childByName        map[string]*fieldPlan
	valueField         *fieldPlan
	flattenFields      []*fieldPlan
	declaredChildNames map[string]bool
}

var planCache sync.Map // reflect.Type -> *structPlan

func getStructPlan(t reflect.Type) *structPlan {
	if v, ok := planCache.Load(t); ok {
		return v.(*structPlan)
	}
	p := buildStructPlan(t)
	actual, _ := planCache.LoadOrStore(t, p)
	return actual.(*structPlan)
}

func buildStructPlan(t reflect.Type) *structPlan {
	p := &structPlan{
		attrByName:         map[string]*fieldPlan{},
		childByName:        map[string]*fieldPlan{},
		declaredChildNames: map[string]bool{},
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue // unexported
		}
		tag, hasTag := f.Tag.Lookup("xml")
		if hasTag && tag == "-" {
			continue
		}

		name := f.Name
		var opts []string
		if hasTag {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			opts = parts[1:]
		}

		isAttr, isFlatten, omitempty, isVariant := false, false, false, false
		for _, o := range opts {
			switch o {
			case "attr":
				isAttr = true
			case "flatten":
				isFlatten = true
			case "omitempty":
				omitempty = true
			case "variant":
				isVariant = true
			}
		}

		ft := f.Type
		isSeq := ft.Kind() == reflect.Slice && ft.Elem().Kind() != reflect.Uint8
		if ft.Kind() == reflect.Array {
			isSeq = true
		}

		fp := &fieldPlan{
			index:      i,
			name:       name,
			omitempty:  omitempty,
			isSequence: isSeq,
			ptr:        ft.Kind() == reflect.Pointer,
			isVariant:  isVariant,
		}

		switch {
		case name == "$value":
			fp.kind = fieldValue
			p.valueField = fp
		case isFlatten:
			fp.kind = fieldFlatten
			p.flattenFields = append(p.flattenFields, fp)
		case isAttr:
			fp.kind = fieldAttr
			p.attrByName[name] = fp
		default:
			fp.kind = fieldChild
			p.childByName[name] = fp
			p.declaredChildNames[name] = true
		}
		p.fields = append(p.fields, fp)
	}
	return p
}
