package serde

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Raw holds element or attribute text exactly as it appeared in the
// document — entity references still escaped, no trimming, no bool/int/float
// parsing. Bind it to a field to opt out of scalar conversion and unescaping.
type Raw []byte

var (
	rawType       = reflect.TypeOf(Raw(nil))
	byteSliceType = reflect.TypeOf([]byte(nil))
)

// isRawType reports whether t (after dereferencing any pointer) is Raw or
// []byte — the two target types that receive still-escaped bytes instead of
// unescaped text, per decodeScalar's handling of rawType/byteSliceType below.
func isRawType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == rawType || t == byteSliceType
}

// decodeScalar converts text into v, which must be a (possibly pointer-to)
// string, bool, integer, float, Raw or []byte. Callers pass text already
// unescaped, except for Raw and []byte targets, which get it still escaped.
func decodeScalar(v reflect.Value, text []byte, fieldName string) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeScalar(v.Elem(), text, fieldName)
	}

	switch v.Type() {
	case rawType, byteSliceType:
		v.SetBytes(append([]byte(nil), text...))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(string(text))
		return nil

	case reflect.Bool:
		switch strings.TrimSpace(string(text)) {
		case "true", "1":
			v.SetBool(true)
		case "false", "0":
			v.SetBool(false)
		default:
			return errInvalidBoolean(fieldName, strconv.ErrSyntax)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(string(text)), 10, 64)
		if err != nil {
			return errInvalidInt(fieldName, err)
		}
		if v.OverflowInt(n) {
			return errInvalidInt(fieldName, strconv.ErrRange)
		}
		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(string(text)), 10, 64)
		if err != nil {
			return errInvalidInt(fieldName, err)
		}
		if v.OverflowUint(n) {
			return errInvalidInt(fieldName, strconv.ErrRange)
		}
		v.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
		if err != nil {
			return errInvalidFloat(fieldName, err)
		}
		v.SetFloat(f)
		return nil

	default:
		return errUnsupported(fmt.Sprintf("field %s has unsupported scalar type %s", fieldName, v.Type()))
	}
}
