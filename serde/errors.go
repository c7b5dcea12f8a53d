// Package serde implements a reflection-based, type-directed XML
// deserializer on top of the xml package's pull parser.
package serde

import (
	"fmt"
)

// DeErrorKind discriminates the deserialization-error taxonomy, which is
// disjoint from the parser's xml.ErrorKind taxonomy (see errors.rs in the
// original implementation for the split this mirrors).
type DeErrorKind int

const (
	// DeErrCustom wraps a free-form message (missing field, invalid
	// length, unknown variant tag, and similar semantic failures).
	DeErrCustom DeErrorKind = iota
	// DeErrInvalidXML wraps an *xml.Error from the underlying reader.
	DeErrInvalidXML
	// DeErrInvalidInt reports a scalar field whose text isn't a valid integer.
	DeErrInvalidInt
	// DeErrInvalidFloat reports a scalar field whose text isn't a valid float.
	DeErrInvalidFloat
	// DeErrInvalidBoolean reports a scalar field whose text isn't one of
	// "true", "false", "1" or "0".
	DeErrInvalidBoolean
	// DeErrKeyNotRead reports an element or attribute present in the
	// input that no field claimed. No decode path in this package returns
	// it: unknown attributes and child elements are skipped.
	DeErrKeyNotRead
	// DeErrUnexpectedStart reports a Start/Empty event where a scalar was expected.
	DeErrUnexpectedStart
	// DeErrUnexpectedEnd reports an End event reached before required content.
	DeErrUnexpectedEnd
	// DeErrUnexpectedEOF reports input ending before decoding finished.
	DeErrUnexpectedEOF
	// DeErrExpectedStart reports content that doesn't begin with a Start/Empty event.
	DeErrExpectedStart
	// DeErrUnsupported reports a Go type this deserializer cannot decode into.
	DeErrUnsupported
	// DeErrTooManyEvents reports the reordering ring's bound was exceeded.
	DeErrTooManyEvents
)

// DeError is returned by every decode operation in this package.
type DeError struct {
	Kind DeErrorKind
	Msg  string // DeErrCustom, DeErrUnsupported
	Name string // DeErrKeyNotRead: the unclaimed name
	Want string // DeErrUnexpectedStart/End/EOF: what was being decoded
	Limit int   // DeErrTooManyEvents
	Err  error  // wrapped cause: DeErrInvalidXML, DeErrInvalidInt, DeErrInvalidFloat, DeErrInvalidBoolean
}

func (e *DeError) Error() string {
	switch e.Kind {
	case DeErrCustom:
		return e.Msg
	case DeErrInvalidXML:
		return fmt.Sprintf("serde: invalid xml: %v", e.Err)
	case DeErrInvalidInt:
		return fmt.Sprintf("serde: invalid integer for field %s: %v", e.Want, e.Err)
	case DeErrInvalidFloat:
		return fmt.Sprintf("serde: invalid float for field %s: %v", e.Want, e.Err)
	case DeErrInvalidBoolean:
		return fmt.Sprintf("serde: invalid boolean for field %s: %v", e.Want, e.Err)
	case DeErrKeyNotRead:
		return fmt.Sprintf("serde: unexpected key %q was not read", e.Name)
	case DeErrUnexpectedStart:
		return fmt.Sprintf("serde: unexpected start element while decoding %s", e.Want)
	case DeErrUnexpectedEnd:
		return fmt.Sprintf("serde: unexpected end element while decoding %s", e.Want)
	case DeErrUnexpectedEOF:
		return fmt.Sprintf("serde: unexpected eof while decoding %s", e.Want)
	case DeErrExpectedStart:
		return fmt.Sprintf("serde: expected a start element while decoding %s", e.Want)
	case DeErrUnsupported:
		return fmt.Sprintf("serde: unsupported: %s", e.Msg)
	case DeErrTooManyEvents:
		return fmt.Sprintf("serde: too many buffered events (limit %d); increase WithEventBufferSize or disable reordering", e.Limit)
	default:
		return "serde: decode error"
	}
}

func (e *DeError) Unwrap() error { return e.Err }

// Is reports whether target is a *DeError of the same Kind.
func (e *DeError) Is(target error) bool {
	t, ok := target.(*DeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ErrKind builds a sentinel *DeError carrying only a Kind, for errors.Is.
func ErrKind(k DeErrorKind) error { return &DeError{Kind: k} }

func errCustom(format string, args ...any) error {
	return &DeError{Kind: DeErrCustom, Msg: fmt.Sprintf(format, args...)}
}

func errInvalidXML(err error) error {
	if de, ok := err.(*DeError); ok {
		return de
	}
	return &DeError{Kind: DeErrInvalidXML, Err: err}
}

func errInvalidInt(field string, err error) error {
	return &DeError{Kind: DeErrInvalidInt, Want: field, Err: err}
}

func errInvalidFloat(field string, err error) error {
	return &DeError{Kind: DeErrInvalidFloat, Want: field, Err: err}
}

func errInvalidBoolean(field string, err error) error {
	return &DeError{Kind: DeErrInvalidBoolean, Want: field, Err: err}
}

func errKeyNotRead(name string) error {
	return &DeError{Kind: DeErrKeyNotRead, Name: name}
}

func errUnexpectedStart(want string) error {
	return &DeError{Kind: DeErrUnexpectedStart, Want: want}
}

func errUnexpectedEnd(want string) error {
	return &DeError{Kind: DeErrUnexpectedEnd, Want: want}
}

func errUnexpectedEOF(want string) error {
	return &DeError{Kind: DeErrUnexpectedEOF, Want: want}
}

func errExpectedStart(want string) error {
	return &DeError{Kind: DeErrExpectedStart, Want: want}
}

func errUnsupported(msg string) error {
	return &DeError{Kind: DeErrUnsupported, Msg: msg}
}

func errTooManyEvents(limit int) error {
	return &DeError{Kind: DeErrTooManyEvents, Limit: limit}
}
