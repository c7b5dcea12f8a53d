package xml

import "fmt"

// AttrErrorKind discriminates failures from Attributes.Next.
type AttrErrorKind int

const (
	// AttrErrExpectedEq reports a missing '=' after an attribute name.
	AttrErrExpectedEq AttrErrorKind = iota
	// AttrErrExpectedQuote reports a value that doesn't start with a quote.
	AttrErrExpectedQuote
	// AttrErrUnquotedValue reports a bare value (no quotes at all).
	AttrErrUnquotedValue
	// AttrErrDuplicated reports the same attribute name appearing twice on one element.
	AttrErrDuplicated
	// AttrErrInvalidName reports a zero-length or otherwise invalid attribute name.
	AttrErrInvalidName
)

// AttrError is returned by Attributes.Next.
type AttrError struct {
	Kind AttrErrorKind
	Pos  int
	Name string // AttrErrDuplicated, AttrErrInvalidName
	Byte byte   // AttrErrExpectedQuote: the byte found instead of a quote
}

func (e *AttrError) Error() string {
	switch e.Kind {
	case AttrErrExpectedEq:
		return fmt.Sprintf("expected '=' after attribute name at byte %d", e.Pos)
	case AttrErrExpectedQuote:
		return fmt.Sprintf("expected quote, found %q at byte %d", e.Byte, e.Pos)
	case AttrErrUnquotedValue:
		return fmt.Sprintf("unquoted attribute value at byte %d", e.Pos)
	case AttrErrDuplicated:
		return fmt.Sprintf("duplicated attribute %q at byte %d", e.Name, e.Pos)
	case AttrErrInvalidName:
		return fmt.Sprintf("invalid attribute name at byte %d", e.Pos)
	default:
		return fmt.Sprintf("invalid attribute at byte %d", e.Pos)
	}
}

// Attr is a single, still-escaped name/value pair as found by Attributes.
type Attr struct {
	Name  []byte
	Value []byte
}

// Attributes lazily scans the raw attribute span of a Start or Empty
// event. Construct it with NewAttributes over Event.Attr.
type Attributes struct {
	data        []byte
	pos         int
	recoverable bool
	seen        [][]byte
}

// NewAttributes returns an Attributes iterator over data (typically
// Event.Attr). By default duplicate and malformed attributes are reported
// as strict errors; call WithRecovery(true) to instead skip past them.
func NewAttributes(data []byte) *Attributes {
	return &Attributes{data: data}
}

// WithRecovery toggles recoverable mode: instead of stopping at the first
// malformed attribute, Next skips forward to the next plausible attribute
// boundary and continues.
func (a *Attributes) WithRecovery(v bool) *Attributes {
	a.recoverable = v
	return a
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStartByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_' || b == ':' || b >= 0x80
}

func isNameByte(b byte) bool {
	return isNameStartByte(b) || (b >= '0' && b <= '9') || b == '-' || b == '.'
}

func (a *Attributes) skipSpace() {
	for a.pos < len(a.data) && isSpace(a.data[a.pos]) {
		a.pos++
	}
}

// Next returns the next attribute, or io.EOF-equivalent (nil, nil) once
// the span is exhausted — callers should check `ok` via the returned bool.
func (a *Attributes) Next() (Attr, bool, error) {
	a.skipSpace()
	if a.pos >= len(a.data) {
		return Attr{}, false, nil
	}

	start := a.pos
	if !isNameStartByte(a.data[a.pos]) {
		if a.recoverable {
			a.pos++
			return a.Next()
		}
		return Attr{}, false, &AttrError{Kind: AttrErrInvalidName, Pos: start}
	}
	for a.pos < len(a.data) && isNameByte(a.data[a.pos]) {
		a.pos++
	}
	name := a.data[start:a.pos]

	a.skipSpace()
	if a.pos >= len(a.data) || a.data[a.pos] != '=' {
		if a.recoverable {
			// The bare name is the malformed attribute; whatever follows
			// it starts the next one.
			return a.Next()
		}
		return Attr{}, false, &AttrError{Kind: AttrErrExpectedEq, Pos: a.pos}
	}
	a.pos++ // consume '='
	a.skipSpace()

	if a.pos >= len(a.data) {
		return Attr{}, false, &AttrError{Kind: AttrErrExpectedQuote, Pos: a.pos}
	}
	quote := a.data[a.pos]
	if quote != '"' && quote != '\'' {
		if a.recoverable {
			a.skipToNextAttr()
			return a.Next()
		}
		if isNameStartByte(quote) || (quote >= '0' && quote <= '9') {
			return Attr{}, false, &AttrError{Kind: AttrErrUnquotedValue, Pos: a.pos}
		}
		return Attr{}, false, &AttrError{Kind: AttrErrExpectedQuote, Pos: a.pos, Byte: quote}
	}
	a.pos++ // consume opening quote
	valStart := a.pos
	for a.pos < len(a.data) && a.data[a.pos] != quote {
		a.pos++
	}
	if a.pos >= len(a.data) {
		if a.recoverable {
			a.pos = len(a.data)
			return Attr{}, false, nil
		}
		return Attr{}, false, &AttrError{Kind: AttrErrExpectedQuote, Pos: a.pos}
	}
	value := a.data[valStart:a.pos]
	a.pos++ // consume closing quote

	for _, s := range a.seen {
		if string(s) == string(name) {
			if a.recoverable {
				return a.Next()
			}
			return Attr{}, false, &AttrError{Kind: AttrErrDuplicated, Pos: start, Name: string(name)}
		}
	}
	a.seen = append(a.seen, name)

	return Attr{Name: name, Value: value}, true, nil
}

func (a *Attributes) skipToNextAttr() {
	for a.pos < len(a.data) && !isSpace(a.data[a.pos]) {
		a.pos++
	}
}
