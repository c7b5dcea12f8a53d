package serde

import (
	"io"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// FromReader builds a Decoder over a streaming io.Reader.
func FromReader(r io.Reader, opts ...Option) *Decoder {
	return NewDecoder(xmlgo.NewReader(r), opts...)
}

// FromString builds a Decoder over an in-memory document, borrowing s for
// the lifetime of every Event it produces.
func FromString(s string, opts ...Option) *Decoder {
	return NewDecoder(xmlgo.NewReaderString(s), opts...)
}

// FromBytes builds a Decoder over an in-memory document, borrowing data for
// the lifetime of every Event it produces.
func FromBytes(data []byte, opts ...Option) *Decoder {
	return NewDecoder(xmlgo.NewReaderBytes(data), opts...)
}

// Unmarshal decodes one XML document from data into v, which must be a
// non-nil pointer.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return FromBytes(data, opts...).Decode(v)
}

// UnmarshalString is Unmarshal for an in-memory string.
func UnmarshalString(s string, v any, opts ...Option) error {
	return FromString(s, opts...).Decode(v)
}
