package serde

import (
	"context"
	"reflect"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

// Stream iterates over repeated elements named tag wherever they occur in
// the document, at any nesting depth, decoding each into T without holding
// the whole document in memory: events outside a matching element are
// discarded as they are read.
type Stream[T any] struct {
	ring *eventRing
	cfg  config
	tag  []byte
}

// NewStream builds a Stream reading repeated elements named tag from rd and
// decoding each into a T.
func NewStream[T any](rd *xmlgo.Reader, tag string, opts ...Option) *Stream[T] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Stream[T]{ring: newEventRing(rd, cfg.ringLimit, cfg.logger), cfg: cfg, tag: []byte(tag)}
}

// Iter is IterWithContext(context.Background()).
func (s *Stream[T]) Iter() <-chan T {
	return s.IterWithContext(context.Background())
}

// IterWithContext returns a channel of decoded items. A decode error for
// one item is logged and that item is skipped; a parser-level error ends
// the stream. Canceling ctx stops iteration and closes the channel.
func (s *Stream[T]) IterWithContext(ctx context.Context) <-chan T {
	ch := make(chan T)
	match := nameMatch(s.tag)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			ev, err := s.ring.takeFront()
			if err != nil {
				s.cfg.log().Error("stream parse error", "tag", string(s.tag), "error", err)
				return
			}
			if ev.kind == xmlgo.KindEOF {
				return
			}
			if !match(ev) {
				continue
			}

			var item T
			if derr := decodeElement(reflect.ValueOf(&item).Elem(), s.ring, ev, 0, s.cfg); derr != nil {
				s.cfg.log().Error("stream item decode error", "tag", string(s.tag), "error", derr)
				continue
			}

			select {
			case ch <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
