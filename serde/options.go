package serde

import "log/slog"

// RingUnbounded removes the cap on the reordering ring's buffered-event
// count entirely.
const RingUnbounded = -1

type config struct {
	ringLimit int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{ringLimit: 256}
}

// Option configures a Decoder at construction time.
type Option func(*config)

// WithEventBufferSize sets the maximum number of events the reordering
// ring may hold at once while looking ahead for a sibling-list match. 0
// disables reordering entirely (a field's sequence run ends at the first
// differently-named sibling, matching a naive single-pass decoder).
// RingUnbounded removes the cap.
func WithEventBufferSize(n int) Option {
	return func(c *config) { c.ringLimit = n }
}

// WithReorderingDisabled is shorthand for WithEventBufferSize(0).
func WithReorderingDisabled() Option {
	return func(c *config) { c.ringLimit = 0 }
}

// WithLogger attaches a logger used for Debug-level tracing of ring
// admission/eviction and variant-case selection, and by Stream for
// Error-level reports of a skipped item's decode error and of the parse
// error that ends iteration. Decoding behaves identically whether or not a
// logger is attached.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return discardLogger
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// discardLogger is the shared no-op logger used whenever no Option
// configures one, so the common (unlogged) path never allocates.
var discardLogger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
