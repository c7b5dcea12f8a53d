package xml

// readerConfig holds the tunables for a Reader. Built through ReaderOption,
// the same functional-options shape serde uses for its own Option type.
type readerConfig struct {
	checkEndNames       bool
	checkComments       bool
	trimText            bool
	expandEmptyElements bool
}

func defaultReaderConfig() readerConfig {
	return readerConfig{checkEndNames: true}
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerConfig)

// WithCheckEndNames toggles verifying that every closing tag's name matches
// the name of the element it closes, and that no element is still open at
// end of input (ErrUnexpectedEOF). On by default; turning it off trades
// well-formedness checking for speed on input that is already trusted.
func WithCheckEndNames(v bool) ReaderOption {
	return func(c *readerConfig) { c.checkEndNames = v }
}

// WithCheckComments toggles rejecting comments whose body contains a "--"
// sequence, which the XML grammar forbids. Off by default.
func WithCheckComments(v bool) ReaderOption {
	return func(c *readerConfig) { c.checkComments = v }
}

// WithTrimText toggles trimming leading and trailing ASCII whitespace from
// Text events before they're returned; a Text event left empty by trimming
// is not returned at all. Off by default, since whitespace significance is
// context-dependent.
func WithTrimText(v bool) ReaderOption {
	return func(c *readerConfig) { c.trimText = v }
}

// WithExpandEmptyElements toggles reporting a self-closing tag as a Start
// event immediately followed by a synthetic End event, instead of as a
// single Empty event. Off by default.
func WithExpandEmptyElements(v bool) ReaderOption {
	return func(c *readerConfig) { c.expandEmptyElements = v }
}
