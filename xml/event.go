package xml

import "fmt"

// EventKind identifies the variant of a single Event produced by a Reader.
type EventKind uint8

const (
	// KindStart is a non-self-closing opening tag, e.g. <foo>.
	KindStart EventKind = iota
	// KindEnd is a closing tag, e.g. </foo>.
	KindEnd
	// KindEmpty is a self-closing tag, e.g. <foo/>.
	KindEmpty
	// KindText is character data between tags, entities still escaped.
	KindText
	// KindCData is a <![CDATA[ ... ]]> section, verbatim bytes.
	KindCData
	// KindComment is a <!-- ... --> comment, body only.
	KindComment
	// KindDecl is the leading <?xml ...?> declaration.
	KindDecl
	// KindPI is a processing instruction other than the leading declaration.
	KindPI
	// KindDocType is a <!DOCTYPE ...> declaration.
	KindDocType
	// KindEOF marks the end of input. Reading past it returns KindEOF again.
	KindEOF
)

func (k EventKind) String() string {
	switch k {
	case KindStart:
		return "Start"
	case KindEnd:
		return "End"
	case KindEmpty:
		return "Empty"
	case KindText:
		return "Text"
	case KindCData:
		return "CData"
	case KindComment:
		return "Comment"
	case KindDecl:
		return "Decl"
	case KindPI:
		return "PI"
	case KindDocType:
		return "DocType"
	case KindEOF:
		return "Eof"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a single token produced by Reader.Read.
//
// The byte slices carried by an Event alias the Reader's internal buffer.
// When the Reader was built over a fixed buffer (NewReaderBytes /
// NewReaderString) those slices remain valid for as long as the original
// input does. When the Reader was built over a streaming io.Reader
// (NewReader) the buffer is compacted and reused on every call to Read, so
// the slices are only valid until the next call; copy them if they need to
// outlive it.
type Event struct {
	Kind EventKind

	// Name holds the raw, unescaped element name for Start, End and Empty
	// events, e.g. []byte("ns:foo"). Namespace prefixes are preserved as
	// opaque bytes; no prefix resolution is performed.
	Name []byte

	// Attr holds the raw, unparsed attribute span for Start and Empty
	// events — everything between the name and the closing '>' or '/>'.
	// Use NewAttributes to iterate it lazily.
	Attr []byte

	// Data holds the payload for Text, CData, Comment, Decl, PI and
	// DocType events. Text data is still entity-escaped; CData data is
	// verbatim.
	Data []byte

	// Start and End are byte offsets into the overall stream delimiting
	// the event, for diagnostics.
	Start int
	End   int
}

// IsEOF reports whether e is the terminal end-of-input event.
func (e Event) IsEOF() bool { return e.Kind == KindEOF }
