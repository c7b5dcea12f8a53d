package xml

import (
	"bytes"
	"io"
	"unsafe"
)

// Reader is a pull parser over an XML byte stream. Construct one with
// NewReaderString, NewReaderBytes or NewReader, then call Read repeatedly
// until it returns a KindEOF event.
//
// A Reader keeps at most one read-ahead buffer. Over a fixed input
// (NewReaderString / NewReaderBytes) it is the input itself and is never
// copied or grown — byte slices on returned Events alias it directly and
// remain valid for as long as the input does. Over a streaming io.Reader
// (NewReader) the buffer grows on demand and is compacted at the start of
// each Read call, so slices on a returned Event are only valid until the
// next call to Read.
type Reader struct {
	cfg readerConfig

	data []byte
	pos  int
	base int64

	rd       io.Reader
	borrowed bool

	stack            [][]byte
	sawNonWhitespace bool

	pendingEnd       []byte
	pendingEndOffset int

	err error
}

// NewReaderString builds a Reader over s with zero-copy semantics: all
// Event byte slices alias s directly for its entire lifetime.
func NewReaderString(s string, opts ...ReaderOption) *Reader {
	// The Reader never writes to a borrowed buffer, so s can be viewed as
	// bytes without copying it.
	return newBorrowedReader(unsafe.Slice(unsafe.StringData(s), len(s)), opts)
}

// NewReaderBytes builds a Reader over b with zero-copy semantics, exactly
// like NewReaderString. b must not be modified while the Reader is in use.
func NewReaderBytes(b []byte, opts ...ReaderOption) *Reader {
	return newBorrowedReader(b, opts)
}

func newBorrowedReader(b []byte, opts []ReaderOption) *Reader {
	r := &Reader{data: b, borrowed: true, cfg: defaultReaderConfig()}
	for _, o := range opts {
		o(&r.cfg)
	}
	return r
}

// NewReader builds a streaming Reader over rd, growing and compacting an
// internal buffer on demand.
func NewReader(rd io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{rd: rd, cfg: defaultReaderConfig()}
	for _, o := range opts {
		o(&r.cfg)
	}
	return r
}

// Depth reports the current element nesting depth.
func (r *Reader) Depth() int { return len(r.stack) }

func (r *Reader) offset() int { return int(r.base) + r.pos }

func (r *Reader) compact() {
	if r.rd == nil || r.pos == 0 {
		return
	}
	n := copy(r.data, r.data[r.pos:])
	r.data = r.data[:n]
	r.base += int64(r.pos)
	r.pos = 0
}

// ensure grows the buffer, if streaming, until at least n bytes are
// available past pos. ok is false only when fewer than n bytes could ever
// become available (borrowed mode exhausted, or the stream hit EOF).
func (r *Reader) ensure(n int) (ok bool, err error) {
	for len(r.data)-r.pos < n {
		if r.rd == nil {
			return false, nil
		}
		buf := make([]byte, 4096)
		nr, rerr := r.rd.Read(buf)
		if nr > 0 {
			r.data = append(r.data, buf[:nr]...)
		}
		if rerr != nil {
			if rerr == io.EOF {
				return len(r.data)-r.pos >= n, nil
			}
			return false, errIO(r.offset(), rerr)
		}
	}
	return true, nil
}

func (r *Reader) byteAt(i int) (byte, bool, error) {
	ok, err := r.ensure(i + 1)
	if err != nil || !ok {
		return 0, false, err
	}
	return r.data[r.pos+i], true, nil
}

// findAfter searches for needle starting at pos, growing the buffer as
// needed. idx is relative to pos.
func (r *Reader) findAfter(needle []byte) (idx int, found bool, err error) {
	for {
		if i := bytes.Index(r.data[r.pos:], needle); i >= 0 {
			return i, true, nil
		}
		avail := len(r.data) - r.pos
		ok, err := r.ensure(avail + 1)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
	}
}

// scanNameFrom scans an XML Name starting at relative offset rel and
// returns the relative offset just past it (equal to rel if no valid name
// was found there).
func (r *Reader) scanNameFrom(rel int) (int, error) {
	i := rel
	for {
		ok, err := r.ensure(i + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			return i, nil
		}
		b := r.data[r.pos+i]
		if i == rel {
			if !isNameStartByte(b) {
				return i, nil
			}
		} else if !isNameByte(b) {
			return i, nil
		}
		i++
	}
}

func allWhitespace(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) {
			return false
		}
	}
	return true
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Read returns the next Event. Once it returns a KindEOF event, further
// calls keep returning KindEOF. Once it returns an error, further calls
// keep returning that same error; the Reader must not be used further.
func (r *Reader) Read() (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}

	if r.pendingEnd != nil {
		name := r.pendingEnd
		r.pendingEnd = nil
		if len(r.stack) > 0 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		off := r.pendingEndOffset
		return Event{Kind: KindEnd, Name: name, Start: off, End: off}, nil
	}

	r.compact()

	ok, err := r.ensure(1)
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if !ok {
		off := r.offset()
		if r.cfg.checkEndNames && len(r.stack) > 0 {
			e := errUnexpectedEOF(off, "</"+string(r.stack[len(r.stack)-1])+">")
			r.err = e
			return Event{}, e
		}
		return Event{Kind: KindEOF, Start: off, End: off}, nil
	}

	if r.data[r.pos] != '<' {
		ev, err := r.readText()
		if err != nil {
			return Event{}, err
		}
		if r.cfg.trimText && len(ev.Data) == 0 {
			// Whitespace-only text, trimmed down to nothing: skip it
			// rather than surface an empty Text event.
			return r.Read()
		}
		return ev, nil
	}
	return r.readMarkup()
}

func (r *Reader) readText() (Event, error) {
	start := r.offset()
	i := 0
	for {
		ok, err := r.ensure(i + 1)
		if err != nil {
			r.err = err
			return Event{}, err
		}
		if !ok || r.data[r.pos+i] == '<' {
			break
		}
		i++
	}
	data := r.data[r.pos : r.pos+i]
	r.pos += i
	if !allWhitespace(data) {
		r.sawNonWhitespace = true
	}
	if r.cfg.trimText {
		data = bytes.TrimFunc(data, isSpaceRune)
	}
	return Event{Kind: KindText, Data: data, Start: start, End: r.offset()}, nil
}

func (r *Reader) readMarkup() (Event, error) {
	start := r.offset()
	b1, ok, err := r.byteAt(1)
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if !ok {
		e := errUnexpectedEOF(start, "markup")
		r.err = e
		return Event{}, e
	}
	switch {
	case b1 == '!':
		return r.readBang(start)
	case b1 == '?':
		return r.readPIOrDecl(start)
	case b1 == '/':
		return r.readEnd(start)
	case isNameStartByte(b1):
		return r.readStartOrEmpty(start)
	default:
		e := errUnexpectedToken(start, string(rune(b1)))
		r.err = e
		return Event{}, e
	}
}

func (r *Reader) readBang(start int) (Event, error) {
	if ok, err := r.ensure(4); err != nil {
		r.err = err
		return Event{}, err
	} else if ok && bytes.HasPrefix(r.data[r.pos:], []byte("<!--")) {
		return r.readComment(start)
	}
	if ok, err := r.ensure(9); err != nil {
		r.err = err
		return Event{}, err
	} else if ok && bytes.HasPrefix(r.data[r.pos:], []byte("<![CDATA[")) {
		return r.readCData(start)
	}
	if ok, err := r.ensure(9); err != nil {
		r.err = err
		return Event{}, err
	} else if ok && bytes.HasPrefix(r.data[r.pos:], []byte("<!DOCTYPE")) {
		return r.readDocType(start)
	}
	b2, _, _ := r.byteAt(2)
	e := errUnexpectedBang(start, b2)
	r.err = e
	return Event{}, e
}

func (r *Reader) readComment(start int) (Event, error) {
	r.pos += 4
	idx, found, err := r.findAfter([]byte("-->"))
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if !found {
		e := errUnexpectedEOF(start, "Comment")
		r.err = e
		return Event{}, e
	}
	body := r.data[r.pos : r.pos+idx]
	if r.cfg.checkComments && bytes.Contains(body, []byte("--")) {
		e := errUnexpectedToken(r.offset(), "--")
		r.err = e
		return Event{}, e
	}
	r.pos += idx + 3
	r.sawNonWhitespace = true
	return Event{Kind: KindComment, Data: body, Start: start, End: r.offset()}, nil
}

func (r *Reader) readCData(start int) (Event, error) {
	r.pos += 9
	idx, found, err := r.findAfter([]byte("]]>"))
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if !found {
		e := errUnexpectedEOF(start, "CData")
		r.err = e
		return Event{}, e
	}
	data := r.data[r.pos : r.pos+idx]
	r.pos += idx + 3
	r.sawNonWhitespace = true
	return Event{Kind: KindCData, Data: data, Start: start, End: r.offset()}, nil
}

func (r *Reader) readDocType(start int) (Event, error) {
	r.pos += 9
	bodyStart := r.pos
	depth := 0
	var quote byte
	i := 0
	for {
		ok, err := r.ensure(i + 1)
		if err != nil {
			r.err = err
			return Event{}, err
		}
		if !ok {
			e := errUnexpectedEOF(start, "DocType")
			r.err = e
			return Event{}, e
		}
		b := r.data[r.pos+i]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			i++
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				data := r.data[bodyStart : r.pos+i]
				r.pos += i + 1
				r.sawNonWhitespace = true
				return Event{Kind: KindDocType, Data: data, Start: start, End: r.offset()}, nil
			}
		}
		i++
	}
}

func (r *Reader) readPIOrDecl(start int) (Event, error) {
	r.pos += 2
	nameEnd, err := r.scanNameFrom(0)
	if err != nil {
		r.err = err
		return Event{}, err
	}
	name := r.data[r.pos : r.pos+nameEnd]
	isDecl := !r.sawNonWhitespace && string(name) == "xml"

	idx, found, err := r.findAfter([]byte("?>"))
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if !found {
		ctx := "PI"
		if isDecl {
			ctx = "Decl"
		}
		e := errUnexpectedEOF(start, ctx)
		r.err = e
		return Event{}, e
	}
	full := r.data[r.pos : r.pos+idx]
	r.pos += idx + 2
	r.sawNonWhitespace = true

	if isDecl {
		attrSpan := full[nameEnd:]
		attrs := NewAttributes(attrSpan)
		first, ok, aerr := attrs.Next()
		if aerr != nil {
			e := errInvalidAttr(start, aerr)
			r.err = e
			return Event{}, e
		}
		if !ok {
			e := errXMLDeclWithoutVersion(start, "", false)
			r.err = e
			return Event{}, e
		}
		if string(first.Name) != "version" {
			e := errXMLDeclWithoutVersion(start, string(first.Name), true)
			r.err = e
			return Event{}, e
		}
		return Event{Kind: KindDecl, Data: attrSpan, Start: start, End: r.offset()}, nil
	}

	return Event{Kind: KindPI, Name: name, Data: full[nameEnd:], Start: start, End: r.offset()}, nil
}

func (r *Reader) readEnd(start int) (Event, error) {
	r.pos += 2
	nameEnd, err := r.scanNameFrom(0)
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if nameEnd == 0 {
		e := errUnexpectedToken(start, "</>")
		r.err = e
		return Event{}, e
	}
	name := r.data[r.pos : r.pos+nameEnd]
	r.pos += nameEnd

	for {
		ok, err := r.ensure(1)
		if err != nil {
			r.err = err
			return Event{}, err
		}
		if !ok {
			e := errUnexpectedEOF(start, "End")
			r.err = e
			return Event{}, e
		}
		if isSpace(r.data[r.pos]) {
			r.pos++
			continue
		}
		break
	}
	if r.data[r.pos] != '>' {
		e := errUnexpectedToken(r.offset(), string(rune(r.data[r.pos])))
		r.err = e
		return Event{}, e
	}
	r.pos++
	r.sawNonWhitespace = true

	if r.cfg.checkEndNames {
		if len(r.stack) == 0 {
			e := errEndEventMismatch(start, "", string(name))
			r.err = e
			return Event{}, e
		}
		expected := r.stack[len(r.stack)-1]
		if string(expected) != string(name) {
			e := errEndEventMismatch(start, string(expected), string(name))
			r.err = e
			return Event{}, e
		}
	}
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return Event{Kind: KindEnd, Name: name, Start: start, End: r.offset()}, nil
}

func (r *Reader) readStartOrEmpty(start int) (Event, error) {
	r.pos++ // consume '<'
	nameEnd, err := r.scanNameFrom(0)
	if err != nil {
		r.err = err
		return Event{}, err
	}
	if nameEnd == 0 {
		e := errUnexpectedToken(start, "<")
		r.err = e
		return Event{}, e
	}
	name := r.data[r.pos : r.pos+nameEnd]

	i := nameEnd
	var quote byte
	selfClose := false

scan:
	for {
		ok, err := r.ensure(i + 1)
		if err != nil {
			r.err = err
			return Event{}, err
		}
		if !ok {
			e := errUnexpectedEOF(start, "Start")
			r.err = e
			return Event{}, e
		}
		b := r.data[r.pos+i]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			i++
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
			i++
		case '>':
			break scan
		case '/':
			ok2, err := r.ensure(i + 2)
			if err != nil {
				r.err = err
				return Event{}, err
			}
			if ok2 && r.data[r.pos+i+1] == '>' {
				selfClose = true
				break scan
			}
			i++
		default:
			i++
		}
	}

	attrSpan := r.data[r.pos+nameEnd : r.pos+i]
	consumed := i + 1
	if selfClose {
		consumed = i + 2
	}
	nameCopy := append([]byte(nil), name...)
	r.pos += consumed
	r.sawNonWhitespace = true

	if selfClose {
		if r.cfg.expandEmptyElements {
			r.stack = append(r.stack, nameCopy)
			r.pendingEnd = nameCopy
			r.pendingEndOffset = r.offset()
			return Event{Kind: KindStart, Name: name, Attr: attrSpan, Start: start, End: r.offset()}, nil
		}
		return Event{Kind: KindEmpty, Name: name, Attr: attrSpan, Start: start, End: r.offset()}, nil
	}

	r.stack = append(r.stack, nameCopy)
	return Event{Kind: KindStart, Name: name, Attr: attrSpan, Start: start, End: r.offset()}, nil
}
