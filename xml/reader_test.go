package xml_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

type readEvent struct {
	Kind xmlgo.EventKind
	Name string
	Data string
}

func readAll(t *testing.T, r *xmlgo.Reader) []readEvent {
	t.Helper()
	var got []readEvent
	for {
		ev, err := r.Read()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.IsEOF() {
			break
		}
		got = append(got, readEvent{Kind: ev.Kind, Name: string(ev.Name), Data: string(ev.Data)})
	}
	return got
}

func TestReaderBasicDocument(t *testing.T) {
	r := xmlgo.NewReaderString(`<?xml version="1.0"?><root a="1"><child>text</child></root>`)

	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindDecl, Data: ` version="1.0"`},
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindStart, Name: "child"},
		{Kind: xmlgo.KindText, Data: "text"},
		{Kind: xmlgo.KindEnd, Name: "child"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderEmptyElement(t *testing.T) {
	r := xmlgo.NewReaderString(`<root><leaf/></root>`)
	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindEmpty, Name: "leaf"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderExpandEmptyElements(t *testing.T) {
	r := xmlgo.NewReaderString(`<root><leaf/></root>`, xmlgo.WithExpandEmptyElements(true))
	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindStart, Name: "leaf"},
		{Kind: xmlgo.KindEnd, Name: "leaf"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderCommentCDataDocType(t *testing.T) {
	r := xmlgo.NewReaderString(`<!DOCTYPE root [<!ENTITY x "y">]><!-- hi --><root><![CDATA[<raw>]]></root>`)
	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindDocType, Data: ` root [<!ENTITY x "y">]`},
		{Kind: xmlgo.KindComment, Data: " hi "},
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindCData, Data: "<raw>"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderStreamingMatchesBorrowed(t *testing.T) {
	doc := `<root attr="v"><a>1</a><b>2</b></root>`
	streamed := readAll(t, xmlgo.NewReader(strings.NewReader(doc)))
	borrowed := readAll(t, xmlgo.NewReaderString(doc))
	if diff := cmp.Diff(borrowed, streamed); diff != "" {
		t.Errorf("streaming reader diverged from borrowed reader (-borrowed +streamed):\n%s", diff)
	}
}

func TestReaderTrimText(t *testing.T) {
	r := xmlgo.NewReaderString("<root>  hi  </root>", xmlgo.WithTrimText(true))
	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindText, Data: "hi"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderTrimTextSkipsWhitespaceOnlyRuns(t *testing.T) {
	r := xmlgo.NewReaderString("<root>  <a/>   <b/>  </root>", xmlgo.WithTrimText(true))
	got := readAll(t, r)
	want := []readEvent{
		{Kind: xmlgo.KindStart, Name: "root"},
		{Kind: xmlgo.KindEmpty, Name: "a"},
		{Kind: xmlgo.KindEmpty, Name: "b"},
		{Kind: xmlgo.KindEnd, Name: "root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderDeclMustBeFirst(t *testing.T) {
	r := xmlgo.NewReaderString(`<root><?xml version="1.0"?></root>`)
	got := readAll(t, r)
	if len(got) != 3 || got[1].Kind != xmlgo.KindPI {
		t.Fatalf("expected a non-leading <?xml?> to parse as PI, got %+v", got)
	}
}
