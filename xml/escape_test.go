package xml_test

import (
	"testing"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

func TestUnescapeNamedEntities(t *testing.T) {
	got, err := xmlgo.Unescape([]byte("a &lt;b&gt; &amp; &apos;c&apos; &quot;d&quot;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `a <b> & 'c' "d"`
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnescapeNumericCharRefs(t *testing.T) {
	got, err := xmlgo.Unescape([]byte("&#65;&#x42;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "AB" {
		t.Fatalf("got %q, want AB", got)
	}
}

func TestUnescapeRejectsSurrogates(t *testing.T) {
	_, err := xmlgo.Unescape([]byte("&#xD800;"))
	if err == nil {
		t.Fatal("expected an error for a surrogate code point")
	}
	ee, ok := err.(*xmlgo.EscapeError)
	if !ok || ee.Kind != xmlgo.EscapeInvalidCharRef {
		t.Fatalf("expected EscapeInvalidCharRef, got %#v", err)
	}
}

func TestUnescapeUnterminated(t *testing.T) {
	_, err := xmlgo.Unescape([]byte("&amp"))
	if err == nil {
		t.Fatal("expected an error")
	}
	ee, ok := err.(*xmlgo.EscapeError)
	if !ok || ee.Kind != xmlgo.EscapeUnterminated {
		t.Fatalf("expected EscapeUnterminated, got %#v", err)
	}
}

func TestUnescapeUnrecognizedSymbol(t *testing.T) {
	_, err := xmlgo.Unescape([]byte("&bogus;"))
	if err == nil {
		t.Fatal("expected an error")
	}
	ee, ok := err.(*xmlgo.EscapeError)
	if !ok || ee.Kind != xmlgo.EscapeUnrecognizedSymbol {
		t.Fatalf("expected EscapeUnrecognizedSymbol, got %#v", err)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	in := []byte(`<a & b> 'c' "d"`)
	escaped := xmlgo.Escape(in)
	back, err := xmlgo.Unescape(escaped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(back) != string(in) {
		t.Fatalf("round-trip mismatch: got %q, want %q", back, in)
	}
}
