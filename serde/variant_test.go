package serde_test

import (
	"reflect"
	"testing"

	"github.com/arturoeanton/go-xmlserde/serde"
)

type Shape interface{ isShape() }

type Circle struct {
	Radius int `xml:"radius,attr"`
}

func (Circle) isShape() {}

type Square struct {
	Side int `xml:"side,attr"`
}

func (Square) isShape() {}

func init() {
	serde.RegisterVariant[Shape](serde.VariantScheme{
		Kind: serde.VariantExternal,
		Cases: []serde.VariantCase{
			{Tag: "circle", Type: reflect.TypeOf(Circle{})},
			{Tag: "square", Type: reflect.TypeOf(Square{})},
		},
	})
}

type Drawing struct {
	Shape Shape `xml:",variant"`
}

func TestUnmarshalExternallyTaggedVariant(t *testing.T) {
	var d Drawing
	if err := serde.UnmarshalString(`<drawing><circle radius="4"/></drawing>`, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := d.Shape.(Circle)
	if !ok {
		t.Fatalf("expected Circle, got %#v", d.Shape)
	}
	if c.Radius != 4 {
		t.Fatalf("radius = %d, want 4", c.Radius)
	}
}

func TestUnmarshalExternallyTaggedVariantUnknownTag(t *testing.T) {
	var d Drawing
	err := serde.UnmarshalString(`<drawing><triangle/></drawing>`, &d)
	if err == nil {
		t.Fatal("expected an error for an unregistered tag")
	}
}

type Weather struct {
	Kind string `xml:"kind,attr"`
	MM   int    `xml:"mm"`
}

type Clear struct{}

type Forecast interface{ isForecast() }

func (Weather) isForecast() {}
func (Clear) isForecast()   {}

func init() {
	serde.RegisterVariant[Forecast](serde.VariantScheme{
		Kind:      serde.VariantInternal,
		TagField:  "kind",
		TagIsAttr: true,
		Cases: []serde.VariantCase{
			{Tag: "rain", Type: reflect.TypeOf(Weather{})},
			{Tag: "clear", Type: reflect.TypeOf(Clear{})},
		},
	})
}

type Day struct {
	Forecast Forecast `xml:"forecast,variant"`
}

func TestUnmarshalInternallyTaggedVariant(t *testing.T) {
	var d Day
	if err := serde.UnmarshalString(`<day><forecast kind="rain"><mm>12</mm></forecast></day>`, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, ok := d.Forecast.(Weather)
	if !ok {
		t.Fatalf("expected Weather, got %#v", d.Forecast)
	}
	if w.MM != 12 || w.Kind != "rain" {
		t.Fatalf("got %+v", w)
	}
}

type Reading struct {
	Float  float64 `xml:"float"`
	String string  `xml:"string"`
}

type Unit struct{}

type Node interface{ isNode() }

func (Reading) isNode() {}
func (Unit) isNode()    {}

func init() {
	serde.RegisterVariant[Node](serde.VariantScheme{
		Kind:         serde.VariantAdjacent,
		TagField:     "tag",
		ContentField: "content",
		Cases: []serde.VariantCase{
			{Tag: "Struct", Type: reflect.TypeOf(Reading{})},
			{Tag: "Unit", Type: reflect.TypeOf(Unit{})},
		},
	})
}

type Wrapper struct {
	Node Node `xml:"root,variant"`
}

func TestUnmarshalAdjacentlyTaggedVariantWithContent(t *testing.T) {
	var w Wrapper
	doc := `<wrapper><root><tag>Struct</tag><content><float>42</float><string>answer</string></content></root></wrapper>`
	if err := serde.UnmarshalString(doc, &w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := w.Node.(Reading)
	if !ok {
		t.Fatalf("expected Reading, got %#v", w.Node)
	}
	if r.Float != 42 || r.String != "answer" {
		t.Fatalf("got %+v", r)
	}
}

func TestUnmarshalAdjacentlyTaggedUnitVariant(t *testing.T) {
	var w Wrapper
	if err := serde.UnmarshalString(`<wrapper><root><tag>Unit</tag></root></wrapper>`, &w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.Node.(Unit); !ok {
		t.Fatalf("expected Unit, got %#v", w.Node)
	}
}
