package serde_test

import (
	"strings"
	"testing"

	"github.com/arturoeanton/go-xmlserde/serde"
	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

type Item struct {
	ID int `xml:"id,attr"`
}

func TestStreamIterYieldsEachMatchingElement(t *testing.T) {
	doc := `<items><item id="1"/><note>skip me</note><item id="2"/><item id="3"/></items>`
	rd := xmlgo.NewReader(strings.NewReader(doc))
	stream := serde.NewStream[Item](rd, "item")

	var ids []int
	for it := range stream.Iter() {
		ids = append(ids, it.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("ids = %v", ids)
	}
}
