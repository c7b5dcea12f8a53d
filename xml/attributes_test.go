package xml_test

import (
	"testing"

	xmlgo "github.com/arturoeanton/go-xmlserde/xml"
)

func collectAttrs(t *testing.T, a *xmlgo.Attributes) ([]string, []string) {
	t.Helper()
	var names, values []string
	for {
		at, ok, err := a.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		names = append(names, string(at.Name))
		values = append(values, string(at.Value))
	}
	return names, values
}

func TestAttributesBasic(t *testing.T) {
	a := xmlgo.NewAttributes([]byte(` a="1" b='two' `))
	names, values := collectAttrs(t, a)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
	if values[0] != "1" || values[1] != "two" {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestAttributesDuplicateStrict(t *testing.T) {
	a := xmlgo.NewAttributes([]byte(`a="1" a="2"`))
	_, _, _ = a.Next()
	_, _, err := a.Next()
	if err == nil {
		t.Fatal("expected duplicate attribute error")
	}
	ae, ok := err.(*xmlgo.AttrError)
	if !ok || ae.Kind != xmlgo.AttrErrDuplicated {
		t.Fatalf("expected AttrErrDuplicated, got %#v", err)
	}
}

func TestAttributesMissingEqStrict(t *testing.T) {
	a := xmlgo.NewAttributes([]byte(`a b="1"`))
	_, _, err := a.Next()
	if err == nil {
		t.Fatal("expected an error")
	}
	ae, ok := err.(*xmlgo.AttrError)
	if !ok || ae.Kind != xmlgo.AttrErrExpectedEq {
		t.Fatalf("expected AttrErrExpectedEq, got %#v", err)
	}
}

func TestAttributesRecoverableSkipsMalformed(t *testing.T) {
	a := xmlgo.NewAttributes([]byte(`a b="1" c="2"`)).WithRecovery(true)
	names, values := collectAttrs(t, a)
	if len(names) != 2 || names[0] != "b" || names[1] != "c" {
		t.Fatalf("recoverable mode should skip the malformed attribute, got %v", names)
	}
	if values[0] != "1" || values[1] != "2" {
		t.Fatalf("unexpected values: %v", values)
	}
}
