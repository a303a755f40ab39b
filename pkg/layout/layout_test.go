package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseYAMLDocument(t *testing.T) {
	raw := []byte(`
order:
  - firstName
  - lastName
fields:
  notes:
    widget: textarea
    placeholder: Anything we should know?
  gender:
    widget: radio
`)
	layout, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := layout.Widget("gender"); got != "radio" {
		t.Fatalf("widget hint mismatch: %q", got)
	}
	if got := layout.Hint("notes").Placeholder; got != "Anything we should know?" {
		t.Fatalf("placeholder mismatch: %q", got)
	}
}

func TestParseJSONDocument(t *testing.T) {
	raw := []byte(`{"order":["a","b"],"fields":{"a":{"widget":"RADIO"}}}`)
	layout, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := layout.Widget("a"); got != "radio" {
		t.Fatalf("expected lowercased widget, got %q", got)
	}
}

func TestFieldOrderMergesDeclarationOrder(t *testing.T) {
	layout := Layout{Order: []string{" lastName ", "firstName", "lastName"}}
	declared := []string{"firstName", "lastName", "birthDate", "email"}

	want := []string{"lastName", "firstName", "birthDate", "email"}
	if diff := cmp.Diff(want, layout.FieldOrder(declared)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestHintToleratesWhitespaceKeys(t *testing.T) {
	layout := Layout{Fields: map[string]FieldHint{" notes ": {Widget: "textarea"}}}
	if got := layout.Widget("notes"); got != "textarea" {
		t.Fatalf("expected whitespace-tolerant lookup, got %q", got)
	}
	if !(Layout{}).IsZero() {
		t.Fatal("empty layout should be zero")
	}
}
