package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const intakeSchema = `{
	"type": "object",
	"required": ["firstName", "lastName"],
	"properties": {
		"firstName": {"type": "string", "minLength": 2, "title": "First Name"},
		"lastName": {"type": "string"},
		"birthDate": {"type": "string", "format": "date"},
		"smoker": {"type": "boolean"},
		"bloodType": {
			"type": "string",
			"enum": ["a_pos", "a_neg", "zero_pos"],
			"enumNames": ["A+", "A-", "0+"]
		}
	}
}`

func TestParsePreservesDeclarationOrder(t *testing.T) {
	doc, err := Parse([]byte(intakeSchema))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []string{"firstName", "lastName", "birthDate", "smoker", "bloodType"}
	if diff := cmp.Diff(want, doc.Root().PropertyOrder()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsNonObjectRoot(t *testing.T) {
	if _, err := Parse([]byte(`{"type": "array"}`)); err == nil {
		t.Fatal("expected error for array root")
	}
	if _, err := Parse([]byte(`   `)); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestSchemaRequiredAndProperty(t *testing.T) {
	doc := MustParse([]byte(intakeSchema))
	root := doc.Root()

	if !root.IsRequired("firstName") {
		t.Fatal("firstName should be required")
	}
	if root.IsRequired("birthDate") {
		t.Fatal("birthDate should not be required")
	}

	prop, ok := root.Property("  firstName ")
	if !ok {
		t.Fatal("expected whitespace-tolerant property lookup")
	}
	if prop.MinLength == nil || *prop.MinLength != 2 {
		t.Fatalf("unexpected minLength: %+v", prop.MinLength)
	}
}

func TestOptionLabelFallsBackToValue(t *testing.T) {
	doc := MustParse([]byte(intakeSchema))
	blood, _ := doc.Root().Property("bloodType")

	if got := blood.OptionLabel("a_neg"); got != "A-" {
		t.Fatalf("expected enumNames label, got %q", got)
	}
	if got := blood.OptionLabel("unknown_value"); got != "unknown_value" {
		t.Fatalf("expected raw value fallback, got %q", got)
	}

	options := blood.Options()
	if len(options) != 3 || options[2].Label != "0+" {
		t.Fatalf("unexpected options: %#v", options)
	}
	if options[1].Value != "a_neg" {
		t.Fatalf("unexpected option value: %q", options[1].Value)
	}
}

func TestOptionsStringifyNumericEnums(t *testing.T) {
	doc := MustParse([]byte(`{
		"type": "object",
		"properties": {
			"painLevel": {"type": "integer", "enum": [1, 2, 3]}
		}
	}`))
	pain, _ := doc.Root().Property("painLevel")

	want := []Option{{Value: "1", Label: "1"}, {Value: "2", Label: "2"}, {Value: "3", Label: "3"}}
	if diff := cmp.Diff(want, pain.Options()); diff != "" {
		t.Fatalf("numeric options mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentRoundTripsRawPayload(t *testing.T) {
	doc := MustParse([]byte(intakeSchema))

	payload, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var again Document
	if err := again.UnmarshalJSON(payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(doc.Root().PropertyOrder(), again.Root().PropertyOrder()); diff != "" {
		t.Fatalf("order lost in round trip (-want +got):\n%s", diff)
	}
}
