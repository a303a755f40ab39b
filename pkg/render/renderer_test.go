package render

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/schema"
)

func testDefinition(t *testing.T) *forms.FormDefinition {
	t.Helper()
	doc, err := schema.Parse([]byte(`{
		"type": "object",
		"required": ["firstName", "birthDate"],
		"properties": {
			"firstName": {"type": "string", "minLength": 2},
			"birthDate": {"type": "string", "format": "date"},
			"email": {"type": "string", "format": "email"},
			"gender": {"type": "string", "enum": ["male", "female", "diverse"]},
			"notes": {"type": "string"},
			"signature": {"type": "string", "format": "signature"}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return &forms.FormDefinition{
		ID:     uuid.New(),
		Name:   "Patient Intake",
		Schema: doc,
		Layout: layout.Layout{
			Fields: map[string]layout.FieldHint{
				"notes": {Widget: "textarea", Placeholder: "Anything else?"},
			},
		},
		Mappings: map[string]string{
			"firstName": "FIRST_NAME",
			"birthDate": "BIRTH_DATE",
		},
	}
}

func TestFieldsResolveKindsAndLabels(t *testing.T) {
	r := New(WithRegistry(fieldtypes.NewRegistry()))
	fields, err := r.Fields(Input{Definition: testDefinition(t), Language: i18n.English})
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}

	byName := map[string]Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	if got := byName["firstName"]; got.Kind != KindText || !got.Required || got.Label != "First Name" {
		t.Fatalf("firstName = %+v", got)
	}
	if got := byName["birthDate"].Kind; got != KindDate {
		t.Fatalf("birthDate kind = %s, want date", got)
	}
	if got := byName["email"].Kind; got != KindEmail {
		t.Fatalf("email kind = %s, want email", got)
	}
	if got := byName["gender"]; got.Kind != KindSelect || len(got.Options) != 3 {
		t.Fatalf("gender = %+v", got)
	}
	if got := byName["notes"]; got.Kind != KindTextarea || got.Placeholder != "Anything else?" {
		t.Fatalf("notes = %+v", got)
	}
	if got := byName["signature"].Kind; got != KindSignature {
		t.Fatalf("signature kind = %s, want signature", got)
	}
}

func TestFieldsPreferTranslatedLabels(t *testing.T) {
	bundle := i18n.Bundle{
		Fields: map[string]string{"firstName": "Vorname"},
		Options: map[string]map[string]string{
			"gender": {"male": "Männlich"},
		},
	}
	r := New()
	fields, err := r.Fields(Input{Definition: testDefinition(t), Language: i18n.German, Bundle: bundle})
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	for _, f := range fields {
		switch f.Name {
		case "firstName":
			if f.Label != "Vorname" {
				t.Fatalf("firstName label = %q", f.Label)
			}
		case "gender":
			if f.Options[0].Label != "Männlich" {
				t.Fatalf("gender option label = %q", f.Options[0].Label)
			}
			if f.Options[1].Label != "female" {
				t.Fatalf("untranslated option should fall back to value, got %q", f.Options[1].Label)
			}
		}
	}
}

func TestMarkupEscapesAndAnnotates(t *testing.T) {
	def := testDefinition(t)
	r := New()
	markup, err := r.Markup(Input{
		Definition: def,
		Language:   i18n.English,
		Values:     map[string]any{"firstName": `Jo<script>`},
		Errors:     map[string][]string{"firstName": {"must be at least 2 characters"}},
	})
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}

	if strings.Contains(markup, "<script>") {
		t.Fatal("submitted value was not escaped")
	}
	if !strings.Contains(markup, `value="Jo&lt;script&gt;"`) {
		t.Fatal("submitted value missing from re-render")
	}
	if !strings.Contains(markup, "intake-field-invalid") {
		t.Fatal("invalid field missing error class")
	}
	if !strings.Contains(markup, `minlength="2"`) || !strings.Contains(markup, ` required`) {
		t.Fatal("constraints not reflected as native attributes")
	}
	if !strings.Contains(markup, `data-signature-for="signature"`) {
		t.Fatal("signature pad missing")
	}
	if !strings.Contains(markup, `dir="ltr"`) {
		t.Fatal("direction attribute missing")
	}
}

func TestMarkupRightToLeft(t *testing.T) {
	r := New()
	markup, err := r.Markup(Input{Definition: testDefinition(t), Language: i18n.Arabic})
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	if !strings.Contains(markup, `dir="rtl"`) {
		t.Fatal("expected rtl direction for Arabic")
	}
}

func TestCheckDefinitionFlagsProblems(t *testing.T) {
	def := testDefinition(t)
	def.Layout.Order = []string{"firstName", "ghost"}
	def.Mappings["email"] = "NO_SUCH_TYPE"

	r := New(WithRegistry(fieldtypes.NewRegistry()))
	problems := r.CheckDefinition(def)
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want layout and mapping issue", problems)
	}

	if got := r.CheckDefinition(testDefinition(t)); len(got) != 0 {
		t.Fatalf("healthy definition reported problems: %v", got)
	}
}

func TestCacheInvalidatePerForm(t *testing.T) {
	cache := NewCache()
	formA, formB := uuid.New(), uuid.New()
	cache.Put(formA, i18n.English, "a-en")
	cache.Put(formA, i18n.German, "a-de")
	cache.Put(formB, i18n.English, "b-en")

	cache.Invalidate(formA)
	if _, ok := cache.Get(formA, i18n.German); ok {
		t.Fatal("formA entries should be gone")
	}
	if markup, ok := cache.Get(formB, i18n.English); !ok || markup != "b-en" {
		t.Fatal("formB entry should survive")
	}
}
