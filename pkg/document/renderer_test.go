package document

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/schema"
)

func documentDefinition(t *testing.T) *forms.FormDefinition {
	t.Helper()
	doc, err := schema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"firstName": {"type": "string", "title": "First Name"},
			"lastName": {"type": "string", "title": "Last Name"},
			"birthDate": {"type": "string", "format": "date"},
			"email": {"type": "string", "format": "email"},
			"insuranceProvider": {"type": "string"},
			"smoker": {"type": "boolean", "title": "Smoker"},
			"gender": {"type": "string", "enum": ["male", "female", "diverse"]},
			"allergies": {"type": "array", "items": {"type": "string", "enum": ["pollen", "nuts"]}},
			"privacyConsent": {"type": "boolean"},
			"signature": {"type": "string", "format": "signature"},
			"hobby": {"type": "string"}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return &forms.FormDefinition{
		ID:      uuid.New(),
		Name:    "Anamnesebogen",
		Version: 1,
		Status:  forms.StatusPublished,
		Schema:  doc,
		Layout: layout.Layout{
			Fields: map[string]layout.FieldHint{
				"gender": {Widget: "radio"},
			},
		},
		Mappings: map[string]string{
			"firstName":         "FIRST_NAME",
			"lastName":          "LAST_NAME",
			"birthDate":         "BIRTH_DATE",
			"email":             "EMAIL",
			"insuranceProvider": "INSURANCE_PROVIDER",
			"gender":            "GENDER",
			"allergies":         "ALLERGIES",
			"privacyConsent":    "PRIVACY_CONSENT",
			"signature":         "SIGNATURE",
		},
	}
}

func documentSubmission(def *forms.FormDefinition) *intake.Submission {
	return &intake.Submission{
		ID:       uuid.New(),
		FormID:   def.ID,
		Language: i18n.German,
		Values: map[string]any{
			"firstName":         "Erika",
			"lastName":          "Mustermann",
			"birthDate":         "1980-03-15",
			"email":             "erika@example.com",
			"insuranceProvider": "AOK",
			"smoker":            true,
			"gender":            "female",
			"allergies":         []any{"pollen"},
			"privacyConsent":    true,
			"signature":         "data:image/png;base64,aWdub3JlZA==",
			"hobby":             "chess",
		},
		Status:      intake.StatusSubmitted,
		SubmittedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildGroupsAndLocalizesGerman(t *testing.T) {
	def := documentDefinition(t)
	sub := documentSubmission(def)
	r := NewRenderer(fieldtypes.NewRegistry())

	doc, err := r.Build(Input{Definition: def, Submission: sub, Language: i18n.German})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var categories []fieldtypes.Category
	lines := map[string]string{}
	for _, group := range doc.Groups {
		categories = append(categories, group.Category)
		for _, line := range group.Lines {
			lines[line.Field] = line.Value
		}
	}

	want := []fieldtypes.Category{
		fieldtypes.CategoryPersonal,
		fieldtypes.CategoryContact,
		fieldtypes.CategoryInsurance,
		fieldtypes.CategoryMedical,
		fieldtypes.CategoryCustom,
	}
	if len(categories) != len(want) {
		t.Fatalf("categories = %v, want %v", categories, want)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Fatalf("categories = %v, want %v", categories, want)
		}
	}

	if got := lines["smoker"]; got != "(X) Ja   ( ) Nein" {
		t.Fatalf("smoker = %q, want German marked boolean", got)
	}
	if got := lines["birthDate"]; got != "15.03.1980" {
		t.Fatalf("birthDate = %q, want German date layout", got)
	}
	if got := lines["gender"]; got != "( ) male   (X) female   ( ) diverse" {
		t.Fatalf("gender = %q, want marked radio row", got)
	}
	if got := lines["allergies"]; got != "[x] pollen   [ ] nuts" {
		t.Fatalf("allergies = %q, want marked checklist", got)
	}
	if got := lines["hobby"]; got != "chess" {
		t.Fatalf("hobby = %q, want custom field rendered", got)
	}

	if _, ok := lines["privacyConsent"]; ok {
		t.Fatal("consent field must not appear in the document body")
	}
	if _, ok := lines["signature"]; ok {
		t.Fatal("signature carrier must not appear in the document body")
	}
}

func TestBuildRendersFalseBoolean(t *testing.T) {
	def := documentDefinition(t)
	sub := documentSubmission(def)
	sub.Values["smoker"] = false
	r := NewRenderer(fieldtypes.NewRegistry())

	doc, err := r.Build(Input{Definition: def, Submission: sub, Language: i18n.German})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, group := range doc.Groups {
		for _, line := range group.Lines {
			if line.Field == "smoker" && line.Value != "( ) Ja   (X) Nein" {
				t.Fatalf("smoker = %q", line.Value)
			}
		}
	}
}

func TestBuildPrefersPatientRecordOverSnapshot(t *testing.T) {
	def := documentDefinition(t)
	sub := documentSubmission(def)
	patient := &intake.Patient{
		FirstName: "Erika",
		LastName:  "Musterfrau",
		BirthDate: time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC),
		Email:     "corrected@example.com",
	}
	r := NewRenderer(fieldtypes.NewRegistry())

	doc, err := r.Build(Input{Definition: def, Submission: sub, Patient: patient, Language: i18n.English})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lines := map[string]string{}
	for _, group := range doc.Groups {
		for _, line := range group.Lines {
			lines[line.Field] = line.Value
		}
	}
	if lines["lastName"] != "Musterfrau" {
		t.Fatalf("lastName = %q, want corrected patient value", lines["lastName"])
	}
	if lines["email"] != "corrected@example.com" {
		t.Fatalf("email = %q, want corrected patient value", lines["email"])
	}
}

func TestBuildUsesBundleLabelsAndSectionTitles(t *testing.T) {
	def := documentDefinition(t)
	sub := documentSubmission(def)
	bundle := i18n.Bundle{
		Fields:   map[string]string{"firstName": "Vorname"},
		Messages: map[string]string{"category.personal": "Persönliches"},
	}
	r := NewRenderer(fieldtypes.NewRegistry())

	doc, err := r.Build(Input{Definition: def, Submission: sub, Bundle: bundle, Language: i18n.German})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	personal := doc.Groups[0]
	if personal.Title != "Persönliches" {
		t.Fatalf("title = %q", personal.Title)
	}
	if personal.Lines[0].Label != "Vorname" {
		t.Fatalf("label = %q", personal.Lines[0].Label)
	}
}

func TestMarkupEscapesContent(t *testing.T) {
	r := NewRenderer(fieldtypes.NewRegistry())
	doc := &Document{
		Title:    "Bogen <script>",
		Language: i18n.German,
		Groups: []Group{{
			Category: fieldtypes.CategoryPersonal,
			Title:    "Personal",
			Lines:    []Line{{Field: "x", Label: "L", Value: `<img src=x>`}},
		}},
		RenderedAt: time.Now(),
	}
	markup := r.Markup(doc)
	if strings.Contains(markup, "<script>") || strings.Contains(markup, "<img") {
		t.Fatal("document markup must escape user content")
	}
	if !strings.Contains(markup, `dir="ltr"`) {
		t.Fatal("missing direction attribute")
	}
}
