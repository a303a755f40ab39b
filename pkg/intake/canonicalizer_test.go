package intake

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
)

func testMappedDefinition() *forms.FormDefinition {
	return &forms.FormDefinition{
		Mappings: map[string]string{
			"firstName": "FIRST_NAME",
			"lastName":  "LAST_NAME",
			"birthDate": "BIRTH_DATE",
			"email":     "EMAIL",
			"insurer":   "INSURANCE_PROVIDER",
			"consent":   "PRIVACY_CONSENT",
		},
	}
}

func TestCanonicalizeMapsAndStashes(t *testing.T) {
	c := NewCanonicalizer(fieldtypes.NewRegistry())
	patient, err := c.Canonicalize(testMappedDefinition(), map[string]any{
		"firstName":     "Erika",
		"lastName":      "Mustermann",
		"birthDate":     "15.03.1980",
		"email":         "Erika@Example.COM",
		"insurer":       "AOK",
		"consent":       "on",
		"favoriteColor": "blue",
		"referredBy":    "Dr. Weber",
	})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	if patient.FirstName != "Erika" || patient.LastName != "Mustermann" {
		t.Fatalf("names = %q %q", patient.FirstName, patient.LastName)
	}
	if want := time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC); !patient.BirthDate.Equal(want) {
		t.Fatalf("birthDate = %v, want %v", patient.BirthDate, want)
	}
	if patient.Email != "erika@example.com" {
		t.Fatalf("email = %q, want lowercased", patient.Email)
	}
	if patient.InsuranceProvider != "AOK" || !patient.PrivacyConsent {
		t.Fatalf("insurance/consent = %q %v", patient.InsuranceProvider, patient.PrivacyConsent)
	}

	wantCustom := map[string]any{"favoriteColor": "blue", "referredBy": "Dr. Weber"}
	if diff := cmp.Diff(wantCustom, patient.Custom); diff != "" {
		t.Fatalf("custom bag mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeBirthDateLayouts(t *testing.T) {
	want := time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"1980-03-15", "15.03.1980", "15/03/1980", "15.3.1980"} {
		got, err := ParseBirthDate(raw)
		if err != nil {
			t.Fatalf("ParseBirthDate(%q): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseBirthDate(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestCanonicalizeRejectsBadInput(t *testing.T) {
	c := NewCanonicalizer(fieldtypes.NewRegistry())
	def := testMappedDefinition()

	var formatErr *FormatError
	_, err := c.Canonicalize(def, map[string]any{
		"firstName": "Erika", "lastName": "Mustermann", "birthDate": "not-a-date",
	})
	if !errors.As(err, &formatErr) || formatErr.Field != "birthDate" {
		t.Fatalf("error = %v, want FormatError for birthDate", err)
	}

	_, err = c.Canonicalize(def, map[string]any{
		"firstName": "Erika", "birthDate": "15.03.1980",
	})
	if !errors.As(err, &formatErr) || formatErr.Field != "lastName" {
		t.Fatalf("error = %v, want FormatError for lastName", err)
	}
}

func TestCanonicalizeUnknownMappingFallsBackToCustom(t *testing.T) {
	c := NewCanonicalizer(fieldtypes.NewRegistry())
	def := testMappedDefinition()
	def.Mappings["quirk"] = "NOT_A_REGISTERED_TYPE"

	patient, err := c.Canonicalize(def, map[string]any{
		"firstName": "Erika", "lastName": "Mustermann", "birthDate": "15.03.1980",
		"quirk": "kept",
	})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if patient.Custom["quirk"] != "kept" {
		t.Fatalf("custom = %v, want unresolvable mapping preserved", patient.Custom)
	}
}
