package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
)

// Canonicalizer maps submitted values onto patient attributes using a
// definition's field type mappings. Fields without a canonical home land in
// the patient's custom bag, losslessly.
type Canonicalizer struct {
	registry *fieldtypes.Registry
}

// NewCanonicalizer wires a Canonicalizer to a registry.
func NewCanonicalizer(registry *fieldtypes.Registry) *Canonicalizer {
	return &Canonicalizer{registry: registry}
}

// Canonicalize builds the patient-shaped view of a submission. The input map
// is never mutated. Missing required attributes (first name, last name,
// birth date) and unparsable birth dates are reported as FormatError.
func (c *Canonicalizer) Canonicalize(def *forms.FormDefinition, values map[string]any) (Patient, error) {
	var patient Patient

	for name, value := range values {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		key, mapped := def.FieldTypeFor(name)
		if !mapped {
			c.stash(&patient, name, value)
			continue
		}

		ft, err := c.lookup(key)
		if err != nil {
			c.stash(&patient, name, value)
			continue
		}
		if err := c.assign(&patient, ft, name, value); err != nil {
			return Patient{}, err
		}
	}

	if strings.TrimSpace(patient.FirstName) == "" {
		return Patient{}, &FormatError{Field: "firstName", Reason: "is required"}
	}
	if strings.TrimSpace(patient.LastName) == "" {
		return Patient{}, &FormatError{Field: "lastName", Reason: "is required"}
	}
	if patient.BirthDate.IsZero() {
		return Patient{}, &FormatError{Field: "birthDate", Reason: "is required"}
	}
	return patient, nil
}

func (c *Canonicalizer) lookup(key string) (fieldtypes.FieldType, error) {
	if ft, err := c.registry.Lookup(key); err == nil {
		return ft, nil
	}
	return c.registry.LookupAlias(key)
}

// assign routes a value to the canonical attribute its field type names.
func (c *Canonicalizer) assign(patient *Patient, ft fieldtypes.FieldType, field string, value any) error {
	text := asText(value)

	switch ft.Key {
	case "FIRST_NAME":
		patient.FirstName = text
	case "LAST_NAME":
		patient.LastName = text
	case "BIRTH_DATE":
		if text == "" {
			return nil
		}
		parsed, err := ParseBirthDate(text)
		if err != nil {
			return unparsableDateError(field)
		}
		patient.BirthDate = parsed
	case "GENDER":
		patient.Gender = text
	case "EMAIL":
		patient.Email = strings.ToLower(text)
	case "PHONE":
		patient.Phone = text
	case "STREET":
		patient.Street = text
	case "POSTAL_CODE":
		patient.PostalCode = text
	case "CITY":
		patient.City = text
	case "COUNTRY":
		patient.Country = text
	case "INSURANCE_PROVIDER":
		patient.InsuranceProvider = text
	case "INSURANCE_NUMBER":
		patient.InsuranceNumber = text
	case "ALLERGIES":
		patient.Allergies = text
	case "MEDICATIONS":
		patient.Medications = text
	case "CONDITIONS":
		patient.Conditions = text
	case "PRIVACY_CONSENT":
		patient.PrivacyConsent = isAffirmative(value)
	case "SIGNATURE":
		// Captured by signature extraction, not a patient attribute.
	default:
		c.stash(patient, field, value)
	}
	return nil
}

// stash records an uncanonical field. Signature payloads stay out of the
// bag; they are large and belong to signature extraction.
func (c *Canonicalizer) stash(patient *Patient, name string, value any) {
	if isDataURL(value) {
		return
	}
	if patient.Custom == nil {
		patient.Custom = make(map[string]any)
	}
	patient.Custom[name] = value
}

// ParseBirthDate tries each accepted layout in order.
func ParseBirthDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range birthDateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("intake: unparsable date %q", text)
}

func asText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, entry := range v {
			parts = append(parts, asText(entry))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func isAffirmative(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes", "ja":
			return true
		}
	}
	return false
}
