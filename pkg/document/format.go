package document

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

// formatValue localizes one field value for the document body. The widget
// hint decides whether enum answers print as a marked radio row or as the
// chosen label alone.
func formatValue(prop schema.Schema, name string, value any, lang i18n.Language, bundle i18n.Bundle, widget string) string {
	switch {
	case prop.Type == "boolean":
		return formatBoolean(isTrue(value), lang, bundle)
	case prop.Type == "array":
		return formatArray(prop, name, value, bundle)
	case len(prop.Enum) > 0:
		return formatChoice(prop, name, value, bundle, widget)
	case prop.Format == "date":
		return formatDate(value, lang)
	default:
		return strings.TrimSpace(toText(value))
	}
}

// formatBoolean prints both answers with the chosen one marked, e.g.
// "(X) Ja   ( ) Nein" for a German document.
func formatBoolean(value bool, lang i18n.Language, bundle i18n.Bundle) string {
	yes, no := bundle.YesNo(lang)
	if value {
		return "(X) " + yes + "   ( ) " + no
	}
	return "( ) " + yes + "   (X) " + no
}

// formatChoice prints radio groups with every option marked and dropdowns as
// the chosen label only.
func formatChoice(prop schema.Schema, name string, value any, bundle i18n.Bundle, widget string) string {
	chosen := strings.TrimSpace(toText(value))
	if strings.EqualFold(widget, "radio") {
		var parts []string
		for _, opt := range prop.Options() {
			mark := "( )"
			if opt.Value == chosen {
				mark = "(X)"
			}
			parts = append(parts, mark+" "+optionLabel(bundle, name, opt))
		}
		return strings.Join(parts, "   ")
	}
	if chosen == "" {
		return ""
	}
	for _, opt := range prop.Options() {
		if opt.Value == chosen {
			return optionLabel(bundle, name, opt)
		}
	}
	return chosen
}

// formatArray prints multi-select answers as a marked checklist when the
// schema declares options, and a plain list otherwise.
func formatArray(prop schema.Schema, name string, value any, bundle i18n.Bundle) string {
	chosen := map[string]bool{}
	for _, entry := range toSlice(value) {
		chosen[strings.TrimSpace(toText(entry))] = true
	}

	if prop.Items != nil && len(prop.Items.Enum) > 0 {
		var parts []string
		for _, opt := range prop.Items.Options() {
			mark := "[ ]"
			if chosen[opt.Value] {
				mark = "[x]"
			}
			parts = append(parts, mark+" "+optionLabel(bundle, name, opt))
		}
		return strings.Join(parts, "   ")
	}

	var parts []string
	for _, entry := range toSlice(value) {
		if text := strings.TrimSpace(toText(entry)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}

func formatDate(value any, lang i18n.Language) string {
	text := strings.TrimSpace(toText(value))
	if text == "" {
		return ""
	}
	parsed, err := intake.ParseBirthDate(text)
	if err != nil {
		return text
	}
	return parsed.Format(lang.DateLayout())
}

func optionLabel(bundle i18n.Bundle, field string, opt schema.Option) string {
	if label := bundle.OptionLabel(field, opt.Value); label != "" {
		return label
	}
	return opt.Label
}

// patientAttribute maps a schema field back to its canonical patient value.
// The definition's mappings drive the lookup; unmapped fields fall back to
// alias resolution so renamed schema fields still pick up corrections.
func patientAttribute(patient intake.Patient, def *forms.FormDefinition, name string) (any, bool) {
	key, mapped := def.FieldTypeFor(name)
	if !mapped {
		return nil, false
	}

	switch key {
	case "FIRST_NAME":
		return nonBlank(patient.FirstName)
	case "LAST_NAME":
		return nonBlank(patient.LastName)
	case "BIRTH_DATE":
		if patient.BirthDate.IsZero() {
			return nil, false
		}
		return patient.BirthDate.Format("2006-01-02"), true
	case "GENDER":
		return nonBlank(patient.Gender)
	case "EMAIL":
		return nonBlank(patient.Email)
	case "PHONE":
		return nonBlank(patient.Phone)
	case "STREET":
		return nonBlank(patient.Street)
	case "POSTAL_CODE":
		return nonBlank(patient.PostalCode)
	case "CITY":
		return nonBlank(patient.City)
	case "COUNTRY":
		return nonBlank(patient.Country)
	case "INSURANCE_PROVIDER":
		return nonBlank(patient.InsuranceProvider)
	case "INSURANCE_NUMBER":
		return nonBlank(patient.InsuranceNumber)
	case "ALLERGIES":
		return nonBlank(patient.Allergies)
	case "MEDICATIONS":
		return nonBlank(patient.Medications)
	case "CONDITIONS":
		return nonBlank(patient.Conditions)
	}
	return nil, false
}

func nonBlank(value string) (any, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	return value, true
}

func toText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func toSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = entry
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func isTrue(value any) bool {
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
