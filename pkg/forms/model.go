// Package forms manages intake form definitions through their lifecycle:
// draft authoring, publication, activation, and archival, plus per-language
// translation bundles attached to each definition.
package forms

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Category groups definitions by clinical purpose.
type Category string

const (
	CategoryAnamnesis Category = "ANAMNESIS"
	CategoryConsent   Category = "CONSENT"
	CategoryTreatment Category = "TREATMENT"
	CategoryCustom    Category = "CUSTOM"
)

// Categories lists every known category.
func Categories() []Category {
	return []Category{CategoryAnamnesis, CategoryConsent, CategoryTreatment, CategoryCustom}
}

// ParseCategory maps free-form input onto a Category, defaulting to CUSTOM.
func ParseCategory(raw string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryAnamnesis:
		return CategoryAnamnesis
	case CategoryConsent:
		return CategoryConsent
	case CategoryTreatment:
		return CategoryTreatment
	default:
		return CategoryCustom
	}
}

// Status is the lifecycle state of a definition.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// FormDefinition is a versioned intake form: a data schema, presentation
// hints, and a mapping from schema fields to registered field types.
//
// Active and Default are orthogonal to Status: only PUBLISHED definitions may
// be active, and at most one definition per category may be default.
type FormDefinition struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Version  int       `json:"version"`
	Status   Status    `json:"status"`
	Active   bool      `json:"active"`
	Default  bool      `json:"default"`

	Schema schema.Document `json:"schema"`
	Layout layout.Layout   `json:"layout,omitempty"`

	// Mappings binds schema field names to field type keys, e.g.
	// "firstName" -> "FIRST_NAME". Unmapped fields stay custom data.
	Mappings map[string]string `json:"mappings,omitempty"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	PublishedBy string     `json:"publishedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Editable reports whether the definition's content may still change.
func (d FormDefinition) Editable() bool {
	return d.Status == StatusDraft
}

// MappedFieldTypes returns the set of field type keys the definition maps to,
// upper-cased for registry lookups.
func (d FormDefinition) MappedFieldTypes() map[string]bool {
	out := make(map[string]bool, len(d.Mappings))
	for _, key := range d.Mappings {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key != "" {
			out[key] = true
		}
	}
	return out
}

// FieldTypeFor returns the mapped field type key for a schema field name.
func (d FormDefinition) FieldTypeFor(field string) (string, bool) {
	for name, key := range d.Mappings {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(field)) {
			key = strings.ToUpper(strings.TrimSpace(key))
			return key, key != ""
		}
	}
	return "", false
}

// Translation is a per-language label bundle attached to a definition. A
// definition carries at most one translation per language.
type Translation struct {
	ID        uuid.UUID     `json:"id"`
	FormID    uuid.UUID     `json:"formId"`
	Language  i18n.Language `json:"language"`
	Bundle    i18n.Bundle   `json:"bundle"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
