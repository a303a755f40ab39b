// Package fieldtypes maintains the global catalog of reusable field
// identities. Form definitions map their schema fields onto these entries so
// submissions can be canonicalized onto patient records regardless of how an
// individual form names its inputs.
package fieldtypes

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups field types for document rendering and admin UIs.
type Category string

const (
	CategoryPersonal  Category = "PERSONAL"
	CategoryContact   Category = "CONTACT"
	CategoryInsurance Category = "INSURANCE"
	CategoryMedical   Category = "MEDICAL"
	CategoryConsent   Category = "CONSENT"
	CategoryCustom    Category = "CUSTOM"
)

// CategoryOrder is the fixed display order used when grouping rendered
// documents. CategoryCustom always comes last as the catch-all bucket.
var CategoryOrder = []Category{
	CategoryPersonal,
	CategoryContact,
	CategoryInsurance,
	CategoryMedical,
	CategoryConsent,
	CategoryCustom,
}

// DataType is the value shape a field type expects.
type DataType string

const (
	DataString    DataType = "string"
	DataText      DataType = "text"
	DataDate      DataType = "date"
	DataEmail     DataType = "email"
	DataPhone     DataType = "phone"
	DataNumber    DataType = "number"
	DataBoolean   DataType = "boolean"
	DataSignature DataType = "signature"
)

// FieldType is one catalog entry.
type FieldType struct {
	// Key is the globally unique machine key, e.g. "FIRST_NAME".
	Key string `json:"key"`
	// CanonicalName is the attribute the value lands on after
	// canonicalization, e.g. "firstName". Globally unique.
	CanonicalName string `json:"canonicalName"`
	Category      Category `json:"category"`
	DataType      DataType `json:"dataType"`
	// Required entries block publishing a form that leaves them unmapped.
	Required bool `json:"required"`
	// System entries are seeded and cannot be deleted.
	System bool `json:"system"`
	// Aliases are accepted spellings for fuzzy lookups.
	Aliases []string `json:"aliases,omitempty"`
}

// ErrNotFound is returned by lookups that match no entry.
var ErrNotFound = errors.New("fieldtypes: not found")

// StateError rejects operations that conflict with an entry's lifecycle, such
// as deleting a system entry.
type StateError struct {
	Key    string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("fieldtypes: %s: %s", e.Key, e.Reason)
}

// ValidationError rejects a malformed or conflicting entry at creation time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fieldtypes: %s: %s", e.Field, e.Reason)
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func normalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}
