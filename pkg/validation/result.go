package validation

import (
	"sort"
	"strings"
)

// Result carries the outcome of validating a submission against a data
// schema. Failures are data, never errors: callers re-render the form with
// the violations attached.
type Result struct {
	fieldErrors  map[string][]string
	fieldOrder   []string
	globalErrors []string
}

// Valid reports whether no violations were recorded.
func (r *Result) Valid() bool {
	return len(r.fieldErrors) == 0 && len(r.globalErrors) == 0
}

// FieldErrors returns the violations keyed by bare field name.
func (r *Result) FieldErrors() map[string][]string {
	if len(r.fieldErrors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.fieldErrors))
	for field, messages := range r.fieldErrors {
		out[field] = append([]string(nil), messages...)
	}
	return out
}

// GlobalErrors returns violations that could not be attributed to a field.
func (r *Result) GlobalErrors() []string {
	return append([]string(nil), r.globalErrors...)
}

// AllErrors flattens every violation as "field: message" strings, field
// errors first in recording order, then global errors.
func (r *Result) AllErrors() []string {
	var out []string
	for _, field := range r.fieldOrder {
		for _, message := range r.fieldErrors[field] {
			out = append(out, field+": "+message)
		}
	}
	return append(out, r.globalErrors...)
}

// FirstError returns the first violation for quick user feedback, or "".
func (r *Result) FirstError() string {
	all := r.AllErrors()
	if len(all) == 0 {
		return ""
	}
	return all[0]
}

// AddFieldError records a violation at the given path. The path is normalized
// to a bare field name; paths with no resolvable field become global errors.
func (r *Result) AddFieldError(path, message string) {
	field := NormalizeFieldPath(path)
	if field == "" {
		r.AddGlobalError(message)
		return
	}
	if r.fieldErrors == nil {
		r.fieldErrors = make(map[string][]string)
	}
	if _, seen := r.fieldErrors[field]; !seen {
		r.fieldOrder = append(r.fieldOrder, field)
	}
	r.fieldErrors[field] = append(r.fieldErrors[field], message)
}

// AddGlobalError records a schema-level violation.
func (r *Result) AddGlobalError(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	r.globalErrors = append(r.globalErrors, message)
}

// SortFields reorders AllErrors output alphabetically for callers that merge
// results recorded from map iteration.
func (r *Result) SortFields() {
	sort.Strings(r.fieldOrder)
}

// NormalizeFieldPath reduces a violation path to a bare field name. Both
// dotted paths ("patient.email") and JSON-pointer style paths
// ("#/properties/email", "/email") are accepted; structural segments are
// dropped and the leaf segment wins.
func NormalizeFieldPath(path string) string {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "/", ".")
	segments := strings.Split(trimmed, ".")
	field := ""
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		segment = strings.TrimSpace(segment)
		switch {
		case segment == "" || segment == "properties" || segment == "items":
		case isNumeric(segment):
		default:
			field = segment
		}
	}
	return field
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
