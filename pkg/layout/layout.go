// Package layout models the presentation half of a form definition: explicit
// field order, widget selection, and per-field placeholder/help overrides.
// It deliberately carries no data constraints; those live in the data schema.
package layout

import "strings"

// Layout is the per-form hint document that accompanies a data schema.
type Layout struct {
	// Order lists field names in display order. Fields missing from the
	// list fall back to the data schema's declaration order.
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
	// Fields holds per-field rendering hints keyed by schema field name.
	Fields map[string]FieldHint `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldHint customises how a single field is rendered.
type FieldHint struct {
	// Widget selects a rendering widget ("radio", "textarea", "signature",
	// ...). An empty widget lets the renderer dispatch on type and format.
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
	// Placeholder overrides the control's placeholder text when the
	// translation bundle has none.
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	// HelpText overrides the assistive copy below the control when the
	// translation bundle has none.
	HelpText string `json:"helpText,omitempty" yaml:"helpText,omitempty"`
}

// Hint returns the hint for a field, tolerating incidental whitespace in both
// the stored keys and the lookup name.
func (l Layout) Hint(name string) FieldHint {
	trimmed := strings.TrimSpace(name)
	if l.Fields == nil {
		return FieldHint{}
	}
	if hint, ok := l.Fields[trimmed]; ok {
		return hint
	}
	for key, hint := range l.Fields {
		if strings.TrimSpace(key) == trimmed {
			return hint
		}
	}
	return FieldHint{}
}

// Widget returns the widget hint for a field, lowercased and trimmed.
func (l Layout) Widget(name string) string {
	return strings.ToLower(strings.TrimSpace(l.Hint(name).Widget))
}

// FieldOrder merges the explicit order list with the supplied declaration
// order: listed fields first (whitespace-trimmed, duplicates dropped), then
// any declared field the list omits, in declaration order.
func (l Layout) FieldOrder(declared []string) []string {
	seen := make(map[string]bool, len(l.Order)+len(declared))
	out := make([]string, 0, len(l.Order)+len(declared))
	for _, name := range l.Order {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	for _, name := range declared {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

// IsZero reports whether the layout carries no hints at all.
func (l Layout) IsZero() bool {
	return len(l.Order) == 0 && len(l.Fields) == 0
}
