package schema

import "strings"

// Schema represents one node of a form's data schema. The engine understands a
// JSON-Schema-like subset: type, title, description, required, properties,
// enum/enumNames, numeric bounds, string length bounds, pattern and format.
type Schema struct {
	Type        string            `json:"type,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Format      string            `json:"format,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	EnumNames   []string          `json:"enumNames,omitempty"`
	Required    []string          `json:"required,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"`
	Maximum     *float64          `json:"maximum,omitempty"`
	MinLength   *int              `json:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"`
	Pattern     string            `json:"pattern,omitempty"`

	// propertyOrder preserves the declaration order of Properties as they
	// appeared in the source payload. json.Unmarshal alone cannot provide
	// this, so Parse records it during a token-level pass.
	propertyOrder []string
}

// PropertyOrder returns the property names in declaration order. Names that
// were injected after parsing (and therefore have no recorded position) are
// appended last in lexical order by Parse.
func (s Schema) PropertyOrder() []string {
	return append([]string(nil), s.propertyOrder...)
}

// Property returns the schema for a named property, tolerating incidental
// whitespace around the lookup name.
func (s Schema) Property(name string) (Schema, bool) {
	trimmed := strings.TrimSpace(name)
	if s.Properties == nil {
		return Schema{}, false
	}
	prop, ok := s.Properties[trimmed]
	return prop, ok
}

// RequiredSet returns the required property names as a membership set.
func (s Schema) RequiredSet() map[string]bool {
	if len(s.Required) == 0 {
		return nil
	}
	set := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		set[strings.TrimSpace(name)] = true
	}
	return set
}

// IsRequired reports whether the named property is listed as required.
func (s Schema) IsRequired(name string) bool {
	name = strings.TrimSpace(name)
	for _, entry := range s.Required {
		if strings.TrimSpace(entry) == name {
			return true
		}
	}
	return false
}

// OptionLabel resolves the display label for an enum value using the parallel
// enumNames list. When no label is declared the value's string form is
// returned.
func (s Schema) OptionLabel(value any) string {
	for idx, candidate := range s.Enum {
		if !looseEqual(candidate, value) {
			continue
		}
		if idx < len(s.EnumNames) && strings.TrimSpace(s.EnumNames[idx]) != "" {
			return s.EnumNames[idx]
		}
		break
	}
	return stringify(value)
}

// Options pairs every enum value with its resolved display label, preserving
// declaration order.
func (s Schema) Options() []Option {
	if len(s.Enum) == 0 {
		return nil
	}
	options := make([]Option, 0, len(s.Enum))
	for idx, value := range s.Enum {
		label := stringify(value)
		if idx < len(s.EnumNames) && strings.TrimSpace(s.EnumNames[idx]) != "" {
			label = s.EnumNames[idx]
		}
		options = append(options, Option{Value: stringify(value), Label: label})
	}
	return options
}

// Option is an enum value together with its display label. Values carry the
// string form of the enum entry so markup attributes and translation lookups
// never need a type assertion.
type Option struct {
	Value string
	Label string
}
