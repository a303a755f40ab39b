package i18n

import "strings"

// Bundle is the per-(form, language) translation document. Strings are nested
// under fixed top-level roles; lookups fall back to the empty string so
// callers can chain their own fallbacks.
type Bundle struct {
	// Fields maps schema field names to display labels.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Placeholders maps schema field names to control placeholders.
	Placeholders map[string]string `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	// Options maps schema field names to value→label tables for enums.
	Options map[string]map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	// Buttons maps action names (submit, cancel) to labels.
	Buttons map[string]string `json:"buttons,omitempty" yaml:"buttons,omitempty"`
	// Validation maps violation keys to user-facing messages.
	Validation map[string]string `json:"validation,omitempty" yaml:"validation,omitempty"`
	// Messages holds free-form strings; help text lives here under
	// "help.<field>" keys, boolean markers under "yes"/"no".
	Messages map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// FieldLabel returns the translated label for a field, or "".
func (b Bundle) FieldLabel(field string) string {
	return lookup(b.Fields, field)
}

// Placeholder returns the translated placeholder for a field, or "".
func (b Bundle) Placeholder(field string) string {
	return lookup(b.Placeholders, field)
}

// HelpText returns the translated help text for a field, or "".
func (b Bundle) HelpText(field string) string {
	return lookup(b.Messages, "help."+strings.TrimSpace(field))
}

// OptionLabel returns the translated label for one enum value of a field,
// or "".
func (b Bundle) OptionLabel(field string, value string) string {
	if b.Options == nil {
		return ""
	}
	table, ok := b.Options[strings.TrimSpace(field)]
	if !ok {
		return ""
	}
	return lookup(table, value)
}

// Button returns a translated action label, or "".
func (b Bundle) Button(action string) string {
	return lookup(b.Buttons, action)
}

// Message returns a free-form translated string, or "".
func (b Bundle) Message(key string) string {
	return lookup(b.Messages, key)
}

// YesNo returns the bundle's boolean markers, falling back to the language
// defaults for any side the bundle omits.
func (b Bundle) YesNo(lang Language) (yes, no string) {
	yes, no = lang.YesNo()
	if override := b.Message("yes"); override != "" {
		yes = override
	}
	if override := b.Message("no"); override != "" {
		no = override
	}
	return yes, no
}

// IsZero reports whether the bundle carries no strings.
func (b Bundle) IsZero() bool {
	return len(b.Fields) == 0 && len(b.Placeholders) == 0 && len(b.Options) == 0 &&
		len(b.Buttons) == 0 && len(b.Validation) == 0 && len(b.Messages) == 0
}

func lookup(table map[string]string, key string) string {
	if table == nil {
		return ""
	}
	return strings.TrimSpace(table[strings.TrimSpace(key)])
}
