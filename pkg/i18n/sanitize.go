package i18n

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips all markup from an operator-authored translation string.
// Bundle strings end up inside rendered forms and documents, so they are
// reduced to plain text at the boundary.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer().Sanitize(trimmed))
}

// Sanitize returns a copy of the bundle with every string stripped of markup.
func (b Bundle) Sanitize() Bundle {
	out := Bundle{
		Fields:       sanitizeTable(b.Fields),
		Placeholders: sanitizeTable(b.Placeholders),
		Buttons:      sanitizeTable(b.Buttons),
		Validation:   sanitizeTable(b.Validation),
		Messages:     sanitizeTable(b.Messages),
	}
	if len(b.Options) > 0 {
		out.Options = make(map[string]map[string]string, len(b.Options))
		for field, table := range b.Options {
			out.Options[strings.TrimSpace(field)] = sanitizeTable(table)
		}
	}
	return out
}

func sanitizeTable(table map[string]string) map[string]string {
	if len(table) == 0 {
		return nil
	}
	out := make(map[string]string, len(table))
	for key, value := range table {
		out[strings.TrimSpace(key)] = SanitizeText(value)
	}
	return out
}
