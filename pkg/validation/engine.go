// Package validation checks submitted value-maps against a form's data
// schema. Outcomes are returned as structured results rather than errors so
// transports can re-render forms with violations attached.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-intake/pkg/schema"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateLayouts are the text shapes accepted for format:"date" strings.
var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006"}

// Engine validates value-maps against data schemas. The zero value is ready
// to use; the struct exists so callers can inject message overrides later
// without changing call sites.
type Engine struct{}

// New constructs an Engine.
func New() *Engine {
	return &Engine{}
}

// Validate checks every schema property against the submitted values and
// records violations. It never fails: malformed schemas surface as global
// errors on the result.
func (e *Engine) Validate(values map[string]any, doc schema.Document) *Result {
	result := &Result{}
	root := doc.Root()
	if len(root.Properties) == 0 {
		result.AddGlobalError("schema declares no properties")
		return result
	}

	trimmed := make(map[string]any, len(values))
	for name, value := range values {
		trimmed[strings.TrimSpace(name)] = value
	}

	for _, name := range root.Required {
		name = strings.TrimSpace(name)
		if isBlank(trimmed[name]) {
			result.AddFieldError(name, "is required")
		}
	}

	for _, name := range root.PropertyOrder() {
		prop, ok := root.Property(name)
		if !ok {
			continue
		}
		value, present := trimmed[name]
		if !present || isBlank(value) {
			continue
		}
		e.validateValue(result, name, prop, value)
	}

	return result
}

func (e *Engine) validateValue(result *Result, name string, prop schema.Schema, value any) {
	switch prop.Type {
	case "number", "integer":
		e.validateNumber(result, name, prop, value)
	case "boolean":
		if _, ok := coerceBool(value); !ok {
			result.AddFieldError(name, "must be a boolean")
		}
	case "array":
		e.validateArray(result, name, prop, value)
	default:
		e.validateString(result, name, prop, value)
	}
}

func (e *Engine) validateString(result *Result, name string, prop schema.Schema, value any) {
	text, ok := coerceString(value)
	if !ok {
		result.AddFieldError(name, "must be a string")
		return
	}

	if prop.MinLength != nil && utf8.RuneCountInString(text) < *prop.MinLength {
		result.AddFieldError(name, fmt.Sprintf("must be at least %d characters", *prop.MinLength))
	}
	if prop.MaxLength != nil && utf8.RuneCountInString(text) > *prop.MaxLength {
		result.AddFieldError(name, fmt.Sprintf("must be at most %d characters", *prop.MaxLength))
	}
	if prop.Pattern != "" {
		if re, err := regexp.Compile(prop.Pattern); err == nil && !re.MatchString(text) {
			result.AddFieldError(name, "has an invalid format")
		}
	}
	if len(prop.Enum) > 0 && !enumContains(prop.Enum, text) {
		result.AddFieldError(name, "must be one of: "+enumList(prop))
	}

	switch prop.Format {
	case "email":
		if !emailPattern.MatchString(text) {
			result.AddFieldError(name, "must be a valid email address")
		}
	case "date":
		if !isParsableDate(text) {
			result.AddFieldError(name, "must be a valid date")
		}
	}
}

func (e *Engine) validateNumber(result *Result, name string, prop schema.Schema, value any) {
	number, ok := coerceNumber(value)
	if !ok {
		result.AddFieldError(name, "must be a number")
		return
	}
	if prop.Type == "integer" && number != float64(int64(number)) {
		result.AddFieldError(name, "must be a whole number")
	}
	if prop.Minimum != nil && number < *prop.Minimum {
		result.AddFieldError(name, fmt.Sprintf("must be at least %s", formatBound(*prop.Minimum)))
	}
	if prop.Maximum != nil && number > *prop.Maximum {
		result.AddFieldError(name, fmt.Sprintf("must be at most %s", formatBound(*prop.Maximum)))
	}
	if len(prop.Enum) > 0 && !enumContains(prop.Enum, formatBound(number)) {
		result.AddFieldError(name, "must be one of: "+enumList(prop))
	}
}

func (e *Engine) validateArray(result *Result, name string, prop schema.Schema, value any) {
	items, ok := value.([]any)
	if !ok {
		switch typed := value.(type) {
		case []string:
			items = make([]any, len(typed))
			for idx, entry := range typed {
				items[idx] = entry
			}
		default:
			result.AddFieldError(name, "must be a list")
			return
		}
	}
	if prop.Items == nil || len(prop.Items.Enum) == 0 {
		return
	}
	for _, entry := range items {
		text, _ := coerceString(entry)
		if !enumContains(prop.Items.Enum, text) {
			result.AddFieldError(name, "contains an unknown option: "+text)
		}
	}
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	case float64, int, int64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true, true
		case "false", "off", "0", "no", "":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func enumContains(enum []any, text string) bool {
	for _, candidate := range enum {
		value, _ := coerceString(candidate)
		if value == text {
			return true
		}
	}
	return false
}

func enumList(prop schema.Schema) string {
	parts := make([]string, 0, len(prop.Enum))
	for _, candidate := range prop.Enum {
		value, _ := coerceString(candidate)
		parts = append(parts, value)
	}
	return strings.Join(parts, ", ")
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func isParsableDate(text string) bool {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return true
		}
	}
	return false
}
