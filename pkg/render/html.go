package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/i18n"
)

// writeForm emits the form fragment. Callers wrap it in their own <form>
// element or use Preview for a complete document.
func writeForm(fields []Field, in Input) string {
	var b strings.Builder
	dir := i18n.LeftToRight
	if in.Language != "" {
		dir = in.Language.Direction()
	}

	b.WriteString(`<div class="intake-form" dir="`)
	b.WriteString(string(dir))
	b.WriteString(`">`)
	for _, field := range fields {
		writeField(&b, field)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func writeField(b *strings.Builder, field Field) {
	classes := "intake-field intake-field-" + string(field.Kind)
	if len(field.Errors) > 0 {
		classes += " intake-field-invalid"
	}
	b.WriteString(`<div class="` + classes + `">`)

	if field.Kind != KindToggle {
		writeLabel(b, field)
	}

	switch field.Kind {
	case KindTextarea:
		writeTextarea(b, field)
	case KindToggle:
		writeToggle(b, field)
	case KindSelect:
		writeSelect(b, field)
	case KindRadio:
		writeChoiceGroup(b, field, "radio")
	case KindCheckbox:
		writeChoiceGroup(b, field, "checkbox")
	case KindSignature:
		writeSignature(b, field)
	default:
		writeInput(b, field)
	}

	if field.Help != "" {
		b.WriteString(`<p class="intake-help" id="`)
		b.WriteString(helpID(field.Name))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(field.Help))
		b.WriteString(`</p>`)
	}
	for _, message := range field.Errors {
		b.WriteString(`<p class="intake-error">`)
		b.WriteString(html.EscapeString(message))
		b.WriteString(`</p>`)
	}
	b.WriteString(`</div>`)
}

func writeLabel(b *strings.Builder, field Field) {
	b.WriteString(`<label for="`)
	b.WriteString(controlID(field.Name))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(field.Label))
	if field.Required {
		b.WriteString(`<span class="intake-required" aria-hidden="true">*</span>`)
	}
	b.WriteString(`</label>`)
}

var inputTypes = map[Kind]string{
	KindText:   "text",
	KindEmail:  "email",
	KindPhone:  "tel",
	KindDate:   "date",
	KindNumber: "number",
}

func writeInput(b *strings.Builder, field Field) {
	inputType, ok := inputTypes[field.Kind]
	if !ok {
		inputType = "text"
	}
	b.WriteString(`<input type="`)
	b.WriteString(inputType)
	b.WriteString(`"`)
	writeNameID(b, field.Name)
	if value := stringValue(field.Value); value != "" {
		writeAttr(b, "value", value)
	}
	writeCommonAttrs(b, field)
	if field.Kind == KindNumber {
		if field.Minimum != nil {
			writeAttr(b, "min", formatFloat(*field.Minimum))
		}
		if field.Maximum != nil {
			writeAttr(b, "max", formatFloat(*field.Maximum))
		}
	}
	b.WriteString(`>`)
}

func writeTextarea(b *strings.Builder, field Field) {
	b.WriteString(`<textarea`)
	writeNameID(b, field.Name)
	writeCommonAttrs(b, field)
	b.WriteString(` rows="4">`)
	b.WriteString(html.EscapeString(stringValue(field.Value)))
	b.WriteString(`</textarea>`)
}

func writeToggle(b *strings.Builder, field Field) {
	b.WriteString(`<label class="intake-toggle"><input type="checkbox"`)
	writeNameID(b, field.Name)
	if isTruthy(field.Value) {
		b.WriteString(` checked`)
	}
	if field.Required {
		b.WriteString(` required`)
	}
	b.WriteString(`><span>`)
	b.WriteString(html.EscapeString(field.Label))
	if field.Required {
		b.WriteString(`<span class="intake-required" aria-hidden="true">*</span>`)
	}
	b.WriteString(`</span></label>`)
}

func writeSelect(b *strings.Builder, field Field) {
	b.WriteString(`<select`)
	writeNameID(b, field.Name)
	if field.Required {
		b.WriteString(` required`)
	}
	b.WriteString(`>`)
	b.WriteString(`<option value=""></option>`)
	selected := stringValue(field.Value)
	for _, opt := range field.Options {
		b.WriteString(`<option`)
		writeAttr(b, "value", opt.Value)
		if selected != "" && opt.Value == selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select>`)
}

func writeChoiceGroup(b *strings.Builder, field Field, inputType string) {
	chosen := chosenValues(field.Value)
	b.WriteString(`<div class="intake-options" role="group">`)
	for idx, opt := range field.Options {
		id := controlID(field.Name) + "-" + strconv.Itoa(idx)
		b.WriteString(`<label for="` + id + `"><input type="` + inputType + `"`)
		writeAttr(b, "id", id)
		name := field.Name
		if inputType == "checkbox" {
			name += "[]"
		}
		writeAttr(b, "name", name)
		writeAttr(b, "value", opt.Value)
		if chosen[opt.Value] {
			b.WriteString(` checked`)
		}
		if field.Required && inputType == "radio" {
			b.WriteString(` required`)
		}
		b.WriteString(`><span>`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</span></label>`)
	}
	b.WriteString(`</div>`)
}

// writeSignature emits a drawing surface plus the hidden input that carries
// the captured image as a data URL.
func writeSignature(b *strings.Builder, field Field) {
	b.WriteString(`<div class="intake-signature-pad" data-signature-for="`)
	b.WriteString(html.EscapeString(field.Name))
	b.WriteString(`"><canvas></canvas></div><input type="hidden"`)
	writeNameID(b, field.Name)
	if field.Required {
		b.WriteString(` required`)
	}
	b.WriteString(`>`)
}

func writeNameID(b *strings.Builder, name string) {
	writeAttr(b, "id", controlID(name))
	writeAttr(b, "name", name)
}

func writeCommonAttrs(b *strings.Builder, field Field) {
	if field.Placeholder != "" {
		writeAttr(b, "placeholder", field.Placeholder)
	}
	if field.Required {
		b.WriteString(` required`)
	}
	if field.MinLength != nil {
		writeAttr(b, "minlength", strconv.Itoa(*field.MinLength))
	}
	if field.MaxLength != nil {
		writeAttr(b, "maxlength", strconv.Itoa(*field.MaxLength))
	}
	if field.Pattern != "" {
		writeAttr(b, "pattern", field.Pattern)
	}
	if field.Help != "" {
		writeAttr(b, "aria-describedby", helpID(field.Name))
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(` `)
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}

func controlID(name string) string {
	return "field-" + strings.Map(idRune, name)
}

func helpID(name string) string {
	return controlID(name) + "-help"
}

func idRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		return r
	}
	return '-'
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

func chosenValues(value any) map[string]bool {
	out := map[string]bool{}
	switch v := value.(type) {
	case nil:
	case []any:
		for _, entry := range v {
			out[stringValue(entry)] = true
		}
	case []string:
		for _, entry := range v {
			out[entry] = true
		}
	default:
		out[stringValue(v)] = true
	}
	return out
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
