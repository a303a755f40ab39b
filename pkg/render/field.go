// Package render turns form definitions into HTML: per-field markup
// fragments for embedding, and full standalone preview documents.
package render

import (
	"strings"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Kind is the closed set of control shapes a field renders as.
type Kind string

const (
	KindText      Kind = "text"
	KindTextarea  Kind = "textarea"
	KindEmail     Kind = "email"
	KindPhone     Kind = "phone"
	KindDate      Kind = "date"
	KindNumber    Kind = "number"
	KindToggle    Kind = "toggle"
	KindSelect    Kind = "select"
	KindRadio     Kind = "radio"
	KindCheckbox  Kind = "checkbox"
	KindSignature Kind = "signature"
)

// Field is the view model for one rendered control.
type Field struct {
	Name        string
	Kind        Kind
	Label       string
	Placeholder string
	Help        string
	Required    bool
	Value       any
	Options     []schema.Option
	Errors      []string

	MinLength *int
	MaxLength *int
	Minimum   *float64
	Maximum   *float64
	Pattern   string
}

// widgetKinds maps layout widget hints onto kinds. Unknown hints are
// ignored so a typo degrades to schema-driven resolution.
var widgetKinds = map[string]Kind{
	"text":      KindText,
	"textarea":  KindTextarea,
	"email":     KindEmail,
	"phone":     KindPhone,
	"tel":       KindPhone,
	"date":      KindDate,
	"number":    KindNumber,
	"toggle":    KindToggle,
	"switch":    KindToggle,
	"select":    KindSelect,
	"dropdown":  KindSelect,
	"radio":     KindRadio,
	"checkbox":  KindCheckbox,
	"signature": KindSignature,
}

// dataTypeKinds maps field type data types onto kinds.
var dataTypeKinds = map[fieldtypes.DataType]Kind{
	fieldtypes.DataString:    KindText,
	fieldtypes.DataText:      KindTextarea,
	fieldtypes.DataDate:      KindDate,
	fieldtypes.DataEmail:     KindEmail,
	fieldtypes.DataPhone:     KindPhone,
	fieldtypes.DataNumber:    KindNumber,
	fieldtypes.DataBoolean:   KindToggle,
	fieldtypes.DataSignature: KindSignature,
}

// kindFor resolves the control shape for a field. A layout widget hint wins,
// then the mapped field type's data type, then the schema itself.
func kindFor(prop schema.Schema, widget string, dataType fieldtypes.DataType, hasDataType bool) Kind {
	if kind, ok := widgetKinds[strings.ToLower(strings.TrimSpace(widget))]; ok {
		return kind
	}
	if hasDataType {
		if kind, ok := dataTypeKinds[dataType]; ok {
			// Enum fields keep their choice control even when the mapped
			// type says plain string.
			if kind != KindText || len(prop.Enum) == 0 {
				return kind
			}
		}
	}
	return kindFromSchema(prop)
}

func kindFromSchema(prop schema.Schema) Kind {
	switch prop.Type {
	case "boolean":
		return KindToggle
	case "number", "integer":
		return KindNumber
	case "array":
		return KindCheckbox
	}
	if len(prop.Enum) > 0 {
		return KindSelect
	}
	switch prop.Format {
	case "email":
		return KindEmail
	case "date":
		return KindDate
	case "phone", "tel":
		return KindPhone
	case "signature":
		return KindSignature
	}
	return KindText
}
