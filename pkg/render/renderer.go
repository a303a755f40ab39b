package render

import (
	"fmt"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Input carries everything one render needs. Values and Errors are optional;
// they re-populate the form after a failed submission.
type Input struct {
	Definition *forms.FormDefinition
	Language   i18n.Language
	Bundle     i18n.Bundle
	Values     map[string]any
	Errors     map[string][]string
}

// Renderer builds field view models and HTML from form definitions. The
// registry resolves mapped field types so their data type can steer the
// control shape; a nil registry skips that step.
type Renderer struct {
	registry *fieldtypes.Registry
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry attaches a field type registry.
func WithRegistry(registry *fieldtypes.Registry) Option {
	return func(r *Renderer) { r.registry = registry }
}

// New constructs a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fields resolves the definition into ordered field view models. Label
// resolution prefers the translation bundle, then the schema title, then a
// name-derived fallback.
func (r *Renderer) Fields(in Input) ([]Field, error) {
	if in.Definition == nil {
		return nil, fmt.Errorf("render: definition is required")
	}
	def := in.Definition
	root := def.Schema.Root()
	if len(root.Properties) == 0 {
		return nil, fmt.Errorf("render: definition %q has no fields", def.Name)
	}

	order := def.Layout.FieldOrder(root.PropertyOrder())
	fields := make([]Field, 0, len(order))
	for _, name := range order {
		prop, ok := root.Property(name)
		if !ok {
			continue
		}

		hint := def.Layout.Hint(name)

		var dataType fieldtypes.DataType
		hasDataType := false
		if r.registry != nil {
			if key, mapped := def.FieldTypeFor(name); mapped {
				if ft, err := r.registry.Lookup(key); err == nil {
					dataType = ft.DataType
					hasDataType = true
				}
			}
		}

		field := Field{
			Name:      name,
			Kind:      kindFor(prop, def.Layout.Widget(name), dataType, hasDataType),
			Label:     r.label(in.Bundle, name, prop.Title),
			Required:  root.IsRequired(name),
			Pattern:   prop.Pattern,
			MinLength: prop.MinLength,
			MaxLength: prop.MaxLength,
			Minimum:   prop.Minimum,
			Maximum:   prop.Maximum,
		}

		if field.Placeholder = in.Bundle.Placeholder(name); field.Placeholder == "" {
			field.Placeholder = hint.Placeholder
		}
		if field.Help = in.Bundle.HelpText(name); field.Help == "" {
			field.Help = hint.HelpText
		}

		optionSource := prop
		if prop.Type == "array" && prop.Items != nil {
			optionSource = *prop.Items
		}
		for _, opt := range optionSource.Options() {
			label := in.Bundle.OptionLabel(name, opt.Value)
			if label == "" {
				label = opt.Label
			}
			field.Options = append(field.Options, schema.Option{Value: opt.Value, Label: label})
		}

		if in.Values != nil {
			field.Value = in.Values[name]
		}
		if in.Errors != nil {
			field.Errors = in.Errors[name]
		}

		fields = append(fields, field)
	}
	return fields, nil
}

// Markup renders the definition as an HTML form fragment.
func (r *Renderer) Markup(in Input) (string, error) {
	fields, err := r.Fields(in)
	if err != nil {
		return "", err
	}
	return writeForm(fields, in), nil
}

func (r *Renderer) label(bundle i18n.Bundle, name, title string) string {
	if label := bundle.FieldLabel(name); label != "" {
		return label
	}
	if title != "" {
		return title
	}
	return humanize(name)
}
