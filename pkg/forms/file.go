package forms

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/schema"
)

// DefinitionFile is the authoring format for form definitions. Operators
// keep these as JSON documents under version control and load them through
// the CLI or the server's seed directory.
type DefinitionFile struct {
	Name         string                 `json:"name"`
	Category     string                 `json:"category"`
	Schema       json.RawMessage        `json:"schema"`
	Layout       json.RawMessage        `json:"layout,omitempty"`
	Mappings     map[string]string      `json:"mappings,omitempty"`
	Default      bool                   `json:"default,omitempty"`
	Translations map[string]i18n.Bundle `json:"translations,omitempty"`
}

// ParseDefinitionFile decodes an authored definition document.
func ParseDefinitionFile(raw []byte) (*DefinitionFile, error) {
	var file DefinitionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("forms: parse definition file: %w", err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("forms: definition file declares no name")
	}
	if len(file.Schema) == 0 {
		return nil, fmt.Errorf("forms: definition file %q declares no schema", file.Name)
	}
	for code := range file.Translations {
		if !i18n.IsSupported(code) {
			return nil, fmt.Errorf("forms: definition file %q: unsupported translation language %q", file.Name, code)
		}
	}
	return &file, nil
}

// CreateInput converts the file into service input, parsing the embedded
// schema and layout documents.
func (f *DefinitionFile) CreateInput() (CreateInput, error) {
	doc, err := schema.Parse(f.Schema)
	if err != nil {
		return CreateInput{}, fmt.Errorf("forms: definition file %q: %w", f.Name, err)
	}
	var lay layout.Layout
	if len(f.Layout) > 0 {
		lay, err = layout.Parse(f.Layout)
		if err != nil {
			return CreateInput{}, fmt.Errorf("forms: definition file %q: %w", f.Name, err)
		}
	}
	return CreateInput{
		Name:     f.Name,
		Category: ParseCategory(f.Category),
		Schema:   doc,
		Layout:   lay,
		Mappings: f.Mappings,
		Default:  f.Default,
	}, nil
}

// Bundles returns the declared translations keyed by parsed language.
func (f *DefinitionFile) Bundles() (map[i18n.Language]i18n.Bundle, error) {
	if len(f.Translations) == 0 {
		return nil, nil
	}
	out := make(map[i18n.Language]i18n.Bundle, len(f.Translations))
	for code, bundle := range f.Translations {
		lang, err := i18n.ParseLanguage(code)
		if err != nil {
			return nil, fmt.Errorf("forms: definition file %q: %w", f.Name, err)
		}
		out[lang] = bundle
	}
	return out, nil
}
