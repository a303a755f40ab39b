package render

import (
	"fmt"

	"github.com/goliatone/go-intake/pkg/forms"
)

// CheckDefinition dry-runs a definition and reports everything that would
// degrade or break rendering. An empty slice means the definition is
// renderable in every language.
func (r *Renderer) CheckDefinition(def *forms.FormDefinition) []string {
	var problems []string
	if def == nil {
		return []string{"definition is nil"}
	}
	if def.Schema.IsZero() {
		return []string{"definition has no schema"}
	}

	root := def.Schema.Root()
	if len(root.Properties) == 0 {
		return []string{"schema declares no properties"}
	}

	for _, name := range def.Layout.Order {
		if _, ok := root.Property(name); !ok {
			problems = append(problems, fmt.Sprintf("layout orders unknown field %q", name))
		}
	}
	for name := range def.Layout.Fields {
		if _, ok := root.Property(name); !ok {
			problems = append(problems, fmt.Sprintf("layout hints unknown field %q", name))
		}
	}

	for field, key := range def.Mappings {
		if _, ok := root.Property(field); !ok {
			problems = append(problems, fmt.Sprintf("mapping references unknown field %q", field))
		}
		if r.registry != nil {
			if _, err := r.registry.Lookup(key); err != nil {
				problems = append(problems, fmt.Sprintf("field %q maps to unknown field type %q", field, key))
			}
		}
	}

	if _, err := r.Fields(Input{Definition: def}); err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
