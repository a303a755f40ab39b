package layout

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a layout document from JSON or YAML. JSON is detected by the
// leading brace; everything else goes through the YAML decoder, which accepts
// JSON as a subset anyway.
func Parse(raw []byte) (Layout, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Layout{}, nil
	}

	var out Layout
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return Layout{}, fmt.Errorf("layout: parse json: %w", err)
		}
		return out, nil
	}
	if err := yaml.Unmarshal(trimmed, &out); err != nil {
		return Layout{}, fmt.Errorf("layout: parse yaml: %w", err)
	}
	return out, nil
}

// MustParse panics on parse failure. Useful for fixtures.
func MustParse(raw []byte) Layout {
	layout, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return layout
}
