package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Document wraps a parsed data schema together with its raw payload so stores
// can persist the exact operator-authored bytes.
type Document struct {
	root Schema
	raw  []byte
}

// Parse decodes a data schema payload. The schema root must be an object (or
// leave type unset, which is treated as object). Property declaration order is
// recovered with a token-level pass so renderers can fall back to it when the
// layout schema declares no explicit order.
func Parse(raw []byte) (Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: document is empty")
	}

	var root Schema
	if err := json.Unmarshal(raw, &root); err != nil {
		return Document{}, fmt.Errorf("schema: parse document: %w", err)
	}
	if root.Type != "" && root.Type != "object" {
		return Document{}, fmt.Errorf("schema: root type must be object, got %q", root.Type)
	}

	order, err := propertyOrderFromRaw(raw)
	if err != nil {
		return Document{}, err
	}
	attachOrder(&root, order)

	return Document{root: root, raw: append([]byte(nil), raw...)}, nil
}

// MustParse panics when the payload cannot be parsed. Useful for tests and
// seed fixtures.
func MustParse(raw []byte) Document {
	doc, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Root returns the root schema node.
func (d Document) Root() Schema {
	return d.root
}

// Raw returns a defensive copy of the original payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// IsZero reports whether the document holds no schema.
func (d Document) IsZero() bool {
	return len(d.raw) == 0
}

// MarshalJSON emits the original payload verbatim.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return []byte("null"), nil
	}
	return append([]byte(nil), d.raw...), nil
}

// UnmarshalJSON re-parses the payload, recovering declaration order.
func (d *Document) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Document{}
		return nil
	}
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// propertyOrderFromRaw walks the token stream and records the key order of
// every "properties" object, keyed by its dotted path from the root ("" for
// the root node).
func propertyOrderFromRaw(raw []byte) (map[string][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	order := make(map[string][]string)
	if err := scanObject(dec, "", order); err != nil {
		return nil, fmt.Errorf("schema: scan property order: %w", err)
	}
	return order, nil
}

func scanObject(dec *json.Decoder, path string, order map[string][]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return skipValueAfter(dec, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		switch key {
		case "properties":
			if err := scanProperties(dec, path, order); err != nil {
				return err
			}
		case "items":
			if err := scanObject(dec, joinSchemaPath(path, "items"), order); err != nil {
				return err
			}
		default:
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	}
	_, err = dec.Token() // consume closing brace
	return err
}

func scanProperties(dec *json.Decoder, path string, order map[string][]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return skipValueAfter(dec, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		trimmed := strings.TrimSpace(name)
		order[path] = append(order[path], trimmed)
		if err := scanObject(dec, joinSchemaPath(path, trimmed), order); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// skipValue consumes a complete JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return skipValueAfter(dec, tok)
}

func skipValueAfter(dec *json.Decoder, tok json.Token) error {
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if delim != '{' && delim != '[' {
		return nil
	}
	depth := 1
	for depth > 0 {
		next, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := next.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func joinSchemaPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func attachOrder(node *Schema, order map[string][]string) {
	attachOrderAt(node, "", order)
}

func attachOrderAt(node *Schema, path string, order map[string][]string) {
	if node == nil {
		return
	}
	if len(node.Properties) > 0 {
		recorded := order[path]
		seen := make(map[string]bool, len(recorded))
		names := make([]string, 0, len(node.Properties))
		for _, name := range recorded {
			if _, ok := node.Properties[name]; ok && !seen[name] {
				names = append(names, name)
				seen[name] = true
			}
		}
		var extra []string
		for name := range node.Properties {
			if !seen[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		node.propertyOrder = append(names, extra...)

		for name := range node.Properties {
			prop := node.Properties[name]
			attachOrderAt(&prop, joinSchemaPath(path, name), order)
			node.Properties[name] = prop
		}
	}
	if node.Items != nil {
		attachOrderAt(node.Items, joinSchemaPath(path, "items"), order)
	}
}

func looseEqual(a, b any) bool {
	if a == b {
		return true
	}
	return stringify(a) == stringify(b)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.Trim(string(payload), `"`)
	}
}
