package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Draft is the result of importing one OpenAPI operation: a parsed data
// schema plus mapping suggestions derived from the field type catalog. The
// caller decides whether to turn it into a stored form definition.
type Draft struct {
	// OperationID identifies the source operation. Falls back to
	// "method:path" when the document declares no operationId.
	OperationID string
	Method      string
	Path        string
	// Name is a human title for the draft, taken from the operation
	// summary when present.
	Name   string
	Schema schema.Document
	// Mappings suggests a field type key per property, resolved through
	// canonical names and aliases. Unrecognized properties are absent.
	Mappings map[string]string
}

// Importer converts OpenAPI request body schemas into form definition
// drafts. Only operations that accept a request body are considered.
type Importer struct {
	registry    *fieldtypes.Registry
	resolveRefs bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithReferenceResolution validates the document and follows external $refs
// while loading.
func WithReferenceResolution() Option {
	return func(im *Importer) {
		im.resolveRefs = true
	}
}

// NewImporter constructs an Importer suggesting mappings against the given
// field type registry.
func NewImporter(registry *fieldtypes.Registry, opts ...Option) *Importer {
	im := &Importer{registry: registry}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Drafts extracts a draft for every operation in the document that carries a
// usable request body schema, sorted by operation id.
func (im *Importer) Drafts(ctx context.Context, raw []byte) ([]Draft, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: im.resolveRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if im.resolveRefs {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate document: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	var drafts []Draft
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range map[string]*openapi3.Operation{
			"POST":  item.Post,
			"PUT":   item.Put,
			"PATCH": item.Patch,
		} {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			draft, ok, err := im.convertOperation(method, path, operation)
			if err != nil {
				return nil, err
			}
			if ok {
				drafts = append(drafts, draft)
			}
		}
	}
	if len(drafts) == 0 {
		return nil, errors.New("openapi: no operation declares an importable request body")
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].OperationID < drafts[j].OperationID })
	return drafts, nil
}

// Draft extracts the draft for a single operation id.
func (im *Importer) Draft(ctx context.Context, raw []byte, operationID string) (Draft, error) {
	drafts, err := im.Drafts(ctx, raw)
	if err != nil {
		return Draft{}, err
	}
	for _, draft := range drafts {
		if draft.OperationID == operationID {
			return draft, nil
		}
	}
	return Draft{}, fmt.Errorf("openapi: operation %q not found or has no request body", operationID)
}

func (im *Importer) convertOperation(method, path string, operation *openapi3.Operation) (Draft, bool, error) {
	if operation == nil {
		return Draft{}, false, nil
	}
	ref := requestSchema(operation.RequestBody)
	if ref == nil || ref.Value == nil || len(ref.Value.Properties) == 0 {
		return Draft{}, false, nil
	}

	raw, err := renderObject(ref.Value)
	if err != nil {
		return Draft{}, false, fmt.Errorf("openapi: operation %s %s: %w", method, path, err)
	}
	doc, err := schema.Parse(raw)
	if err != nil {
		return Draft{}, false, fmt.Errorf("openapi: operation %s %s: %w", method, path, err)
	}

	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	return Draft{
		OperationID: opID,
		Method:      method,
		Path:        path,
		Name:        draftName(operation, opID),
		Schema:      doc,
		Mappings:    im.suggestMappings(doc.Root()),
	}, true, nil
}

func draftName(operation *openapi3.Operation, fallback string) string {
	if s := strings.TrimSpace(operation.Summary); s != "" {
		return s
	}
	return fallback
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return mt.Schema
		}
	}
	for _, mt := range content {
		return mt.Schema
	}
	return nil
}

// renderObject serializes an object schema with a stable property order.
// kin-openapi keeps properties in a map, so the source declaration order is
// gone by the time we see them. Required names keep their listed order and
// everything else follows alphabetically.
func renderObject(src *openapi3.Schema) ([]byte, error) {
	names := make([]string, 0, len(src.Properties))
	seen := make(map[string]bool, len(src.Properties))
	for _, name := range src.Required {
		if _, ok := src.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range src.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	var buf bytes.Buffer
	buf.WriteString(`{"type":"object"`)
	if len(src.Required) > 0 {
		required, err := json.Marshal(src.Required)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"required":`)
		buf.Write(required)
	}
	buf.WriteString(`,"properties":{`)
	for idx, name := range names {
		converted := convertProperty(src.Properties[name])
		payload, err := json.Marshal(converted)
		if err != nil {
			return nil, err
		}
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(payload)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func convertProperty(ref *openapi3.SchemaRef) schema.Schema {
	if ref == nil || ref.Value == nil {
		return schema.Schema{}
	}
	src := ref.Value
	out := schema.Schema{
		Type:        schemaType(src.Type),
		Title:       src.Title,
		Description: src.Description,
		Format:      src.Format,
		Default:     src.Default,
		Pattern:     src.Pattern,
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if src.Min != nil {
		value := *src.Min
		out.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		out.Maximum = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		out.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		out.MaxLength = &value
	}
	if src.Items != nil {
		items := convertProperty(src.Items)
		out.Items = &items
	}
	if len(src.Properties) > 0 {
		out.Properties = make(map[string]schema.Schema, len(src.Properties))
		for name, prop := range src.Properties {
			out.Properties[name] = convertProperty(prop)
		}
	}
	return out
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// suggestMappings resolves each root property name against the field type
// catalog, trying canonical names before aliases.
func (im *Importer) suggestMappings(root schema.Schema) map[string]string {
	if im.registry == nil {
		return nil
	}
	mappings := make(map[string]string)
	for _, name := range root.PropertyOrder() {
		ft, err := im.registry.LookupCanonical(name)
		if err != nil {
			ft, err = im.registry.LookupAlias(name)
		}
		if err != nil {
			continue
		}
		mappings[name] = ft.Key
	}
	if len(mappings) == 0 {
		return nil
	}
	return mappings
}
