// Package document renders completed submissions into archival documents:
// grouped, localized, human-readable markup that a rasterizer turns into the
// final artifact.
package document

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

// consentTokens mark fields that carry consent statements. Consent is
// captured by the signature block, so these fields are left off the document
// body in every supported language.
var consentTokens = []string{
	"consent", "privacy", "gdpr", "agb",
	"einwilligung", "einverstaendnis", "datenschutz", "dsgvo",
	"consentement", "consenso", "consentimiento", "zgoda", "riza",
}

// Line is one rendered field.
type Line struct {
	Field string
	Label string
	Value string
}

// Group is one category section of the document.
type Group struct {
	Category fieldtypes.Category
	Title    string
	Lines    []Line
}

// SignatureLine is one signature attached to the document.
type SignatureLine struct {
	FieldName  string
	SignerName string
	Hash       string
	SignedAt   time.Time
}

// Document is the fully resolved, renderer-agnostic content model.
type Document struct {
	Title      string
	Language   i18n.Language
	Patient    intake.Patient
	Groups     []Group
	Signatures []SignatureLine
	RenderedAt time.Time
}

// Input carries everything one document render needs.
type Input struct {
	Definition *forms.FormDefinition
	Submission *intake.Submission
	Patient    *intake.Patient
	Bundle     i18n.Bundle
	Language   i18n.Language
	Signatures []*intake.Signature
}

// Renderer builds documents from submissions.
type Renderer struct {
	registry *fieldtypes.Registry
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer wires a Renderer to a field type registry.
func NewRenderer(registry *fieldtypes.Registry, opts ...Option) *Renderer {
	r := &Renderer{registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build resolves the submission into a Document: fields ordered by layout,
// grouped by field type category in the fixed category order, values
// localized, consent and signature fields skipped, and canonical patient
// data taking precedence over the raw snapshot.
func (r *Renderer) Build(in Input) (*Document, error) {
	if in.Definition == nil || in.Submission == nil {
		return nil, fmt.Errorf("document: definition and submission are required")
	}
	lang := in.Language
	if lang == "" {
		lang = in.Submission.Language
	}
	if lang == "" {
		lang = i18n.English
	}

	root := in.Definition.Schema.Root()
	order := in.Definition.Layout.FieldOrder(root.PropertyOrder())

	grouped := make(map[fieldtypes.Category][]Line)
	for _, name := range order {
		prop, ok := root.Property(name)
		if !ok {
			continue
		}
		if r.skip(name, prop) {
			continue
		}

		value, ok := r.fieldValue(in, name)
		if !ok {
			continue
		}
		text := formatValue(prop, name, value, lang, in.Bundle, in.Definition.Layout.Widget(name))
		if text == "" {
			continue
		}

		label := in.Bundle.FieldLabel(name)
		if label == "" {
			label = prop.Title
		}
		if label == "" {
			label = name
		}

		category := r.categoryFor(in.Definition, name)
		grouped[category] = append(grouped[category], Line{Field: name, Label: label, Value: text})
	}

	doc := &Document{
		Title:      in.Definition.Name,
		Language:   lang,
		Groups:     r.orderedGroups(grouped, in.Bundle),
		RenderedAt: r.now().UTC(),
	}
	if in.Patient != nil {
		doc.Patient = *in.Patient
	}
	for _, sig := range in.Signatures {
		doc.Signatures = append(doc.Signatures, SignatureLine{
			FieldName:  sig.FieldName,
			SignerName: sig.SignerName,
			Hash:       sig.Hash,
			SignedAt:   sig.SignedAt,
		})
	}
	sort.Slice(doc.Signatures, func(i, j int) bool {
		return doc.Signatures[i].SignedAt.Before(doc.Signatures[j].SignedAt)
	})
	return doc, nil
}

// skip drops signature carriers and consent statements from the body.
func (r *Renderer) skip(name string, prop schema.Schema) bool {
	if prop.Format == "signature" {
		return true
	}
	lowered := strings.ToLower(name)
	for _, token := range consentTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// fieldValue prefers the canonical patient attribute over the snapshot so
// later corrections surface in re-rendered documents.
func (r *Renderer) fieldValue(in Input, name string) (any, bool) {
	if in.Patient != nil {
		if value, ok := patientAttribute(*in.Patient, in.Definition, name); ok {
			return value, true
		}
	}
	value, ok := in.Submission.Values[name]
	if !ok && in.Patient != nil {
		value, ok = in.Patient.Custom[name]
	}
	return value, ok
}

func (r *Renderer) categoryFor(def *forms.FormDefinition, name string) fieldtypes.Category {
	key, mapped := def.FieldTypeFor(name)
	if !mapped || r.registry == nil {
		return fieldtypes.CategoryCustom
	}
	ft, err := r.registry.Lookup(key)
	if err != nil {
		return fieldtypes.CategoryCustom
	}
	return ft.Category
}

func (r *Renderer) orderedGroups(grouped map[fieldtypes.Category][]Line, bundle i18n.Bundle) []Group {
	var out []Group
	for _, category := range fieldtypes.CategoryOrder {
		lines := grouped[category]
		if len(lines) == 0 {
			continue
		}
		title := bundle.Message("category." + strings.ToLower(string(category)))
		if title == "" {
			title = defaultCategoryTitle(category)
		}
		out = append(out, Group{Category: category, Title: title, Lines: lines})
	}
	return out
}

func defaultCategoryTitle(category fieldtypes.Category) string {
	switch category {
	case fieldtypes.CategoryPersonal:
		return "Personal"
	case fieldtypes.CategoryContact:
		return "Contact"
	case fieldtypes.CategoryInsurance:
		return "Insurance"
	case fieldtypes.CategoryMedical:
		return "Medical"
	case fieldtypes.CategoryConsent:
		return "Consent"
	default:
		return "Additional"
	}
}

// Markup renders the document as printable HTML.
func (r *Renderer) Markup(doc *Document) string {
	var b strings.Builder
	b.WriteString(`<article class="intake-document" dir="`)
	b.WriteString(string(doc.Language.Direction()))
	b.WriteString(`"><h1>`)
	b.WriteString(html.EscapeString(doc.Title))
	b.WriteString(`</h1>`)

	if name := doc.Patient.FullName(); name != "" {
		b.WriteString(`<p class="intake-document-patient">`)
		b.WriteString(html.EscapeString(name))
		if !doc.Patient.BirthDate.IsZero() {
			b.WriteString(`, `)
			b.WriteString(html.EscapeString(doc.Patient.BirthDate.Format(doc.Language.DateLayout())))
		}
		b.WriteString(`</p>`)
	}

	for _, group := range doc.Groups {
		b.WriteString(`<section><h2>`)
		b.WriteString(html.EscapeString(group.Title))
		b.WriteString(`</h2><dl>`)
		for _, line := range group.Lines {
			b.WriteString(`<dt>`)
			b.WriteString(html.EscapeString(line.Label))
			b.WriteString(`</dt><dd>`)
			b.WriteString(html.EscapeString(line.Value))
			b.WriteString(`</dd>`)
		}
		b.WriteString(`</dl></section>`)
	}

	if len(doc.Signatures) > 0 {
		b.WriteString(`<section class="intake-document-signatures"><h2>Signatures</h2><ul>`)
		for _, sig := range doc.Signatures {
			b.WriteString(`<li>`)
			b.WriteString(html.EscapeString(sig.SignerName))
			b.WriteString(`, `)
			b.WriteString(html.EscapeString(sig.SignedAt.Format(time.RFC3339)))
			b.WriteString(` <code>`)
			b.WriteString(html.EscapeString(sig.Hash))
			b.WriteString(`</code></li>`)
		}
		b.WriteString(`</ul></section>`)
	}

	b.WriteString(`<footer>`)
	b.WriteString(html.EscapeString(doc.RenderedAt.Format(time.RFC3339)))
	b.WriteString(`</footer></article>`)
	return b.String()
}
