package render

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/render/template"
	"github.com/goliatone/go-intake/pkg/render/template/gotemplate"
)

//go:embed templates/preview.html.tpl
var previewTemplates embed.FS

// Preview wraps a Renderer to produce complete standalone HTML documents,
// used for form previews in the practice back office.
type Preview struct {
	renderer *Renderer
	engine   template.Renderer

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// PreviewOption configures a Preview.
type PreviewOption func(*Preview)

// WithTemplateEngine replaces the embedded template engine.
func WithTemplateEngine(engine template.Renderer) PreviewOption {
	return func(p *Preview) { p.engine = engine }
}

// WithTheme resolves design tokens through a go-theme selector; they surface
// in the document as CSS custom properties.
func WithTheme(selector theme.ThemeSelector, name, variant string) PreviewOption {
	return func(p *Preview) {
		p.selector = selector
		p.themeName = name
		p.themeVariant = variant
	}
}

// NewPreview builds a Preview over the given Renderer.
func NewPreview(renderer *Renderer, opts ...PreviewOption) (*Preview, error) {
	p := &Preview{renderer: renderer}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(previewTemplates))
		if err != nil {
			return nil, fmt.Errorf("render: build preview engine: %w", err)
		}
		p.engine = engine
	}
	return p, nil
}

// Document renders a full HTML page for the definition.
func (p *Preview) Document(in Input) (string, error) {
	markup, err := p.renderer.Markup(in)
	if err != nil {
		return "", err
	}

	themeCSS, err := p.themeCSS()
	if err != nil {
		return "", err
	}

	submit := in.Bundle.Button("submit")
	if submit == "" {
		submit = "Submit"
	}

	return p.engine.RenderTemplate("templates/preview.html", map[string]any{
		"title":        in.Definition.Name,
		"lang":         string(in.Language),
		"dir":          string(in.Language.Direction()),
		"form":         markup,
		"submit_label": submit,
		"theme_css":    themeCSS,
	})
}

// StaticSelector is a ThemeSelector over a single manifest, for deployments
// that configure one practice theme instead of a full theme registry.
type StaticSelector struct {
	Manifest *theme.Manifest
}

// Select returns the wrapped manifest regardless of the requested name.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s == nil || s.Manifest == nil {
		return nil, fmt.Errorf("render: no theme manifest configured")
	}
	selected := s.Manifest.Name
	if name != "" {
		selected = name
	}
	return &theme.Selection{Theme: selected, Variant: variant, Manifest: s.Manifest}, nil
}

// themeCSS resolves the configured theme into a :root CSS variable block.
func (p *Preview) themeCSS() (string, error) {
	if p.selector == nil {
		return "", nil
	}
	selection, err := p.selector.Select(p.themeName, p.themeVariant)
	if err != nil {
		return "", fmt.Errorf("render: select theme %q: %w", p.themeName, err)
	}
	if selection == nil || selection.Manifest == nil {
		return "", nil
	}

	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	return cssVarsBlock(tokens), nil
}

func cssVarsBlock(tokens map[string]string) string {
	if len(tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(tokens[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
