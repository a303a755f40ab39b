package render

import (
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/i18n"
)

func TestPreviewDocument(t *testing.T) {
	preview, err := NewPreview(New())
	if err != nil {
		t.Fatalf("NewPreview: %v", err)
	}

	doc, err := preview.Document(Input{
		Definition: testDefinition(t),
		Language:   i18n.German,
		Bundle:     i18n.Bundle{Buttons: map[string]string{"submit": "Absenden"}},
	})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`lang="de"`,
		"Patient Intake",
		`class="intake-form"`,
		">Absenden</button>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q", want)
		}
	}
}

func TestPreviewDocumentAppliesThemeTokens(t *testing.T) {
	selector := &StaticSelector{Manifest: &theme.Manifest{
		Name:   "practice",
		Tokens: map[string]string{"brand": "#123456"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"surface": "#111111"}},
		},
	}}
	preview, err := NewPreview(New(), WithTheme(selector, "practice", "dark"))
	if err != nil {
		t.Fatalf("NewPreview: %v", err)
	}

	doc, err := preview.Document(Input{Definition: testDefinition(t), Language: i18n.English})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !strings.Contains(doc, "--brand: #123456;") {
		t.Fatal("base token missing from CSS variables")
	}
	if !strings.Contains(doc, "--surface: #111111;") {
		t.Fatal("variant token missing from CSS variables")
	}
}
