package intake

import (
	"context"

	"github.com/google/uuid"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	core "github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
)

// FormDefinition aliases the forms model for callers that only import the
// root package.
type FormDefinition = forms.FormDefinition

// CreateInput configures a new draft definition.
type CreateInput = forms.CreateInput

// SubmitRequest carries one intake submission.
type SubmitRequest = core.SubmitRequest

// Receipt is the outcome of a submission.
type Receipt = core.Receipt

// Language identifies a supported intake language.
type Language = i18n.Language

// Engine bundles the form lifecycle and submission services over in-memory
// stores. It is the simplest way to embed the module; servers that need
// persistence wire the services against the formspg and intakepg
// repositories instead.
type Engine struct {
	Forms  *forms.Service
	Intake *core.Service
}

// NewEngine builds an Engine with the built-in field type catalog.
func NewEngine() *Engine {
	registry := fieldtypes.NewRegistry()
	formSvc := forms.NewService(forms.NewMemoryRepository(), forms.NewMemoryTranslationRepository(), registry)
	intakeSvc := core.NewService(
		formSvc,
		core.NewCanonicalizer(registry),
		core.NewMemoryPatientRepository(),
		core.NewMemorySubmissionRepository(),
		core.NewMemorySignatureRepository(),
	)
	return &Engine{Forms: formSvc, Intake: intakeSvc}
}

// Submit validates and persists one submission against a published
// definition.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	return e.Intake.Submit(ctx, req)
}

// RenderHTML produces a standalone HTML page for a published definition in
// the given language. It is the quick-start entry point for callers that
// just want markup.
func RenderHTML(ctx context.Context, formSvc *forms.Service, formID uuid.UUID, lang Language, opts ...render.PreviewOption) (string, error) {
	def, err := formSvc.ByID(ctx, formID)
	if err != nil {
		return "", err
	}
	bundle, err := formSvc.BundleOrEmpty(ctx, formID, lang)
	if err != nil {
		return "", err
	}
	preview, err := render.NewPreview(render.New(render.WithRegistry(fieldtypes.NewRegistry())), opts...)
	if err != nil {
		return "", err
	}
	return preview.Document(render.Input{Definition: def, Language: lang, Bundle: bundle})
}

// WithTheme passes a go-theme selector through to the preview renderer so
// rendered pages carry resolved design tokens.
func WithTheme(selector theme.ThemeSelector, name, variant string) render.PreviewOption {
	return render.WithTheme(selector, name, variant)
}
