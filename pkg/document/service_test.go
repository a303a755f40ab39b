package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
)

type fakeRasterizer struct {
	fail   bool
	markup string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, markup string) ([]byte, error) {
	if f.fail {
		return nil, errors.New("renderer crashed")
	}
	f.markup = markup
	return []byte("%PDF-" + markup), nil
}

type fakeStore struct {
	saved map[string][]byte
}

func (f *fakeStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[name] = data
	return "store://" + name, nil
}

func sealedFixture(t *testing.T, raster Rasterizer) (*Service, *intake.Service, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	registry := fieldtypes.NewRegistry()
	formSvc := forms.NewService(forms.NewMemoryRepository(), forms.NewMemoryTranslationRepository(), registry)

	doc := schema.MustParse([]byte(`{
		"type": "object",
		"required": ["firstName", "lastName", "birthDate"],
		"properties": {
			"firstName": {"type": "string"},
			"lastName": {"type": "string"},
			"birthDate": {"type": "string", "format": "date"},
			"smoker": {"type": "boolean"}
		}
	}`))
	def, err := formSvc.CreateDraft(ctx, forms.CreateInput{
		Name: "Anamnese", Category: forms.CategoryAnamnesis, Schema: doc,
		Mappings: map[string]string{
			"firstName": "FIRST_NAME", "lastName": "LAST_NAME", "birthDate": "BIRTH_DATE",
		},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := formSvc.AddTranslation(ctx, def.ID, i18n.German, i18n.Bundle{
		Fields: map[string]string{"smoker": "Raucher"},
	}); err != nil {
		t.Fatalf("AddTranslation: %v", err)
	}
	if _, err := formSvc.Publish(ctx, def.ID, "admin", true); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	intakeSvc := intake.NewService(
		formSvc,
		intake.NewCanonicalizer(registry),
		intake.NewMemoryPatientRepository(),
		intake.NewMemorySubmissionRepository(),
		intake.NewMemorySignatureRepository(),
	)
	receipt, err := intakeSvc.Submit(ctx, intake.SubmitRequest{
		FormID:   def.ID,
		Language: i18n.German,
		Values: map[string]any{
			"firstName": "Erika", "lastName": "Mustermann", "birthDate": "15.03.1980",
			"smoker": true,
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	svc := NewService(intakeSvc, formSvc, NewRenderer(registry), raster, &fakeStore{})
	return svc, intakeSvc, receipt.Submission.ID
}

func TestRenderSealsSubmission(t *testing.T) {
	raster := &fakeRasterizer{}
	svc, _, submissionID := sealedFixture(t, raster)

	sealed, err := svc.Render(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sealed.Status != intake.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", sealed.Status)
	}
	if sealed.DocumentRef == "" || len(sealed.DocumentHash) != 64 {
		t.Fatalf("sealed = %+v, want ref and sha256 hash", sealed)
	}
	if sealed.CompletedAt == nil {
		t.Fatal("missing completion timestamp")
	}
	if !strings.Contains(raster.markup, "Raucher") {
		t.Fatal("document markup should use the translated label")
	}
	if !strings.Contains(raster.markup, "(X) Ja") {
		t.Fatal("document markup should localize the boolean answer")
	}
}

func TestRenderFailureMarksSubmissionFailed(t *testing.T) {
	svc, intakeSvc, submissionID := sealedFixture(t, &fakeRasterizer{fail: true})

	if _, err := svc.Render(context.Background(), submissionID); err == nil {
		t.Fatal("expected rasterizer error")
	}
	sub, err := intakeSvc.Submission(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if sub.Status != intake.StatusFailed || sub.DocumentRef != "" || sub.DocumentHash != "" {
		t.Fatalf("submission = %+v, want FAILED with no artifact", sub)
	}
	if sub.Error == "" {
		t.Fatal("failure reason should be recorded")
	}
}

func TestSignatureWindowFiltersStaleSignatures(t *testing.T) {
	ctx := context.Background()
	repo := intake.NewMemorySignatureRepository()
	patientID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-time.Hour, -10 * time.Minute, 5 * time.Minute, 20 * time.Minute} {
		sig := intake.Signature{ID: uuid.New(), PatientID: patientID, SignedAt: base.Add(offset)}
		if err := repo.Create(ctx, &sig); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ByPatientWindow(ctx, patientID, base.Add(-SignatureWindow), base.Add(SignatureWindow))
	if err != nil {
		t.Fatalf("ByPatientWindow: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("signatures in window = %d, want 2", len(got))
	}
}
