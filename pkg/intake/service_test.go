package intake

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/schema"
)

var intakeSchema = schema.MustParse([]byte(`{
	"type": "object",
	"required": ["firstName", "lastName", "birthDate"],
	"properties": {
		"firstName": {"type": "string", "minLength": 2},
		"lastName": {"type": "string"},
		"birthDate": {"type": "string", "format": "date"},
		"email": {"type": "string", "format": "email"},
		"allergies": {"type": "string"},
		"signature": {"type": "string", "format": "signature"}
	}
}`))

func newIntakeService(t *testing.T) (*Service, uuid.UUID) {
	t.Helper()
	registry := fieldtypes.NewRegistry()
	formSvc := forms.NewService(forms.NewMemoryRepository(), forms.NewMemoryTranslationRepository(), registry)
	ctx := context.Background()

	def, err := formSvc.CreateDraft(ctx, forms.CreateInput{
		Name:     "Anamnesis",
		Category: forms.CategoryAnamnesis,
		Schema:   intakeSchema,
		Mappings: map[string]string{
			"firstName": "FIRST_NAME",
			"lastName":  "LAST_NAME",
			"birthDate": "BIRTH_DATE",
			"email":     "EMAIL",
			"allergies": "ALLERGIES",
			"signature": "SIGNATURE",
		},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := formSvc.Publish(ctx, def.ID, "admin", true); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	svc := NewService(
		formSvc,
		NewCanonicalizer(registry),
		NewMemoryPatientRepository(),
		NewMemorySubmissionRepository(),
		NewMemorySignatureRepository(),
	)
	return svc, def.ID
}

func signatureDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestSubmitInvalidValuesReturnsValidationOnly(t *testing.T) {
	svc, formID := newIntakeService(t)
	receipt, err := svc.Submit(context.Background(), SubmitRequest{
		FormID:   formID,
		Language: i18n.German,
		Values:   map[string]any{"firstName": "J", "lastName": "Doe", "birthDate": "1980-03-15"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.Validation.Valid() {
		t.Fatal("expected validation failure")
	}
	if receipt.Submission != nil || receipt.Patient != nil {
		t.Fatal("invalid submission must not be stored")
	}
}

func TestSubmitCreatesPatientAndSignature(t *testing.T) {
	svc, formID := newIntakeService(t)
	ctx := context.Background()

	payload := signatureDataURL("stroke-data")
	receipt, err := svc.Submit(ctx, SubmitRequest{
		FormID:   formID,
		Language: i18n.German,
		Values: map[string]any{
			"firstName": "Erika",
			"lastName":  "Mustermann",
			"birthDate": "15.03.1980",
			"email":     "erika@example.com",
			"signature": payload,
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !receipt.PatientCreated {
		t.Fatal("expected a new patient record")
	}
	if receipt.Submission.Status != StatusSubmitted || receipt.Submission.FormVersion != 1 {
		t.Fatalf("submission = %+v", receipt.Submission)
	}
	if got := receipt.Submission.Values["signature"]; got != payload {
		t.Fatal("snapshot must keep the raw submitted values")
	}

	if len(receipt.Signatures) != 1 {
		t.Fatalf("signatures = %d, want 1", len(receipt.Signatures))
	}
	sig := receipt.Signatures[0]
	sum := sha256.Sum256([]byte("stroke-data"))
	if sig.Hash != hex.EncodeToString(sum[:]) {
		t.Fatalf("hash = %s", sig.Hash)
	}
	if sig.FieldName != "signature" || sig.SignerName != "Erika Mustermann" {
		t.Fatalf("signature = %+v", sig)
	}
}

func TestSubmitMergesExistingPatientByEmail(t *testing.T) {
	svc, formID := newIntakeService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "Erika", "lastName": "Mustermann", "birthDate": "15.03.1980",
		"email": "erika@example.com", "allergies": "pollen",
	}})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	second, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "Erika", "lastName": "Musterfrau", "birthDate": "15.03.1980",
		"email": "ERIKA@example.com", "allergies": "",
	}})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if second.PatientCreated {
		t.Fatal("second submission should merge, not create")
	}
	if second.Patient.ID != first.Patient.ID {
		t.Fatal("patient identity should be stable across submissions")
	}
	if second.Patient.LastName != "Musterfrau" {
		t.Fatal("non-blank incoming value should overwrite")
	}
	if second.Patient.Allergies != "pollen" {
		t.Fatal("blank incoming value must not erase stored data")
	}
}

func TestSubmitMatchesByNameAndBirthDateWithoutEmail(t *testing.T) {
	svc, formID := newIntakeService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "Max", "lastName": "Mustermann", "birthDate": "1975-01-02",
	}})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "max", "lastName": "MUSTERMANN", "birthDate": "02.01.1975",
	}})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second.PatientCreated || second.Patient.ID != first.Patient.ID {
		t.Fatal("name plus birth date should resolve to the same patient")
	}
}

func TestSubmissionCompletionAndFailure(t *testing.T) {
	svc, formID := newIntakeService(t)
	ctx := context.Background()

	receipt, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "Erika", "lastName": "Mustermann", "birthDate": "15.03.1980",
	}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	done, err := svc.MarkCompleted(ctx, receipt.Submission.ID, "documents/abc.pdf", "deadbeef")
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if done.Status != StatusCompleted || done.DocumentRef == "" || done.CompletedAt == nil {
		t.Fatalf("completed = %+v", done)
	}
	if _, err := svc.MarkCompleted(ctx, receipt.Submission.ID, "x", "y"); err == nil {
		t.Fatal("completing twice should be rejected")
	}
	if _, err := svc.MarkFailed(ctx, receipt.Submission.ID, "late failure"); err == nil {
		t.Fatal("failing a completed submission should be rejected")
	}
	sealed, _ := svc.Submission(ctx, receipt.Submission.ID)
	if sealed.Status != StatusCompleted || sealed.Error != "" {
		t.Fatalf("sealed = %+v, want untouched COMPLETED record", sealed)
	}

	other, err := svc.Submit(ctx, SubmitRequest{FormID: formID, Values: map[string]any{
		"firstName": "Max", "lastName": "Mustermann", "birthDate": "1975-01-02",
	}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	failed, err := svc.MarkFailed(ctx, other.Submission.ID, "rasterizer unavailable")
	if err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if failed.Status != StatusFailed || failed.DocumentRef != "" || failed.Error == "" {
		t.Fatalf("failed = %+v", failed)
	}
}

type submitTxMarker struct{}

// txSpySubmissions records submission writes that reach the repository
// outside of the context the transaction runner established.
type txSpySubmissions struct {
	SubmissionRepository
	outside int
}

func (r *txSpySubmissions) Create(ctx context.Context, s *Submission) error {
	if ctx.Value(submitTxMarker{}) == nil {
		r.outside++
	}
	return r.SubmissionRepository.Create(ctx, s)
}

type txSpySignatures struct {
	SignatureRepository
	outside int
}

func (r *txSpySignatures) Create(ctx context.Context, sig *Signature) error {
	if ctx.Value(submitTxMarker{}) == nil {
		r.outside++
	}
	return r.SignatureRepository.Create(ctx, sig)
}

func TestSubmitWritesShareOneTransaction(t *testing.T) {
	registry := fieldtypes.NewRegistry()
	formSvc := forms.NewService(forms.NewMemoryRepository(), forms.NewMemoryTranslationRepository(), registry)
	ctx := context.Background()

	def, err := formSvc.CreateDraft(ctx, forms.CreateInput{
		Name:     "Anamnesis",
		Category: forms.CategoryAnamnesis,
		Schema:   intakeSchema,
		Mappings: map[string]string{
			"firstName": "FIRST_NAME", "lastName": "LAST_NAME", "birthDate": "BIRTH_DATE",
			"signature": "SIGNATURE",
		},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := formSvc.Publish(ctx, def.ID, "admin", true); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	subs := &txSpySubmissions{SubmissionRepository: NewMemorySubmissionRepository()}
	sigs := &txSpySignatures{SignatureRepository: NewMemorySignatureRepository()}
	svc := NewService(
		formSvc,
		NewCanonicalizer(registry),
		NewMemoryPatientRepository(),
		subs,
		sigs,
		WithTxRunner(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(context.WithValue(ctx, submitTxMarker{}, true))
		}),
	)

	if _, err := svc.Submit(ctx, SubmitRequest{FormID: def.ID, Values: map[string]any{
		"firstName": "Erika", "lastName": "Mustermann", "birthDate": "15.03.1980",
		"signature": signatureDataURL("stroke-data"),
	}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if subs.outside != 0 || sigs.outside != 0 {
		t.Fatalf("writes outside the transaction runner: submissions=%d signatures=%d", subs.outside, sigs.outside)
	}
}

func TestExtractSignaturesWalksNestedValues(t *testing.T) {
	subID, patID := uuid.New(), uuid.New()
	now := time.Now()
	sigs := ExtractSignatures(subID, patID, "Erika Mustermann", now, map[string]any{
		"signature": signatureDataURL("a"),
		"consent": map[string]any{
			"witness": signatureDataURL("b"),
		},
		"notes":  "plain text",
		"broken": "data:image/png;base64,///not-base64///",
	})
	if len(sigs) != 2 {
		t.Fatalf("signatures = %d, want 2", len(sigs))
	}
	fields := map[string]bool{}
	for _, sig := range sigs {
		fields[sig.FieldName] = true
		if len(sig.Bytes) == 0 || sig.Hash == "" {
			t.Fatalf("signature %q missing payload", sig.FieldName)
		}
	}
	if !fields["signature"] || !fields["consent.witness"] {
		t.Fatalf("fields = %v", fields)
	}
}
