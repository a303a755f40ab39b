package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PatientRepository persists patients. Implementations return ErrNotFound
// for unknown IDs; list queries return newest-first.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	ByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ByEmail(ctx context.Context, email string) ([]*Patient, error)
	ByNameAndBirthDate(ctx context.Context, firstName, lastName string, birthDate time.Time) (*Patient, error)
}

// SubmissionRepository persists submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	Update(ctx context.Context, s *Submission) error
	ByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Submission, error)
	ByForm(ctx context.Context, formID uuid.UUID) ([]*Submission, error)
}

// SignatureRepository persists extracted signatures.
type SignatureRepository interface {
	Create(ctx context.Context, sig *Signature) error
	BySubmission(ctx context.Context, submissionID uuid.UUID) ([]*Signature, error)
	// ByPatientWindow returns the patient's signatures captured between from
	// and to, inclusive.
	ByPatientWindow(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*Signature, error)
}
