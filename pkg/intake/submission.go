package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
)

// Status tracks a submission from receipt to sealed document.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Submission is one received intake form. Values is the verbatim snapshot of
// what the patient sent; canonicalization never mutates it.
type Submission struct {
	ID          uuid.UUID      `json:"id"`
	FormID      uuid.UUID      `json:"formId"`
	FormVersion int            `json:"formVersion"`
	PatientID   uuid.UUID      `json:"patientId"`
	Language    i18n.Language  `json:"language"`
	Values      map[string]any `json:"values"`
	Status      Status         `json:"status"`

	// DocumentRef and DocumentHash are set when the rendered document is
	// sealed; Error records why a FAILED submission produced none.
	DocumentRef  string `json:"documentRef,omitempty"`
	DocumentHash string `json:"documentHash,omitempty"`
	Error        string `json:"error,omitempty"`

	SubmittedAt time.Time  `json:"submittedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Signature is a captured signature image extracted from a submission.
type Signature struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submissionId"`
	PatientID    uuid.UUID `json:"patientId"`
	FieldName    string    `json:"fieldName"`
	Bytes        []byte    `json:"-"`
	Hash         string    `json:"hash"`
	SignerName   string    `json:"signerName,omitempty"`
	SignedAt     time.Time `json:"signedAt"`
}
