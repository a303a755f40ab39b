package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/validation"
)

// TxRunner executes fn atomically, mirroring the forms service wrapper. The
// default calls fn directly; Postgres deployments supply a transactional
// runner so a submission never lands without its patient and signatures.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service receives submissions end to end: validate, canonicalize, resolve
// the patient, persist the submission, and extract signatures.
type Service struct {
	forms       *forms.Service
	canon       *Canonicalizer
	validator   *validation.Engine
	patients    PatientRepository
	submissions SubmissionRepository
	signatures  SignatureRepository
	tx          TxRunner
	logger      zerolog.Logger
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithTxRunner supplies the transaction wrapper for submission writes.
func WithTxRunner(tx TxRunner) ServiceOption {
	return func(s *Service) { s.tx = tx }
}

// NewService wires a Service.
func NewService(formSvc *forms.Service, canon *Canonicalizer, patients PatientRepository, submissions SubmissionRepository, signatures SignatureRepository, opts ...ServiceOption) *Service {
	s := &Service{
		forms:       formSvc,
		canon:       canon,
		validator:   validation.New(),
		patients:    patients,
		submissions: submissions,
		signatures:  signatures,
		tx:          func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest is one incoming filled form.
type SubmitRequest struct {
	FormID   uuid.UUID      `json:"formId"`
	Language i18n.Language  `json:"language"`
	Values   map[string]any `json:"values"`
}

// Receipt reports what a submission produced. When Validation is invalid no
// submission was stored and the other fields are nil.
type Receipt struct {
	Validation *validation.Result
	Submission *Submission
	Patient    *Patient
	// PatientCreated is true when the submission produced a new patient
	// record instead of merging into an existing one.
	PatientCreated bool
	Signatures     []Signature
}

// Submit processes one filled form against its published definition.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	def, err := s.forms.ByID(ctx, req.FormID)
	if err != nil {
		return nil, err
	}
	if def.Status != forms.StatusPublished {
		return nil, &forms.StateError{Op: "submit against", Status: def.Status, Reason: "only published definitions accept submissions"}
	}

	result := s.validator.Validate(req.Values, def.Schema)
	if !result.Valid() {
		return &Receipt{Validation: result}, nil
	}

	incoming, err := s.canon.Canonicalize(def, req.Values)
	if err != nil {
		return nil, err
	}

	var (
		patient    *Patient
		created    bool
		submission *Submission
		extracted  []Signature
	)
	err = s.tx(ctx, func(ctx context.Context) error {
		patient, created, err = s.resolvePatient(ctx, incoming)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		submission = &Submission{
			ID:          uuid.New(),
			FormID:      def.ID,
			FormVersion: def.Version,
			PatientID:   patient.ID,
			Language:    req.Language,
			Values:      copyValues(req.Values),
			Status:      StatusSubmitted,
			SubmittedAt: now,
		}
		if err := s.submissions.Create(ctx, submission); err != nil {
			return err
		}

		extracted = ExtractSignatures(submission.ID, patient.ID, patient.FullName(), now, req.Values)
		for i := range extracted {
			if err := s.signatures.Create(ctx, &extracted[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID.String()).
		Str("form_id", def.ID.String()).
		Str("patient_id", patient.ID.String()).
		Bool("patient_created", created).
		Int("signatures", len(extracted)).
		Msg("submission received")

	return &Receipt{
		Validation:     result,
		Submission:     submission,
		Patient:        patient,
		PatientCreated: created,
		Signatures:     extracted,
	}, nil
}

// resolvePatient finds the patient a submission belongs to: by email first,
// then by name plus birth date, creating a new record when neither matches.
// Matches are merged latest-submission-wins.
func (s *Service) resolvePatient(ctx context.Context, incoming Patient) (*Patient, bool, error) {
	existing, err := s.findExisting(ctx, incoming)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := s.now().UTC()
	if existing == nil {
		incoming.ID = uuid.New()
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		if err := s.patients.Create(ctx, &incoming); err != nil {
			return nil, false, err
		}
		return &incoming, true, nil
	}

	existing.Merge(incoming)
	existing.UpdatedAt = now
	if err := s.patients.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Service) findExisting(ctx context.Context, incoming Patient) (*Patient, error) {
	if incoming.Email != "" {
		matches, err := s.patients.ByEmail(ctx, incoming.Email)
		if err != nil {
			return nil, err
		}
		if len(matches) > 1 {
			s.logger.Warn().
				Str("email", incoming.Email).
				Int("matches", len(matches)).
				Msg("multiple patients share an email, merging into newest")
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return s.patients.ByNameAndBirthDate(ctx, incoming.FirstName, incoming.LastName, incoming.BirthDate)
}

// MarkCompleted seals a submission after its document was rendered.
func (s *Service) MarkCompleted(ctx context.Context, submissionID uuid.UUID, documentRef, documentHash string) (*Submission, error) {
	sub, err := s.submissions.ByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusCompleted {
		return nil, fmt.Errorf("intake: submission %s is already completed", submissionID)
	}
	now := s.now().UTC()
	sub.Status = StatusCompleted
	sub.DocumentRef = documentRef
	sub.DocumentHash = documentHash
	sub.Error = ""
	sub.CompletedAt = &now
	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// MarkFailed records a document rendering failure. No artifact is attached.
// Completed submissions are sealed and stay untouched.
func (s *Service) MarkFailed(ctx context.Context, submissionID uuid.UUID, reason string) (*Submission, error) {
	sub, err := s.submissions.ByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusCompleted {
		return nil, fmt.Errorf("intake: submission %s is already completed", submissionID)
	}
	sub.Status = StatusFailed
	sub.Error = reason
	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Error().Str("submission_id", submissionID.String()).Str("reason", reason).Msg("submission failed")
	return sub, nil
}

// Submission loads one submission.
func (s *Service) Submission(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return s.submissions.ByID(ctx, id)
}

// Patient loads one patient.
func (s *Service) Patient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.ByID(ctx, id)
}

// PatientSubmissions lists a patient's submissions newest-first.
func (s *Service) PatientSubmissions(ctx context.Context, patientID uuid.UUID) ([]*Submission, error) {
	return s.submissions.ByPatient(ctx, patientID)
}

// SubmissionSignatures lists the signatures extracted from one submission.
func (s *Service) SubmissionSignatures(ctx context.Context, submissionID uuid.UUID) ([]*Signature, error) {
	return s.signatures.BySubmission(ctx, submissionID)
}

// SignaturesAround returns the patient's signatures captured within the
// given window on either side of at.
func (s *Service) SignaturesAround(ctx context.Context, patientID uuid.UUID, at time.Time, window time.Duration) ([]*Signature, error) {
	return s.signatures.ByPatientWindow(ctx, patientID, at.Add(-window), at.Add(window))
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
