package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/intake"
)

// SignatureWindow bounds which of a patient's signatures attach to a
// document: captured no more than this long before or after the submission.
const SignatureWindow = 15 * time.Minute

// Rasterizer turns document markup into the final artifact bytes, typically
// a PDF. Implementations live outside this module.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string) ([]byte, error)
}

// Store persists rendered artifacts and returns a stable reference.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Service renders and seals submission documents.
type Service struct {
	intake   *intake.Service
	forms    *forms.Service
	renderer *Renderer
	raster   Rasterizer
	store    Store
	logger   zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService wires a Service.
func NewService(intakeSvc *intake.Service, formSvc *forms.Service, renderer *Renderer, raster Rasterizer, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		intake:   intakeSvc,
		forms:    formSvc,
		renderer: renderer,
		raster:   raster,
		store:    store,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render builds, rasterizes, and seals the document for a submission. On
// success the submission transitions to COMPLETED with the artifact
// reference and content hash; on rasterizer or storage failure it
// transitions to FAILED with no artifact attached.
func (s *Service) Render(ctx context.Context, submissionID uuid.UUID) (*intake.Submission, error) {
	sub, err := s.intake.Submission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	def, err := s.forms.ByID(ctx, sub.FormID)
	if err != nil {
		return nil, err
	}
	patient, err := s.intake.Patient(ctx, sub.PatientID)
	if err != nil {
		return nil, err
	}
	bundle, err := s.forms.BundleOrEmpty(ctx, def.ID, sub.Language)
	if err != nil {
		return nil, err
	}
	signatures, err := s.intake.SignaturesAround(ctx, patient.ID, sub.SubmittedAt, SignatureWindow)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Build(Input{
		Definition: def,
		Submission: sub,
		Patient:    patient,
		Bundle:     bundle,
		Language:   sub.Language,
		Signatures: signatures,
	})
	if err != nil {
		return s.fail(ctx, submissionID, err)
	}
	markup := s.renderer.Markup(doc)

	data, err := s.raster.Rasterize(ctx, markup)
	if err != nil {
		return s.fail(ctx, submissionID, fmt.Errorf("rasterize: %w", err))
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	ref, err := s.store.Save(ctx, submissionID.String()+".pdf", data)
	if err != nil {
		return s.fail(ctx, submissionID, fmt.Errorf("store artifact: %w", err))
	}

	sealed, err := s.intake.MarkCompleted(ctx, submissionID, ref, hash)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("submission_id", submissionID.String()).
		Str("document_ref", ref).
		Str("hash", hash).
		Msg("document sealed")
	return sealed, nil
}

func (s *Service) fail(ctx context.Context, submissionID uuid.UUID, cause error) (*intake.Submission, error) {
	if _, markErr := s.intake.MarkFailed(ctx, submissionID, cause.Error()); markErr != nil {
		return nil, fmt.Errorf("document: %w (and marking failed: %v)", cause, markErr)
	}
	return nil, fmt.Errorf("document: %w", cause)
}

// DirStore writes artifacts into a directory on disk.
type DirStore struct {
	Dir string
}

// Save writes data under the store directory and returns the file path.
func (d DirStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
