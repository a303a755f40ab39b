package intake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryPatientRepository is an in-memory PatientRepository.
type MemoryPatientRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
}

// NewMemoryPatientRepository builds an empty repository.
func NewMemoryPatientRepository() *MemoryPatientRepository {
	return &MemoryPatientRepository{patients: make(map[uuid.UUID]Patient)}
}

func (r *MemoryPatientRepository) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = *p
	return nil
}

func (r *MemoryPatientRepository) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return ErrNotFound
	}
	r.patients[p.ID] = *p
	return nil
}

func (r *MemoryPatientRepository) ByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryPatientRepository) ByEmail(_ context.Context, email string) ([]*Patient, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Patient
	for _, p := range r.patients {
		if strings.ToLower(p.Email) == email {
			copied := p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPatientRepository) ByNameAndBirthDate(_ context.Context, firstName, lastName string, birthDate time.Time) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if strings.EqualFold(p.FirstName, firstName) &&
			strings.EqualFold(p.LastName, lastName) &&
			sameDay(p.BirthDate, birthDate) {
			copied := p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MemorySubmissionRepository is an in-memory SubmissionRepository.
type MemorySubmissionRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Submission
}

// NewMemorySubmissionRepository builds an empty repository.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{entries: make(map[uuid.UUID]Submission)}
}

func (r *MemorySubmissionRepository) Create(_ context.Context, s *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID] = *s
	return nil
}

func (r *MemorySubmissionRepository) Update(_ context.Context, s *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[s.ID]; !ok {
		return ErrNotFound
	}
	r.entries[s.ID] = *s
	return nil
}

func (r *MemorySubmissionRepository) ByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySubmissionRepository) ByPatient(_ context.Context, patientID uuid.UUID) ([]*Submission, error) {
	return r.filter(func(s Submission) bool { return s.PatientID == patientID }), nil
}

func (r *MemorySubmissionRepository) ByForm(_ context.Context, formID uuid.UUID) ([]*Submission, error) {
	return r.filter(func(s Submission) bool { return s.FormID == formID }), nil
}

func (r *MemorySubmissionRepository) filter(keep func(Submission) bool) []*Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Submission
	for _, s := range r.entries {
		if keep(s) {
			copied := s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

// MemorySignatureRepository is an in-memory SignatureRepository.
type MemorySignatureRepository struct {
	mu      sync.RWMutex
	entries []Signature
}

// NewMemorySignatureRepository builds an empty repository.
func NewMemorySignatureRepository() *MemorySignatureRepository {
	return &MemorySignatureRepository{}
}

func (r *MemorySignatureRepository) Create(_ context.Context, sig *Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *sig)
	return nil
}

func (r *MemorySignatureRepository) BySubmission(_ context.Context, submissionID uuid.UUID) ([]*Signature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Signature
	for _, sig := range r.entries {
		if sig.SubmissionID == submissionID {
			copied := sig
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *MemorySignatureRepository) ByPatientWindow(_ context.Context, patientID uuid.UUID, from, to time.Time) ([]*Signature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Signature
	for _, sig := range r.entries {
		if sig.PatientID != patientID {
			continue
		}
		if sig.SignedAt.Before(from) || sig.SignedAt.After(to) {
			continue
		}
		copied := sig
		out = append(out, &copied)
	}
	return out, nil
}
