package forms

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
)

// MemoryRepository is an in-memory Repository for tests and single-process
// deployments.
type MemoryRepository struct {
	mu   sync.RWMutex
	defs map[uuid.UUID]FormDefinition
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{defs: make(map[uuid.UUID]FormDefinition)}
}

func (r *MemoryRepository) Create(_ context.Context, def *FormDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = *def
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, def *FormDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.ID]; !ok {
		return ErrNotFound
	}
	r.defs[def.ID] = *def
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[id]; !ok {
		return ErrNotFound
	}
	delete(r.defs, id)
	return nil
}

func (r *MemoryRepository) ByID(_ context.Context, id uuid.UUID) (*FormDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &def, nil
}

func (r *MemoryRepository) ByCategory(_ context.Context, category Category) ([]*FormDefinition, error) {
	return r.filter(func(d FormDefinition) bool { return d.Category == category }), nil
}

func (r *MemoryRepository) ByStatus(_ context.Context, status Status) ([]*FormDefinition, error) {
	return r.filter(func(d FormDefinition) bool { return d.Status == status }), nil
}

func (r *MemoryRepository) All(_ context.Context) ([]*FormDefinition, error) {
	return r.filter(func(FormDefinition) bool { return true }), nil
}

func (r *MemoryRepository) ClearDefault(_ context.Context, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, def := range r.defs {
		if def.Category == category && def.Default {
			def.Default = false
			r.defs[id] = def
		}
	}
	return nil
}

func (r *MemoryRepository) ClearActive(_ context.Context, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, def := range r.defs {
		if def.Category == category && def.Active {
			def.Active = false
			r.defs[id] = def
		}
	}
	return nil
}

// filter returns matching definitions newest-first by creation time.
func (r *MemoryRepository) filter(keep func(FormDefinition) bool) []*FormDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*FormDefinition
	for _, def := range r.defs {
		if keep(def) {
			copied := def
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// MemoryTranslationRepository is an in-memory TranslationRepository.
type MemoryTranslationRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]map[i18n.Language]Translation
}

// NewMemoryTranslationRepository builds an empty translation repository.
func NewMemoryTranslationRepository() *MemoryTranslationRepository {
	return &MemoryTranslationRepository{entries: make(map[uuid.UUID]map[i18n.Language]Translation)}
}

func (r *MemoryTranslationRepository) Upsert(_ context.Context, tr *Translation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byLang, ok := r.entries[tr.FormID]
	if !ok {
		byLang = make(map[i18n.Language]Translation)
		r.entries[tr.FormID] = byLang
	}
	byLang[tr.Language] = *tr
	return nil
}

func (r *MemoryTranslationRepository) Delete(_ context.Context, formID uuid.UUID, lang i18n.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byLang := r.entries[formID]
	if _, ok := byLang[lang]; !ok {
		return ErrNotFound
	}
	delete(byLang, lang)
	return nil
}

func (r *MemoryTranslationRepository) ByForm(_ context.Context, formID uuid.UUID) ([]*Translation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Translation
	for _, tr := range r.entries[formID] {
		copied := tr
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out, nil
}

func (r *MemoryTranslationRepository) ByFormAndLanguage(_ context.Context, formID uuid.UUID, lang i18n.Language) (*Translation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.entries[formID][lang]
	if !ok {
		return nil, ErrNotFound
	}
	return &tr, nil
}

func (r *MemoryTranslationRepository) DeleteByForm(_ context.Context, formID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, formID)
	return nil
}
