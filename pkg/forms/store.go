package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/fieldtypes"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/schema"
)

// TxRunner executes fn atomically. The zero configuration calls fn directly,
// which suits the in-memory repositories; Postgres deployments supply a
// runner that opens one transaction around every write fn performs.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service applies lifecycle rules on top of a Repository. All content
// mutation is restricted to DRAFT definitions; PUBLISHED ones only change
// their activation flags. Clear-then-set sequences (default, activation,
// publish) run through the configured TxRunner so no peer is ever left
// cleared without its replacement committed.
type Service struct {
	repo         Repository
	translations TranslationRepository
	registry     *fieldtypes.Registry
	tx           TxRunner
	logger       zerolog.Logger
	now          func() time.Time
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

// WithTxRunner supplies the transaction wrapper for multi-write operations.
func WithTxRunner(tx TxRunner) ServiceOption {
	return func(s *Service) { s.tx = tx }
}

// NewService wires a Service. The registry is consulted at publish time to
// ensure required field types are mapped.
func NewService(repo Repository, translations TranslationRepository, registry *fieldtypes.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		repo:         repo,
		translations: translations,
		registry:     registry,
		tx:           func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the authorable parts of a definition.
type CreateInput struct {
	Name     string
	Category Category
	Schema   schema.Document
	Layout   layout.Layout
	Mappings map[string]string
	Default  bool
}

// CreateDraft stores a new version-1 DRAFT definition. When Default is set
// the previous default in the category is cleared first.
func (s *Service) CreateDraft(ctx context.Context, in CreateInput) (*FormDefinition, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("forms: definition name is required")
	}
	if in.Schema.IsZero() {
		return nil, fmt.Errorf("forms: definition schema is required")
	}

	now := s.now().UTC()
	def := &FormDefinition{
		ID:        uuid.New(),
		Name:      in.Name,
		Category:  in.Category,
		Version:   1,
		Status:    StatusDraft,
		Default:   in.Default,
		Schema:    in.Schema,
		Layout:    in.Layout,
		Mappings:  in.Mappings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if def.Category == "" {
		def.Category = CategoryCustom
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if def.Default {
			if err := s.repo.ClearDefault(ctx, def.Category); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("form_id", def.ID.String()).Str("name", def.Name).Msg("draft created")
	return def, nil
}

// UpdateInput carries draft edits. Nil/zero members leave the current value
// untouched.
type UpdateInput struct {
	Name     string
	Schema   schema.Document
	Layout   *layout.Layout
	Mappings map[string]string
}

// UpdateDraft edits a DRAFT definition in place.
func (s *Service) UpdateDraft(ctx context.Context, id uuid.UUID, in UpdateInput) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !def.Editable() {
		return nil, &StateError{Op: "update", Status: def.Status, Reason: "only drafts are editable"}
	}

	if in.Name != "" {
		def.Name = in.Name
	}
	if !in.Schema.IsZero() {
		def.Schema = in.Schema
	}
	if in.Layout != nil {
		def.Layout = *in.Layout
	}
	if in.Mappings != nil {
		def.Mappings = in.Mappings
	}
	def.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// NewDraftVersion copies a PUBLISHED or ARCHIVED definition into a fresh
// DRAFT with an incremented version number, carrying translations over.
func (s *Service) NewDraftVersion(ctx context.Context, id uuid.UUID) (*FormDefinition, error) {
	src, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if src.Status == StatusDraft {
		return nil, &StateError{Op: "version", Status: src.Status, Reason: "definition is already a draft"}
	}

	now := s.now().UTC()
	next := *src
	next.ID = uuid.New()
	next.Version = src.Version + 1
	next.Status = StatusDraft
	next.Active = false
	next.Default = false
	next.PublishedAt = nil
	next.PublishedBy = ""
	next.CreatedAt = now
	next.UpdatedAt = now

	existing, err := s.translations.ByForm(ctx, src.ID)
	if err != nil {
		return nil, err
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, &next); err != nil {
			return err
		}
		for _, tr := range existing {
			copied := *tr
			copied.ID = uuid.New()
			copied.FormID = next.ID
			copied.CreatedAt = now
			copied.UpdatedAt = now
			if err := s.translations.Upsert(ctx, &copied); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("form_id", next.ID.String()).Int("version", next.Version).Msg("new draft version")
	return &next, nil
}

// DeleteDraft removes a DRAFT definition and its translations.
func (s *Service) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !def.Editable() {
		return &StateError{Op: "delete", Status: def.Status, Reason: "only drafts may be deleted"}
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.translations.DeleteByForm(ctx, id)
	})
}

// Publish freezes a DRAFT definition. Every required field type in the
// registry must be covered by the definition's mappings; otherwise a
// PublishError listing the gaps is returned. With activate set the newly
// published definition becomes the single active one in its category.
func (s *Service) Publish(ctx context.Context, id uuid.UUID, by string, activate bool) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def.Status != StatusDraft {
		return nil, &StateError{Op: "publish", Status: def.Status, Reason: "only drafts can be published"}
	}

	mapped := def.MappedFieldTypes()
	var missing []MissingFieldType
	for _, ft := range s.registry.ListRequired() {
		if !mapped[ft.Key] {
			missing = append(missing, MissingFieldType{Key: ft.Key, CanonicalName: ft.CanonicalName})
		}
	}
	if len(missing) > 0 {
		return nil, &PublishError{Missing: missing}
	}

	now := s.now().UTC()
	def.Status = StatusPublished
	def.PublishedAt = &now
	def.PublishedBy = by
	def.UpdatedAt = now

	err = s.tx(ctx, func(ctx context.Context) error {
		if activate {
			if err := s.repo.ClearActive(ctx, def.Category); err != nil {
				return err
			}
			def.Active = true
		}
		return s.repo.Update(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("form_id", def.ID.String()).
		Str("published_by", by).
		Bool("active", def.Active).
		Msg("definition published")
	return def, nil
}

// Archive retires a definition from any lifecycle state. Archived
// definitions lose their active and default flags and can no longer be
// served to patients.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Status = StatusArchived
	def.Active = false
	def.Default = false
	def.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Activate marks a PUBLISHED definition as servable. With deactivateOthers
// it becomes the only active definition in its category.
func (s *Service) Activate(ctx context.Context, id uuid.UUID, deactivateOthers bool) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def.Status != StatusPublished {
		return nil, &StateError{Op: "activate", Status: def.Status, Reason: "only published definitions can be active"}
	}
	def.Active = true
	def.UpdatedAt = s.now().UTC()
	err = s.tx(ctx, func(ctx context.Context) error {
		if deactivateOthers {
			if err := s.repo.ClearActive(ctx, def.Category); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// Deactivate clears the active flag.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Active = false
	def.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// SetDefault makes the definition the single default of its category.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) (*FormDefinition, error) {
	def, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Default = true
	def.UpdatedAt = s.now().UTC()
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.ClearDefault(ctx, def.Category); err != nil {
			return err
		}
		return s.repo.Update(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

// ByID loads one definition.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (*FormDefinition, error) {
	return s.repo.ByID(ctx, id)
}

// ByCategory lists a category newest-first.
func (s *Service) ByCategory(ctx context.Context, category Category) ([]*FormDefinition, error) {
	return s.repo.ByCategory(ctx, category)
}

// ByStatus lists one lifecycle state newest-first.
func (s *Service) ByStatus(ctx context.Context, status Status) ([]*FormDefinition, error) {
	return s.repo.ByStatus(ctx, status)
}

// AllPublished lists every PUBLISHED definition.
func (s *Service) AllPublished(ctx context.Context) ([]*FormDefinition, error) {
	return s.repo.ByStatus(ctx, StatusPublished)
}

// ActiveForCategory returns the active PUBLISHED definition in the category,
// or ErrNotFound when none is active. Should more than one be active the
// most recently published wins.
func (s *Service) ActiveForCategory(ctx context.Context, category Category) (*FormDefinition, error) {
	defs, err := s.repo.ByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	var newest *FormDefinition
	for _, def := range defs {
		if def.Status != StatusPublished || !def.Active {
			continue
		}
		if newest == nil || publishedAfter(def, newest) {
			newest = def
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	return newest, nil
}

func publishedAfter(a, b *FormDefinition) bool {
	if a.PublishedAt == nil {
		return false
	}
	if b.PublishedAt == nil {
		return true
	}
	return a.PublishedAt.After(*b.PublishedAt)
}

// DefaultForCategory returns the category's default definition, or
// ErrNotFound when none is marked default.
func (s *Service) DefaultForCategory(ctx context.Context, category Category) (*FormDefinition, error) {
	defs, err := s.repo.ByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if def.Default {
			return def, nil
		}
	}
	return nil, ErrNotFound
}
