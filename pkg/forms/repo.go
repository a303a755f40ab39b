package forms

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
)

// Repository persists form definitions. Implementations must return
// ErrNotFound for unknown IDs.
type Repository interface {
	Create(ctx context.Context, def *FormDefinition) error
	Update(ctx context.Context, def *FormDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*FormDefinition, error)
	ByCategory(ctx context.Context, category Category) ([]*FormDefinition, error)
	ByStatus(ctx context.Context, status Status) ([]*FormDefinition, error)
	All(ctx context.Context) ([]*FormDefinition, error)

	// ClearDefault unsets the default flag on every definition in the
	// category. Paired with a subsequent Update it keeps the one-default
	// invariant; SQL implementations run both inside one transaction.
	ClearDefault(ctx context.Context, category Category) error

	// ClearActive unsets the active flag on every definition in the category.
	ClearActive(ctx context.Context, category Category) error
}

// TranslationRepository persists per-language bundles. At most one
// translation per (form, language) pair.
type TranslationRepository interface {
	Upsert(ctx context.Context, tr *Translation) error
	Delete(ctx context.Context, formID uuid.UUID, lang i18n.Language) error
	ByForm(ctx context.Context, formID uuid.UUID) ([]*Translation, error)
	ByFormAndLanguage(ctx context.Context, formID uuid.UUID, lang i18n.Language) (*Translation, error)
	DeleteByForm(ctx context.Context, formID uuid.UUID) error
}
