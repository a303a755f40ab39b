package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/i18n"
)

// AddTranslation attaches a language bundle to a definition. Bundles are
// sanitized before storage. Adding a second bundle for the same language is a
// conflict; use UpdateTranslation to replace one.
func (s *Service) AddTranslation(ctx context.Context, formID uuid.UUID, lang i18n.Language, bundle i18n.Bundle) (*Translation, error) {
	if !i18n.IsSupported(string(lang)) {
		return nil, fmt.Errorf("forms: unsupported language %q", lang)
	}
	if _, err := s.repo.ByID(ctx, formID); err != nil {
		return nil, err
	}
	if _, err := s.translations.ByFormAndLanguage(ctx, formID, lang); err == nil {
		return nil, &ConflictError{
			Resource: "translation",
			Detail:   fmt.Sprintf("form %s already has a %s bundle", formID, lang),
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	tr := &Translation{
		ID:        uuid.New(),
		FormID:    formID,
		Language:  lang,
		Bundle:    bundle.Sanitize(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.translations.Upsert(ctx, tr); err != nil {
		return nil, err
	}
	s.logger.Info().Str("form_id", formID.String()).Str("language", string(lang)).Msg("translation added")
	return tr, nil
}

// UpdateTranslation replaces an existing bundle.
func (s *Service) UpdateTranslation(ctx context.Context, formID uuid.UUID, lang i18n.Language, bundle i18n.Bundle) (*Translation, error) {
	tr, err := s.translations.ByFormAndLanguage(ctx, formID, lang)
	if err != nil {
		return nil, err
	}
	tr.Bundle = bundle.Sanitize()
	tr.UpdatedAt = s.now().UTC()
	if err := s.translations.Upsert(ctx, tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// RemoveTranslation drops one language bundle.
func (s *Service) RemoveTranslation(ctx context.Context, formID uuid.UUID, lang i18n.Language) error {
	return s.translations.Delete(ctx, formID, lang)
}

// Translations lists a definition's bundles ordered by language code.
func (s *Service) Translations(ctx context.Context, formID uuid.UUID) ([]*Translation, error) {
	return s.translations.ByForm(ctx, formID)
}

// TranslationFor returns the bundle for one language, or ErrNotFound.
func (s *Service) TranslationFor(ctx context.Context, formID uuid.UUID, lang i18n.Language) (*Translation, error) {
	return s.translations.ByFormAndLanguage(ctx, formID, lang)
}

// BundleOrEmpty resolves the bundle for a language, falling back to an empty
// bundle so rendering can proceed with schema-derived labels.
func (s *Service) BundleOrEmpty(ctx context.Context, formID uuid.UUID, lang i18n.Language) (i18n.Bundle, error) {
	tr, err := s.translations.ByFormAndLanguage(ctx, formID, lang)
	if errors.Is(err, ErrNotFound) {
		return i18n.Bundle{}, nil
	}
	if err != nil {
		return i18n.Bundle{}, err
	}
	return tr.Bundle, nil
}
