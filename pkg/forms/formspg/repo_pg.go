// Package formspg provides PostgreSQL-backed repositories for form
// definitions and translations using pgx.
package formspg

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-intake/internal/db"
	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/i18n"
	"github.com/goliatone/go-intake/pkg/schema"
)

//go:embed schema.sql
var ddl string

// Migrate applies the package's table definitions.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, ddl)
	return err
}

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the pgx implementation of forms.Repository.
type Repository struct{ pool *pgxpool.Pool }

// NewRepository wraps a pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const formCols = `id, name, category, version, status, active, is_default,
	schema, layout, mappings, published_at, published_by, created_at, updated_at`

func scanForm(row pgx.Row) (*forms.FormDefinition, error) {
	var (
		def         forms.FormDefinition
		rawSchema   []byte
		rawLayout   []byte
		rawMappings []byte
	)
	err := row.Scan(&def.ID, &def.Name, &def.Category, &def.Version, &def.Status,
		&def.Active, &def.Default, &rawSchema, &rawLayout, &rawMappings,
		&def.PublishedAt, &def.PublishedBy, &def.CreatedAt, &def.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, forms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if def.Schema, err = schema.Parse(rawSchema); err != nil {
		return nil, fmt.Errorf("formspg: corrupt schema for %s: %w", def.ID, err)
	}
	if len(rawLayout) > 0 {
		if err := json.Unmarshal(rawLayout, &def.Layout); err != nil {
			return nil, fmt.Errorf("formspg: corrupt layout for %s: %w", def.ID, err)
		}
	}
	if len(rawMappings) > 0 {
		if err := json.Unmarshal(rawMappings, &def.Mappings); err != nil {
			return nil, fmt.Errorf("formspg: corrupt mappings for %s: %w", def.ID, err)
		}
	}
	return &def, nil
}

func formArgs(def *forms.FormDefinition) ([]any, error) {
	rawLayout, err := json.Marshal(def.Layout)
	if err != nil {
		return nil, err
	}
	rawMappings, err := json.Marshal(def.Mappings)
	if err != nil {
		return nil, err
	}
	return []any{
		def.ID, def.Name, def.Category, def.Version, def.Status, def.Active, def.Default,
		def.Schema.Raw(), rawLayout, rawMappings,
		def.PublishedAt, def.PublishedBy, def.CreatedAt, def.UpdatedAt,
	}, nil
}

func (r *Repository) Create(ctx context.Context, def *forms.FormDefinition) error {
	args, err := formArgs(def)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO form_definition (`+formCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`, args...)
	return err
}

func (r *Repository) Update(ctx context.Context, def *forms.FormDefinition) error {
	args, err := formArgs(def)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE form_definition SET name=$2, category=$3, version=$4, status=$5,
			active=$6, is_default=$7, schema=$8, layout=$9, mappings=$10,
			published_at=$11, published_by=$12, created_at=$13, updated_at=$14
		WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return forms.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM form_definition WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return forms.ErrNotFound
	}
	return nil
}

func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*forms.FormDefinition, error) {
	return scanForm(r.conn(ctx).QueryRow(ctx,
		`SELECT `+formCols+` FROM form_definition WHERE id = $1`, id))
}

func (r *Repository) ByCategory(ctx context.Context, category forms.Category) ([]*forms.FormDefinition, error) {
	return r.list(ctx, `SELECT `+formCols+` FROM form_definition
		WHERE category = $1 ORDER BY created_at DESC`, category)
}

func (r *Repository) ByStatus(ctx context.Context, status forms.Status) ([]*forms.FormDefinition, error) {
	return r.list(ctx, `SELECT `+formCols+` FROM form_definition
		WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *Repository) All(ctx context.Context) ([]*forms.FormDefinition, error) {
	return r.list(ctx, `SELECT `+formCols+` FROM form_definition ORDER BY created_at DESC`)
}

func (r *Repository) ClearDefault(ctx context.Context, category forms.Category) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE form_definition SET is_default = FALSE WHERE category = $1 AND is_default`, category)
	return err
}

func (r *Repository) ClearActive(ctx context.Context, category forms.Category) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE form_definition SET active = FALSE WHERE category = $1 AND active`, category)
	return err
}

func (r *Repository) list(ctx context.Context, sql string, args ...any) ([]*forms.FormDefinition, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*forms.FormDefinition
	for rows.Next() {
		def, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

// TranslationRepository is the pgx implementation of
// forms.TranslationRepository.
type TranslationRepository struct{ pool *pgxpool.Pool }

// NewTranslationRepository wraps a pool.
func NewTranslationRepository(pool *pgxpool.Pool) *TranslationRepository {
	return &TranslationRepository{pool: pool}
}

func (r *TranslationRepository) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const translationCols = `id, form_id, language, bundle, created_at, updated_at`

func scanTranslation(row pgx.Row) (*forms.Translation, error) {
	var (
		tr        forms.Translation
		rawBundle []byte
	)
	err := row.Scan(&tr.ID, &tr.FormID, &tr.Language, &rawBundle, &tr.CreatedAt, &tr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, forms.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(rawBundle) > 0 {
		if err := json.Unmarshal(rawBundle, &tr.Bundle); err != nil {
			return nil, fmt.Errorf("formspg: corrupt bundle for %s: %w", tr.ID, err)
		}
	}
	return &tr, nil
}

func (r *TranslationRepository) Upsert(ctx context.Context, tr *forms.Translation) error {
	rawBundle, err := json.Marshal(tr.Bundle)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO form_translation (`+translationCols+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (form_id, language) DO UPDATE
			SET bundle = EXCLUDED.bundle, updated_at = EXCLUDED.updated_at`,
		tr.ID, tr.FormID, tr.Language, rawBundle, tr.CreatedAt, tr.UpdatedAt)
	return err
}

func (r *TranslationRepository) Delete(ctx context.Context, formID uuid.UUID, lang i18n.Language) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM form_translation WHERE form_id = $1 AND language = $2`, formID, lang)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return forms.ErrNotFound
	}
	return nil
}

func (r *TranslationRepository) ByForm(ctx context.Context, formID uuid.UUID) ([]*forms.Translation, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+translationCols+`
		FROM form_translation WHERE form_id = $1 ORDER BY language`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*forms.Translation
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (r *TranslationRepository) ByFormAndLanguage(ctx context.Context, formID uuid.UUID, lang i18n.Language) (*forms.Translation, error) {
	return scanTranslation(r.conn(ctx).QueryRow(ctx, `SELECT `+translationCols+`
		FROM form_translation WHERE form_id = $1 AND language = $2`, formID, lang))
}

func (r *TranslationRepository) DeleteByForm(ctx context.Context, formID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM form_translation WHERE form_id = $1`, formID)
	return err
}

var _ forms.Repository = (*Repository)(nil)
var _ forms.TranslationRepository = (*TranslationRepository)(nil)
