// Package intakepg provides PostgreSQL-backed repositories for patients,
// submissions and signatures using pgx.
package intakepg

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-intake/internal/db"
	"github.com/goliatone/go-intake/pkg/intake"
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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// PatientRepository is the pgx implementation of intake.PatientRepository.
type PatientRepository struct{ pool *pgxpool.Pool }

// NewPatientRepository wraps a pool.
func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

const patientCols = `id, first_name, last_name, birth_date, gender, email, phone,
	street, postal_code, city, country, insurance_provider, insurance_number,
	allergies, medications, conditions, privacy_consent, custom, created_at, updated_at`

func scanPatient(row pgx.Row) (*intake.Patient, error) {
	var (
		p         intake.Patient
		rawCustom []byte
	)
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender,
		&p.Email, &p.Phone, &p.Street, &p.PostalCode, &p.City, &p.Country,
		&p.InsuranceProvider, &p.InsuranceNumber,
		&p.Allergies, &p.Medications, &p.Conditions,
		&p.PrivacyConsent, &rawCustom, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, intake.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(rawCustom) > 0 {
		if err := json.Unmarshal(rawCustom, &p.Custom); err != nil {
			return nil, fmt.Errorf("intakepg: corrupt custom bag for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func patientArgs(p *intake.Patient) ([]any, error) {
	rawCustom, err := json.Marshal(p.Custom)
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Email, p.Phone,
		p.Street, p.PostalCode, p.City, p.Country, p.InsuranceProvider, p.InsuranceNumber,
		p.Allergies, p.Medications, p.Conditions, p.PrivacyConsent, rawCustom,
		p.CreatedAt, p.UpdatedAt,
	}, nil
}

func (r *PatientRepository) Create(ctx context.Context, p *intake.Patient) error {
	args, err := patientArgs(p)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient (`+patientCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`, args...)
	return err
}

func (r *PatientRepository) Update(ctx context.Context, p *intake.Patient) error {
	args, err := patientArgs(p)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, birth_date=$4, gender=$5,
			email=$6, phone=$7, street=$8, postal_code=$9, city=$10, country=$11,
			insurance_provider=$12, insurance_number=$13, allergies=$14,
			medications=$15, conditions=$16, privacy_consent=$17, custom=$18,
			created_at=$19, updated_at=$20
		WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return intake.ErrNotFound
	}
	return nil
}

func (r *PatientRepository) ByID(ctx context.Context, id uuid.UUID) (*intake.Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *PatientRepository) ByEmail(ctx context.Context, email string) ([]*intake.Patient, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+patientCols+`
		FROM patient WHERE lower(email) = lower($1) ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*intake.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PatientRepository) ByNameAndBirthDate(ctx context.Context, firstName, lastName string, birthDate time.Time) (*intake.Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientCols+`
		FROM patient
		WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
			AND birth_date::date = $3::date
		ORDER BY created_at DESC
		LIMIT 1`, firstName, lastName, birthDate))
}

// SubmissionRepository is the pgx implementation of
// intake.SubmissionRepository.
type SubmissionRepository struct{ pool *pgxpool.Pool }

// NewSubmissionRepository wraps a pool.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionCols = `id, form_id, form_version, patient_id, language, payload,
	status, document_ref, document_hash, error, submitted_at, completed_at`

func scanSubmission(row pgx.Row) (*intake.Submission, error) {
	var (
		s         intake.Submission
		rawValues []byte
	)
	err := row.Scan(&s.ID, &s.FormID, &s.FormVersion, &s.PatientID, &s.Language,
		&rawValues, &s.Status, &s.DocumentRef, &s.DocumentHash, &s.Error,
		&s.SubmittedAt, &s.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, intake.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(rawValues) > 0 {
		if err := json.Unmarshal(rawValues, &s.Values); err != nil {
			return nil, fmt.Errorf("intakepg: corrupt values for %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func submissionArgs(s *intake.Submission) ([]any, error) {
	rawValues, err := json.Marshal(s.Values)
	if err != nil {
		return nil, err
	}
	return []any{
		s.ID, s.FormID, s.FormVersion, s.PatientID, s.Language, rawValues,
		s.Status, s.DocumentRef, s.DocumentHash, s.Error, s.SubmittedAt, s.CompletedAt,
	}, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s *intake.Submission) error {
	args, err := submissionArgs(s)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO submission (`+submissionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`, args...)
	return err
}

func (r *SubmissionRepository) Update(ctx context.Context, s *intake.Submission) error {
	args, err := submissionArgs(s)
	if err != nil {
		return err
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE submission SET form_id=$2, form_version=$3, patient_id=$4,
			language=$5, payload=$6, status=$7, document_ref=$8, document_hash=$9,
			error=$10, submitted_at=$11, completed_at=$12
		WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return intake.ErrNotFound
	}
	return nil
}

func (r *SubmissionRepository) ByID(ctx context.Context, id uuid.UUID) (*intake.Submission, error) {
	return scanSubmission(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+submissionCols+` FROM submission WHERE id = $1`, id))
}

func (r *SubmissionRepository) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*intake.Submission, error) {
	return r.list(ctx, `SELECT `+submissionCols+` FROM submission
		WHERE patient_id = $1 ORDER BY submitted_at DESC`, patientID)
}

func (r *SubmissionRepository) ByForm(ctx context.Context, formID uuid.UUID) ([]*intake.Submission, error) {
	return r.list(ctx, `SELECT `+submissionCols+` FROM submission
		WHERE form_id = $1 ORDER BY submitted_at DESC`, formID)
}

func (r *SubmissionRepository) list(ctx context.Context, sql string, args ...any) ([]*intake.Submission, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*intake.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SignatureRepository is the pgx implementation of
// intake.SignatureRepository.
type SignatureRepository struct{ pool *pgxpool.Pool }

// NewSignatureRepository wraps a pool.
func NewSignatureRepository(pool *pgxpool.Pool) *SignatureRepository {
	return &SignatureRepository{pool: pool}
}

const signatureCols = `id, submission_id, patient_id, field_name, image, hash,
	signer_name, signed_at`

func scanSignature(row pgx.Row) (*intake.Signature, error) {
	var sig intake.Signature
	err := row.Scan(&sig.ID, &sig.SubmissionID, &sig.PatientID, &sig.FieldName,
		&sig.Bytes, &sig.Hash, &sig.SignerName, &sig.SignedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, intake.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (r *SignatureRepository) Create(ctx context.Context, sig *intake.Signature) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO signature (`+signatureCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sig.ID, sig.SubmissionID, sig.PatientID, sig.FieldName,
		sig.Bytes, sig.Hash, sig.SignerName, sig.SignedAt)
	return err
}

func (r *SignatureRepository) BySubmission(ctx context.Context, submissionID uuid.UUID) ([]*intake.Signature, error) {
	return r.list(ctx, `SELECT `+signatureCols+` FROM signature
		WHERE submission_id = $1 ORDER BY signed_at`, submissionID)
}

func (r *SignatureRepository) ByPatientWindow(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*intake.Signature, error) {
	return r.list(ctx, `SELECT `+signatureCols+` FROM signature
		WHERE patient_id = $1 AND signed_at BETWEEN $2 AND $3
		ORDER BY signed_at`, patientID, from, to)
}

func (r *SignatureRepository) list(ctx context.Context, sql string, args ...any) ([]*intake.Signature, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*intake.Signature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

var _ intake.PatientRepository = (*PatientRepository)(nil)
var _ intake.SubmissionRepository = (*SubmissionRepository)(nil)
var _ intake.SignatureRepository = (*SignatureRepository)(nil)
