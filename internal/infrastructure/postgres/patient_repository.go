package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var _ repository.PatientRepository = (*PatientRepo)(nil)

// PatientRepo perfiles de paciente sobre PostgreSQL.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador.
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

const patientColumns = `id, full_name, national_id, COALESCE(email, ''), COALESCE(phone, ''), status, identity_id, created_at, updated_at`

func (r *PatientRepo) Create(ctx context.Context, p *entity.Patient) error {
	query := `
		INSERT INTO patients (id, full_name, national_id, email, phone, status, identity_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.FullName, p.NationalID, p.Email, p.Phone, p.Status, p.IdentityID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PatientRepo) GetByID(ctx context.Context, id string) (*entity.Patient, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la fila del paciente durante la transacción.
func (r *PatientRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Patient, error) {
	return r.getOne(ctx, `WHERE id = $1 FOR UPDATE`, id)
}

func (r *PatientRepo) GetByNationalID(ctx context.Context, nationalID string) (*entity.Patient, error) {
	return r.getOne(ctx, `WHERE national_id = $1`, nationalID)
}

func (r *PatientRepo) GetByIdentityID(ctx context.Context, identityID string) (*entity.Patient, error) {
	return r.getOne(ctx, `WHERE identity_id = $1`, identityID)
}

// LinkIdentity asigna identity_id solo si aún es NULL; si otra tx ganó la carrera, 0 filas.
func (r *PatientRepo) LinkIdentity(ctx context.Context, patientID, identityID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE patients SET identity_id = $2, updated_at = now() WHERE id = $1 AND identity_id IS NULL`,
		patientID, identityID,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("link patient identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, patientID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrPatientNotFound
		}
		return domain.ErrAccountAlreadyExists
	}
	return nil
}

func (r *PatientRepo) getOne(ctx context.Context, where string, arg any) (*entity.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ` + where
	p, err := scanPatient(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func scanPatient(row pgx.Row) (*entity.Patient, error) {
	var p entity.Patient
	err := row.Scan(&p.ID, &p.FullName, &p.NationalID, &p.Email, &p.Phone, &p.Status, &p.IdentityID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
