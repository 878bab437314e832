package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/clinica-portal/internal/domain"
)

// Querier lo que los repositorios necesitan de pgxpool.Pool o de pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Nombres de constraints definidos en las migraciones.
const (
	constraintIdentityEmail      = "identities_email_key"
	constraintCredentialProvider = "credentials_identity_provider_key"
	constraintPatientNationalID  = "patients_national_id_key"
	constraintPatientIdentity    = "patients_identity_id_key"
	constraintStaffIdentity      = "staff_identity_id_key"
	constraintStaffEmail         = "staff_email_key"

	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// uniqueConflict traduce la constraint única violada al error de dominio; nil si no es una violación conocida.
func uniqueConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintIdentityEmail, constraintStaffEmail:
		return domain.ErrEmailExists
	case constraintCredentialProvider:
		return domain.ErrCredentialExists
	case constraintPatientNationalID:
		return domain.ErrNationalIDExists
	case constraintPatientIdentity, constraintStaffIdentity:
		return domain.ErrAccountAlreadyExists
	default:
		return nil
	}
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
