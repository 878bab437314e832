package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var _ ports.IdentityTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunIdentity inicia una transacción, ejecuta fn con los repos de identidades atados a la tx
// y hace Commit o Rollback. Cualquier error de fn revierte todas las escrituras.
func (r *TxRunner) RunIdentity(ctx context.Context, fn func(
	identityRepo repository.IdentityRepository,
	credentialRepo repository.CredentialRepository,
	patientRepo repository.PatientRepository,
	staffRepo repository.StaffRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	identityRepo := NewIdentityRepository(tx)
	credentialRepo := NewCredentialRepository(tx)
	patientRepo := NewPatientRepository(tx)
	staffRepo := NewStaffRepository(tx)

	if err := fn(identityRepo, credentialRepo, patientRepo, staffRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
