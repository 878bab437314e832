package ports

import (
	"context"

	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

// IdentityTxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type IdentityTxRunner interface {
	RunIdentity(ctx context.Context, fn func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		patientRepo repository.PatientRepository,
		staffRepo repository.StaffRepository,
	) error) error
}
