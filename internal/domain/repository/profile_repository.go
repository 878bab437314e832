package repository

import (
	"context"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// PatientRepository puerto de persistencia para perfiles de paciente.
type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, id string) (*entity.Patient, error)
	// GetByIDForUpdate bloquea la fila (SELECT ... FOR UPDATE); solo dentro de una transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*entity.Patient, error)
	GetByIdentityID(ctx context.Context, identityID string) (*entity.Patient, error)
	// LinkIdentity asigna identity_id solo si estaba vacío; si no, domain.ErrAccountAlreadyExists.
	LinkIdentity(ctx context.Context, patientID, identityID string) error
}

// StaffRepository puerto de persistencia para perfiles de personal.
type StaffRepository interface {
	Create(ctx context.Context, staff *entity.Staff) error
	GetByIdentityID(ctx context.Context, identityID string) (*entity.Staff, error)
}
