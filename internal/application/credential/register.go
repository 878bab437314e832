package credential

import (
	"context"

	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/validation"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

// RegisterPatient auto-registro: perfil de paciente, identidad y credencial en una transacción.
// La contraseña la elige el paciente, por eso la identidad nace en NORMAL.
func (m *Manager) RegisterPatient(ctx context.Context, in dto.RegisterPatientRequest) (*dto.RegisteredPatient, error) {
	in.Email = entity.NormalizeEmail(in.Email)
	in.FullName = normalizeName(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	hash, err := m.hashChosen(in.Password)
	if err != nil {
		return nil, m.fail("register_patient", err)
	}

	email := in.Email
	if email == "" {
		email = entity.SyntheticPatientEmail(in.NationalID, m.opts.SyntheticEmailDomain)
	}

	now := m.now()
	identity := &entity.Identity{
		ID:        newID(),
		Name:      in.FullName,
		Email:     email,
		Role:      entity.RolePatient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	patient := &entity.Patient{
		ID:         newID(),
		FullName:   in.FullName,
		NationalID: in.NationalID,
		Email:      in.Email,
		Phone:      in.Phone,
		Status:     entity.ProfileStatusActive,
		IdentityID: &identity.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = m.tx.RunIdentity(ctx, func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		patientRepo repository.PatientRepository,
		_ repository.StaffRepository,
	) error {
		existing, err := patientRepo.GetByNationalID(ctx, in.NationalID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrNationalIDExists
		}
		if err := ensureEmailFree(ctx, identityRepo, email); err != nil {
			return err
		}
		if err := identityRepo.Create(ctx, identity); err != nil {
			return err
		}
		if err := credentialRepo.Create(ctx, newPasswordCredential(identity.ID, hash, now)); err != nil {
			return err
		}
		return patientRepo.Create(ctx, patient)
	})
	if err != nil {
		return nil, m.fail("register_patient", err)
	}

	m.log.Audit("patient_registered").
		Str("identity_id", identity.ID).
		Str("patient_id", patient.ID).
		Msg("paciente auto-registrado")

	return &dto.RegisteredPatient{
		Identity: toIdentityResponse(identity),
		Patient:  *toPatientResponse(patient),
	}, nil
}
