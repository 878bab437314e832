package credential

import (
	"context"

	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/validation"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

// ProvisionStaff crea identidad, credencial y perfil de personal en una transacción.
// La contraseña temporal se devuelve una sola vez en Credentials; la identidad queda
// con MustChangePassword=true.
func (m *Manager) ProvisionStaff(ctx context.Context, in dto.ProvisionStaffRequest) (*dto.ProvisionedAccount, error) {
	in.Email = entity.NormalizeEmail(in.Email)
	in.FullName = normalizeName(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(in.Role)
	if err != nil || !role.IsStaffRole() {
		return nil, domain.ErrInvalidRole
	}

	plain, hash, err := m.temporaryCredential()
	if err != nil {
		return nil, m.fail("provision_staff", err)
	}

	now := m.now()
	identity := &entity.Identity{
		ID:                 newID(),
		Name:               in.FullName,
		Email:              in.Email,
		Role:               role,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	permissions := in.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	staff := &entity.Staff{
		ID:          newID(),
		FullName:    in.FullName,
		Email:       in.Email,
		Phone:       in.Phone,
		Role:        role,
		Permissions: permissions,
		Status:      entity.ProfileStatusActive,
		IdentityID:  identity.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = m.tx.RunIdentity(ctx, func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		_ repository.PatientRepository,
		staffRepo repository.StaffRepository,
	) error {
		if err := ensureEmailFree(ctx, identityRepo, identity.Email); err != nil {
			return err
		}
		if err := identityRepo.Create(ctx, identity); err != nil {
			return err
		}
		if err := credentialRepo.Create(ctx, newPasswordCredential(identity.ID, hash, now)); err != nil {
			return err
		}
		return staffRepo.Create(ctx, staff)
	})
	if err != nil {
		return nil, m.fail("provision_staff", err)
	}

	m.log.Audit("staff_provisioned").
		Str("identity_id", identity.ID).
		Str("staff_id", staff.ID).
		Str("role", role.String()).
		Msg("cuenta de personal creada")

	return &dto.ProvisionedAccount{
		Identity:    toIdentityResponse(identity),
		Staff:       toStaffResponse(staff),
		Credentials: dto.Credentials{Username: identity.Email, Password: plain},
	}, nil
}

// ProvisionPatientAccount crea la cuenta de un paciente existente sin identidad.
// La fila del paciente se bloquea (FOR UPDATE) durante la transacción, de modo que un
// segundo alta concurrente ve el identity_id del primero y falla con ACCOUNT_ALREADY_EXISTS.
// El usuario de login es el número nacional.
func (m *Manager) ProvisionPatientAccount(ctx context.Context, patientID string) (*dto.ProvisionedAccount, error) {
	if !validID(patientID) {
		return nil, domain.ErrPatientNotFound
	}

	plain, hash, err := m.temporaryCredential()
	if err != nil {
		return nil, m.fail("provision_patient", err)
	}

	now := m.now()
	var (
		identity *entity.Identity
		patient  *entity.Patient
	)
	err = m.tx.RunIdentity(ctx, func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		patientRepo repository.PatientRepository,
		_ repository.StaffRepository,
	) error {
		p, err := patientRepo.GetByIDForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPatientNotFound
		}
		if p.HasAccount() {
			return domain.ErrAccountAlreadyExists
		}

		email := entity.NormalizeEmail(p.Email)
		if email == "" {
			email = entity.SyntheticPatientEmail(p.NationalID, m.opts.SyntheticEmailDomain)
		}
		if err := ensureEmailFree(ctx, identityRepo, email); err != nil {
			return err
		}

		identity = &entity.Identity{
			ID:                 newID(),
			Name:               p.FullName,
			Email:              email,
			Role:               entity.RolePatient,
			MustChangePassword: true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := identityRepo.Create(ctx, identity); err != nil {
			return err
		}
		if err := credentialRepo.Create(ctx, newPasswordCredential(identity.ID, hash, now)); err != nil {
			return err
		}
		if err := patientRepo.LinkIdentity(ctx, p.ID, identity.ID); err != nil {
			return err
		}
		p.IdentityID = &identity.ID
		patient = p
		return nil
	})
	if err != nil {
		return nil, m.fail("provision_patient", err)
	}

	m.log.Audit("patient_account_provisioned").
		Str("identity_id", identity.ID).
		Str("patient_id", patient.ID).
		Msg("cuenta de paciente creada")

	return &dto.ProvisionedAccount{
		Identity:    toIdentityResponse(identity),
		Patient:     toPatientResponse(patient),
		Credentials: dto.Credentials{Username: patient.NationalID, Password: plain},
	}, nil
}

// ensureEmailFree comprueba unicidad dentro de la tx; la constraint única cubre la carrera.
func ensureEmailFree(ctx context.Context, identityRepo repository.IdentityRepository, email string) error {
	existing, err := identityRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailExists
	}
	return nil
}
