package credential

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

// AdminResetPassword reemplaza el hash de la identidad y la deja en TEMP_PENDING_CHANGE.
// Con newPassword vacío se genera una contraseña temporal que se devuelve una sola vez;
// si el admin la elige, se exige la misma longitud mínima que en el cambio por el usuario.
func (m *Manager) AdminResetPassword(ctx context.Context, identityID, newPassword string) (*dto.PasswordResetResult, error) {
	if !validID(identityID) {
		return nil, domain.ErrAccountNotFound
	}

	var (
		plain, hash string
		err         error
		generated   = newPassword == ""
	)
	if generated {
		plain, hash, err = m.temporaryCredential()
	} else {
		hash, err = m.hashChosen(newPassword)
	}
	if err != nil {
		return nil, m.fail("admin_reset_password", err)
	}

	now := m.now()
	var username string
	err = m.tx.RunIdentity(ctx, func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		patientRepo repository.PatientRepository,
		_ repository.StaffRepository,
	) error {
		cred, err := credentialRepo.GetByIdentityForUpdate(ctx, identityID, entity.ProviderPassword)
		if err != nil {
			return err
		}
		if cred == nil {
			return domain.ErrAccountNotFound
		}
		if err := credentialRepo.UpdateHash(ctx, identityID, entity.ProviderPassword, hash, now); err != nil {
			return err
		}
		if err := identityRepo.SetMustChangePassword(ctx, identityID, true, now); err != nil {
			return err
		}
		if generated {
			username, err = loginName(ctx, identityRepo, patientRepo, identityID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, m.fail("admin_reset_password", err)
	}

	m.log.Audit("password_reset").
		Str("identity_id", identityID).
		Bool("generated", generated).
		Msg("contraseña reseteada por admin")

	out := &dto.PasswordResetResult{IdentityID: identityID, MustChangePassword: true}
	if generated {
		out.Credentials = &dto.Credentials{Username: username, Password: plain}
	}
	return out, nil
}

// ChangePassword cambio de contraseña por el propio usuario. Verifica la contraseña
// actual y es la única operación que pasa la identidad a NORMAL.
func (m *Manager) ChangePassword(ctx context.Context, identityID, current, next string) error {
	if !validID(identityID) {
		return domain.ErrAccountNotFound
	}
	if err := m.checkChosen(next); err != nil {
		return err
	}

	now := m.now()
	err := m.tx.RunIdentity(ctx, func(
		identityRepo repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		_ repository.PatientRepository,
		_ repository.StaffRepository,
	) error {
		cred, err := credentialRepo.GetByIdentityForUpdate(ctx, identityID, entity.ProviderPassword)
		if err != nil {
			return err
		}
		if cred == nil {
			return domain.ErrAccountNotFound
		}
		ok, err := m.hasher.Verify(cred.PasswordHash, current)
		if err != nil {
			return domain.Internal("verificar contraseña", err)
		}
		if !ok {
			return domain.ErrInvalidCurrentPassword
		}
		if current == next {
			return domain.ErrPasswordUnchanged
		}
		// Se hashea solo después de verificar la actual.
		newHash, err := m.hasher.Hash(next)
		if err != nil {
			return domain.Internal("hashear contraseña", err)
		}
		if err := credentialRepo.UpdateHash(ctx, identityID, entity.ProviderPassword, newHash, now); err != nil {
			return err
		}
		return identityRepo.SetMustChangePassword(ctx, identityID, false, now)
	})
	if err != nil {
		return m.fail("change_password", err)
	}

	m.log.Audit("password_changed").Str("identity_id", identityID).Msg("contraseña cambiada por el usuario")
	return nil
}

// VerifyPassword compara plain con la credencial de la identidad.
// Sin credencial devuelve (false, nil).
func (m *Manager) VerifyPassword(ctx context.Context, identityID, plain string) (bool, error) {
	if !validID(identityID) {
		return false, nil
	}
	var ok bool
	err := m.tx.RunIdentity(ctx, func(
		_ repository.IdentityRepository,
		credentialRepo repository.CredentialRepository,
		_ repository.PatientRepository,
		_ repository.StaffRepository,
	) error {
		cred, err := credentialRepo.GetByIdentity(ctx, identityID, entity.ProviderPassword)
		if err != nil || cred == nil {
			return err
		}
		ok, err = m.hasher.Verify(cred.PasswordHash, plain)
		if err != nil {
			return domain.Internal("verificar contraseña", err)
		}
		return nil
	})
	if err != nil {
		return false, m.fail("verify_password", err)
	}
	return ok, nil
}

// loginName usuario de login de la identidad: número nacional para pacientes, email para el resto.
func loginName(ctx context.Context, identityRepo repository.IdentityRepository, patientRepo repository.PatientRepository, identityID string) (string, error) {
	identity, err := identityRepo.GetByID(ctx, identityID)
	if err != nil {
		return "", err
	}
	if identity == nil {
		return "", domain.ErrAccountNotFound
	}
	if identity.Role == entity.RolePatient {
		p, err := patientRepo.GetByIdentityID(ctx, identityID)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.NationalID, nil
		}
	}
	return identity.Email, nil
}

func newPasswordCredential(identityID, hash string, now time.Time) *entity.Credential {
	return &entity.Credential{
		ID:           newID(),
		IdentityID:   identityID,
		Provider:     entity.ProviderPassword,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
