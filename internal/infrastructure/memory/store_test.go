package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

func identityFixture(id, email string) *entity.Identity {
	now := time.Now()
	return &entity.Identity{ID: id, Name: "Test", Email: email, Role: entity.RolePatient, CreatedAt: now, UpdatedAt: now}
}

func TestRunIdentity_RollbackDescartaCambios(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunIdentity(ctx, func(i repository.IdentityRepository, _ repository.CredentialRepository, _ repository.PatientRepository, _ repository.StaffRepository) error {
		require.NoError(t, i.Create(ctx, identityFixture("id-1", "a@test.local")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Identities().GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunIdentity_CommitPublica(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.RunIdentity(ctx, func(i repository.IdentityRepository, c repository.CredentialRepository, _ repository.PatientRepository, _ repository.StaffRepository) error {
		if err := i.Create(ctx, identityFixture("id-1", "a@test.local")); err != nil {
			return err
		}
		return c.Create(ctx, &entity.Credential{ID: "c-1", IdentityID: "id-1", Provider: entity.ProviderPassword, PasswordHash: "h"})
	})
	require.NoError(t, err)

	cred, err := s.Credentials().GetByIdentity(ctx, "id-1", entity.ProviderPassword)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "h", cred.PasswordHash)
}

func TestRunIdentity_ContextoCancelado(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunIdentity(ctx, func(repository.IdentityRepository, repository.CredentialRepository, repository.PatientRepository, repository.StaffRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestIdentities_EmailUnico(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Identities().Create(ctx, identityFixture("id-1", "a@test.local")))
	err := s.Identities().Create(ctx, identityFixture("id-2", "a@test.local"))
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestCredentials_UnaPorProveedor(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Identities().Create(ctx, identityFixture("id-1", "a@test.local")))

	cred := &entity.Credential{ID: "c-1", IdentityID: "id-1", Provider: entity.ProviderPassword, PasswordHash: "h"}
	require.NoError(t, s.Credentials().Create(ctx, cred))
	assert.ErrorIs(t, s.Credentials().Create(ctx, cred), domain.ErrCredentialExists)

	orphan := &entity.Credential{ID: "c-2", IdentityID: "nadie", Provider: entity.ProviderPassword}
	assert.Error(t, s.Credentials().Create(ctx, orphan), "la credencial exige identidad existente")

	assert.ErrorIs(t, s.Credentials().UpdateHash(ctx, "nadie", entity.ProviderPassword, "x", time.Now()), domain.ErrAccountNotFound)
}

func TestPatients_LinkIdentityInmutable(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.AddPatient(entity.Patient{ID: "p-1", FullName: "P", NationalID: "29912345678901", Status: entity.ProfileStatusActive}))
	require.NoError(t, s.Identities().Create(ctx, identityFixture("id-1", "a@test.local")))
	require.NoError(t, s.Identities().Create(ctx, identityFixture("id-2", "b@test.local")))

	require.NoError(t, s.Patients().LinkIdentity(ctx, "p-1", "id-1"))
	assert.ErrorIs(t, s.Patients().LinkIdentity(ctx, "p-1", "id-2"), domain.ErrAccountAlreadyExists)

	p, err := s.Patients().GetByIdentityID(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-1", p.ID)

	assert.ErrorIs(t, s.Patients().LinkIdentity(ctx, "p-x", "id-2"), domain.ErrPatientNotFound)
}

func TestPatients_NationalIDUnico(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddPatient(entity.Patient{ID: "p-1", NationalID: "29912345678901"}))
	assert.ErrorIs(t, s.AddPatient(entity.Patient{ID: "p-2", NationalID: "29912345678901"}), domain.ErrNationalIDExists)
}

func TestCopias_NoCompartenPunteros(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Identities().Create(ctx, identityFixture("id-1", "a@test.local")))
	require.NoError(t, s.AddPatient(entity.Patient{ID: "p-1", NationalID: "29912345678901"}))
	require.NoError(t, s.Patients().LinkIdentity(ctx, "p-1", "id-1"))

	p, err := s.Patients().GetByID(ctx, "p-1")
	require.NoError(t, err)
	*p.IdentityID = "manipulado"

	again, err := s.Patients().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", *again.IdentityID)
}

func TestSetStatus(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddPatient(entity.Patient{ID: "p-1", NationalID: "29912345678901", Status: entity.ProfileStatusActive}))
	require.NoError(t, s.SetPatientStatus("p-1", entity.ProfileStatusInactive))

	p, err := s.Patients().GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.False(t, p.IsActive())

	assert.ErrorIs(t, s.SetPatientStatus("p-x", entity.ProfileStatusInactive), domain.ErrPatientNotFound)
	assert.ErrorIs(t, s.SetStaffStatus("id-x", entity.ProfileStatusInactive), domain.ErrIdentityNotFound)
}
