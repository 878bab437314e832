// Package memory implementa los puertos de persistencia de identidades en memoria.
// Sirve para desarrollo local sin PostgreSQL (STORAGE_BACKEND=memory) y para tests.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado:
// si fn falla, la copia se descarta (rollback).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var (
	_ ports.IdentityTxRunner          = (*Store)(nil)
	_ repository.IdentityRepository   = (*identityRepo)(nil)
	_ repository.CredentialRepository = (*credentialRepo)(nil)
	_ repository.PatientRepository    = (*patientRepo)(nil)
	_ repository.StaffRepository      = (*staffRepo)(nil)
)

type state struct {
	identities  map[string]entity.Identity
	credentials map[string]entity.Credential // clave: identityID + "|" + provider
	patients    map[string]entity.Patient
	staff       map[string]entity.Staff
}

func newState() *state {
	return &state{
		identities:  map[string]entity.Identity{},
		credentials: map[string]entity.Credential{},
		patients:    map[string]entity.Patient{},
		staff:       map[string]entity.Staff{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.credentials {
		c.credentials[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = copyPatient(v)
	}
	for k, v := range s.staff {
		c.staff[k] = copyStaff(v)
	}
	return c
}

// Store estado en memoria protegido por mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// RunIdentity ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) RunIdentity(ctx context.Context, fn func(
	identityRepo repository.IdentityRepository,
	credentialRepo repository.CredentialRepository,
	patientRepo repository.PatientRepository,
	staffRepo repository.StaffRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	v := &view{st: work}
	if err := fn(&identityRepo{v}, &credentialRepo{v}, &patientRepo{v}, &staffRepo{v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.st = work
	return nil
}

// Identities repositorio fuera de transacción (cada llamada toma el lock).
func (s *Store) Identities() repository.IdentityRepository { return &identityRepo{&view{store: s}} }

// Credentials repositorio fuera de transacción.
func (s *Store) Credentials() repository.CredentialRepository { return &credentialRepo{&view{store: s}} }

// Patients repositorio fuera de transacción.
func (s *Store) Patients() repository.PatientRepository { return &patientRepo{&view{store: s}} }

// Staff repositorio fuera de transacción.
func (s *Store) Staff() repository.StaffRepository { return &staffRepo{&view{store: s}} }

// view acceso al estado: dentro de una tx usa st directamente; fuera, bloquea el store.
type view struct {
	store *Store
	st    *state
}

func (v *view) do(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

// ── identities ───────────────────────────────────────────────────────────────

type identityRepo struct{ v *view }

func (r *identityRepo) Create(_ context.Context, identity *entity.Identity) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.identities[identity.ID]; ok {
			return fmt.Errorf("insert identity: id duplicado")
		}
		for _, other := range st.identities {
			if other.Email == identity.Email {
				return domain.ErrEmailExists
			}
		}
		st.identities[identity.ID] = *identity
		return nil
	})
}

func (r *identityRepo) GetByID(_ context.Context, id string) (*entity.Identity, error) {
	var out *entity.Identity
	err := r.v.do(func(st *state) error {
		if i, ok := st.identities[id]; ok {
			out = &i
		}
		return nil
	})
	return out, err
}

func (r *identityRepo) GetByEmail(_ context.Context, email string) (*entity.Identity, error) {
	var out *entity.Identity
	err := r.v.do(func(st *state) error {
		for _, i := range st.identities {
			if i.Email == email {
				i := i
				out = &i
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *identityRepo) SetMustChangePassword(_ context.Context, id string, value bool, at time.Time) error {
	return r.v.do(func(st *state) error {
		i, ok := st.identities[id]
		if !ok {
			return domain.ErrIdentityNotFound
		}
		i.MustChangePassword = value
		i.UpdatedAt = at
		st.identities[id] = i
		return nil
	})
}

// ── credentials ──────────────────────────────────────────────────────────────

type credentialRepo struct{ v *view }

func credKey(identityID, provider string) string { return identityID + "|" + provider }

func (r *credentialRepo) Create(_ context.Context, cred *entity.Credential) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.identities[cred.IdentityID]; !ok {
			return fmt.Errorf("insert credential: identidad %s inexistente", cred.IdentityID)
		}
		key := credKey(cred.IdentityID, cred.Provider)
		if _, ok := st.credentials[key]; ok {
			return domain.ErrCredentialExists
		}
		st.credentials[key] = *cred
		return nil
	})
}

func (r *credentialRepo) GetByIdentity(_ context.Context, identityID, provider string) (*entity.Credential, error) {
	var out *entity.Credential
	err := r.v.do(func(st *state) error {
		if c, ok := st.credentials[credKey(identityID, provider)]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// GetByIdentityForUpdate igual que GetByIdentity: el store ya serializa las transacciones.
func (r *credentialRepo) GetByIdentityForUpdate(ctx context.Context, identityID, provider string) (*entity.Credential, error) {
	return r.GetByIdentity(ctx, identityID, provider)
}

func (r *credentialRepo) UpdateHash(_ context.Context, identityID, provider, hash string, at time.Time) error {
	return r.v.do(func(st *state) error {
		key := credKey(identityID, provider)
		c, ok := st.credentials[key]
		if !ok {
			return domain.ErrAccountNotFound
		}
		c.PasswordHash = hash
		c.UpdatedAt = at
		st.credentials[key] = c
		return nil
	})
}

// ── patients ─────────────────────────────────────────────────────────────────

type patientRepo struct{ v *view }

func (r *patientRepo) Create(_ context.Context, p *entity.Patient) error {
	return r.v.do(func(st *state) error {
		for _, other := range st.patients {
			if other.NationalID == p.NationalID {
				return domain.ErrNationalIDExists
			}
			if p.HasAccount() && other.HasAccount() && *other.IdentityID == *p.IdentityID {
				return domain.ErrAccountAlreadyExists
			}
		}
		if p.HasAccount() {
			if err := checkIdentityFree(st, *p.IdentityID); err != nil {
				return err
			}
		}
		st.patients[p.ID] = copyPatient(*p)
		return nil
	})
}

func (r *patientRepo) GetByID(_ context.Context, id string) (*entity.Patient, error) {
	return r.find(func(p entity.Patient) bool { return p.ID == id })
}

func (r *patientRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Patient, error) {
	return r.GetByID(ctx, id)
}

func (r *patientRepo) GetByNationalID(_ context.Context, nationalID string) (*entity.Patient, error) {
	return r.find(func(p entity.Patient) bool { return p.NationalID == nationalID })
}

func (r *patientRepo) GetByIdentityID(_ context.Context, identityID string) (*entity.Patient, error) {
	return r.find(func(p entity.Patient) bool { return p.HasAccount() && *p.IdentityID == identityID })
}

func (r *patientRepo) LinkIdentity(_ context.Context, patientID, identityID string) error {
	return r.v.do(func(st *state) error {
		p, ok := st.patients[patientID]
		if !ok {
			return domain.ErrPatientNotFound
		}
		if p.HasAccount() {
			return domain.ErrAccountAlreadyExists
		}
		if _, ok := st.identities[identityID]; !ok {
			return fmt.Errorf("link identity: identidad %s inexistente", identityID)
		}
		for _, other := range st.patients {
			if other.HasAccount() && *other.IdentityID == identityID {
				return domain.ErrAccountAlreadyExists
			}
		}
		if err := checkIdentityFree(st, identityID); err != nil {
			return err
		}
		id := identityID
		p.IdentityID = &id
		st.patients[patientID] = p
		return nil
	})
}

func (r *patientRepo) find(match func(entity.Patient) bool) (*entity.Patient, error) {
	var out *entity.Patient
	err := r.v.do(func(st *state) error {
		for _, p := range st.patients {
			if match(p) {
				cp := copyPatient(p)
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ── staff ────────────────────────────────────────────────────────────────────

type staffRepo struct{ v *view }

func (r *staffRepo) Create(_ context.Context, s *entity.Staff) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.identities[s.IdentityID]; !ok {
			return fmt.Errorf("insert staff: identidad %s inexistente", s.IdentityID)
		}
		for _, other := range st.staff {
			if other.IdentityID == s.IdentityID {
				return domain.ErrAccountAlreadyExists
			}
		}
		for _, p := range st.patients {
			if p.HasAccount() && *p.IdentityID == s.IdentityID {
				return domain.ErrAccountAlreadyExists
			}
		}
		st.staff[s.ID] = copyStaff(*s)
		return nil
	})
}

func (r *staffRepo) GetByIdentityID(_ context.Context, identityID string) (*entity.Staff, error) {
	var out *entity.Staff
	err := r.v.do(func(st *state) error {
		for _, s := range st.staff {
			if s.IdentityID == identityID {
				cp := copyStaff(s)
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ── seed y helpers ───────────────────────────────────────────────────────────

// AddPatient inserta un perfil de paciente sin cuenta (lo que haría el CRUD de pacientes).
func (s *Store) AddPatient(p entity.Patient) error {
	return s.Patients().Create(context.Background(), &p)
}

// SetPatientStatus cambia el estado del perfil (activar/desactivar).
func (s *Store) SetPatientStatus(patientID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.patients[patientID]
	if !ok {
		return domain.ErrPatientNotFound
	}
	p.Status = status
	s.st.patients[patientID] = p
	return nil
}

// SetStaffStatus cambia el estado del perfil de personal de la identidad.
func (s *Store) SetStaffStatus(identityID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.st.staff {
		if st.IdentityID == identityID {
			st.Status = status
			s.st.staff[id] = st
			return nil
		}
	}
	return domain.ErrIdentityNotFound
}

// checkIdentityFree una identidad respalda como mucho un perfil (paciente o personal).
func checkIdentityFree(st *state, identityID string) error {
	for _, s := range st.staff {
		if s.IdentityID == identityID {
			return domain.ErrAccountAlreadyExists
		}
	}
	return nil
}

func copyPatient(p entity.Patient) entity.Patient {
	if p.IdentityID != nil {
		id := *p.IdentityID
		p.IdentityID = &id
	}
	return p
}

func copyStaff(s entity.Staff) entity.Staff {
	s.Permissions = append([]string(nil), s.Permissions...)
	return s
}
