package entity

import "time"

// Estados de un perfil de dominio. Un perfil inactivo deshabilita el login de su identidad.
const (
	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
)

// Patient perfil de paciente. IdentityID es nil hasta que se provisiona la cuenta
// y, una vez asignado, no cambia.
type Patient struct {
	ID         string
	FullName   string
	NationalID string // único; usuario de login del paciente
	Email      string // puede estar vacío
	Phone      string
	Status     string
	IdentityID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasAccount indica si el paciente ya tiene identidad vinculada.
func (p *Patient) HasAccount() bool {
	return p.IdentityID != nil && *p.IdentityID != ""
}

// IsActive indica si el perfil permite iniciar sesión.
func (p *Patient) IsActive() bool { return p.Status == ProfileStatusActive }

// Staff perfil de personal (admin, doctor, staff). Siempre tiene identidad.
type Staff struct {
	ID          string
	FullName    string
	Email       string
	Phone       string
	Role        Role
	Permissions []string
	Status      string
	IdentityID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si el perfil permite iniciar sesión.
func (s *Staff) IsActive() bool { return s.Status == ProfileStatusActive }
