package entity

import "fmt"

// Role rol de una identidad. Conjunto cerrado: agregar un rol obliga a revisar
// cada switch sobre Role (Audience, IsValid, String, ParseRole).
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleDoctor
	RoleStaff
	RolePatient
)

// Audience lado del portal al que pertenece un rol.
type Audience uint8

const (
	AudienceNone Audience = iota
	AudienceStaff
	AudiencePatient
)

// ParseRole convierte el valor persistido/serializado en Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "doctor":
		return RoleDoctor, nil
	case "staff":
		return RoleStaff, nil
	case "patient":
		return RolePatient, nil
	default:
		return RoleUnknown, fmt.Errorf("rol desconocido %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	case RoleStaff:
		return "staff"
	case RolePatient:
		return "patient"
	default:
		return "unknown"
	}
}

// IsValid indica si el rol pertenece al conjunto cerrado.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff, RolePatient:
		return true
	default:
		return false
	}
}

// Audience devuelve el lado del portal del rol; RoleUnknown no tiene ninguno.
func (r Role) Audience() Audience {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff:
		return AudienceStaff
	case RolePatient:
		return AudiencePatient
	default:
		return AudienceNone
	}
}

// IsStaffRole roles que un admin puede asignar al dar de alta personal.
func (r Role) IsStaffRole() bool {
	return r.Audience() == AudienceStaff
}

// MarshalText serializa el rol como texto (JSON, claims).
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("rol inválido %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText parsea el rol desde texto.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
