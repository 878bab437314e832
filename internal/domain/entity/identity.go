package entity

import (
	"fmt"
	"strings"
	"time"
)

// ProviderPassword único método de login soportado.
const ProviderPassword = "password"

// PasswordState dimensión "cambio de contraseña" de una identidad.
type PasswordState uint8

const (
	// PasswordNormal la contraseña la eligió el propio usuario.
	PasswordNormal PasswordState = iota
	// PasswordTempPendingChange contraseña temporal o reseteada por un admin; debe cambiarse.
	PasswordTempPendingChange
)

func (s PasswordState) String() string {
	if s == PasswordTempPendingChange {
		return "TEMP_PENDING_CHANGE"
	}
	return "NORMAL"
}

// Identity principal autenticable (una fila por persona con acceso).
// Nunca se elimina: se desactiva mediante el estado de su perfil de dominio.
type Identity struct {
	ID                 string
	Name               string
	Email              string // normalizada, única
	Role               Role
	MustChangePassword bool
	EmailVerified      bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PasswordState estado actual de la máquina de cambio de contraseña.
func (i *Identity) PasswordState() PasswordState {
	if i.MustChangePassword {
		return PasswordTempPendingChange
	}
	return PasswordNormal
}

// Credential hash de contraseña de una identidad. Única por (IdentityID, Provider).
type Credential struct {
	ID           string
	IdentityID   string
	Provider     string
	PasswordHash string // bcrypt hash, nunca texto plano
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail recorta espacios y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SyntheticPatientEmail email determinístico para pacientes sin correo real.
func SyntheticPatientEmail(nationalID, domain string) string {
	return fmt.Sprintf("patient_%s@%s", nationalID, domain)
}
