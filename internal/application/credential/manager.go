// Package credential gestiona el ciclo de vida de las credenciales: alta de cuentas
// de personal y pacientes, reseteo forzado, cambio de contraseña y auto-registro.
// Es el único punto que escribe identidades y credenciales.
package credential

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// Valores por defecto de la política de contraseñas.
const (
	DefaultTempPasswordLength   = 8
	DefaultMinPasswordLength    = 6
	DefaultSyntheticEmailDomain = "temp.local"

	// MaxPasswordBytes límite de bcrypt: rechaza contraseñas más largas en lugar de truncarlas.
	MaxPasswordBytes = 72
)

// Options política de contraseñas y emails sintéticos.
type Options struct {
	TempPasswordLength   int
	MinPasswordLength    int
	SyntheticEmailDomain string
}

func (o Options) withDefaults() Options {
	if o.TempPasswordLength < DefaultTempPasswordLength {
		o.TempPasswordLength = DefaultTempPasswordLength
	}
	if o.MinPasswordLength < DefaultMinPasswordLength {
		o.MinPasswordLength = DefaultMinPasswordLength
	}
	if o.SyntheticEmailDomain == "" {
		o.SyntheticEmailDomain = DefaultSyntheticEmailDomain
	}
	return o
}

// Manager casos de uso del ciclo de vida de credenciales.
// Cada operación escribe dentro de una sola transacción (IdentityTxRunner).
type Manager struct {
	tx      ports.IdentityTxRunner
	hasher  ports.CredentialHasher
	secrets ports.SecretGenerator
	opts    Options
	log     *logger.Logger
	now     func() time.Time
}

// NewManager construye el gestor de credenciales.
func NewManager(tx ports.IdentityTxRunner, hasher ports.CredentialHasher, secrets ports.SecretGenerator, opts Options, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		tx:      tx,
		hasher:  hasher,
		secrets: secrets,
		opts:    opts.withDefaults(),
		log:     log.Component("credential"),
		now:     time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Options política efectiva.
func (m *Manager) Options() Options { return m.opts }

// temporaryCredential genera una contraseña temporal y su hash.
func (m *Manager) temporaryCredential() (plain, hash string, err error) {
	plain, err = m.secrets.TemporaryPassword(m.opts.TempPasswordLength)
	if err != nil {
		return "", "", domain.Internal("generar contraseña temporal", err)
	}
	hash, err = m.hasher.Hash(plain)
	if err != nil {
		return "", "", domain.Internal("hashear contraseña", err)
	}
	return plain, hash, nil
}

// checkChosen política de longitud para contraseñas elegidas por el usuario o el admin.
// El mínimo se cuenta en caracteres; el máximo en bytes, que es lo que acepta bcrypt.
func (m *Manager) checkChosen(plain string) error {
	if utf8.RuneCountInString(plain) < m.opts.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if len(plain) > MaxPasswordBytes {
		return domain.ErrPasswordTooLong
	}
	return nil
}

// hashChosen valida y hashea una contraseña elegida.
func (m *Manager) hashChosen(plain string) (string, error) {
	if err := m.checkChosen(plain); err != nil {
		return "", err
	}
	hash, err := m.hasher.Hash(plain)
	if err != nil {
		return "", domain.Internal("hashear contraseña", err)
	}
	return hash, nil
}

// fail registra los errores internos con contexto y los devuelve sin detalle para el cliente.
// Los errores esperados (validación, conflicto, no encontrado) pasan tal cual.
func (m *Manager) fail(op string, err error) error {
	var ae *domain.AppError
	if errors.As(err, &ae) && ae.Kind != domain.KindInternal {
		return ae
	}
	m.log.Error().Err(err).Str("op", op).Msg("fallo en operación de credenciales")
	if errors.As(err, &ae) {
		return ae
	}
	return domain.Internal(op, err)
}

func newID() string { return uuid.New().String() }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// normalizeName colapsa espacios y normaliza a NFC para que el mismo nombre escrito
// con distintas composiciones Unicode se guarde igual.
func normalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}
