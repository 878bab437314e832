package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los errores de dominio; la capa HTTP lo traduce a un status.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthenticationRequired
	KindAuthorizationDenied
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError error de dominio con código estable legible por máquina.
// Dos AppError son equivalentes para errors.Is si comparten Code.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is compara por código para que errors.Is funcione con los sentinelas aunque el error venga envuelto.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage devuelve una copia con otro mensaje, conservando kind y código.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: msg, Err: e.Err}
}

func newErr(kind Kind, code, msg string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: msg}
}

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput           = newErr(KindValidation, "VALIDATION", "entrada inválida")
	ErrInvalidEmail           = newErr(KindValidation, "INVALID_EMAIL", "email inválido")
	ErrInvalidRole            = newErr(KindValidation, "INVALID_ROLE", "rol inválido")
	ErrInvalidNationalID      = newErr(KindValidation, "INVALID_NATIONAL_ID", "número nacional inválido")
	ErrPasswordTooShort       = newErr(KindValidation, "PASSWORD_TOO_SHORT", "la contraseña es demasiado corta")
	ErrPasswordTooLong        = newErr(KindValidation, "PASSWORD_TOO_LONG", "la contraseña supera los 72 bytes")
	ErrPasswordUnchanged      = newErr(KindValidation, "PASSWORD_UNCHANGED", "la nueva contraseña debe ser distinta de la actual")
	ErrInvalidCurrentPassword = newErr(KindValidation, "INVALID_CURRENT_PASSWORD", "la contraseña actual no es correcta")

	ErrAuthenticationRequired = newErr(KindAuthenticationRequired, "AUTHENTICATION_REQUIRED", "se requiere iniciar sesión")
	ErrInvalidCredentials     = newErr(KindAuthenticationRequired, "INVALID_CREDENTIALS", "credenciales inválidas")

	ErrForbidden       = newErr(KindAuthorizationDenied, "FORBIDDEN", "acceso denegado")
	ErrAccountDisabled = newErr(KindAuthorizationDenied, "ACCOUNT_DISABLED", "cuenta inactiva")

	ErrAccountNotFound  = newErr(KindNotFound, "ACCOUNT_NOT_FOUND", "la cuenta no existe")
	ErrPatientNotFound  = newErr(KindNotFound, "PATIENT_NOT_FOUND", "el paciente no existe")
	ErrIdentityNotFound = newErr(KindNotFound, "IDENTITY_NOT_FOUND", "la identidad no existe")

	ErrEmailExists          = newErr(KindConflict, "EMAIL_EXISTS", "el email ya está registrado")
	ErrAccountAlreadyExists = newErr(KindConflict, "ACCOUNT_ALREADY_EXISTS", "el perfil ya tiene una cuenta asociada")
	ErrNationalIDExists     = newErr(KindConflict, "NATIONAL_ID_EXISTS", "el número nacional ya está registrado")
	ErrCredentialExists     = newErr(KindConflict, "CREDENTIAL_EXISTS", "la identidad ya tiene credencial")

	ErrInternal = newErr(KindInternal, "INTERNAL", "error interno")
)

// Internal envuelve un fallo de infraestructura como error interno conservando la causa para los logs.
func Internal(op string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: ErrInternal.Code, Message: op, Err: err}
}

// KindOf devuelve el Kind del error; cualquier error que no sea AppError es interno.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf devuelve el código estable del error ("INTERNAL" si no es AppError).
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrInternal.Code
}
