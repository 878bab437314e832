package ports

import (
	"context"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// CredentialHasher hash adaptativo de contraseñas (bcrypt en producción).
// Verify compara en tiempo constante; devuelve (false, nil) ante un hash que no coincide
// y error solo si el hash almacenado está corrupto.
type CredentialHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) (bool, error)
}

// SecretGenerator fuente de contraseñas temporales. Sustituible en tests.
type SecretGenerator interface {
	TemporaryPassword(length int) (string, error)
}

// SessionProvider emite, resuelve y revoca sesiones.
// Resolve devuelve (nil, nil) si el token no existe, expiró, es inválido o trae un rol desconocido;
// error solo ante fallos del backend (el guard lo trata como no autenticado).
type SessionProvider interface {
	Issue(ctx context.Context, sess entity.Session) (string, error)
	Resolve(ctx context.Context, token string) (*entity.Session, error)
	Revoke(ctx context.Context, token string) error
}
