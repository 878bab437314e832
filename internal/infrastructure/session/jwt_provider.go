package session

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/pkg/jwt"
)

var _ ports.SessionProvider = (*JWTProvider)(nil)

// JWTProvider sesiones sin estado: el token de la cookie es un JWT firmado con identidad y rol.
// Revoke no invalida el token en servidor; borrar la cookie es responsabilidad del handler.
type JWTProvider struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewJWTProvider construye el proveedor.
func NewJWTProvider(secret, issuer string, ttl time.Duration) *JWTProvider {
	return &JWTProvider{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue firma un token para la sesión.
func (p *JWTProvider) Issue(_ context.Context, sess entity.Session) (string, error) {
	return jwt.Generate(p.secret, sess.IdentityID, sess.Role.String(), p.issuer, p.ttl)
}

// Resolve valida el token. Token inválido o expirado no es un error del backend: devuelve (nil, nil).
func (p *JWTProvider) Resolve(_ context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, nil
	}
	identityID, roleName, err := jwt.Parse(p.secret, p.issuer, token)
	if err != nil {
		return nil, nil
	}
	role, err := entity.ParseRole(roleName)
	if err != nil {
		return nil, nil
	}
	return &entity.Session{IdentityID: identityID, Role: role}, nil
}

// Revoke no-op.
func (p *JWTProvider) Revoke(context.Context, string) error { return nil }
