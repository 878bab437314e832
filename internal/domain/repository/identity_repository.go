package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// IdentityRepository puerto de persistencia para Identity.
// Los Get devuelven (nil, nil) si no existe la fila.
type IdentityRepository interface {
	Create(ctx context.Context, identity *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	SetMustChangePassword(ctx context.Context, id string, value bool, at time.Time) error
}

// CredentialRepository puerto de persistencia para Credential.
type CredentialRepository interface {
	// Create falla con domain.ErrCredentialExists si ya hay credencial para (identity, provider).
	Create(ctx context.Context, cred *entity.Credential) error
	GetByIdentity(ctx context.Context, identityID, provider string) (*entity.Credential, error)
	// GetByIdentityForUpdate bloquea la fila; solo dentro de una transacción.
	GetByIdentityForUpdate(ctx context.Context, identityID, provider string) (*entity.Credential, error)
	// UpdateHash rota el hash en el lugar; devuelve domain.ErrAccountNotFound si no hay credencial.
	UpdateHash(ctx context.Context, identityID, provider, hash string, at time.Time) error
}
