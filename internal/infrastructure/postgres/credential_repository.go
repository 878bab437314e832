package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo credenciales sobre PostgreSQL. Una por (identity_id, provider).
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador.
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

func (r *CredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	query := `
		INSERT INTO credentials (id, identity_id, provider, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, c.ID, c.IdentityID, c.Provider, c.PasswordHash, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrIdentityNotFound
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) GetByIdentity(ctx context.Context, identityID, provider string) (*entity.Credential, error) {
	return r.get(ctx, identityID, provider, "")
}

// GetByIdentityForUpdate bloquea la fila hasta el fin de la transacción.
func (r *CredentialRepo) GetByIdentityForUpdate(ctx context.Context, identityID, provider string) (*entity.Credential, error) {
	return r.get(ctx, identityID, provider, " FOR UPDATE")
}

func (r *CredentialRepo) get(ctx context.Context, identityID, provider, lock string) (*entity.Credential, error) {
	query := `
		SELECT id, identity_id, provider, password_hash, created_at, updated_at
		FROM credentials WHERE identity_id = $1 AND provider = $2` + lock
	var c entity.Credential
	err := r.q.QueryRow(ctx, query, identityID, provider).Scan(
		&c.ID, &c.IdentityID, &c.Provider, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

// UpdateHash reemplaza el hash en el lugar; la fila conserva su id.
func (r *CredentialRepo) UpdateHash(ctx context.Context, identityID, provider, hash string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE credentials SET password_hash = $3, updated_at = $4 WHERE identity_id = $1 AND provider = $2`,
		identityID, provider, hash, at,
	)
	if err != nil {
		return fmt.Errorf("update credential hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
