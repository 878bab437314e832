package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var _ repository.IdentityRepository = (*IdentityRepo)(nil)

// IdentityRepo implementación del puerto IdentityRepository sobre PostgreSQL.
type IdentityRepo struct {
	q Querier
}

// NewIdentityRepository construye el adaptador; q puede ser el pool o una tx.
func NewIdentityRepository(q Querier) *IdentityRepo {
	return &IdentityRepo{q: q}
}

const identityColumns = `id, name, email, role, must_change_password, email_verified, created_at, updated_at`

// Create persiste una nueva identidad.
func (r *IdentityRepo) Create(ctx context.Context, i *entity.Identity) error {
	query := `
		INSERT INTO identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.Name, i.Email, i.Role.String(), i.MustChangePassword, i.EmailVerified,
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// GetByID obtiene una identidad por ID.
func (r *IdentityRepo) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	i, err := scanIdentity(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get identity by id: %w", err)
	}
	return i, nil
}

// GetByEmail obtiene una identidad por email normalizado.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	i, err := scanIdentity(r.q.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("get identity by email: %w", err)
	}
	return i, nil
}

// SetMustChangePassword fija el flag de cambio obligatorio.
func (r *IdentityRepo) SetMustChangePassword(ctx context.Context, id string, value bool, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE identities SET must_change_password = $2, updated_at = $3 WHERE id = $1`,
		id, value, at,
	)
	if err != nil {
		return fmt.Errorf("update must_change_password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// scanIdentity devuelve (nil, nil) si no hay fila.
func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	var (
		i    entity.Identity
		role string
	)
	err := row.Scan(&i.ID, &i.Name, &i.Email, &role, &i.MustChangePassword, &i.EmailVerified, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if i.Role, err = entity.ParseRole(role); err != nil {
		return nil, err
	}
	return &i, nil
}
