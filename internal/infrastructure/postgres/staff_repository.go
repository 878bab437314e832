package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/domain/repository"
)

var _ repository.StaffRepository = (*StaffRepo)(nil)

// StaffRepo perfiles de personal sobre PostgreSQL. Los permisos se guardan como JSONB.
type StaffRepo struct {
	q Querier
}

// NewStaffRepository construye el adaptador.
func NewStaffRepository(q Querier) *StaffRepo {
	return &StaffRepo{q: q}
}

func (r *StaffRepo) Create(ctx context.Context, s *entity.Staff) error {
	perms := s.Permissions
	if perms == nil {
		perms = []string{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	query := `
		INSERT INTO staff (id, full_name, email, phone, role, permissions, status, identity_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		s.ID, s.FullName, s.Email, s.Phone, s.Role.String(), permsJSON, s.Status, s.IdentityID,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *StaffRepo) GetByIdentityID(ctx context.Context, identityID string) (*entity.Staff, error) {
	query := `
		SELECT id, full_name, email, COALESCE(phone, ''), role, permissions, status, identity_id, created_at, updated_at
		FROM staff WHERE identity_id = $1`
	var (
		s         entity.Staff
		role      string
		permsJSON []byte
	)
	err := r.q.QueryRow(ctx, query, identityID).Scan(
		&s.ID, &s.FullName, &s.Email, &s.Phone, &role, &permsJSON, &s.Status, &s.IdentityID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff by identity: %w", err)
	}
	if s.Role, err = entity.ParseRole(role); err != nil {
		return nil, fmt.Errorf("get staff by identity: %w", err)
	}
	if err := json.Unmarshal(permsJSON, &s.Permissions); err != nil {
		return nil, fmt.Errorf("unmarshal permissions: %w", err)
	}
	return &s, nil
}
