package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

// RoleRepository handles role and permission data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetPermissionsByRoleID retrieves all permission codes for a given role.
func (r *RoleRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// GetRoleByName retrieves a role and its permissions by name.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*model.RoleWithPermissions, error) {
	role := &model.Role{Name: name}
	err := r.pool.QueryRow(ctx, `SELECT id, created_at FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return nil, err
	}

	permissions, err := r.GetPermissionsByRoleID(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	return &model.RoleWithPermissions{Role: role, Permissions: permissions}, nil
}

// ListRoles retrieves all roles ordered by id.
func (r *RoleRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Role, error) {
		var role model.Role
		err := row.Scan(&role.ID, &role.Name, &role.CreatedAt)
		return role, err
	})
}
