package service

import (
	"context"
	"fmt"

	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

// AdminService handles admin business logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
	roleRepo  *repository.RoleRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// ListRoles lists the roles an admin can be assigned.
func (s *AdminService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.ListRoles(ctx)
}

// CreateWithRole creates an admin holding the named role.
func (s *AdminService) CreateWithRole(ctx context.Context, admin *model.Admin, roleName string) error {
	role, err := s.roleRepo.GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("find role %q: %w", roleName, err)
	}
	admin.RoleID = role.ID
	admin.RoleName = role.Name
	return s.adminRepo.Create(ctx, admin)
}
