package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
)

// AdminHandler handles back-office endpoints that are not tied to one resource.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListRoles godoc
// GET /api/v1/admin/roles
// Lists the built-in roles and every known permission code.
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.adminService.ListRoles(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"roles": roles, "permissions": model.AllPermissions})
}
