package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
	"github.com/stemsi/wma-backend/internal/validator"
)

type SettingHandler struct {
	settingService *service.SettingService
}

func NewSettingHandler(settingService *service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// GetAllSettings godoc
// GET /api/v1/admin/settings
func (h *SettingHandler) GetAllSettings(c *gin.Context) {
	settings, err := h.settingService.GetAllSettings(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings godoc
// PUT /api/v1/admin/settings
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.settingService.UpdateSettings(c.Request.Context(), req.Settings); err != nil {
		if errors.Is(err, service.ErrInvalidGradingScale) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidGradingScale)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "settings updated successfully"})
}

// GetGradingScale godoc
// GET /api/v1/admin/settings/grading-scale
// Returns the boundary table in effect.
func (h *SettingHandler) GetGradingScale(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"boundaries": h.settingService.GradingScale(c.Request.Context())})
}

// UpdateGradingScale godoc
// PUT /api/v1/admin/settings/grading-scale
// Replaces the boundary table. Every student is recalculated afterwards.
func (h *SettingHandler) UpdateGradingScale(c *gin.Context) {
	var req model.UpdateGradingScaleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	boundaries, err := h.settingService.UpdateGradingScale(c.Request.Context(), req.Boundaries)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGradingScale) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidGradingScale)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"boundaries": boundaries})
}

// GetPublicSettings godoc
// GET /api/v1/public/settings
// Returns the institution name and grading scale for the login page.
func (h *SettingHandler) GetPublicSettings(c *gin.Context) {
	ctx := c.Request.Context()

	institution, err := h.settingService.GetSettingByKey(ctx, model.SettingInstitution)
	if err != nil && !errors.Is(err, service.ErrSettingNotFound) {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		model.SettingInstitution: institution,
		"grading_scale":          h.settingService.GradingScale(ctx),
	})
}
