package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
	"github.com/stemsi/wma-backend/internal/validator"
)

type UnitHandler struct {
	unitService *service.UnitService
}

func NewUnitHandler(unitService *service.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// List godoc
// GET /api/v1/admin/units?academic_year_id=
func (h *UnitHandler) List(c *gin.Context) {
	var q model.StandingQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	units, err := h.unitService.List(c.Request.Context(), q.AcademicYearID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if units == nil {
		units = []model.Unit{}
	}

	response.Success(c, http.StatusOK, gin.H{"units": units})
}

// Create godoc
// POST /api/v1/admin/units
func (h *UnitHandler) Create(c *gin.Context) {
	var req model.CreateUnitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), req)
	if err != nil {
		failUnit(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"unit": unit})
}

// Update godoc
// PUT /api/v1/admin/units/:id
func (h *UnitHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUnitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	unit, err := h.unitService.Update(c.Request.Context(), id, req)
	if err != nil {
		failUnit(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unit": unit})
}

// Delete godoc
// DELETE /api/v1/admin/units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.unitService.Delete(c.Request.Context(), id); err != nil {
		failUnit(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "unit deleted successfully"})
}

func failUnit(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUnitNotFound)
	case errors.Is(err, service.ErrAcademicYearNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateUnit):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateUnit)
	case errors.Is(err, repository.ErrInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
