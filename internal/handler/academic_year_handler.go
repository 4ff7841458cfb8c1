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

// AcademicYearHandler handles admin-facing academic year management.
type AcademicYearHandler struct {
	academicYearService *service.AcademicYearService
}

// NewAcademicYearHandler creates a new AcademicYearHandler.
func NewAcademicYearHandler(academicYearService *service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{academicYearService: academicYearService}
}

// ListAcademicYears godoc
// GET /api/v1/admin/academic-years
// Lists all academic years, newest first.
func (h *AcademicYearHandler) ListAcademicYears(c *gin.Context) {
	years, err := h.academicYearService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if years == nil {
		years = []model.AcademicYear{}
	}

	response.Success(c, http.StatusOK, gin.H{"academic_years": years})
}

// CreateAcademicYear godoc
// POST /api/v1/admin/academic-years
// Opens a new academic year semester, optionally making it the active one.
func (h *AcademicYearHandler) CreateAcademicYear(c *gin.Context) {
	var req model.CreateAcademicYearRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	year, err := h.academicYearService.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAcademicYear) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"academic_year": year})
}

// ActivateAcademicYear godoc
// POST /api/v1/admin/academic-years/:id/activate
// Makes the academic year the active one and deactivates the others.
func (h *AcademicYearHandler) ActivateAcademicYear(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.academicYearService.Activate(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAcademicYearNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "academic year activated"})
}
