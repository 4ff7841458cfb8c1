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

// ResultHandler handles recording and correcting unit scores.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/admin/results?student_id=&academic_year_id=
func (h *ResultHandler) ListResults(c *gin.Context) {
	var q model.ResultListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results, err := h.resultService.List(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.ResultDetail{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// CreateResult godoc
// POST /api/v1/admin/results
// Records a score. Grade and points are derived server-side and the
// student's GPA is queued for recalculation.
func (h *ResultHandler) CreateResult(c *gin.Context) {
	var req model.CreateResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Create(c.Request.Context(), req)
	if err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// UpdateResult godoc
// PUT /api/v1/admin/results/:id
func (h *ResultHandler) UpdateResult(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Update(c.Request.Context(), id, req)
	if err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// DeleteResult godoc
// DELETE /api/v1/admin/results/:id
func (h *ResultHandler) DeleteResult(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.resultService.Delete(c.Request.Context(), id); err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "result deleted successfully"})
}

func failResult(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnitNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUnitNotFound)
	case errors.Is(err, repository.ErrUnknownRef):
		response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
	case errors.Is(err, repository.ErrDuplicateResult):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateResult)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
