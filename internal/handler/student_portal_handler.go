package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/wma-backend/internal/middleware"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
	"github.com/stemsi/wma-backend/internal/validator"
)

// StudentPortalHandler serves the authenticated student's own grades.
type StudentPortalHandler struct {
	gradingService      *service.GradingService
	resultService       *service.ResultService
	unitService         *service.UnitService
	academicYearService *service.AcademicYearService
	notificationService *service.NotificationService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	gradingService *service.GradingService,
	resultService *service.ResultService,
	unitService *service.UnitService,
	academicYearService *service.AcademicYearService,
	notificationService *service.NotificationService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		gradingService:      gradingService,
		resultService:       resultService,
		unitService:         unitService,
		academicYearService: academicYearService,
		notificationService: notificationService,
	}
}

// GetDashboard godoc
// GET /api/v1/student/dashboard
// Returns the standing, grade distribution, recent results, live alerts and
// default honours projections.
func (h *StudentPortalHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)

	dashboard, err := h.gradingService.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// GetTranscript godoc
// GET /api/v1/student/transcript?academic_year_id=
// Lists graded units by code with the aggregate for the selected year, or
// for all years.
func (h *StudentPortalHandler) GetTranscript(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var q model.StandingQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	transcript, err := h.gradingService.Transcript(c.Request.Context(), claims.UserID, q.AcademicYearID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, transcript)
}

// GetUnits godoc
// GET /api/v1/student/units
// Lists the units of the active academic year alongside the student's
// recorded results for that year.
func (h *StudentPortalHandler) GetUnits(c *gin.Context) {
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	year, err := h.academicYearService.Active(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveAcademicYear) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveYear)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	units, err := h.unitService.List(ctx, year.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	results, err := h.resultService.List(ctx, model.ResultListQuery{StudentID: claims.UserID, AcademicYearID: year.ID})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"academic_year": year,
		"units":         units,
		"results":       results,
	})
}

// GetProjections godoc
// GET /api/v1/student/projection?remaining_units=
// Projects the average needed for each default honours target.
func (h *StudentPortalHandler) GetProjections(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var q model.ProjectionQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	projections, err := h.gradingService.ProjectDefaults(c.Request.Context(), claims.UserID, q.RemainingUnits)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"projections": projections})
}

// ProjectTarget godoc
// POST /api/v1/student/projection
// Computes the average needed to reach one honours threshold.
func (h *StudentPortalHandler) ProjectTarget(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.ProjectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	projection, err := h.gradingService.Project(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"projection": projection})
}

// GetAnalytics godoc
// GET /api/v1/student/analytics
func (h *StudentPortalHandler) GetAnalytics(c *gin.Context) {
	claims := middleware.GetClaims(c)

	analytics, err := h.gradingService.Analytics(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analytics": analytics})
}

// GetAlerts godoc
// GET /api/v1/student/alerts?unread=true
// Returns the live alerts and the stored notification history.
func (h *StudentPortalHandler) GetAlerts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	alerts, err := h.gradingService.Alerts(ctx, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	notifications, err := h.notificationService.List(ctx, claims.UserID, unreadOnly)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"alerts": alerts, "notifications": notifications})
}

// MarkAlertRead godoc
// POST /api/v1/student/alerts/:id/read
func (h *StudentPortalHandler) MarkAlertRead(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "notification marked as read"})
}
