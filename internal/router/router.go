package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/handler"
	"github.com/stemsi/wma-backend/internal/middleware"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Admin         *handler.AdminHandler
	AcademicYear  *handler.AcademicYearHandler
	Unit          *handler.UnitHandler
	Result        *handler.ResultHandler
	Setting       *handler.SettingHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	authLimiter middleware.Limiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(300))
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		rateLimited := middleware.RateLimit(authLimiter, log)
		auth.POST("/student/login", rateLimited, handlers.Auth.StudentLogin)
		auth.POST("/admin/login", rateLimited, handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/student/logout",
			middleware.RequireStudentJWT(authService),
			middleware.CheckStudentSession(authService),
			handlers.Auth.StudentLogout,
		)
		auth.GET("/student/me",
			middleware.RequireStudentJWT(authService),
			middleware.CheckStudentSession(authService),
			handlers.Auth.GetStudentProfile,
		)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Group (JWT + Current Session) ──────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.NoStore(),
		middleware.RequireStudentJWT(authService),
		middleware.CheckStudentSession(authService),
	)
	{
		studentAPI.GET("/dashboard", handlers.StudentPortal.GetDashboard)
		studentAPI.GET("/transcript", handlers.StudentPortal.GetTranscript)
		studentAPI.GET("/units", handlers.StudentPortal.GetUnits)
		studentAPI.GET("/projection", handlers.StudentPortal.GetProjections)
		studentAPI.POST("/projection", handlers.StudentPortal.ProjectTarget)
		studentAPI.GET("/analytics", handlers.StudentPortal.GetAnalytics)
		studentAPI.GET("/alerts", handlers.StudentPortal.GetAlerts)
		studentAPI.POST("/alerts/:id/read", handlers.StudentPortal.MarkAlertRead)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentWSAuth(authService),
		middleware.CheckStudentSession(authService),
	)
	{
		ws.GET("/student/gpa/stream", handlers.WS.GPAStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.NoStore(), middleware.RequireAdminJWT(authService))
	{
		// Academic years
		adminAPI.GET("/academic-years",
			middleware.RequirePermission(model.PermissionAcademicYearsRead),
			handlers.AcademicYear.ListAcademicYears,
		)
		adminAPI.POST("/academic-years",
			middleware.RequirePermission(model.PermissionAcademicYearsWrite),
			handlers.AcademicYear.CreateAcademicYear,
		)
		adminAPI.POST("/academic-years/:id/activate",
			middleware.RequirePermission(model.PermissionAcademicYearsWrite),
			handlers.AcademicYear.ActivateAcademicYear,
		)

		// Units
		unitsGroup := adminAPI.Group("/units")
		{
			unitsGroup.GET("", middleware.RequirePermission(model.PermissionUnitsRead), handlers.Unit.List)
			unitsGroup.POST("", middleware.RequirePermission(model.PermissionUnitsWrite), handlers.Unit.Create)
			unitsGroup.PUT("/:id", middleware.RequirePermission(model.PermissionUnitsWrite), handlers.Unit.Update)
			unitsGroup.DELETE("/:id", middleware.RequirePermission(model.PermissionUnitsWrite), handlers.Unit.Delete)
		}

		// Student management
		adminAPI.GET("/students",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.ListStudents,
		)
		adminAPI.POST("/students",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.CreateStudent,
		)
		adminAPI.POST("/students/recalculate",
			middleware.RequirePermission(model.PermissionGradesRecalculate),
			handlers.StudentMgmt.RecalculateAll,
		)
		adminAPI.GET("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.GetStudent,
		)
		adminAPI.PUT("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.UpdateStudent,
		)
		adminAPI.DELETE("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.DeleteStudent,
		)
		adminAPI.POST("/students/:id/reset-session",
			middleware.RequirePermission(model.PermissionStudentsResetSession),
			handlers.StudentMgmt.ResetStudentSession,
		)
		adminAPI.GET("/students/:id/gpa",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.GetStudentGPA,
		)
		adminAPI.POST("/students/:id/recalculate",
			middleware.RequirePermission(model.PermissionGradesRecalculate),
			handlers.StudentMgmt.RecalculateStudent,
		)

		// Results
		resultsGroup := adminAPI.Group("/results")
		{
			resultsGroup.GET("", middleware.RequirePermission(model.PermissionResultsRead), handlers.Result.ListResults)
			resultsGroup.POST("", middleware.RequirePermission(model.PermissionResultsWrite), handlers.Result.CreateResult)
			resultsGroup.PUT("/:id", middleware.RequirePermission(model.PermissionResultsWrite), handlers.Result.UpdateResult)
			resultsGroup.DELETE("/:id", middleware.RequirePermission(model.PermissionResultsWrite), handlers.Result.DeleteResult)
		}

		// Roles for selection
		adminAPI.GET("/roles", handlers.Admin.ListRoles) // Open to all admins

		// System Monitoring
		adminAPI.GET("/system/metrics",
			handlers.System.SystemMetrics, // Open to all admins
		)

		// App Settings Routes
		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", middleware.RequirePermission(model.PermissionSettingsRead), handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", middleware.RequirePermission(model.PermissionSettingsWrite), handlers.Setting.UpdateSettings)
			settingsGroup.GET("/grading-scale", middleware.RequirePermission(model.PermissionSettingsRead), handlers.Setting.GetGradingScale)
			settingsGroup.PUT("/grading-scale", middleware.RequirePermission(model.PermissionSettingsWrite), handlers.Setting.UpdateGradingScale)
		}
	}

	return router
}
