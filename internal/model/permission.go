package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionStudentsRead allows viewing student lists, details and standings.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows creating, updating and deleting students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionStudentsResetSession allows resetting a student's active session.
	PermissionStudentsResetSession Permission = "students:reset_session"

	// PermissionAcademicYearsRead allows viewing academic years.
	PermissionAcademicYearsRead Permission = "academic_years:read"

	// PermissionAcademicYearsWrite allows creating academic years and switching the active one.
	PermissionAcademicYearsWrite Permission = "academic_years:write"

	// PermissionUnitsRead allows viewing the unit catalogue.
	PermissionUnitsRead Permission = "units:read"

	// PermissionUnitsWrite allows creating, updating and deleting units.
	PermissionUnitsWrite Permission = "units:write"

	// PermissionResultsRead allows viewing recorded results.
	PermissionResultsRead Permission = "results:read"

	// PermissionResultsWrite allows recording, correcting and deleting results.
	PermissionResultsWrite Permission = "results:write"

	// PermissionGradesRecalculate allows queueing GPA recalculations.
	PermissionGradesRecalculate Permission = "grades:recalculate"

	// PermissionSettingsRead allows viewing application settings.
	PermissionSettingsRead Permission = "settings:read"

	// PermissionSettingsWrite allows editing application settings, including the grading scale.
	PermissionSettingsWrite Permission = "settings:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionStudentsRead,
	PermissionStudentsWrite,
	PermissionStudentsResetSession,
	PermissionAcademicYearsRead,
	PermissionAcademicYearsWrite,
	PermissionUnitsRead,
	PermissionUnitsWrite,
	PermissionResultsRead,
	PermissionResultsWrite,
	PermissionGradesRecalculate,
	PermissionSettingsRead,
	PermissionSettingsWrite,
}
