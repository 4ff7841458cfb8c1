package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GPACalculation is a persisted aggregate for a student. AcademicYearID is nil
// for the overall record.
type GPACalculation struct {
	ID               int             `json:"id"`
	StudentID        int             `json:"student_id"`
	AcademicYearID   *int            `json:"academic_year_id"`
	GPA              decimal.Decimal `json:"gpa"`
	TotalPoints      decimal.Decimal `json:"total_points"`
	TotalCreditUnits int             `json:"total_credit_units"`
	HonorsLevel      string          `json:"honors_level"`
	CalculatedAt     time.Time       `json:"calculated_at"`
}

// AnalyticsRecord is a persisted analytics snapshot for a student.
// ResultCount is the number of results the snapshot was computed from.
type AnalyticsRecord struct {
	StudentID    int             `json:"student_id"`
	Payload      json.RawMessage `json:"payload"`
	ResultCount  int             `json:"result_count"`
	CalculatedAt time.Time       `json:"calculated_at"`
}

// GPABatch is what one recalculation flush writes. YearsKept holds, for every
// student in the batch, the academic years that still have results; stored
// per-year aggregates of any other year are removed.
type GPABatch struct {
	Calculations []GPACalculation
	Analytics    []AnalyticsRecord
	YearsKept    map[int][]int
}

// Empty reports whether the batch writes nothing.
func (b GPABatch) Empty() bool {
	return len(b.Calculations) == 0 && len(b.Analytics) == 0 && len(b.YearsKept) == 0
}

// ProjectionRequest is the graduation planner form.
type ProjectionRequest struct {
	TargetGPA      int `json:"target_gpa" form:"target_gpa" binding:"required,oneof=70 60 50 40"`
	RemainingUnits int `json:"remaining_units" form:"remaining_units" binding:"required,min=1,max=20"`
}

// ProjectionQuery overrides the default remaining units on the planner page.
type ProjectionQuery struct {
	RemainingUnits int `form:"remaining_units" binding:"omitempty,min=1,max=20"`
}

// StandingQuery scopes a standing to one academic year.
type StandingQuery struct {
	AcademicYearID int `form:"academic_year_id" binding:"omitempty,min=1"`
}
