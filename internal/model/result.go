package model

import (
	"time"

	"github.com/stemsi/wma-backend/internal/grading"
)

// Result is a student's score in one unit. Grade and Points are derived from
// the score when the result is written.
type Result struct {
	ID        int           `json:"id"`
	StudentID int           `json:"student_id"`
	UnitID    int           `json:"unit_id"`
	Score     int           `json:"score"`
	Grade     grading.Grade `json:"grade"`
	Points    int           `json:"points"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ResultDetail is a Result joined with its unit.
type ResultDetail struct {
	Result
	UnitCode       string `json:"unit_code"`
	UnitName       string `json:"unit_name"`
	CreditUnits    int    `json:"credit_units"`
	AcademicYearID int    `json:"academic_year_id"`
}

// ScoredUnit converts the row into the grading engine's input.
func (r ResultDetail) ScoredUnit() grading.ScoredUnit {
	score := r.Score
	return grading.ScoredUnit{
		UnitCode:    r.UnitCode,
		UnitName:    r.UnitName,
		CreditUnits: r.CreditUnits,
		Score:       &score,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateResultRequest records a score for a student.
type CreateResultRequest struct {
	StudentID int  `json:"student_id" binding:"required,min=1"`
	UnitID    int  `json:"unit_id" binding:"required,min=1"`
	Score     *int `json:"score" binding:"required,min=0,max=100"`
}

// UpdateResultRequest corrects a recorded score.
type UpdateResultRequest struct {
	Score *int `json:"score" binding:"required,min=0,max=100"`
}

// ResultListQuery filters the admin result list.
type ResultListQuery struct {
	StudentID      int `form:"student_id" binding:"omitempty,min=1"`
	AcademicYearID int `form:"academic_year_id" binding:"omitempty,min=1"`
}
