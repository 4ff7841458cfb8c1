package model

import "time"

// AcademicYear is one semester of an academic year, e.g. 2024/2025 semester 1.
type AcademicYear struct {
	ID        int       `json:"id"`
	Year      string    `json:"year"`
	Semester  int       `json:"semester"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAcademicYearRequest is the payload for opening a new academic year.
type CreateAcademicYearRequest struct {
	Year     string `json:"year" binding:"required,len=9"`
	Semester int    `json:"semester" binding:"required,oneof=1 2"`
	IsActive bool   `json:"is_active"`
}
