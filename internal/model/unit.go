package model

import "time"

// Unit is a course unit offered in an academic year.
type Unit struct {
	ID             int       `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	CreditUnits    int       `json:"credit_units"`
	AcademicYearID int       `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUnitRequest is the payload for adding a unit to the catalogue.
type CreateUnitRequest struct {
	Code           string `json:"code" binding:"required,unit_code"`
	Name           string `json:"name" binding:"required,min=2,max=200"`
	CreditUnits    int    `json:"credit_units" binding:"required,min=1,max=10"`
	AcademicYearID int    `json:"academic_year_id" binding:"required,min=1"`
}

// UpdateUnitRequest is the payload for editing a unit.
type UpdateUnitRequest struct {
	Code        string `json:"code" binding:"required,unit_code"`
	Name        string `json:"name" binding:"required,min=2,max=200"`
	CreditUnits int    `json:"credit_units" binding:"required,min=1,max=10"`
}
