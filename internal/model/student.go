package model

import "time"

// Student represents a student user.
type Student struct {
	ID                 int       `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Course             string    `json:"course"`
	YearOfStudy        int       `json:"year_of_study"`
	AcademicYear       string    `json:"academic_year"`
	PasswordHash       string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"required,reg_number"`
	Password           string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"required,reg_number"`
	Name               string `json:"name" binding:"required,min=2,max=100"`
	Email              string `json:"email" binding:"required,email,max=255"`
	Course             string `json:"course" binding:"required,min=2,max=150"`
	YearOfStudy        int    `json:"year_of_study" binding:"required,min=1,max=4"`
	AcademicYear       string `json:"academic_year" binding:"required,max=20"`
	Password           string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateStudentRequest is the payload for updating an existing student.
// An empty password leaves the current one unchanged.
type UpdateStudentRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"required,reg_number"`
	Name               string `json:"name" binding:"required,min=2,max=100"`
	Email              string `json:"email" binding:"required,email,max=255"`
	Course             string `json:"course" binding:"required,min=2,max=150"`
	YearOfStudy        int    `json:"year_of_study" binding:"required,min=1,max=4"`
	AcademicYear       string `json:"academic_year" binding:"required,max=20"`
	Password           string `json:"password" binding:"omitempty,min=6,max=128"`
}

// StudentListQuery filters the admin student list.
type StudentListQuery struct {
	Search      string `form:"search" binding:"omitempty,max=100"`
	YearOfStudy int    `form:"year_of_study" binding:"omitempty,min=1,max=4"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PerPage     int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}
