package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
	"github.com/stemsi/wma-backend/internal/response"
)

// ErrStudentNotFound is returned when no student matches the lookup.
var ErrStudentNotFound = errors.New("student not found")

// StudentService handles student business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authService *AuthService
	grading     *GradingService
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(
	studentRepo *repository.StudentRepository,
	authService *AuthService,
	grading *GradingService,
	log zerolog.Logger,
) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		authService: authService,
		grading:     grading,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetByRegistrationNumber retrieves a student by their registration number.
func (s *StudentService) GetByRegistrationNumber(ctx context.Context, regNo string) (*model.Student, error) {
	student, err := s.studentRepo.GetByRegistrationNumber(ctx, regNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// ListStudents retrieves students with pagination and optional filters.
func (s *StudentService) ListStudents(ctx context.Context, q model.StudentListQuery) ([]model.Student, *response.Pagination, error) {
	page, perPage, offset := response.Paging(q.Page, q.PerPage)

	students, total, err := s.studentRepo.ListPaginated(ctx, q, perPage, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("list students: %w", err)
	}

	return students, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new student with a hashed password.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (*model.Student, error) {
	hashed, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &model.Student{
		RegistrationNumber: req.RegistrationNumber,
		Name:               req.Name,
		Email:              req.Email,
		Course:             req.Course,
		YearOfStudy:        req.YearOfStudy,
		AcademicYear:       req.AcademicYear,
		PasswordHash:       hashed,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Int("student_id", student.ID).Str("registration_number", student.RegistrationNumber).Msg("Student created")
	return student, nil
}

// Update modifies a student's details and replaces the password when one is given.
func (s *StudentService) Update(ctx context.Context, id int, req model.UpdateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		ID:                 id,
		RegistrationNumber: req.RegistrationNumber,
		Name:               req.Name,
		Email:              req.Email,
		Course:             req.Course,
		YearOfStudy:        req.YearOfStudy,
		AcademicYear:       req.AcademicYear,
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if req.Password != "" {
		hashed, err := s.authService.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.studentRepo.UpdatePassword(ctx, id, hashed); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
		// Force a fresh login with the new password.
		if err := s.authService.ResetStudentSession(ctx, id); err != nil {
			s.log.Warn().Err(err).Int("student_id", id).Msg("Failed to reset session after password change")
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes a student and drops their cached standing.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return err
	}
	_ = s.authService.ResetStudentSession(ctx, id)
	s.grading.Invalidate(ctx, id)
	return nil
}

// ListIDs returns every student id.
func (s *StudentService) ListIDs(ctx context.Context) ([]int, error) {
	return s.studentRepo.ListIDs(ctx)
}
