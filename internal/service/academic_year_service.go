package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

var (
	ErrAcademicYearNotFound = errors.New("academic year not found")
	ErrNoActiveAcademicYear = errors.New("no academic year is active")
)

// AcademicYearService manages academic years.
type AcademicYearService struct {
	yearRepo *repository.AcademicYearRepository
}

// NewAcademicYearService creates a new AcademicYearService.
func NewAcademicYearService(yearRepo *repository.AcademicYearRepository) *AcademicYearService {
	return &AcademicYearService{yearRepo: yearRepo}
}

func (s *AcademicYearService) List(ctx context.Context) ([]model.AcademicYear, error) {
	return s.yearRepo.List(ctx)
}

func (s *AcademicYearService) Active(ctx context.Context) (*model.AcademicYear, error) {
	ay, err := s.yearRepo.GetActive(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveAcademicYear
	}
	return ay, err
}

func (s *AcademicYearService) Create(ctx context.Context, req model.CreateAcademicYearRequest) (*model.AcademicYear, error) {
	ay := &model.AcademicYear{Year: req.Year, Semester: req.Semester, IsActive: req.IsActive}
	if err := s.yearRepo.Create(ctx, ay); err != nil {
		return nil, err
	}
	return ay, nil
}

// Ensure returns the year/semester, creating it when missing.
func (s *AcademicYearService) Ensure(ctx context.Context, year string, semester int, active bool) (*model.AcademicYear, error) {
	ay := &model.AcademicYear{Year: year, Semester: semester, IsActive: active}
	if err := s.yearRepo.FindOrCreate(ctx, ay); err != nil {
		return nil, err
	}
	return ay, nil
}

func (s *AcademicYearService) Activate(ctx context.Context, id int) error {
	err := s.yearRepo.Activate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAcademicYearNotFound
	}
	return err
}
