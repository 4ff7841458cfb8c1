package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

// ErrUnitNotFound is returned when no unit matches the id.
var ErrUnitNotFound = errors.New("unit not found")

// UnitService manages the unit catalogue.
type UnitService struct {
	unitRepo *repository.UnitRepository
	yearRepo *repository.AcademicYearRepository
	grading  *GradingService
	log      zerolog.Logger
}

// NewUnitService creates a new UnitService.
func NewUnitService(
	unitRepo *repository.UnitRepository,
	yearRepo *repository.AcademicYearRepository,
	grading *GradingService,
	log zerolog.Logger,
) *UnitService {
	return &UnitService{
		unitRepo: unitRepo,
		yearRepo: yearRepo,
		grading:  grading,
		log:      log.With().Str("component", "unit_service").Logger(),
	}
}

// List returns units, optionally for one academic year.
func (s *UnitService) List(ctx context.Context, academicYearID int) ([]model.Unit, error) {
	return s.unitRepo.List(ctx, academicYearID)
}

// Create adds a unit to an existing academic year.
func (s *UnitService) Create(ctx context.Context, req model.CreateUnitRequest) (*model.Unit, error) {
	if _, err := s.yearRepo.GetByID(ctx, req.AcademicYearID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAcademicYearNotFound
		}
		return nil, fmt.Errorf("load academic year: %w", err)
	}

	u := &model.Unit{
		Code:           req.Code,
		Name:           req.Name,
		CreditUnits:    req.CreditUnits,
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.unitRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update edits a unit. A change of credit units moves the standing of every
// student with a result in it, so they are all recalculated.
func (s *UnitService) Update(ctx context.Context, id int, req model.UpdateUnitRequest) (*model.Unit, error) {
	current, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}

	u := &model.Unit{
		ID:             id,
		Code:           req.Code,
		Name:           req.Name,
		CreditUnits:    req.CreditUnits,
		AcademicYearID: current.AcademicYearID,
		CreatedAt:      current.CreatedAt,
	}
	if err := s.unitRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	if current.CreditUnits != u.CreditUnits {
		ids, err := s.unitRepo.StudentIDsForUnit(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Int("unit_id", id).Msg("Failed to list affected students")
		} else {
			s.log.Info().Int("unit_id", id).Int("students", len(ids)).Msg("Credit units changed, recalculating")
			s.grading.ResultsChanged(ctx, ids...)
		}
	}
	return u, nil
}

// Delete removes a unit without results.
func (s *UnitService) Delete(ctx context.Context, id int) error {
	err := s.unitRepo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnitNotFound
	}
	return err
}
