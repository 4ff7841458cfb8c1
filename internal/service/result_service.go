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

// ErrResultNotFound is returned when no result matches the id.
var ErrResultNotFound = errors.New("result not found")

// ResultService records scores and keeps derived standings fresh.
type ResultService struct {
	resultRepo *repository.ResultRepository
	unitRepo   *repository.UnitRepository
	grading    *GradingService
	log        zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	resultRepo *repository.ResultRepository,
	unitRepo *repository.UnitRepository,
	grading *GradingService,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		resultRepo: resultRepo,
		unitRepo:   unitRepo,
		grading:    grading,
		log:        log.With().Str("component", "result_service").Logger(),
	}
}

// List returns results matching the filter.
func (s *ResultService) List(ctx context.Context, q model.ResultListQuery) ([]model.ResultDetail, error) {
	return s.resultRepo.List(ctx, q)
}

// Create records a score. Grade and points are derived from the active scale
// and the unit's credit units.
func (s *ResultService) Create(ctx context.Context, req model.CreateResultRequest) (*model.Result, error) {
	unit, err := s.unitRepo.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}

	res := &model.Result{StudentID: req.StudentID, UnitID: req.UnitID, Score: *req.Score}
	s.derive(ctx, res, unit.CreditUnits)

	if err := s.resultRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("student_id", res.StudentID).
		Str("unit", unit.Code).
		Int("score", res.Score).
		Str("grade", string(res.Grade)).
		Msg("Result recorded")

	s.grading.ResultsChanged(ctx, res.StudentID)
	return res, nil
}

// Update corrects a recorded score.
func (s *ResultService) Update(ctx context.Context, id int, req model.UpdateResultRequest) (*model.Result, error) {
	current, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}

	res := &model.Result{ID: id, Score: *req.Score}
	s.derive(ctx, res, current.CreditUnits)

	if err := s.resultRepo.UpdateScore(ctx, res); err != nil {
		return nil, fmt.Errorf("update result: %w", err)
	}

	s.log.Info().
		Int("result_id", id).
		Int("old_score", current.Score).
		Int("new_score", res.Score).
		Msg("Result corrected")

	s.grading.ResultsChanged(ctx, res.StudentID)
	return res, nil
}

// Delete removes a result.
func (s *ResultService) Delete(ctx context.Context, id int) error {
	studentID, err := s.resultRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResultNotFound
		}
		return err
	}
	s.grading.ResultsChanged(ctx, studentID)
	return nil
}

// BulkCreate records many scores at once, skipping pairs that already have a
// result. Used by the seeder.
func (s *ResultService) BulkCreate(ctx context.Context, studentID int, scores map[int]int) (int, error) {
	results := make([]model.Result, 0, len(scores))
	for unitID, score := range scores {
		unit, err := s.unitRepo.GetByID(ctx, unitID)
		if err != nil {
			return 0, fmt.Errorf("load unit %d: %w", unitID, err)
		}
		res := model.Result{StudentID: studentID, UnitID: unitID, Score: score}
		s.derive(ctx, &res, unit.CreditUnits)
		results = append(results, res)
	}

	inserted, err := s.resultRepo.BulkCreate(ctx, results)
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		s.grading.ResultsChanged(ctx, studentID)
	}
	return inserted, nil
}

func (s *ResultService) derive(ctx context.Context, res *model.Result, creditUnits int) {
	res.Grade = s.grading.Engine(ctx).Classify(res.Score).Grade
	res.Points = res.Score * creditUnits
}
