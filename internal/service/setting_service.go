package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/grading"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

// ErrInvalidGradingScale wraps a rejected boundary table.
var ErrInvalidGradingScale = errors.New("invalid grading scale")

type SettingService struct {
	settingRepo *repository.SettingRepository
	studentRepo *repository.StudentRepository
	grading     *GradingService
	log         zerolog.Logger
}

func NewSettingService(
	settingRepo *repository.SettingRepository,
	studentRepo *repository.StudentRepository,
	grading *GradingService,
	log zerolog.Logger,
) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		studentRepo: studentRepo,
		grading:     grading,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string)
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// UpdateSettings writes the given settings. A grading_scale value is
// validated and, once stored, triggers a full recalculation.
func (s *SettingService) UpdateSettings(ctx context.Context, settingsMap map[string]string) error {
	raw, scaleChanged := settingsMap[model.SettingGradingScale]
	if scaleChanged {
		scale, err := grading.ParseScale([]byte(raw))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGradingScale, err)
		}
		canonical, err := scale.MarshalJSON()
		if err != nil {
			return err
		}
		settingsMap[model.SettingGradingScale] = string(canonical)
	}

	if err := s.settingRepo.UpsertMany(ctx, settingsMap); err != nil {
		s.log.Error().Err(err).Msg("failed to update settings")
		return err
	}

	if scaleChanged {
		s.gradingScaleChanged(ctx)
	}
	return nil
}

// GradingScale returns the active boundary table.
func (s *SettingService) GradingScale(ctx context.Context) []grading.Boundary {
	return s.grading.Engine(ctx).Scale().Boundaries()
}

// UpdateGradingScale validates and stores a new boundary table.
func (s *SettingService) UpdateGradingScale(ctx context.Context, raw []byte) ([]grading.Boundary, error) {
	if err := s.UpdateSettings(ctx, map[string]string{model.SettingGradingScale: string(raw)}); err != nil {
		return nil, err
	}
	return s.GradingScale(ctx), nil
}

func (s *SettingService) gradingScaleChanged(ctx context.Context) {
	s.grading.InvalidateAll(ctx)

	ids, err := s.studentRepo.ListIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list students after grading scale change")
		return
	}
	if err := s.grading.QueueRecalculation(ctx, ids...); err != nil {
		s.log.Error().Err(err).Msg("failed to queue recalculation after grading scale change")
		return
	}
	s.log.Info().Int("students", len(ids)).Msg("Grading scale changed, recalculation queued")
}

func (s *SettingService) GetSettingByKey(ctx context.Context, key string) (string, error) {
	setting, err := s.settingRepo.GetByKey(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// ErrSettingNotFound is returned for an unset key.
var ErrSettingNotFound = errors.New("setting not found")
