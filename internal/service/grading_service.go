package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/grading"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

// recentResultsLimit is how many of the latest results the dashboard shows.
const recentResultsLimit = 5

// Standing is a student's aggregate together with how it was obtained.
type Standing struct {
	Status         grading.OutcomeStatus   `json:"status"`
	Record         grading.AggregateRecord `json:"record"`
	AcademicYearID int                     `json:"academic_year_id,omitempty"`
}

// Dashboard is the landing page payload of the student portal.
type Dashboard struct {
	Standing            Standing                   `json:"standing"`
	Distribution        map[grading.Grade]int      `json:"grade_distribution"`
	RecentResults       []grading.TranscriptEntry  `json:"recent_results"`
	Alerts              []grading.Alert            `json:"alerts"`
	Projections         []grading.ProjectionResult `json:"projections"`
	UnreadNotifications int                        `json:"unread_notifications"`
}

// Transcript is the full list of graded units with the aggregate.
type Transcript struct {
	Standing     Standing                  `json:"standing"`
	Entries      []grading.TranscriptEntry `json:"entries"`
	Distribution map[grading.Grade]int     `json:"grade_distribution"`
}

// Recalculation is everything the recalc worker persists for one student.
type Recalculation struct {
	StudentID int
	Overall   grading.Outcome
	PerYear   map[int]grading.Outcome
	Analytics grading.AnalyticsSnapshot
	Alerts    []grading.Alert
	// ResultCount is the number of results the recalculation read.
	ResultCount int
	// CacheGen is the cache generation read before the results were loaded.
	CacheGen cacheGen
}

// GradingService runs the grading engine over stored results.
type GradingService struct {
	cfg         *config.Config
	rdb         *redis.Client
	resultRepo  *repository.ResultRepository
	settingRepo *repository.SettingRepository
	notifRepo   *repository.NotificationRepository
	gpaRepo     *repository.GPARepository
	log         zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	cfg *config.Config,
	rdb *redis.Client,
	resultRepo *repository.ResultRepository,
	settingRepo *repository.SettingRepository,
	notifRepo *repository.NotificationRepository,
	gpaRepo *repository.GPARepository,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		cfg:         cfg,
		rdb:         rdb,
		resultRepo:  resultRepo,
		settingRepo: settingRepo,
		notifRepo:   notifRepo,
		gpaRepo:     gpaRepo,
		log:         log.With().Str("component", "grading_service").Logger(),
	}
}

// ─── Engine & inputs ────────────────────────────────────────────────

// Engine returns an engine configured with the active grading scale. A missing
// or unreadable scale setting falls back to the default scale.
func (s *GradingService) Engine(ctx context.Context) *grading.Engine {
	return grading.NewEngine(s.activeScale(ctx), s.cfg.ProjectionCreditWeight)
}

func (s *GradingService) activeScale(ctx context.Context) grading.Scale {
	key := config.CacheKey.GradingScaleKey()

	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		if scale, err := grading.ParseScale(raw); err == nil {
			return scale
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Failed to read cached grading scale")
	}

	setting, err := s.settingRepo.GetByKey(ctx, model.SettingGradingScale)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn().Err(err).Msg("Failed to load grading scale, using default")
		}
		return grading.DefaultScale()
	}

	scale, err := grading.ParseScale([]byte(setting.Value))
	if err != nil {
		s.log.Error().Err(err).Msg("Stored grading scale is invalid, using default")
		return grading.DefaultScale()
	}

	if err := s.rdb.Set(ctx, key, setting.Value, s.cfg.GPACacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache grading scale")
	}
	return scale
}

// ScoredUnits loads a student's results in creation order. A zero
// academicYearID loads every year.
func (s *GradingService) ScoredUnits(ctx context.Context, studentID, academicYearID int) ([]grading.ScoredUnit, error) {
	rows, err := s.resultRepo.ListByStudent(ctx, studentID, academicYearID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return toScoredUnits(rows), nil
}

func toScoredUnits(rows []model.ResultDetail) []grading.ScoredUnit {
	units := make([]grading.ScoredUnit, 0, len(rows))
	for _, r := range rows {
		units = append(units, r.ScoredUnit())
	}
	return units
}

// ─── Standing (cached) ──────────────────────────────────────────────

// Standing returns the student's aggregate, served from Redis when cached.
// Degraded outcomes are logged and never cached.
func (s *GradingService) Standing(ctx context.Context, studentID, academicYearID int) (Standing, error) {
	key := s.standingKey(studentID, academicYearID)

	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached Standing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.log.Warn().Str("key", key).Msg("Discarding unreadable cached standing")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read cached standing")
	}

	gen, genErr := s.currentGen(ctx, studentID)
	if genErr != nil {
		s.log.Warn().Err(genErr).Int("student_id", studentID).Msg("Failed to read cache generation")
	}

	units, err := s.ScoredUnits(ctx, studentID, academicYearID)
	if err != nil {
		return Standing{}, err
	}

	out := s.aggregate(s.Engine(ctx), studentID, units)
	standing := Standing{Status: out.Status, Record: out.Record, AcademicYearID: academicYearID}
	if out.Degraded() || genErr != nil {
		return standing, nil
	}

	s.cacheStanding(ctx, studentID, gen, key, standing)
	return standing, nil
}

func (s *GradingService) cacheStanding(ctx context.Context, studentID int, gen cacheGen, key string, standing Standing) {
	raw, err := json.Marshal(standing)
	if err != nil {
		return
	}
	err = s.setIfCurrent(ctx, studentID, gen, key, raw)
	switch {
	case errors.Is(err, errStaleStanding):
		s.log.Debug().Str("key", key).Msg("Standing invalidated while computing, not cached")
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache standing")
	}
}

func (s *GradingService) standingKey(studentID, academicYearID int) string {
	if academicYearID > 0 {
		return config.CacheKey.StudentYearGPAKey(studentID, academicYearID)
	}
	return config.CacheKey.StudentGPAKey(studentID)
}

func (s *GradingService) aggregate(engine *grading.Engine, studentID int, units []grading.ScoredUnit) grading.Outcome {
	out := engine.Aggregate(units)
	if out.Degraded() {
		s.log.Error().
			Err(out.Fault).
			Int("student_id", studentID).
			Int("units", len(units)).
			Msg("GPA computation degraded")
	}
	return out
}

// Invalidate drops every cached standing of the student. Standings computed
// before the call are not cached afterwards.
func (s *GradingService) Invalidate(ctx context.Context, studentID int) {
	if err := s.bumpGen(ctx, config.CacheKey.StudentGPAGenKey(studentID)); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Failed to bump cache generation")
	}
	s.deleteMatching(ctx, config.CacheKey.StudentGPAKeyPattern(studentID))
}

// InvalidateAll drops every cached standing and the cached scale.
func (s *GradingService) InvalidateAll(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.GradingScaleKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to drop cached grading scale")
	}
	if err := s.bumpGen(ctx, config.CacheKey.GPAGenKey()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to bump global cache generation")
	}
	s.deleteMatching(ctx, "student:*gpa")
}

func (s *GradingService) deleteMatching(ctx context.Context, pattern string) {
	iter := s.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("Failed to scan cache keys")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("Failed to drop cache keys")
	}
}

// ─── Recalculation queue ────────────────────────────────────────────

// QueueRecalculation asks the recalc worker to recompute the given students.
func (s *GradingService) QueueRecalculation(ctx context.Context, studentIDs ...int) error {
	if len(studentIDs) == 0 {
		return nil
	}
	values := make([]interface{}, len(studentIDs))
	for i, id := range studentIDs {
		values[i] = id
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.RecalcGPAQueue, values...).Err(); err != nil {
		return fmt.Errorf("queue recalculation: %w", err)
	}
	return nil
}

// ResultsChanged invalidates the student's cache and queues a recalculation.
func (s *GradingService) ResultsChanged(ctx context.Context, studentIDs ...int) {
	for _, id := range studentIDs {
		s.Invalidate(ctx, id)
	}
	if err := s.QueueRecalculation(ctx, studentIDs...); err != nil {
		s.log.Error().Err(err).Ints("student_ids", studentIDs).Msg("Failed to queue recalculation")
	}
}

// Recalculate computes everything the recalc worker stores for one student.
func (s *GradingService) Recalculate(ctx context.Context, engine *grading.Engine, studentID int) (*Recalculation, error) {
	gen, err := s.currentGen(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("read cache generation for student %d: %w", studentID, err)
	}
	rows, err := s.resultRepo.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return nil, fmt.Errorf("load results for student %d: %w", studentID, err)
	}
	rc := buildRecalculation(engine, studentID, rows, func(out grading.Outcome, n int) {
		s.log.Error().Err(out.Fault).Int("student_id", studentID).Int("units", n).Msg("GPA computation degraded")
	})
	rc.CacheGen = gen
	return rc, nil
}

func buildRecalculation(engine *grading.Engine, studentID int, rows []model.ResultDetail, onDegraded func(grading.Outcome, int)) *Recalculation {
	units := toScoredUnits(rows)
	byYear := make(map[int][]grading.ScoredUnit)
	for _, r := range rows {
		byYear[r.AcademicYearID] = append(byYear[r.AcademicYearID], r.ScoredUnit())
	}

	rc := &Recalculation{
		StudentID:   studentID,
		ResultCount: len(rows),
		Overall:     engine.Aggregate(units),
		PerYear:     make(map[int]grading.Outcome, len(byYear)),
		Analytics:   engine.Analyze(units),
	}
	if rc.Overall.Degraded() && onDegraded != nil {
		onDegraded(rc.Overall, len(units))
	}
	for yearID, yearUnits := range byYear {
		rc.PerYear[yearID] = engine.Aggregate(yearUnits)
	}
	rc.Alerts = engine.Evaluate(units, rc.Overall.Record)
	return rc
}

// CacheStanding stores the overall standing of a recalculation unless the
// student's cache was invalidated after its results were read.
func (s *GradingService) CacheStanding(ctx context.Context, rc *Recalculation) {
	if rc.Overall.Degraded() {
		return
	}
	standing := Standing{Status: rc.Overall.Status, Record: rc.Overall.Record}
	s.cacheStanding(ctx, rc.StudentID, rc.CacheGen, config.CacheKey.StudentGPAKey(rc.StudentID), standing)
}

// ─── Portal payloads ────────────────────────────────────────────────

// Dashboard builds the student portal landing page.
func (s *GradingService) Dashboard(ctx context.Context, studentID int) (*Dashboard, error) {
	units, err := s.ScoredUnits(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	standing, err := s.Standing(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.ListByStudent(ctx, studentID, true)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	d := buildDashboard(s.Engine(ctx), units, standing, s.cfg.DefaultRemainingUnits)
	d.UnreadNotifications = len(unread)
	return d, nil
}

func buildDashboard(engine *grading.Engine, units []grading.ScoredUnit, standing Standing, remaining int) *Dashboard {
	return &Dashboard{
		Standing:      standing,
		Distribution:  engine.Distribution(units),
		RecentResults: recentEntries(engine, units, recentResultsLimit),
		Alerts:        engine.Evaluate(units, standing.Record),
		Projections:   engine.ProjectTargets(standing.Record, grading.DefaultTargets(), remaining),
	}
}

// recentEntries returns the n most recently created scored units, newest first.
func recentEntries(engine *grading.Engine, units []grading.ScoredUnit, n int) []grading.TranscriptEntry {
	ordered := make([]grading.ScoredUnit, 0, len(units))
	for _, u := range units {
		if u.Scored() {
			ordered = append(ordered, u)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.After(ordered[j].CreatedAt) })
	if len(ordered) > n {
		ordered = ordered[:n]
	}

	entries := make([]grading.TranscriptEntry, 0, len(ordered))
	for _, u := range ordered {
		g := engine.Classify(*u.Score)
		entries = append(entries, grading.TranscriptEntry{
			Code:        u.UnitCode,
			Name:        u.UnitName,
			CreditUnits: u.CreditUnits,
			Score:       *u.Score,
			Grade:       g.Grade,
			Points:      u.Points(),
			HonorsLabel: g.HonorsLabel,
		})
	}
	return entries
}

// Transcript lists the student's graded units for one academic year, or all
// years when academicYearID is zero.
func (s *GradingService) Transcript(ctx context.Context, studentID, academicYearID int) (*Transcript, error) {
	units, err := s.ScoredUnits(ctx, studentID, academicYearID)
	if err != nil {
		return nil, err
	}
	standing, err := s.Standing(ctx, studentID, academicYearID)
	if err != nil {
		return nil, err
	}
	engine := s.Engine(ctx)
	return &Transcript{
		Standing:     standing,
		Entries:      engine.Transcript(units),
		Distribution: engine.Distribution(units),
	}, nil
}

// ProjectDefaults projects every default honours target. A non-positive
// remaining uses the configured default.
func (s *GradingService) ProjectDefaults(ctx context.Context, studentID, remaining int) ([]grading.ProjectionResult, error) {
	if remaining < 1 {
		remaining = s.cfg.DefaultRemainingUnits
	}
	standing, err := s.Standing(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	return s.Engine(ctx).ProjectTargets(standing.Record, grading.DefaultTargets(), remaining), nil
}

// Project computes the average needed to reach one target.
func (s *GradingService) Project(ctx context.Context, studentID int, req model.ProjectionRequest) (grading.ProjectionResult, error) {
	standing, err := s.Standing(ctx, studentID, 0)
	if err != nil {
		return grading.ProjectionResult{}, err
	}
	return s.Engine(ctx).Project(standing.Record, decimal.NewFromInt(int64(req.TargetGPA)), req.RemainingUnits), nil
}

// Analytics returns the stored snapshot when it is at least as new as the
// latest result, and computes a fresh one otherwise.
func (s *GradingService) Analytics(ctx context.Context, studentID int) (grading.AnalyticsSnapshot, error) {
	rows, err := s.resultRepo.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return grading.AnalyticsSnapshot{}, fmt.Errorf("load results: %w", err)
	}

	stored, err := s.gpaRepo.GetAnalytics(ctx, studentID)
	if err == nil && snapshotCurrent(stored, rows) {
		var snap grading.AnalyticsSnapshot
		if err := json.Unmarshal(stored.Payload, &snap); err == nil {
			return snap, nil
		}
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Failed to load stored analytics")
	}

	return s.Engine(ctx).Analyze(toScoredUnits(rows)), nil
}

// snapshotCurrent reports whether a stored snapshot still reflects rows: no
// result was added or removed since, and none was updated after it.
func snapshotCurrent(stored *model.AnalyticsRecord, rows []model.ResultDetail) bool {
	return stored.ResultCount == len(rows) && !resultsNewerThan(rows, stored.CalculatedAt)
}

func resultsNewerThan(rows []model.ResultDetail, t time.Time) bool {
	for _, r := range rows {
		if r.UpdatedAt.After(t) {
			return true
		}
	}
	return false
}

// Alerts evaluates the live alert rules for a student.
func (s *GradingService) Alerts(ctx context.Context, studentID int) ([]grading.Alert, error) {
	units, err := s.ScoredUnits(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	standing, err := s.Standing(ctx, studentID, 0)
	if err != nil {
		return nil, err
	}
	return s.Engine(ctx).Evaluate(units, standing.Record), nil
}

// StoredStandings returns the persisted aggregates of a student.
func (s *GradingService) StoredStandings(ctx context.Context, studentID int) ([]model.GPACalculation, error) {
	return s.gpaRepo.ListByStudent(ctx, studentID)
}
