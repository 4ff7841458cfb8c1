package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

// GPARepository persists computed aggregates and analytics snapshots.
type GPARepository struct {
	pool *pgxpool.Pool
}

// NewGPARepository creates a new GPARepository.
func NewGPARepository(pool *pgxpool.Pool) *GPARepository {
	return &GPARepository{pool: pool}
}

// SaveBatch writes a recalculation batch in a single transaction: per-year
// aggregates of years a student no longer has results in are deleted, then
// aggregates and analytics are upserted.
func (r *GPARepository) SaveBatch(ctx context.Context, b model.GPABatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for studentID, years := range b.YearsKept {
		if years == nil {
			years = []int{}
		}
		batch.Queue(
			`DELETE FROM gpa_calculations
			 WHERE student_id = $1 AND academic_year_id IS NOT NULL AND academic_year_id <> ALL($2::int[])`,
			studentID, years)
	}
	for _, c := range b.Calculations {
		batch.Queue(
			`INSERT INTO gpa_calculations (student_id, academic_year_id, gpa, total_points, total_credit_units, honors_level, calculated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (student_id, COALESCE(academic_year_id, 0)) DO UPDATE SET
			   gpa = EXCLUDED.gpa,
			   total_points = EXCLUDED.total_points,
			   total_credit_units = EXCLUDED.total_credit_units,
			   honors_level = EXCLUDED.honors_level,
			   calculated_at = EXCLUDED.calculated_at`,
			c.StudentID, c.AcademicYearID, c.GPA, c.TotalPoints, c.TotalCreditUnits, c.HonorsLevel, c.CalculatedAt)
	}
	for _, s := range b.Analytics {
		batch.Queue(
			`INSERT INTO analytics_snapshots (student_id, payload, result_count, calculated_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (student_id) DO UPDATE SET
			   payload = EXCLUDED.payload,
			   result_count = EXCLUDED.result_count,
			   calculated_at = EXCLUDED.calculated_at`,
			s.StudentID, s.Payload, s.ResultCount, s.CalculatedAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListByStudent returns a student's stored aggregates, overall first.
func (r *GPARepository) ListByStudent(ctx context.Context, studentID int) ([]model.GPACalculation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, academic_year_id, gpa, total_points, total_credit_units, honors_level, calculated_at
		 FROM gpa_calculations WHERE student_id = $1
		 ORDER BY academic_year_id NULLS FIRST`, studentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.GPACalculation, error) {
		var c model.GPACalculation
		err := row.Scan(&c.ID, &c.StudentID, &c.AcademicYearID, &c.GPA, &c.TotalPoints,
			&c.TotalCreditUnits, &c.HonorsLevel, &c.CalculatedAt)
		return c, err
	})
}

// GetAnalytics returns the stored analytics snapshot of a student.
func (r *GPARepository) GetAnalytics(ctx context.Context, studentID int) (*model.AnalyticsRecord, error) {
	a := &model.AnalyticsRecord{StudentID: studentID}
	err := r.pool.QueryRow(ctx,
		`SELECT payload, result_count, calculated_at FROM analytics_snapshots WHERE student_id = $1`, studentID,
	).Scan(&a.Payload, &a.ResultCount, &a.CalculatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
