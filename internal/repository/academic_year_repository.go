package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

var ErrDuplicateAcademicYear = errors.New("academic year and semester already exist")

// AcademicYearRepository handles academic year data access.
type AcademicYearRepository struct {
	pool *pgxpool.Pool
}

// NewAcademicYearRepository creates a new AcademicYearRepository.
func NewAcademicYearRepository(pool *pgxpool.Pool) *AcademicYearRepository {
	return &AcademicYearRepository{pool: pool}
}

func scanAcademicYear(row pgx.CollectableRow) (model.AcademicYear, error) {
	var ay model.AcademicYear
	err := row.Scan(&ay.ID, &ay.Year, &ay.Semester, &ay.IsActive, &ay.CreatedAt)
	return ay, err
}

// List returns all academic years, newest first.
func (r *AcademicYearRepository) List(ctx context.Context) ([]model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, year, semester, is_active, created_at FROM academic_years ORDER BY year DESC, semester DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAcademicYear)
}

// GetByID retrieves an academic year by ID.
func (r *AcademicYearRepository) GetByID(ctx context.Context, id int) (*model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, year, semester, is_active, created_at FROM academic_years WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	ay, err := pgx.CollectExactlyOneRow(rows, scanAcademicYear)
	if err != nil {
		return nil, err
	}
	return &ay, nil
}

// GetActive returns the active academic year.
func (r *AcademicYearRepository) GetActive(ctx context.Context) (*model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, year, semester, is_active, created_at FROM academic_years WHERE is_active`)
	if err != nil {
		return nil, err
	}
	ay, err := pgx.CollectExactlyOneRow(rows, scanAcademicYear)
	if err != nil {
		return nil, err
	}
	return &ay, nil
}

// FindOrCreate returns the year/semester row, inserting it when missing.
func (r *AcademicYearRepository) FindOrCreate(ctx context.Context, ay *model.AcademicYear) error {
	err := r.pool.QueryRow(ctx,
		`SELECT id, is_active, created_at FROM academic_years WHERE year = $1 AND semester = $2`,
		ay.Year, ay.Semester,
	).Scan(&ay.ID, &ay.IsActive, &ay.CreatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return r.Create(ctx, ay)
}

// Create inserts an academic year. When it is active, the previously active
// year is deactivated in the same transaction.
func (r *AcademicYearRepository) Create(ctx context.Context, ay *model.AcademicYear) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if ay.IsActive {
		if _, err := tx.Exec(ctx, `UPDATE academic_years SET is_active = FALSE WHERE is_active`); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO academic_years (year, semester, is_active) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		ay.Year, ay.Semester, ay.IsActive,
	).Scan(&ay.ID, &ay.CreatedAt)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateAcademicYear
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Activate makes id the only active academic year.
func (r *AcademicYearRepository) Activate(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE academic_years SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE academic_years SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}
