package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

var (
	ErrDuplicateResult = errors.New("student already has a result for this unit")
	ErrUnknownRef      = errors.New("student or unit does not exist")
)

const resultDetailColumns = `r.id, r.student_id, r.unit_id, r.score, r.grade, r.points, r.created_at, r.updated_at,
	u.code, u.name, u.credit_units, u.academic_year_id`

// ResultRepository handles result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResultDetail(row pgx.CollectableRow) (model.ResultDetail, error) {
	var d model.ResultDetail
	err := row.Scan(&d.ID, &d.StudentID, &d.UnitID, &d.Score, &d.Grade, &d.Points, &d.CreatedAt, &d.UpdatedAt,
		&d.UnitCode, &d.UnitName, &d.CreditUnits, &d.AcademicYearID)
	return d, err
}

// GetByID retrieves a result with its unit.
func (r *ResultRepository) GetByID(ctx context.Context, id int) (*model.ResultDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultDetailColumns+` FROM results r JOIN units u ON u.id = r.unit_id WHERE r.id = $1`, id)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanResultDetail)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByStudent returns a student's results ordered by creation time,
// optionally limited to one academic year.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID, academicYearID int) ([]model.ResultDetail, error) {
	query := `SELECT ` + resultDetailColumns + ` FROM results r JOIN units u ON u.id = r.unit_id WHERE r.student_id = $1`
	args := []interface{}{studentID}
	if academicYearID > 0 {
		query += ` AND u.academic_year_id = $2`
		args = append(args, academicYearID)
	}
	query += ` ORDER BY r.created_at, r.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanResultDetail)
}

// List returns results matching the admin filter, ordered by student then unit code.
func (r *ResultRepository) List(ctx context.Context, q model.ResultListQuery) ([]model.ResultDetail, error) {
	query := `SELECT ` + resultDetailColumns + ` FROM results r JOIN units u ON u.id = r.unit_id WHERE 1=1`
	var args []interface{}
	if q.StudentID > 0 {
		args = append(args, q.StudentID)
		query += ` AND r.student_id = $` + strconv.Itoa(len(args))
	}
	if q.AcademicYearID > 0 {
		args = append(args, q.AcademicYearID)
		query += ` AND u.academic_year_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY r.student_id, u.code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanResultDetail)
}

// Create inserts a result.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO results (student_id, unit_id, score, grade, points) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		res.StudentID, res.UnitID, res.Score, res.Grade, res.Points,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	switch {
	case isPgError(err, pgUniqueViolation):
		return ErrDuplicateResult
	case isPgError(err, pgForeignKeyViolation):
		return ErrUnknownRef
	}
	return err
}

// UpdateScore rewrites the score with its derived grade and points.
func (r *ResultRepository) UpdateScore(ctx context.Context, res *model.Result) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE results SET score = $1, grade = $2, points = $3, updated_at = NOW()
		 WHERE id = $4 RETURNING student_id, unit_id, created_at, updated_at`,
		res.Score, res.Grade, res.Points, res.ID,
	).Scan(&res.StudentID, &res.UnitID, &res.CreatedAt, &res.UpdatedAt)
	return err
}

// Delete removes a result and returns the owning student's id.
func (r *ResultRepository) Delete(ctx context.Context, id int) (int, error) {
	var studentID int
	err := r.pool.QueryRow(ctx, `DELETE FROM results WHERE id = $1 RETURNING student_id`, id).Scan(&studentID)
	return studentID, err
}

// BulkCreate inserts many results in one transaction, skipping those that
// already exist. Returns the number of rows inserted.
func (r *ResultRepository) BulkCreate(ctx context.Context, results []model.Result) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, res := range results {
		batch.Queue(
			`INSERT INTO results (student_id, unit_id, score, grade, points) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (student_id, unit_id) DO NOTHING`,
			res.StudentID, res.UnitID, res.Score, res.Grade, res.Points)
	}

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range results {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			if isPgError(err, pgForeignKeyViolation) {
				return 0, ErrUnknownRef
			}
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, err
	}
	return inserted, tx.Commit(ctx)
}
