package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

var ErrDuplicateUnit = errors.New("unit code already exists in this academic year")

// UnitRepository handles unit catalogue data access.
type UnitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository creates a new UnitRepository.
func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

func scanUnit(row pgx.CollectableRow) (model.Unit, error) {
	var u model.Unit
	err := row.Scan(&u.ID, &u.Code, &u.Name, &u.CreditUnits, &u.AcademicYearID, &u.CreatedAt)
	return u, err
}

// List returns units ordered by code, optionally limited to one academic year.
func (r *UnitRepository) List(ctx context.Context, academicYearID int) ([]model.Unit, error) {
	query := `SELECT id, code, name, credit_units, academic_year_id, created_at FROM units`
	var args []interface{}
	if academicYearID > 0 {
		query += ` WHERE academic_year_id = $1`
		args = append(args, academicYearID)
	}
	query += ` ORDER BY code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanUnit)
}

// GetByID retrieves a unit by ID.
func (r *UnitRepository) GetByID(ctx context.Context, id int) (*model.Unit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, credit_units, academic_year_id, created_at FROM units WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUnit)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a unit.
func (r *UnitRepository) Create(ctx context.Context, u *model.Unit) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units (code, name, credit_units, academic_year_id) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Code, u.Name, u.CreditUnits, u.AcademicYearID,
	).Scan(&u.ID, &u.CreatedAt)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateUnit
	}
	return err
}

// Update changes a unit's code, name and credit units. Stored points of its
// results are refreshed in the same transaction.
func (r *UnitRepository) Update(ctx context.Context, u *model.Unit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE units SET code = $1, name = $2, credit_units = $3 WHERE id = $4`,
		u.Code, u.Name, u.CreditUnits, u.ID)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateUnit
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx,
		`UPDATE results SET points = score * $1, updated_at = NOW() WHERE unit_id = $2`,
		u.CreditUnits, u.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a unit. Returns ErrInUse when results reference it.
func (r *UnitRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if isPgError(err, pgForeignKeyViolation) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// StudentIDsForUnit lists students holding a result in the unit.
func (r *UnitRepository) StudentIDsForUnit(ctx context.Context, unitID int) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT student_id FROM results WHERE unit_id = $1`, unitID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}
