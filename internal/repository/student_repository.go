package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

var ErrDuplicateStudent = errors.New("student with this registration number or email already exists")

const studentColumns = `id, registration_number, name, email, course, year_of_study, academic_year, password_hash, created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.RegistrationNumber, &s.Name, &s.Email, &s.Course, &s.YearOfStudy,
		&s.AcademicYear, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByRegistrationNumber retrieves a student by their unique registration number.
func (r *StudentRepository) GetByRegistrationNumber(ctx context.Context, regNo string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE registration_number = $1`, regNo), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListPaginated retrieves students with pagination and optional filters.
func (r *StudentRepository) ListPaginated(ctx context.Context, q model.StudentListQuery, limit, offset int) ([]model.Student, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR registration_number ILIKE $` + n + `)`
	}
	if q.YearOfStudy > 0 {
		args = append(args, q.YearOfStudy)
		where += ` AND year_of_study = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentColumns + ` FROM students` + where +
		` ORDER BY registration_number LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// ListIDs returns every student id, used to fan out recalculations.
func (r *StudentRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (registration_number, name, email, course, year_of_study, academic_year, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		s.RegistrationNumber, s.Name, s.Email, s.Course, s.YearOfStudy, s.AcademicYear, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateStudent
	}
	return err
}

// Update modifies a student's profile (excluding password).
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET registration_number = $1, name = $2, email = $3, course = $4,
		 year_of_study = $5, academic_year = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7`,
		s.RegistrationNumber, s.Name, s.Email, s.Course, s.YearOfStudy, s.AcademicYear, s.ID,
	)
	if isPgError(err, pgUniqueViolation) {
		return ErrDuplicateStudent
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword updates a student's password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID. Results and derived records cascade.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
