package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/database"
	"github.com/stemsi/wma-backend/internal/logger"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
	"github.com/stemsi/wma-backend/internal/service"
)

const (
	seedYear     = "2024/2025"
	seedSemester = 1
	seedCourse   = "Bachelor of Science in Computer Science"
	seedPassword = "password123"
)

var seedUnits = []model.CreateUnitRequest{
	{Code: "MIT201", Name: "Data Structures", CreditUnits: 3},
	{Code: "MIT202", Name: "Web Development", CreditUnits: 4},
	{Code: "MIT203", Name: "Database Systems", CreditUnits: 4},
	{Code: "MIT204", Name: "Software Engineering", CreditUnits: 3},
	{Code: "MIT205", Name: "Network Security", CreditUnits: 3},
	{Code: "MIT206", Name: "Mobile Development", CreditUnits: 4},
}

type seedStudent struct {
	regNo  string
	name   string
	scores []int // in seedUnits order
}

var seedStudents = []seedStudent{
	{"SCT211-0001/2021", "John Njogu", []int{85, 78, 92, 88, 76, 84}},
	{"SCT211-0002/2021", "Roy Kipchoge", []int{72, 68, 75, 71, 69, 70}},
	{"SCT211-0003/2021", "Vivian Muthoni", []int{95, 92, 98, 94, 91, 96}},
	{"SCT211-0004/2021", "Apphie Kimani", []int{45, 52, 48, 55, 50, 46}},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	studentRepo := repository.NewStudentRepository(pool)
	yearRepo := repository.NewAcademicYearRepository(pool)
	unitRepo := repository.NewUnitRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	authService := service.NewAuthService(cfg, rdb)
	gradingService := service.NewGradingService(cfg, rdb, resultRepo,
		repository.NewSettingRepository(pool),
		repository.NewNotificationRepository(pool),
		repository.NewGPARepository(pool),
		log)
	studentService := service.NewStudentService(studentRepo, authService, gradingService, log)
	yearService := service.NewAcademicYearService(yearRepo)
	unitService := service.NewUnitService(unitRepo, yearRepo, gradingService, log)
	resultService := service.NewResultService(resultRepo, unitRepo, gradingService, log)

	fmt.Println("=== Seeding sample grades ===")

	year, err := yearService.Ensure(ctx, seedYear, seedSemester, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure academic year")
	}
	fmt.Printf("Academic year %s semester %d (ID %d)\n", year.Year, year.Semester, year.ID)

	unitIDs, err := ensureUnits(ctx, unitService, year.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed units")
	}

	for i, s := range seedStudents {
		student, err := ensureStudent(ctx, studentService, s, i+1)
		if err != nil {
			log.Fatal().Err(err).Str("registration_number", s.regNo).Msg("Failed to seed student")
		}

		scores := make(map[int]int, len(s.scores))
		for j, score := range s.scores {
			scores[unitIDs[j]] = score
		}
		inserted, err := resultService.BulkCreate(ctx, student.ID, scores)
		if err != nil {
			log.Fatal().Err(err).Str("registration_number", s.regNo).Msg("Failed to seed results")
		}
		fmt.Printf("  %-18s %-16s %d new result(s)\n", s.regNo, s.name, inserted)
	}

	fmt.Println("Done. Recalculations were queued for the server's worker.")
}

// ensureUnits creates the sample units that are missing and returns their
// ids in seedUnits order.
func ensureUnits(ctx context.Context, units *service.UnitService, yearID int) ([]int, error) {
	existing, err := units.List(ctx, yearID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]int, len(existing))
	for _, u := range existing {
		byCode[u.Code] = u.ID
	}

	ids := make([]int, 0, len(seedUnits))
	for _, req := range seedUnits {
		if id, ok := byCode[req.Code]; ok {
			ids = append(ids, id)
			continue
		}
		req.AcademicYearID = yearID
		u, err := units.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create unit %s: %w", req.Code, err)
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func ensureStudent(ctx context.Context, students *service.StudentService, s seedStudent, n int) (*model.Student, error) {
	student, err := students.GetByRegistrationNumber(ctx, s.regNo)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, service.ErrStudentNotFound) {
		return nil, err
	}

	return students.Create(ctx, model.CreateStudentRequest{
		RegistrationNumber: s.regNo,
		Name:               s.name,
		Email:              fmt.Sprintf("student%d@jkuat.ac.ke", n),
		Course:             seedCourse,
		YearOfStudy:        2,
		AcademicYear:       seedYear,
		Password:           seedPassword,
	})
}
