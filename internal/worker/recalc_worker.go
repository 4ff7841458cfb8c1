package worker

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/grading"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/service"
	ws "github.com/stemsi/wma-backend/internal/websocket"
)

const (
	RecalcBatchSize    = 50
	RecalcBatchTimeout = 2 * time.Second
	RecalcPollTimeout  = 1 * time.Second
)

// RecalcWorker drains the recalculation queue, persists fresh aggregates and
// analytics, stores new alerts and pushes live updates to connected students.
type RecalcWorker struct {
	rdb      *redis.Client
	grading  *service.GradingService
	notifs   *service.NotificationService
	gpaStore GPAStore
	log      zerolog.Logger
	now      func() time.Time
}

// GPAStore persists aggregates and analytics snapshots.
type GPAStore interface {
	SaveBatch(ctx context.Context, batch model.GPABatch) error
}

func NewRecalcWorker(
	rdb *redis.Client,
	grading *service.GradingService,
	notifs *service.NotificationService,
	gpaStore GPAStore,
	log zerolog.Logger,
) *RecalcWorker {
	return &RecalcWorker{
		rdb:      rdb,
		grading:  grading,
		notifs:   notifs,
		gpaStore: gpaStore,
		log:      log.With().Str("component", "recalc_worker").Logger(),
		now:      time.Now,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *RecalcWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RecalcWorker started")

	batch := newIDBatch(RecalcBatchSize)
	lastFlush := time.Now()

	for {
		if batch.Len() > 0 &&
			(batch.Len() >= RecalcBatchSize || time.Since(lastFlush) >= RecalcBatchTimeout) {

			w.flushSafe(ctx, batch.IDs())
			batch.Reset()
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch.IDs())
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecalcPollTimeout, config.WorkerKey.RecalcGPAQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			id, err := strconv.Atoi(item[1])
			if err != nil || id < 1 {
				w.log.Error().Str("payload", item[1]).Msg("Invalid student id in queue")
				continue
			}

			batch.Add(id)
		}
	}
}

// idBatch collects student ids in arrival order without duplicates.
type idBatch struct {
	ids  []int
	seen map[int]struct{}
}

func newIDBatch(capacity int) *idBatch {
	return &idBatch{ids: make([]int, 0, capacity), seen: make(map[int]struct{}, capacity)}
}

func (b *idBatch) Add(id int) {
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}
	b.ids = append(b.ids, id)
}

func (b *idBatch) Len() int   { return len(b.ids) }
func (b *idBatch) IDs() []int { return b.ids }

func (b *idBatch) Reset() {
	b.ids = b.ids[:0]
	clear(b.seen)
}

// ----------------------------------------------------------------
// Batch recalculation
// ----------------------------------------------------------------

func (w *RecalcWorker) flushSafe(ctx context.Context, ids []int) {
	if len(ids) == 0 {
		return
	}

	engine := w.grading.Engine(ctx)
	recalcs := make([]*service.Recalculation, 0, len(ids))
	for _, id := range ids {
		rc, err := w.grading.Recalculate(ctx, engine, id)
		if err != nil {
			w.log.Error().Err(err).Int("student_id", id).Msg("Recalculation failed, requeueing")
			w.requeue(ctx, id)
			continue
		}
		recalcs = append(recalcs, rc)
	}
	if len(recalcs) == 0 {
		return
	}

	at := w.now().UTC()

	if err := w.gpaStore.SaveBatch(ctx, persistRows(recalcs, at)); err != nil {
		w.log.Warn().Err(err).Msg("bulk GPA save failed, using fallback")

		saved := recalcs[:0]
		for _, rc := range recalcs {
			if err := w.gpaStore.SaveBatch(ctx, persistRows([]*service.Recalculation{rc}, at)); err != nil {
				w.log.Error().Err(err).Int("student_id", rc.StudentID).Msg("single GPA save failed, requeueing")
				w.requeue(ctx, rc.StudentID)
				continue
			}
			saved = append(saved, rc)
		}
		recalcs = saved
	}

	for _, rc := range recalcs {
		w.afterSave(ctx, rc, at)
	}

	w.log.Debug().Int("students", len(recalcs)).Msg("Recalculation batch flushed")
}

// afterSave stores new alerts, refreshes the cache and notifies live clients.
func (w *RecalcWorker) afterSave(ctx context.Context, rc *service.Recalculation, at time.Time) {
	if n, err := w.notifs.Store(ctx, rc.StudentID, rc.Alerts); err != nil {
		w.log.Error().Err(err).Int("student_id", rc.StudentID).Msg("Failed to store alerts")
	} else if n > 0 {
		w.log.Debug().Int("student_id", rc.StudentID).Int("new_alerts", n).Msg("Alerts stored")
	}

	w.grading.CacheStanding(ctx, rc)

	payload, err := json.Marshal(ws.StandingEvent{
		Event:        ws.EventGPAUpdated,
		StudentID:    rc.StudentID,
		Status:       rc.Overall.Status,
		Record:       rc.Overall.Record,
		Alerts:       rc.Alerts,
		CalculatedAt: at,
	})
	if err != nil {
		return
	}
	if err := w.rdb.Publish(ctx, config.CacheKey.StudentGPAChannel(rc.StudentID), payload).Err(); err != nil {
		w.log.Warn().Err(err).Int("student_id", rc.StudentID).Msg("Failed to publish GPA update")
	}
}

func (w *RecalcWorker) requeue(ctx context.Context, studentID int) {
	if err := w.rdb.RPush(ctx, config.WorkerKey.RecalcGPAQueue, studentID).Err(); err != nil {
		w.log.Error().Err(err).Int("student_id", studentID).Msg("Requeue failed")
	}
}

// persistRows converts recalculations into the batch SaveBatch writes.
// Degraded outcomes are skipped so the last good stored aggregate stays, but
// their year still counts as kept.
func persistRows(recalcs []*service.Recalculation, at time.Time) model.GPABatch {
	batch := model.GPABatch{
		Calculations: make([]model.GPACalculation, 0, len(recalcs)),
		Analytics:    make([]model.AnalyticsRecord, 0, len(recalcs)),
		YearsKept:    make(map[int][]int, len(recalcs)),
	}

	for _, rc := range recalcs {
		if !rc.Overall.Degraded() {
			batch.Calculations = append(batch.Calculations, gpaRow(rc.StudentID, nil, rc.Overall.Record, at))
		}

		years := make([]int, 0, len(rc.PerYear))
		for yearID := range rc.PerYear {
			years = append(years, yearID)
		}
		slices.Sort(years)
		batch.YearsKept[rc.StudentID] = years

		for _, yearID := range years {
			out := rc.PerYear[yearID]
			if out.Degraded() {
				continue
			}
			year := yearID
			batch.Calculations = append(batch.Calculations, gpaRow(rc.StudentID, &year, out.Record, at))
		}

		payload, err := json.Marshal(rc.Analytics)
		if err != nil {
			continue
		}
		batch.Analytics = append(batch.Analytics, model.AnalyticsRecord{
			StudentID:    rc.StudentID,
			Payload:      payload,
			ResultCount:  rc.ResultCount,
			CalculatedAt: at,
		})
	}
	return batch
}

func gpaRow(studentID int, yearID *int, rec grading.AggregateRecord, at time.Time) model.GPACalculation {
	return model.GPACalculation{
		StudentID:        studentID,
		AcademicYearID:   yearID,
		GPA:              rec.GPA,
		TotalPoints:      rec.TotalPoints,
		TotalCreditUnits: rec.TotalCreditUnits,
		HonorsLevel:      rec.HonorsLevel,
		CalculatedAt:     at,
	}
}
