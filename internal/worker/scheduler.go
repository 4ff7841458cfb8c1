package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StudentLister lists the students a full recalculation covers.
type StudentLister interface {
	ListIDs(ctx context.Context) ([]int, error)
}

// RecalcQueue accepts student ids for recalculation.
type RecalcQueue interface {
	QueueRecalculation(ctx context.Context, studentIDs ...int) error
}

// Scheduler periodically queues every student for recalculation.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	students StudentLister
	queue    RecalcQueue
	log      zerolog.Logger
}

func NewScheduler(spec string, students StudentLister, queue RecalcQueue, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		spec:     spec,
		students: students,
		queue:    queue,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the nightly job and runs the cron until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("Scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
	return nil
}

// RunOnce queues all students for recalculation.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ids, err := s.students.ListIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list students for recalculation")
		return
	}
	if err := s.queue.QueueRecalculation(ctx, ids...); err != nil {
		s.log.Error().Err(err).Msg("Failed to queue nightly recalculation")
		return
	}
	s.log.Info().Int("students", len(ids)).Msg("Nightly recalculation queued")
}
