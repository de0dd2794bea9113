package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Default schedules, standard five-field cron syntax.
const (
	DefaultDailySchedule  = "0 0 * * *"
	DefaultWeeklySchedule = "0 0 * * 0"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	stop context.CancelFunc
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(),
		ctx:  ctx,
		stop: cancel,
	}
}

// Add registers job under name at spec.
func (s *Scheduler) Add(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		slog.Info("job started", slog.String("job", name))
		if err := job(s.ctx); err != nil {
			slog.Error("job failed",
				slog.String("job", name),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("job finished",
			slog.String("job", name),
			slog.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	s.stop()
	<-s.cron.Stop().Done()
	return nil
}

// Sweep adapts an Archiver to a Job.
func Sweep(a *Archiver) Job {
	return func(ctx context.Context) error {
		_, err := a.Run(ctx, time.Now().UTC())
		return err
	}
}
