// Package scheduler runs crawls on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go-jss-crawler/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
}

// New builds a scheduler in loc. A run that is still going when its next
// tick fires makes that tick a no-op.
func New(loc *time.Location, log logger.Logger) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		loc:    loc,
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Add registers job under a standard 5-field cron expression and returns its next run.
func (s *Scheduler) Add(expr string, job Job) (time.Time, error) {
	id, err := s.cron.AddFunc(expr, func() {
		s.log.Info("⏰ Scheduled crawl triggered", logger.String("schedule", expr))
		job(s.ctx)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return s.cron.Entry(id).Schedule.Next(time.Now().In(s.loc)), nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own logs into the structured logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) fields(keysAndValues []any) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, l.fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(l.fields(keysAndValues), logger.Error(err))...)
}
