// Package scheduler runs named jobs on fixed cadences. Jobs are short-lived
// invocations; a failed run is logged and the schedule simply continues, so
// recovery is always "wait for the next trigger". Job code depends only on
// being invoked periodically, never on the cadence itself.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is one scheduled invocation. The context is cancelled when the
// scheduler stops.
type JobFunc func(ctx context.Context) error

type scheduledJob struct {
	name string
	next func(time.Time) time.Time
	fn   JobFunc
}

type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	jobs   []scheduledJob
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		now:    time.Now,
	}
}

// Every runs fn at a fixed interval, first firing one interval after Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) {
	s.register(scheduledJob{
		name: name,
		next: func(t time.Time) time.Time { return t.Add(interval) },
		fn:   fn,
	})
}

// DailyAt runs fn once a day at the given hour (UTC).
func (s *Scheduler) DailyAt(name string, hour int, fn JobFunc) {
	s.register(scheduledJob{
		name: name,
		next: func(t time.Time) time.Time {
			t = t.UTC()
			run := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
			if !run.After(t) {
				run = run.AddDate(0, 0, 1)
			}
			return run
		},
		fn: fn,
	})
}

// MonthlyOn runs fn at midnight UTC on the given day of each month.
func (s *Scheduler) MonthlyOn(name string, day int, fn JobFunc) {
	s.register(scheduledJob{
		name: name,
		next: func(t time.Time) time.Time {
			t = t.UTC()
			run := time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
			if !run.After(t) {
				run = time.Date(t.Year(), t.Month()+1, day, 0, 0, 0, 0, time.UTC)
			}
			return run
		},
		fn: fn,
	})
}

func (s *Scheduler) register(job scheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per registered job. Jobs registered after
// Start are not picked up.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	jobs := s.jobs
	s.mu.Unlock()

	for _, job := range jobs {
		s.wg.Add(1)
		go s.run(ctx, job)
	}
}

func (s *Scheduler) run(ctx context.Context, job scheduledJob) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Until(job.next(s.now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			started := s.now()
			if err := job.fn(ctx); err != nil {
				s.logger.Error("Scheduled job failed",
					zap.String("job", job.name),
					zap.Error(err),
				)
			} else {
				s.logger.Debug("Scheduled job completed",
					zap.String("job", job.name),
					zap.Duration("took", s.now().Sub(started)),
				)
			}
			timer.Reset(time.Until(job.next(s.now())))
		}
	}
}

// Stop cancels all job contexts and waits for running invocations to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
