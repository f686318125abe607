package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduler_EveryFiresRepeatedly(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int32
	s.Every("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_FailedRunKeepsSchedule(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int32
	s.Every("flaky", 20*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("boom")
		}
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("schedule stopped after a failed run, got %d runs", runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_StopHaltsJobs(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int32
	s.Every("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestScheduler_DailyAtNextRun(t *testing.T) {
	s := New(zap.NewNop())
	s.DailyAt("daily", 6, func(ctx context.Context) error { return nil })
	job := s.jobs[0]

	before := time.Date(2025, time.March, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC), job.next(before))

	after := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 11, 6, 0, 0, 0, time.UTC), job.next(after))
}

func TestScheduler_MonthlyOnNextRun(t *testing.T) {
	s := New(zap.NewNop())
	s.MonthlyOn("monthly", 1, func(ctx context.Context) error { return nil })
	job := s.jobs[0]

	mid := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), job.next(mid))

	// December rolls over to January of the next year.
	dec := time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), job.next(dec))
}
