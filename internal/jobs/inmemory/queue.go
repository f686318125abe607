// Package inmemory provides a channel-backed implementation of the job bus.
// It is suitable for single-instance deployments; a multi-instance deployment
// would swap in an external broker behind the same Publisher/Consumer
// interfaces.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finwise/internal/jobs"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Queue is an in-memory job bus. Workers throttle per user id so a user with
// many due recurring transactions cannot monopolize processing; the throttle
// is a best-effort load bound, not a correctness mechanism.
type Queue struct {
	jobChan   chan *jobs.RecurringTransactionJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	logger    *zap.Logger

	workers    int
	maxRetries int

	mu       sync.Mutex
	closed   bool
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewQueue creates a queue holding up to bufferSize pending jobs, processed
// by workers goroutines. Each user is limited to throttlePerUser jobs per
// throttlePeriod.
func NewQueue(bufferSize, workers, throttlePerUser int, throttlePeriod time.Duration, maxRetries int, logger *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if throttlePerUser <= 0 {
		throttlePerUser = 1
	}
	if throttlePeriod <= 0 {
		throttlePeriod = time.Minute
	}

	return &Queue{
		jobChan:    make(chan *jobs.RecurringTransactionJob, bufferSize),
		closeChan:  make(chan struct{}),
		logger:     logger,
		workers:    workers,
		maxRetries: maxRetries,
		limiters:   make(map[uuid.UUID]*rate.Limiter),
		limit:      rate.Every(throttlePeriod / time.Duration(throttlePerUser)),
		burst:      throttlePerUser,
	}
}

// PublishBatch implements jobs.Publisher.
func (q *Queue) PublishBatch(ctx context.Context, batch []*jobs.RecurringTransactionJob) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return fmt.Errorf("queue is closed")
	}

	for _, job := range batch {
		if job.JobID == "" {
			job.JobID = uuid.New().String()
		}
		if job.Status == "" {
			job.Status = jobs.JobStatusPending
		}
		if job.CreatedAt.IsZero() {
			job.CreatedAt = time.Now()
		}
		if job.MaxRetries == 0 {
			job.MaxRetries = q.maxRetries
		}

		select {
		case q.jobChan <- job:
		case <-ctx.Done():
			return ctx.Err()
		case <-q.closeChan:
			return fmt.Errorf("queue is closed")
		}
	}

	return nil
}

// Start implements jobs.Consumer.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.Unlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

func (q *Queue) processJob(ctx context.Context, job *jobs.RecurringTransactionJob, handler jobs.JobHandler) {
	if err := q.userLimiter(job.UserID).Wait(ctx); err != nil {
		return
	}

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err == nil {
		job.Status = jobs.JobStatusCompleted
		return
	}

	job.Error = err.Error()
	if job.RetryCount < job.MaxRetries {
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		q.logger.Warn("Job failed, retrying",
			zap.String("job_id", job.JobID),
			zap.String("transaction_id", job.TransactionID.String()),
			zap.Int("retry", job.RetryCount),
			zap.Error(err),
		)

		// Re-enqueue with linear backoff. If the queue closes before the
		// timer fires the retry is dropped; the item stays due in the store
		// and the next daily trigger picks it up again.
		backoff := time.Duration(job.RetryCount) * time.Second
		time.AfterFunc(backoff, func() {
			select {
			case q.jobChan <- job:
			case <-q.closeChan:
			}
		})
		return
	}

	job.Status = jobs.JobStatusFailed
	q.logger.Error("Job failed permanently",
		zap.String("job_id", job.JobID),
		zap.String("transaction_id", job.TransactionID.String()),
		zap.Error(err),
	)
}

func (q *Queue) userLimiter(userID uuid.UUID) *rate.Limiter {
	q.mu.Lock()
	defer q.mu.Unlock()

	limiter, ok := q.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(q.limit, q.burst)
		q.limiters[userID] = limiter
	}
	return limiter
}

// Stop implements jobs.Consumer. It closes the queue and waits for in-flight
// jobs, or returns early when ctx expires.
func (q *Queue) Stop(ctx context.Context) error {
	if err := q.Close(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements jobs.Publisher.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.closeChan)
	}
	return nil
}
