// Package jobs defines the work-item bus that decouples selecting due
// recurring transactions from processing them. The daily trigger publishes
// one job per due transaction in a single batch; consumers process jobs
// independently, so one failing item never blocks the rest.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// RecurringTransactionJob carries one due recurring transaction to the
// processor. TransactionID and UserID together identify the work item; the
// processor re-validates both against the store before mutating anything.
type RecurringTransactionJob struct {
	JobID         string     `json:"job_id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Status        JobStatus  `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
}

// Publisher publishes work items to the bus. Publishing is fire-and-forget:
// a successful publish does not mean the item has been processed.
type Publisher interface {
	// PublishBatch enqueues a batch of recurring-transaction jobs.
	PublishBatch(ctx context.Context, batch []*RecurringTransactionJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer consumes jobs from the bus and hands them to a handler.
type Consumer interface {
	// Start begins consuming jobs. The handler is called for each job, possibly
	// concurrently.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed and
// makes it eligible for retry.
type JobHandler func(ctx context.Context, job *RecurringTransactionJob) error
