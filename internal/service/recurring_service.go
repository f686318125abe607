package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finwise/internal/jobs"
	"finwise/internal/models"
	"finwise/internal/repository"
	"finwise/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recurringSuffix marks the derived one-off transaction that a recurrence
// generates.
const recurringSuffix = " (Recurring)"

type recurringStore interface {
	FindDue(ctx context.Context, now time.Time) ([]*models.Transaction, error)
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)
	ApplyRecurring(ctx context.Context, src, derived *models.Transaction, lastProcessed, nextDue time.Time) error
}

// RecurringService selects due recurring transactions, fans them out to the
// job bus, and processes individual items. Processing is idempotent per
// cycle: applying a recurrence moves next_recurring_date into the future, so
// a re-delivered job re-checks due-ness and becomes a no-op.
type RecurringService struct {
	store  recurringStore
	bus    jobs.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewRecurringService(store recurringStore, bus jobs.Publisher, logger *zap.Logger) *RecurringService {
	return &RecurringService{
		store:  store,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// TriggerDue publishes one work item per due recurring transaction in a
// single batch and returns the number triggered. No mutation happens here;
// all effects land in Process, invoked asynchronously per item.
func (s *RecurringService) TriggerDue(ctx context.Context) (int, error) {
	now := s.now()

	due, err := s.store.FindDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("fetch due recurring transactions: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	batch := make([]*jobs.RecurringTransactionJob, 0, len(due))
	for _, tx := range due {
		batch = append(batch, &jobs.RecurringTransactionJob{
			TransactionID: tx.ID,
			UserID:        tx.UserID,
		})
	}

	if err := s.bus.PublishBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("publish recurring batch: %w", err)
	}

	s.logger.Info("Recurring transactions triggered", zap.Int("count", len(batch)))
	return len(batch), nil
}

// ProcessJob validates a work item's fields and hands it to Process. Items
// with missing ids are dropped, not retried.
func (s *RecurringService) ProcessJob(ctx context.Context, job *jobs.RecurringTransactionJob) error {
	if job.TransactionID == uuid.Nil || job.UserID == uuid.Nil {
		s.logger.Error("Invalid recurring job, missing ids", zap.String("job_id", job.JobID))
		return nil
	}
	return s.Process(ctx, job.TransactionID, job.UserID)
}

// Process applies one recurrence. The transaction is re-fetched scoped by
// both ids and re-checked for due-ness at processing time; a missing or
// no-longer-due item is a no-op. The three effects (insert derived
// transaction, adjust balance, advance schedule) land atomically or not at
// all, and a returned error leaves the item due for the next trigger.
func (s *RecurringService) Process(ctx context.Context, transactionID, userID uuid.UUID) error {
	now := s.now()

	tx, err := s.store.GetByIDAndUser(ctx, transactionID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("Recurring transaction gone, skipping",
			zap.String("transaction_id", transactionID.String()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch recurring transaction: %w", err)
	}

	if !isDue(tx, now) {
		s.logger.Debug("Recurring transaction not due, skipping",
			zap.String("transaction_id", tx.ID.String()),
		)
		return nil
	}

	if tx.RecurringInterval == nil {
		s.logger.Error("Recurring transaction has no interval",
			zap.String("transaction_id", tx.ID.String()),
		)
		return nil
	}

	nextDue, err := schedule.Next(now, *tx.RecurringInterval)
	if err != nil {
		// Bad interval value in the store; retrying cannot fix it.
		s.logger.Error("Cannot advance recurring schedule",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	derived := &models.Transaction{
		ID:          uuid.New(),
		UserID:      tx.UserID,
		AccountID:   tx.AccountID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description + recurringSuffix,
		Date:        now,
		Category:    tx.Category,
		Status:      models.StatusCompleted,
		IsRecurring: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.ApplyRecurring(ctx, tx, derived, now, nextDue); err != nil {
		return fmt.Errorf("apply recurrence for %s: %w", tx.ID, err)
	}

	s.logger.Info("Recurring transaction processed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", tx.UserID.String()),
		zap.Time("next_due", nextDue),
	)
	return nil
}

func isDue(tx *models.Transaction, now time.Time) bool {
	if !tx.IsRecurring || tx.Status != models.StatusCompleted {
		return false
	}
	if tx.LastProcessed == nil {
		return true
	}
	return tx.NextRecurringDate != nil && !tx.NextRecurringDate.After(now)
}
