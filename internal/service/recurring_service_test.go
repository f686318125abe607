package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finwise/internal/jobs"
	"finwise/internal/models"
	"finwise/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRecurringStore mimics the store's atomic recurrence write: either all
// three effects land or none do.
type fakeRecurringStore struct {
	transactions map[uuid.UUID]*models.Transaction
	accounts     map[uuid.UUID]*models.Account
	created      []*models.Transaction
	applyErr     error
}

func newFakeRecurringStore() *fakeRecurringStore {
	return &fakeRecurringStore{
		transactions: make(map[uuid.UUID]*models.Transaction),
		accounts:     make(map[uuid.UUID]*models.Account),
	}
}

func (f *fakeRecurringStore) FindDue(ctx context.Context, now time.Time) ([]*models.Transaction, error) {
	var due []*models.Transaction
	for _, tx := range f.transactions {
		if !tx.IsRecurring || tx.Status != models.StatusCompleted {
			continue
		}
		if tx.LastProcessed == nil || (tx.NextRecurringDate != nil && !tx.NextRecurringDate.After(now)) {
			due = append(due, tx)
		}
	}
	return due, nil
}

func (f *fakeRecurringStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	tx, ok := f.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return tx, nil
}

func (f *fakeRecurringStore) ApplyRecurring(ctx context.Context, src, derived *models.Transaction, lastProcessed, nextDue time.Time) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.created = append(f.created, derived)
	if account, ok := f.accounts[src.AccountID]; ok {
		account.Balance = account.Balance.Add(derived.BalanceDelta())
	}
	stored := f.transactions[src.ID]
	lp, nd := lastProcessed, nextDue
	stored.LastProcessed = &lp
	stored.NextRecurringDate = &nd
	return nil
}

type fakePublisher struct {
	batches [][]*jobs.RecurringTransactionJob
	err     error
}

func (f *fakePublisher) PublishBatch(ctx context.Context, batch []*jobs.RecurringTransactionJob) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newRecurringFixture(t *testing.T, now time.Time) (*RecurringService, *fakeRecurringStore, *fakePublisher) {
	t.Helper()
	store := newFakeRecurringStore()
	bus := &fakePublisher{}
	svc := NewRecurringService(store, bus, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, store, bus
}

func seedRecurring(store *fakeRecurringStore, interval models.RecurringInterval, nextDue *time.Time, lastProcessed *time.Time) *models.Transaction {
	accountID := uuid.New()
	store.accounts[accountID] = &models.Account{
		ID:      accountID,
		Balance: decimal.NewFromInt(1000),
	}
	tx := &models.Transaction{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		AccountID:         accountID,
		Type:              models.TransactionExpense,
		Amount:            decimal.NewFromInt(50),
		Description:       "Gym membership",
		Category:          "health",
		Status:            models.StatusCompleted,
		IsRecurring:       true,
		RecurringInterval: &interval,
		NextRecurringDate: nextDue,
		LastProcessed:     lastProcessed,
	}
	store.transactions[tx.ID] = tx
	return tx
}

func TestTriggerDue(t *testing.T) {
	now := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)

	t.Run("publishes one job per due transaction", func(t *testing.T) {
		svc, store, bus := newRecurringFixture(t, now)
		past := now.AddDate(0, 0, -1)
		last := now.AddDate(0, -1, 0)
		due := seedRecurring(store, models.IntervalMonthly, &past, &last)
		neverProcessed := seedRecurring(store, models.IntervalDaily, nil, nil)

		count, err := svc.TriggerDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, bus.batches, 1)
		assert.Len(t, bus.batches[0], 2)

		ids := map[uuid.UUID]bool{}
		for _, job := range bus.batches[0] {
			ids[job.TransactionID] = true
		}
		assert.True(t, ids[due.ID])
		assert.True(t, ids[neverProcessed.ID])
	})

	t.Run("future next date is never selected", func(t *testing.T) {
		svc, store, bus := newRecurringFixture(t, now)
		future := now.AddDate(0, 0, 1)
		last := now.AddDate(0, -1, 0)
		seedRecurring(store, models.IntervalMonthly, &future, &last)

		count, err := svc.TriggerDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Empty(t, bus.batches, "no batch is published when nothing is due")
	})

	t.Run("publish failure is propagated", func(t *testing.T) {
		svc, store, bus := newRecurringFixture(t, now)
		bus.err = errors.New("bus down")
		seedRecurring(store, models.IntervalDaily, nil, nil)

		_, err := svc.TriggerDue(context.Background())
		assert.Error(t, err)
	})
}

func TestProcess(t *testing.T) {
	now := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)

	t.Run("applies exactly one recurrence", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.IntervalMonthly, nil, nil)

		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))

		require.Len(t, store.created, 1)
		derived := store.created[0]
		assert.False(t, derived.IsRecurring)
		assert.Equal(t, "Gym membership (Recurring)", derived.Description)
		assert.Equal(t, tx.Amount, derived.Amount)
		assert.Equal(t, now, derived.Date)

		// Expense of 50 against a balance of 1000.
		assert.True(t, store.accounts[tx.AccountID].Balance.Equal(decimal.NewFromInt(950)))

		require.NotNil(t, tx.LastProcessed)
		require.NotNil(t, tx.NextRecurringDate)
		assert.Equal(t, now, *tx.LastProcessed)
		assert.Equal(t, now.AddDate(0, 1, 0), *tx.NextRecurringDate)
	})

	t.Run("idempotent within a cycle", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.IntervalMonthly, nil, nil)

		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))
		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))

		assert.Len(t, store.created, 1, "second invocation must be a no-op")
		assert.True(t, store.accounts[tx.AccountID].Balance.Equal(decimal.NewFromInt(950)))
	})

	t.Run("unknown transaction is a no-op", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.IntervalMonthly, nil, nil)

		// Wrong user id: scoped fetch misses.
		require.NoError(t, svc.Process(context.Background(), tx.ID, uuid.New()))
		assert.Empty(t, store.created)
	})

	t.Run("store failure leaves no partial state", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.IntervalMonthly, nil, nil)
		store.applyErr = errors.New("write conflict")

		err := svc.Process(context.Background(), tx.ID, tx.UserID)
		require.Error(t, err)

		assert.Empty(t, store.created)
		assert.True(t, store.accounts[tx.AccountID].Balance.Equal(decimal.NewFromInt(1000)))
		assert.Nil(t, tx.LastProcessed, "item stays due for the next trigger")

		// Retry after the failure clears succeeds.
		store.applyErr = nil
		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))
		assert.Len(t, store.created, 1)
	})

	t.Run("income adds to the balance", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.IntervalWeekly, nil, nil)
		tx.Type = models.TransactionIncome

		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))
		assert.True(t, store.accounts[tx.AccountID].Balance.Equal(decimal.NewFromInt(1050)))
	})

	t.Run("bad interval is logged and skipped without retry", func(t *testing.T) {
		svc, store, _ := newRecurringFixture(t, now)
		tx := seedRecurring(store, models.RecurringInterval("SOMETIMES"), nil, nil)

		require.NoError(t, svc.Process(context.Background(), tx.ID, tx.UserID))
		assert.Empty(t, store.created)
	})
}

func TestProcessJob(t *testing.T) {
	now := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)
	svc, store, _ := newRecurringFixture(t, now)
	tx := seedRecurring(store, models.IntervalDaily, nil, nil)

	t.Run("missing ids are dropped", func(t *testing.T) {
		err := svc.ProcessJob(context.Background(), &jobs.RecurringTransactionJob{})
		require.NoError(t, err)
		assert.Empty(t, store.created)
	})

	t.Run("valid job is processed", func(t *testing.T) {
		err := svc.ProcessJob(context.Background(), &jobs.RecurringTransactionJob{
			TransactionID: tx.ID,
			UserID:        tx.UserID,
		})
		require.NoError(t, err)
		assert.Len(t, store.created, 1)
	})
}
