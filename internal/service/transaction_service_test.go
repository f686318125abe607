package service

import (
	"context"
	"testing"
	"time"

	"finwise/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTransactionStore struct {
	created  []*models.Transaction
	balances map[uuid.UUID]decimal.Decimal
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (f *fakeTransactionStore) CreateWithBalance(ctx context.Context, tx *models.Transaction) error {
	f.created = append(f.created, tx)
	f.balances[tx.AccountID] = f.balances[tx.AccountID].Add(tx.BalanceDelta())
	return nil
}

func (f *fakeTransactionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range f.created {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func newTransactionFixture(t *testing.T) (*TransactionService, *fakeTransactionStore, *models.Account) {
	t.Helper()

	accounts := newFakeAccountStore()
	account := &models.Account{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "Checking",
		Type:   models.AccountCurrent,
	}
	require.NoError(t, accounts.Create(context.Background(), account))

	store := newFakeTransactionStore()
	svc := NewTransactionService(store, accounts, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, time.April, 2, 8, 0, 0, 0, time.UTC)
	}
	return svc, store, account
}

func TestCreateTransaction(t *testing.T) {
	t.Run("applies the balance atomically with the insert", func(t *testing.T) {
		svc, store, account := newTransactionFixture(t)

		tx, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:      account.UserID,
			AccountID:   account.ID,
			Type:        models.TransactionExpense,
			Amount:      decimal.NewFromInt(75),
			Description: "Utilities",
			Category:    "housing",
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusCompleted, tx.Status)
		assert.True(t, store.balances[account.ID].Equal(decimal.NewFromInt(-75)))
	})

	t.Run("recurring transaction gets its first due date", func(t *testing.T) {
		svc, _, account := newTransactionFixture(t)
		interval := models.IntervalWeekly
		date := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

		tx, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:            account.UserID,
			AccountID:         account.ID,
			Type:              models.TransactionExpense,
			Amount:            decimal.NewFromInt(10),
			Description:       "Streaming",
			Category:          "entertainment",
			Date:              date,
			IsRecurring:       true,
			RecurringInterval: &interval,
		})
		require.NoError(t, err)

		require.NotNil(t, tx.NextRecurringDate)
		assert.Equal(t, date.AddDate(0, 0, 7), *tx.NextRecurringDate)
		assert.Nil(t, tx.LastProcessed)
	})

	t.Run("recurring without interval is rejected", func(t *testing.T) {
		svc, _, account := newTransactionFixture(t)

		_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:      account.UserID,
			AccountID:   account.ID,
			Type:        models.TransactionExpense,
			Amount:      decimal.NewFromInt(10),
			IsRecurring: true,
		})
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("another user's account is not found", func(t *testing.T) {
		svc, _, account := newTransactionFixture(t)

		_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:    uuid.New(),
			AccountID: account.ID,
			Type:      models.TransactionIncome,
			Amount:    decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("rejects bad type and negative amount", func(t *testing.T) {
		svc, _, account := newTransactionFixture(t)

		_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:    account.UserID,
			AccountID: account.ID,
			Type:      models.TransactionType("TRANSFER"),
			Amount:    decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, ErrInvalidTransaction)

		_, err = svc.CreateTransaction(context.Background(), CreateTransactionInput{
			UserID:    account.UserID,
			AccountID: account.ID,
			Type:      models.TransactionIncome,
			Amount:    decimal.NewFromInt(-10),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestDashboard(t *testing.T) {
	svc, _, account := newTransactionFixture(t)

	_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		UserID:      account.UserID,
		AccountID:   account.ID,
		Type:        models.TransactionIncome,
		Amount:      decimal.NewFromInt(100),
		Description: "Refund",
		Category:    "other",
	})
	require.NoError(t, err)

	entries, err := svc.Dashboard(context.Background(), account.UserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Checking", entries[0].AccountName)
}
