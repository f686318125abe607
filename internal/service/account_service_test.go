package service

import (
	"context"
	"testing"

	"finwise/internal/models"
	"finwise/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAccountStore struct {
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*models.Account)}
}

func (f *fakeAccountStore) Create(ctx context.Context, account *models.Account) error {
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccountStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	account, ok := f.accounts[id]
	if !ok || account.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	var out []*models.Account
	for _, account := range f.accounts {
		if account.UserID == userID {
			out = append(out, account)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, account := range f.accounts {
		if account.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAccountStore) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	target, ok := f.accounts[id]
	if !ok || target.UserID != userID {
		return repository.ErrNotFound
	}
	for _, account := range f.accounts {
		if account.UserID == userID {
			account.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

type fakeTxCounter struct {
	counts map[uuid.UUID]int
}

func (f *fakeTxCounter) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	return f.counts[accountID], nil
}

func TestCreateAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("first account becomes default", func(t *testing.T) {
		store := newFakeAccountStore()
		svc := NewAccountService(store, &fakeTxCounter{}, zap.NewNop())

		account, err := svc.CreateAccount(context.Background(), userID, "Checking", models.AccountCurrent, decimal.NewFromInt(100), false)
		require.NoError(t, err)
		assert.True(t, account.IsDefault, "first account is forced default")
	})

	t.Run("requested default demotes the previous one", func(t *testing.T) {
		store := newFakeAccountStore()
		svc := NewAccountService(store, &fakeTxCounter{}, zap.NewNop())

		first, err := svc.CreateAccount(context.Background(), userID, "Checking", models.AccountCurrent, decimal.NewFromInt(100), false)
		require.NoError(t, err)
		second, err := svc.CreateAccount(context.Background(), userID, "Savings", models.AccountSavings, decimal.NewFromInt(500), true)
		require.NoError(t, err)

		assert.True(t, second.IsDefault)
		assert.False(t, store.accounts[first.ID].IsDefault)

		defaults := 0
		for _, account := range store.accounts {
			if account.IsDefault {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults, "exactly one default per user")
	})

	t.Run("later non-default account stays non-default", func(t *testing.T) {
		store := newFakeAccountStore()
		svc := NewAccountService(store, &fakeTxCounter{}, zap.NewNop())

		_, err := svc.CreateAccount(context.Background(), userID, "Checking", models.AccountCurrent, decimal.NewFromInt(100), false)
		require.NoError(t, err)
		second, err := svc.CreateAccount(context.Background(), userID, "Savings", models.AccountSavings, decimal.Zero, false)
		require.NoError(t, err)
		assert.False(t, second.IsDefault)
	})

	t.Run("validation", func(t *testing.T) {
		store := newFakeAccountStore()
		svc := NewAccountService(store, &fakeTxCounter{}, zap.NewNop())

		_, err := svc.CreateAccount(context.Background(), userID, "X", models.AccountType("CRYPTO"), decimal.Zero, false)
		assert.ErrorIs(t, err, ErrInvalidAccountType)

		_, err = svc.CreateAccount(context.Background(), userID, "X", models.AccountCurrent, decimal.NewFromInt(-1), false)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestUpdateDefaultAccount(t *testing.T) {
	userID := uuid.New()
	store := newFakeAccountStore()
	svc := NewAccountService(store, &fakeTxCounter{}, zap.NewNop())

	first, err := svc.CreateAccount(context.Background(), userID, "Checking", models.AccountCurrent, decimal.NewFromInt(100), false)
	require.NoError(t, err)
	second, err := svc.CreateAccount(context.Background(), userID, "Savings", models.AccountSavings, decimal.Zero, false)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateDefaultAccount(context.Background(), second.ID, userID))
	assert.True(t, store.accounts[second.ID].IsDefault)
	assert.False(t, store.accounts[first.ID].IsDefault)

	t.Run("unknown account", func(t *testing.T) {
		err := svc.UpdateDefaultAccount(context.Background(), uuid.New(), userID)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("another user's account", func(t *testing.T) {
		err := svc.UpdateDefaultAccount(context.Background(), first.ID, uuid.New())
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestListAccounts(t *testing.T) {
	userID := uuid.New()
	store := newFakeAccountStore()
	counter := &fakeTxCounter{counts: make(map[uuid.UUID]int)}
	svc := NewAccountService(store, counter, zap.NewNop())

	account, err := svc.CreateAccount(context.Background(), userID, "Checking", models.AccountCurrent, decimal.NewFromInt(100), false)
	require.NoError(t, err)
	counter.counts[account.ID] = 7

	summaries, err := svc.ListAccounts(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 7, summaries[0].TransactionCount)
}
