package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finwise/internal/models"
	"finwise/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type accountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	SetDefault(ctx context.Context, id, userID uuid.UUID) error
}

type accountTransactionCounter interface {
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// AccountSummary pairs an account with how many transactions it holds.
type AccountSummary struct {
	Account          *models.Account
	TransactionCount int
}

// AccountService maintains the single-default-account-per-user invariant:
// a user's first account is forced default, and promoting an account demotes
// the previous default in the same store transaction.
type AccountService struct {
	accounts     accountStore
	transactions accountTransactionCounter
	logger       *zap.Logger
	now          func() time.Time
}

func NewAccountService(accounts accountStore, transactions accountTransactionCounter, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, name string, accType models.AccountType, balance decimal.Decimal, isDefault bool) (*models.Account, error) {
	if name == "" {
		return nil, ErrInvalidAccountType
	}
	if accType != models.AccountCurrent && accType != models.AccountSavings {
		return nil, ErrInvalidAccountType
	}
	if balance.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	existing, err := s.accounts.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}

	now := s.now()
	account := &models.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Type:      accType,
		Balance:   balance,
		IsDefault: existing == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// A requested default on a later account goes through SetDefault so the
	// previous default is demoted atomically.
	if isDefault && existing > 0 {
		if err := s.accounts.SetDefault(ctx, account.ID, userID); err != nil {
			return nil, fmt.Errorf("set default account: %w", err)
		}
		account.IsDefault = true
	}

	s.logger.Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("is_default", account.IsDefault),
	)
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]AccountSummary, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		count, err := s.transactions.CountByAccount(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("count transactions: %w", err)
		}
		summaries = append(summaries, AccountSummary{Account: account, TransactionCount: count})
	}

	return summaries, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByIDAndUser(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return account, nil
}

func (s *AccountService) UpdateDefaultAccount(ctx context.Context, id, userID uuid.UUID) error {
	err := s.accounts.SetDefault(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("set default account: %w", err)
	}

	s.logger.Info("Default account updated",
		zap.String("account_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}
