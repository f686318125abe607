package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finwise/internal/models"
	"finwise/internal/repository"
	"finwise/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transactionStore interface {
	CreateWithBalance(ctx context.Context, tx *models.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

type transactionAccountStore interface {
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)
}

type CreateTransactionInput struct {
	UserID            uuid.UUID
	AccountID         uuid.UUID
	Type              models.TransactionType
	Amount            decimal.Decimal
	Description       string
	Category          string
	Date              time.Time
	IsRecurring       bool
	RecurringInterval *models.RecurringInterval
}

// DashboardEntry is one transaction decorated with its account name.
type DashboardEntry struct {
	Transaction *models.Transaction
	AccountName string
}

type TransactionService struct {
	transactions transactionStore
	accounts     transactionAccountStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewTransactionService(transactions transactionStore, accounts transactionAccountStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateTransaction records a transaction and applies its amount to the
// account balance atomically. A recurring transaction gets its first
// next_recurring_date computed from the transaction date.
func (s *TransactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if input.Type != models.TransactionExpense && input.Type != models.TransactionIncome {
		return nil, ErrInvalidTransaction
	}
	if input.Amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if input.IsRecurring && input.RecurringInterval == nil {
		return nil, ErrInvalidTransaction
	}

	// Ownership check; also rejects another user's account id.
	if _, err := s.accounts.GetByIDAndUser(ctx, input.AccountID, input.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	now := s.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	tx := &models.Transaction{
		ID:          uuid.New(),
		UserID:      input.UserID,
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        date,
		Category:    input.Category,
		Status:      models.StatusCompleted,
		IsRecurring: input.IsRecurring,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.IsRecurring {
		nextDue, err := schedule.Next(date, *input.RecurringInterval)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransaction, err)
		}
		tx.RecurringInterval = input.RecurringInterval
		tx.NextRecurringDate = &nextDue
	}

	if err := s.transactions.CreateWithBalance(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("Transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", tx.UserID.String()),
		zap.String("type", string(tx.Type)),
		zap.Bool("is_recurring", tx.IsRecurring),
	)
	return tx, nil
}

// Dashboard returns all of the user's transactions, newest first, each with
// its account name resolved.
func (s *TransactionService) Dashboard(ctx context.Context, userID uuid.UUID) ([]DashboardEntry, error) {
	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	names := make(map[uuid.UUID]string, len(accounts))
	for _, account := range accounts {
		names[account.ID] = account.Name
	}

	entries := make([]DashboardEntry, 0, len(transactions))
	for _, tx := range transactions {
		entries = append(entries, DashboardEntry{
			Transaction: tx,
			AccountName: names[tx.AccountID],
		})
	}

	return entries, nil
}
