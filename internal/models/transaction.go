package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionExpense TransactionType = "EXPENSE"
	TransactionIncome  TransactionType = "INCOME"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

// Transaction is owned by both a user and one of that user's accounts; the
// two references must stay consistent. A recurring transaction always carries
// a non-nil RecurringInterval, and NextRecurringDate is never before
// LastProcessed when both are set.
type Transaction struct {
	ID                uuid.UUID          `db:"id"`
	UserID            uuid.UUID          `db:"user_id"`
	AccountID         uuid.UUID          `db:"account_id"`
	Type              TransactionType    `db:"type"`
	Amount            decimal.Decimal    `db:"amount"`
	Description       string             `db:"description"`
	Date              time.Time          `db:"date"`
	Category          string             `db:"category"`
	Status            TransactionStatus  `db:"status"`
	IsRecurring       bool               `db:"is_recurring"`
	RecurringInterval *RecurringInterval `db:"recurring_interval"`
	LastProcessed     *time.Time         `db:"last_processed"`
	NextRecurringDate *time.Time         `db:"next_recurring_date"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
}

// BalanceDelta is the signed effect of the transaction on its account
// balance: negative for expenses, positive for income.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
