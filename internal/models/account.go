package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountCurrent AccountType = "CURRENT"
	AccountSavings AccountType = "SAVINGS"
)

// Account balance is mutated only inside the atomic write that applies a
// transaction to it. Exactly one account per user has IsDefault set.
type Account struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Name      string          `db:"name"`
	Type      AccountType     `db:"type"`
	Balance   decimal.Decimal `db:"balance"`
	IsDefault bool            `db:"is_default"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
