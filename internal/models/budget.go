package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is the user's monthly spending limit, evaluated against the default
// account. LastAlertSent records the most recent threshold alert and gates
// re-alerting within the same calendar month.
type Budget struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	LastAlertSent *time.Time      `db:"last_alert_sent"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
