package mailer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudgetAlertMessage(t *testing.T) {
	msg := BudgetAlertMessage(
		"jane@example.com", "Jane", "Main Checking",
		85.0,
		decimal.NewFromInt(1000), decimal.NewFromInt(850),
	)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Budget Alert for Main Checking", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Jane,")
	assert.Contains(t, msg.Body, "85.0%")
	assert.Contains(t, msg.Body, "1000.00")
	assert.Contains(t, msg.Body, "850.00")
	assert.Contains(t, msg.Body, "150.00")
}

func TestMonthlyReportMessage(t *testing.T) {
	byCategory := map[string]decimal.Decimal{
		"food":      decimal.NewFromInt(150),
		"transport": decimal.NewFromInt(60),
		"housing":   decimal.NewFromInt(900),
	}

	msg := MonthlyReportMessage(
		"jane@example.com", "Jane", "July 2025",
		decimal.NewFromInt(3000), decimal.NewFromInt(1110),
		byCategory, 12,
	)

	assert.Equal(t, "Your Monthly Financial Report - July 2025", msg.Subject)
	assert.Contains(t, msg.Body, "July 2025")
	assert.Contains(t, msg.Body, "3000.00")
	assert.Contains(t, msg.Body, "1110.00")
	assert.Contains(t, msg.Body, "1890.00")
	assert.Contains(t, msg.Body, "Transactions:   12")

	// Categories are listed in a stable alphabetical order.
	food := strings.Index(msg.Body, "food")
	housing := strings.Index(msg.Body, "housing")
	transport := strings.Index(msg.Body, "transport")
	assert.True(t, food < housing && housing < transport, "categories sorted: %s", msg.Body)
}

func TestMonthlyReportMessage_NoExpenses(t *testing.T) {
	msg := MonthlyReportMessage(
		"jane@example.com", "Jane", "July 2025",
		decimal.NewFromInt(500), decimal.Zero,
		nil, 1,
	)

	assert.NotContains(t, msg.Body, "Expenses by category")
}
