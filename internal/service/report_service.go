package service

import (
	"context"
	"fmt"
	"time"

	"finwise/internal/mailer"
	"finwise/internal/models"
	"finwise/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type reportUserStore interface {
	List(ctx context.Context) ([]*models.User, error)
}

type monthTransactionStore interface {
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error)
}

// MonthlyStats aggregates one user's transactions for a calendar month.
type MonthlyStats struct {
	TotalExpenses    decimal.Decimal
	TotalIncome      decimal.Decimal
	ByCategory       map[string]decimal.Decimal
	TransactionCount int
}

// ComputeMonthlyStats folds a month of transactions into totals. Expenses are
// additionally grouped by category; income is not.
func ComputeMonthlyStats(transactions []*models.Transaction) MonthlyStats {
	stats := MonthlyStats{
		TotalExpenses:    decimal.Zero,
		TotalIncome:      decimal.Zero,
		ByCategory:       make(map[string]decimal.Decimal),
		TransactionCount: len(transactions),
	}

	for _, tx := range transactions {
		if tx.Type == models.TransactionExpense {
			stats.TotalExpenses = stats.TotalExpenses.Add(tx.Amount)
			stats.ByCategory[tx.Category] = stats.ByCategory[tx.Category].Add(tx.Amount)
		} else {
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		}
	}

	return stats
}

// ReportService emails each user a summary of the previous calendar month.
type ReportService struct {
	users        reportUserStore
	transactions monthTransactionStore
	mail         mailer.Sender
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(users reportUserStore, transactions monthTransactionStore, mail mailer.Sender, logger *zap.Logger) *ReportService {
	return &ReportService{
		users:        users,
		transactions: transactions,
		mail:         mail,
		logger:       logger,
		now:          time.Now,
	}
}

// GenerateMonthly sends one prior-month report per user and returns how many
// users were processed. A failure for one user is logged and the rest of the
// batch continues.
func (s *ReportService) GenerateMonthly(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch users: %w", err)
	}

	// Previous calendar month, anchored on the start of the current one so
	// day-of-month normalization cannot shift the window.
	currentStart, _ := schedule.MonthBounds(s.now())
	prevStart := currentStart.AddDate(0, -1, 0)

	for _, user := range users {
		if err := s.reportForUser(ctx, user, prevStart, currentStart); err != nil {
			s.logger.Error("Monthly report failed for user",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	return len(users), nil
}

func (s *ReportService) reportForUser(ctx context.Context, user *models.User, from, to time.Time) error {
	transactions, err := s.transactions.ListByUserBetween(ctx, user.ID, from, to)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	stats := ComputeMonthlyStats(transactions)
	monthName := from.Month().String()

	msg := mailer.MonthlyReportMessage(
		user.Email, user.Username, monthName,
		stats.TotalIncome, stats.TotalExpenses, stats.ByCategory, stats.TransactionCount,
	)
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	s.logger.Info("Monthly report sent",
		zap.String("user_id", user.ID.String()),
		zap.String("month", monthName),
	)
	return nil
}
