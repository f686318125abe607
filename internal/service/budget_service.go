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

type budgetStore interface {
	List(ctx context.Context) ([]*models.Budget, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Budget, error)
	Upsert(ctx context.Context, budget *models.Budget) error
	UpdateLastAlertSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

type defaultAccountStore interface {
	GetDefaultByUser(ctx context.Context, userID uuid.UUID) (*models.Account, error)
}

type expenseSummer interface {
	SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BudgetService evaluates budget consumption against each user's default
// account and dispatches threshold alerts. At most one alert is sent per
// budget per calendar month, gated on last_alert_sent.
type BudgetService struct {
	budgets      budgetStore
	accounts     defaultAccountStore
	transactions expenseSummer
	users        userGetter
	mail         mailer.Sender
	thresholdPct float64
	logger       *zap.Logger
	now          func() time.Time
}

func NewBudgetService(
	budgets budgetStore,
	accounts defaultAccountStore,
	transactions expenseSummer,
	users userGetter,
	mail mailer.Sender,
	thresholdPct float64,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		accounts:     accounts,
		transactions: transactions,
		users:        users,
		mail:         mail,
		thresholdPct: thresholdPct,
		logger:       logger,
		now:          time.Now,
	}
}

// PercentageUsed returns how much of the budget the expenses consume, as a
// percentage. A zero or negative budget yields 0 rather than a division
// error.
func PercentageUsed(totalExpenses, budgetAmount decimal.Decimal) float64 {
	if budgetAmount.Sign() <= 0 {
		return 0
	}
	pct, _ := totalExpenses.Div(budgetAmount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// CheckAlerts walks every budget once. Per-budget failures are logged and do
// not abort the rest of the batch; only failing to list the budgets at all is
// an error.
func (s *BudgetService) CheckAlerts(ctx context.Context) error {
	budgets, err := s.budgets.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch budgets: %w", err)
	}

	now := s.now()
	for _, budget := range budgets {
		if err := s.checkBudget(ctx, budget, now); err != nil {
			s.logger.Error("Budget check failed",
				zap.String("budget_id", budget.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *BudgetService) checkBudget(ctx context.Context, budget *models.Budget, now time.Time) error {
	account, err := s.accounts.GetDefaultByUser(ctx, budget.UserID)
	if err != nil {
		return fmt.Errorf("resolve default account: %w", err)
	}
	if account == nil {
		s.logger.Debug("No default account for budget, skipping",
			zap.String("budget_id", budget.ID.String()),
		)
		return nil
	}

	monthStart, monthEnd := schedule.MonthBounds(now)
	totalExpenses, err := s.transactions.SumExpenses(ctx, budget.UserID, account.ID, monthStart, monthEnd)
	if err != nil {
		return fmt.Errorf("aggregate expenses: %w", err)
	}

	pct := PercentageUsed(totalExpenses, budget.Amount)
	if pct < s.thresholdPct {
		return nil
	}

	if budget.LastAlertSent != nil && schedule.SameMonth(*budget.LastAlertSent, now) {
		s.logger.Debug("Alert already sent this month, skipping",
			zap.String("budget_id", budget.ID.String()),
		)
		return nil
	}

	user, err := s.users.GetByID(ctx, budget.UserID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	msg := mailer.BudgetAlertMessage(user.Email, user.Username, account.Name, pct, budget.Amount, totalExpenses)
	if err := s.mail.Send(ctx, msg); err != nil {
		// Delivery failures never block the store update.
		s.logger.Error("Budget alert email failed",
			zap.String("budget_id", budget.ID.String()),
			zap.Error(err),
		)
	}

	if err := s.budgets.UpdateLastAlertSent(ctx, budget.ID, now); err != nil {
		return fmt.Errorf("record alert sent: %w", err)
	}

	s.logger.Info("Budget alert dispatched",
		zap.String("budget_id", budget.ID.String()),
		zap.Float64("percentage_used", pct),
	)
	return nil
}

// SetBudget creates or replaces the user's monthly budget.
func (s *BudgetService) SetBudget(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Budget, error) {
	if amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	budget := &models.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.budgets.Upsert(ctx, budget); err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	return budget, nil
}

// GetBudget returns the user's budget together with current-month usage
// against the default account.
func (s *BudgetService) GetBudget(ctx context.Context, userID uuid.UUID) (*models.Budget, decimal.Decimal, error) {
	budget, err := s.budgets.GetByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("fetch budget: %w", err)
	}
	if budget == nil {
		return nil, decimal.Zero, nil
	}

	account, err := s.accounts.GetDefaultByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("resolve default account: %w", err)
	}
	if account == nil {
		return budget, decimal.Zero, nil
	}

	monthStart, monthEnd := schedule.MonthBounds(s.now())
	spent, err := s.transactions.SumExpenses(ctx, userID, account.ID, monthStart, monthEnd)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("aggregate expenses: %w", err)
	}

	return budget, spent, nil
}
