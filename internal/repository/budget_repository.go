package repository

import (
	"context"
	"errors"
	"time"

	"finwise/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const budgetColumns = "id, user_id, amount, last_alert_sent, created_at, updated_at"

type BudgetRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBudgetRepository(db *pgxpool.Pool, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

// List returns every budget; the evaluator walks all of them each run.
func (r *BudgetRepository) List(ctx context.Context) ([]*models.Budget, error) {
	query := squirrel.Select(budgetColumns).
		From("budgets").
		OrderBy("created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Amount, &b.LastAlertSent, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, &b)
	}

	return budgets, rows.Err()
}

// GetByUser returns the user's budget, or nil when none is set.
func (r *BudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Budget, error) {
	query := squirrel.Select(budgetColumns).
		From("budgets").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var b models.Budget
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&b.ID, &b.UserID, &b.Amount, &b.LastAlertSent, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// Upsert creates the user's budget or replaces its amount. One budget per
// user, keyed on user_id.
func (r *BudgetRepository) Upsert(ctx context.Context, budget *models.Budget) error {
	query := squirrel.Insert("budgets").
		Columns("id", "user_id", "amount", "last_alert_sent", "created_at", "updated_at").
		Values(budget.ID, budget.UserID, budget.Amount, budget.LastAlertSent, budget.CreatedAt, budget.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *BudgetRepository) UpdateLastAlertSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := squirrel.Update("budgets").
		Set("last_alert_sent", sentAt).
		Set("updated_at", sentAt).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
