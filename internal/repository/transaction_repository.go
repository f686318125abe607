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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const transactionColumns = "id, user_id, account_id, type, amount, description, date, category, status, " +
	"is_recurring, recurring_interval, last_processed, next_recurring_date, created_at, updated_at"

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx       models.Transaction
		interval *string
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Description,
		&tx.Date, &tx.Category, &tx.Status, &tx.IsRecurring, &interval,
		&tx.LastProcessed, &tx.NextRecurringDate, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if interval != nil {
		ri := models.RecurringInterval(*interval)
		tx.RecurringInterval = &ri
	}
	return &tx, nil
}

func transactionValues(tx *models.Transaction) []any {
	var interval any
	if tx.RecurringInterval != nil {
		interval = string(*tx.RecurringInterval)
	}
	return []any{
		tx.ID, tx.UserID, tx.AccountID, tx.Type, tx.Amount, tx.Description,
		tx.Date, tx.Category, tx.Status, tx.IsRecurring, interval,
		tx.LastProcessed, tx.NextRecurringDate, tx.CreatedAt, tx.UpdatedAt,
	}
}

func insertTransaction(tx *models.Transaction) squirrel.InsertBuilder {
	return squirrel.Insert("transactions").
		Columns("id", "user_id", "account_id", "type", "amount", "description", "date", "category", "status",
			"is_recurring", "recurring_interval", "last_processed", "next_recurring_date", "created_at", "updated_at").
		Values(transactionValues(tx)...).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	sql, args, err := insertTransaction(tx).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByIDAndUser scopes the lookup by both ids, so a stale or forged
// transaction id belonging to another user is simply not found.
func (r *TransactionRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// FindDue selects every completed recurring transaction that has never been
// processed or whose next occurrence is at or before now. Read-only; the
// ordering is for determinism only.
func (r *TransactionRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"is_recurring": true, "status": models.StatusCompleted}).
		Where(squirrel.Or{
			squirrel.Eq{"last_processed": nil},
			squirrel.LtOrEq{"next_recurring_date": now},
		}).
		OrderBy("next_recurring_date NULLS FIRST").
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

	var due []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, tx)
	}

	return due, rows.Err()
}

// SumExpenses aggregates EXPENSE amounts for one account within [from, to).
func (r *TransactionRepository) SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := squirrel.Select("COALESCE(SUM(amount), 0)").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID, "account_id": accountID, "type": models.TransactionExpense}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListByUserBetween returns a user's transactions dated within [from, to).
func (r *TransactionRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		OrderBy("date").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, query)
}

func (r *TransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("transactions").
		Where(squirrel.Eq{"account_id": accountID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TransactionRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// CreateWithBalance inserts the transaction and applies its signed amount to
// the owning account balance in one database transaction.
func (r *TransactionRepository) CreateWithBalance(ctx context.Context, tx *models.Transaction) error {
	dbtx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbtx.Rollback(ctx)

	sql, args, err := insertTransaction(tx).ToSql()
	if err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	balance := squirrel.Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", tx.BalanceDelta())).
		Set("updated_at", tx.UpdatedAt).
		Where(squirrel.Eq{"id": tx.AccountID, "user_id": tx.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = balance.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return dbtx.Commit(ctx)
}

// ApplyRecurring commits one recurrence of a recurring transaction as a
// single atomic unit: insert the derived one-off transaction, apply its
// amount to the account balance, and advance the source schedule. Either all
// three land or none do.
func (r *TransactionRepository) ApplyRecurring(ctx context.Context, src, derived *models.Transaction, lastProcessed, nextDue time.Time) error {
	dbtx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbtx.Rollback(ctx)

	sql, args, err := insertTransaction(derived).ToSql()
	if err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	balance := squirrel.Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", derived.BalanceDelta())).
		Set("updated_at", lastProcessed).
		Where(squirrel.Eq{"id": src.AccountID, "user_id": src.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = balance.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	advance := squirrel.Update("transactions").
		Set("last_processed", lastProcessed).
		Set("next_recurring_date", nextDue).
		Set("updated_at", lastProcessed).
		Where(squirrel.Eq{"id": src.ID, "user_id": src.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = advance.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return dbtx.Commit(ctx)
}
