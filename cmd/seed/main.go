// Command seed loads a demo user with accounts, transactions, and a budget
// for local development.
package main

import (
	"context"
	"log"
	"time"

	"finwise/internal/models"
	"finwise/internal/repository"
	"finwise/pkg/auth"
	"finwise/pkg/config"
	"finwise/pkg/logger"
	"finwise/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)

	appLogger.Info("Seeding demo data...")

	now := time.Now()
	password, err := auth.HashPassword("demo1234")
	if err != nil {
		appLogger.Fatal("Failed to hash password", zap.Error(err))
	}

	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     "demo@finwise.local",
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}

	checking := &models.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      "Everyday Checking",
		Type:      models.AccountCurrent,
		Balance:   decimal.NewFromInt(2500),
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	savings := &models.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      "Rainy Day Savings",
		Type:      models.AccountSavings,
		Balance:   decimal.NewFromInt(10000),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, account := range []*models.Account{checking, savings} {
		if err := accountRepo.Create(ctx, account); err != nil {
			appLogger.Fatal("Failed to create account", zap.String("name", account.Name), zap.Error(err))
		}
	}

	monthly := models.IntervalMonthly
	rentNext := now.AddDate(0, 1, 0)
	seedTransactions := []*models.Transaction{
		{
			ID:                uuid.New(),
			UserID:            user.ID,
			AccountID:         checking.ID,
			Type:              models.TransactionExpense,
			Amount:            decimal.NewFromInt(1200),
			Description:       "Rent",
			Date:              now,
			Category:          "housing",
			Status:            models.StatusCompleted,
			IsRecurring:       true,
			RecurringInterval: &monthly,
			NextRecurringDate: &rentNext,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:          uuid.New(),
			UserID:      user.ID,
			AccountID:   checking.ID,
			Type:        models.TransactionExpense,
			Amount:      decimal.NewFromFloat(84.50),
			Description: "Groceries",
			Date:        now.AddDate(0, 0, -2),
			Category:    "food",
			Status:      models.StatusCompleted,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			UserID:      user.ID,
			AccountID:   checking.ID,
			Type:        models.TransactionIncome,
			Amount:      decimal.NewFromInt(4200),
			Description: "Salary",
			Date:        now.AddDate(0, 0, -5),
			Category:    "salary",
			Status:      models.StatusCompleted,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, tx := range seedTransactions {
		if err := txRepo.Create(ctx, tx); err != nil {
			appLogger.Fatal("Failed to create transaction", zap.String("description", tx.Description), zap.Error(err))
		}
	}

	budget := &models.Budget{
		ID:        uuid.New(),
		UserID:    user.ID,
		Amount:    decimal.NewFromInt(2000),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := budgetRepo.Upsert(ctx, budget); err != nil {
		appLogger.Fatal("Failed to create budget", zap.Error(err))
	}

	appLogger.Info("Seeding complete",
		zap.String("user", user.Email),
		zap.Int("accounts", 2),
		zap.Int("transactions", len(seedTransactions)),
	)
}
