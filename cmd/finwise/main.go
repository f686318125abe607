package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finwise/internal/api"
	"finwise/internal/api/handlers"
	"finwise/internal/jobs/inmemory"
	"finwise/internal/mailer"
	"finwise/internal/repository"
	"finwise/internal/scheduler"
	"finwise/internal/service"
	"finwise/pkg/auth"
	"finwise/pkg/config"
	"finwise/pkg/logger"
	"finwise/pkg/postgres"

	"go.uber.org/zap"
)

// @title FinWise API
// @version 1.0
// @description Personal-finance service: accounts, transactions, budgets, and
// @description scheduled budget alerts and monthly reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinWise service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	accountRepo := repository.NewAccountRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)

	// Initialize JWT manager and mail
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	mail := mailer.NewSMTPSender(&cfg.SMTP, appLogger)

	// Job bus for recurring-transaction processing
	queue := inmemory.NewQueue(
		cfg.Jobs.QueueSize,
		cfg.Jobs.Workers,
		cfg.Jobs.ThrottlePerUser,
		cfg.Jobs.ThrottlePeriod,
		cfg.Jobs.ProcessMaxRetries,
		appLogger,
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	accountService := service.NewAccountService(accountRepo, txRepo, appLogger)
	transactionService := service.NewTransactionService(txRepo, accountRepo, appLogger)
	recurringService := service.NewRecurringService(txRepo, queue, appLogger)
	budgetService := service.NewBudgetService(budgetRepo, accountRepo, txRepo, userRepo, mail, cfg.Schedule.AlertThresholdPct, appLogger)
	reportService := service.NewReportService(userRepo, txRepo, mail, appLogger)

	// Start consuming recurring-transaction jobs
	if err := queue.Start(ctx, recurringService.ProcessJob); err != nil {
		appLogger.Fatal("Failed to start job queue", zap.Error(err))
	}

	// Background schedules
	sched := scheduler.New(appLogger)
	sched.DailyAt("trigger-recurring-transactions", cfg.Schedule.RecurringTriggerHour, func(ctx context.Context) error {
		count, err := recurringService.TriggerDue(ctx)
		if err != nil {
			return err
		}
		appLogger.Info("Recurring trigger run finished", zap.Int("triggered", count))
		return nil
	})
	sched.Every("check-budget-alerts", cfg.Schedule.BudgetCheckInterval, budgetService.CheckAlerts)
	sched.MonthlyOn("generate-monthly-reports", cfg.Schedule.ReportDayOfMonth, func(ctx context.Context) error {
		processed, err := reportService.GenerateMonthly(ctx)
		if err != nil {
			return err
		}
		appLogger.Info("Monthly report run finished", zap.Int("processed", processed))
		return nil
	})
	sched.Start(ctx)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	accountHandler := handlers.NewAccountHandler(accountService, appLogger)
	transactionHandler := handlers.NewTransactionHandler(transactionService, appLogger)
	budgetHandler := handlers.NewBudgetHandler(budgetService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, accountHandler, transactionHandler, budgetHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
	sched.Stop()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := queue.Stop(stopCtx); err != nil {
		appLogger.Error("Job queue shutdown error", zap.Error(err))
	}
}
