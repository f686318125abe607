package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Jobs     JobsConfig
	Schedule ScheduleConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type JobsConfig struct {
	QueueSize int
	Workers   int
	// Per-user throttle for recurring-transaction processing.
	ThrottlePerUser   int
	ThrottlePeriod    time.Duration
	ProcessMaxRetries int
}

type ScheduleConfig struct {
	// How often budgets are evaluated. The alert threshold is a percentage
	// of the monthly budget.
	BudgetCheckInterval time.Duration
	AlertThresholdPct   float64
	// Hour of day (UTC) for the daily recurring-transaction trigger and day
	// of month for report generation.
	RecurringTriggerHour int
	ReportDayOfMonth     int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	queueSize, _ := strconv.Atoi(getEnv("JOBS_QUEUE_SIZE", "256"))
	workers, _ := strconv.Atoi(getEnv("JOBS_WORKERS", "5"))
	throttlePerUser, _ := strconv.Atoi(getEnv("JOBS_THROTTLE_PER_USER", "10"))
	throttlePeriod, _ := strconv.Atoi(getEnv("JOBS_THROTTLE_PERIOD_SECONDS", "60"))
	maxRetries, _ := strconv.Atoi(getEnv("JOBS_PROCESS_MAX_RETRIES", "3"))
	budgetCheck, _ := strconv.Atoi(getEnv("BUDGET_CHECK_INTERVAL_MINUTES", "60"))
	alertThreshold, _ := strconv.ParseFloat(getEnv("BUDGET_ALERT_THRESHOLD_PCT", "80"), 64)
	triggerHour, _ := strconv.Atoi(getEnv("RECURRING_TRIGGER_HOUR", "0"))
	reportDay, _ := strconv.Atoi(getEnv("REPORT_DAY_OF_MONTH", "1"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finwise"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "alerts@finwise.local"),
		},
		Jobs: JobsConfig{
			QueueSize:         queueSize,
			Workers:           workers,
			ThrottlePerUser:   throttlePerUser,
			ThrottlePeriod:    time.Duration(throttlePeriod) * time.Second,
			ProcessMaxRetries: maxRetries,
		},
		Schedule: ScheduleConfig{
			BudgetCheckInterval:  time.Duration(budgetCheck) * time.Minute,
			AlertThresholdPct:    alertThreshold,
			RecurringTriggerHour: triggerHour,
			ReportDayOfMonth:     reportDay,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
