package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Notification NotificationConfig
	Ledger       LedgerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	StorageDriver  string // "postgres" or "memory"
	AllowedOrigins []string
}

// NotificationConfig sizes the notification queue and its workers
type NotificationConfig struct {
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

type LedgerConfig struct {
	PolicyFile       string
	BatchConcurrency int
	// DirectoryFile seeds the employee directory when StorageDriver is memory
	DirectoryFile    string
	// RefreshInterval re-consolidates the running month's drafts; zero disables it
	RefreshInterval  time.Duration
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll_ledger"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageDriver:  getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Notification workers
	workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("NOTIFICATION_BATCH_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_BATCH_SIZE: %w", err)
	}
	flushInterval, err := time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}

	config.Notification = NotificationConfig{
		Workers:       workers,
		QueueSize:     queueSize,
		BatchSize:     batchSize,
		FlushInterval: flushInterval,
	}

	// Ledger
	batchConcurrency, err := strconv.Atoi(getEnv("LEDGER_BATCH_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_BATCH_CONCURRENCY: %w", err)
	}

	refreshInterval, err := time.ParseDuration(getEnv("LEDGER_REFRESH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_REFRESH_INTERVAL: %w", err)
	}

	config.Ledger = LedgerConfig{
		PolicyFile:       getEnv("LEDGER_POLICY_FILE", ""),
		BatchConcurrency: batchConcurrency,
		DirectoryFile:    getEnv("LEDGER_DIRECTORY_FILE", ""),
		RefreshInterval:  refreshInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.StorageDriver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverPostgres, StorageDriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Notification.Workers < 1 || c.Notification.QueueSize < 1 || c.Notification.BatchSize < 1 {
		return fmt.Errorf("notification workers, queue size and batch size must be positive")
	}
	if c.Ledger.BatchConcurrency < 1 {
		return fmt.Errorf("LEDGER_BATCH_CONCURRENCY must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
