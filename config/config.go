package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string
	AdminID       int64 // Telegram ID allowed to review withdrawals, 0 disables admin commands

	// Database configuration
	DatabaseURL string

	// Ledger configuration
	StartingWallet  int64 // wallet grant for first-seen users
	WithdrawMinimum int64 // smallest amount accepted by /withdraw

	// Game configuration
	ScatterWinPercent int // win chance of a scatter spin, 0-100

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:       "test",
		StartingWallet:    100,
		WithdrawMinimum:   888,
		ScatterWinPercent: 30,
	}
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Best-effort .env autoload for local development
	_ = godotenv.Load()

	config := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		// Ledger defaults
		StartingWallet:  100,
		WithdrawMinimum: 888,

		// Game defaults
		ScatterWinPercent: 30,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if adminID := os.Getenv("ADMIN_ID"); adminID != "" {
		parsed, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
		}
		config.AdminID = parsed
	}

	// Override defaults if environment variables are set
	if wallet := os.Getenv("STARTING_WALLET"); wallet != "" {
		if parsed, err := strconv.ParseInt(wallet, 10, 64); err == nil {
			config.StartingWallet = parsed
		}
	}
	if minimum := os.Getenv("WITHDRAW_MINIMUM"); minimum != "" {
		if parsed, err := strconv.ParseInt(minimum, 10, 64); err == nil {
			config.WithdrawMinimum = parsed
		}
	}
	if percent := os.Getenv("SCATTER_WIN_PERCENT"); percent != "" {
		if parsed, err := strconv.Atoi(percent); err == nil && parsed >= 0 && parsed <= 100 {
			config.ScatterWinPercent = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
