package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64  // the fixed super-admin
	AdminSecret     string // shared secret for self-service elevation requests
	LogLevel        string
	Environment     string
	HealthAddr      string // liveness probe listen address
	ChartWindowDays int    // how many recent days a trend chart covers
	SlotsFile       string // optional YAML slot schedule override
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.AdminSecret = os.Getenv("ADMIN_SECRET")
	if cfg.AdminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.HealthAddr = os.Getenv("HEALTH_ADDR")
	if cfg.HealthAddr == "" {
		cfg.HealthAddr = ":8080"
	}

	cfg.ChartWindowDays = 14 // Default: most recent two weeks on the chart
	if windowStr := os.Getenv("CHART_WINDOW_DAYS"); windowStr != "" {
		cfg.ChartWindowDays, err = strconv.Atoi(windowStr)
		if err != nil || cfg.ChartWindowDays < 1 {
			return nil, fmt.Errorf("invalid CHART_WINDOW_DAYS: %q", windowStr)
		}
	}

	cfg.SlotsFile = os.Getenv("SLOTS_FILE") // empty -> built-in default schedule

	return cfg, nil
}
