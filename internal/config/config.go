// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir    string // Base directory for databases and reports (always absolute)
	ReportsDir string // Directory for CSV/summary exports
	LogLevel   string
	Port       int
	DevMode    bool
	Email      EmailConfig
	Strategy   StrategyConfig
}

// EmailConfig holds SMTP notification settings
type EmailConfig struct {
	WeeklyDay  string // Weekday name for the scheduled summary email
	Sender     string
	Recipients []string
	SMTPHost   string
	SMTPPort   int
	Username   string
	Password   string
}

// Enabled reports whether email notifications are configured.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && len(e.Recipients) > 0
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("EVERGREEN_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:    absDataDir,
		ReportsDir: getEnv("EVERGREEN_REPORTS_DIR", "reports"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Port:       getEnvAsInt("EVERGREEN_PORT", 8001),
		DevMode:    getEnvAsBool("DEV_MODE", false),
		Email: EmailConfig{
			WeeklyDay:  getEnv("EMAIL_WEEKLY_DAY", "Friday"),
			Sender:     getEnv("EMAIL_SENDER", "alerts@example.com"),
			Recipients: splitNonEmpty(getEnv("EMAIL_RECIPIENTS", "")),
			SMTPHost:   getEnv("SMTP_HOST", ""),
			SMTPPort:   getEnvAsInt("SMTP_PORT", 25),
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
		},
		Strategy: DefaultStrategyConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Strategy.Portfolio.TopN <= 0 {
		return fmt.Errorf("portfolio top_n must be positive, got %d", c.Strategy.Portfolio.TopN)
	}
	if c.Strategy.Rebalancing.MinPosition > c.Strategy.Rebalancing.MaxPosition {
		return fmt.Errorf("min_position %.4f exceeds max_position %.4f",
			c.Strategy.Rebalancing.MinPosition, c.Strategy.Rebalancing.MaxPosition)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
