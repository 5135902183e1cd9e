// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for databases (always absolute)
	LogLevel            string
	Port                int
	DevMode             bool
	MaxWatchlistSize    int
	RequestTimeout      time.Duration
	RefreshSchedule     string // Empty disables background price refresh
	MaintenanceSchedule string // Empty disables VACUUM and integrity checks
	AlphaVantage        AlphaVantageConfig
	Groq                GroqConfig
	Backup              BackupConfig
}

// AlphaVantageConfig holds market data API settings
type AlphaVantageConfig struct {
	APIKeys []string // Rotated in order; at least one is required
	BaseURL string
}

// GroqConfig holds digest generation settings
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// BackupConfig holds Cloudflare R2 snapshot backup settings
type BackupConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Schedule        string
	Retain          int // Number of backups kept in the bucket
}

// Enabled reports whether every credential needed for R2 is present
func (b BackupConfig) Enabled() bool {
	return b.AccountID != "" && b.AccessKeyID != "" && b.SecretAccessKey != "" && b.Bucket != "" && b.Schedule != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TICKERTOCK_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnvAsInt("PORT", 8080),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		MaxWatchlistSize:    getEnvAsInt("MAX_WATCHLIST_SIZE", 3),
		RequestTimeout:      time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		RefreshSchedule:     getEnvAllowEmpty("REFRESH_SCHEDULE", "@every 15m"),
		MaintenanceSchedule: getEnvAllowEmpty("MAINTENANCE_SCHEDULE", "@weekly"),
		AlphaVantage: AlphaVantageConfig{
			APIKeys: getEnvAsList("ALPHAVANTAGE_API_KEYS"),
			BaseURL: getEnv("ALPHAVANTAGE_BASE_URL", ""),
		},
		Groq: GroqConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_BASE_URL", ""),
			Model:   getEnv("GROQ_MODEL", ""),
		},
		Backup: BackupConfig{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET", ""),
			Schedule:        getEnvAllowEmpty("BACKUP_SCHEDULE", "@daily"),
			Retain:          getEnvAsInt("BACKUP_RETAIN", 7),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if len(c.AlphaVantage.APIKeys) == 0 {
		return fmt.Errorf("at least one AlphaVantage API key is required (ALPHAVANTAGE_API_KEYS)")
	}
	if c.MaxWatchlistSize < 1 {
		return fmt.Errorf("MAX_WATCHLIST_SIZE must be at least 1, got %d", c.MaxWatchlistSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SEC must be positive")
	}
	if c.Backup.Retain < 1 {
		return fmt.Errorf("BACKUP_RETAIN must be at least 1, got %d", c.Backup.Retain)
	}
	return nil
}

// StatePath returns the path of the state database
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one explicitly set to ""
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
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

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
