package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Holiday  HolidayConfig
	Ledger   LedgerConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration. PoolMax is kept
// deliberately small: conflicting ledger writes queue on the pool instead of
// racing each other.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// HolidayConfig holds the holiday calendar source settings.
type HolidayConfig struct {
	BaseURL      string
	FetchTimeout time.Duration
	WindowDays   int
}

// LedgerConfig holds move ledger settings.
type LedgerConfig struct {
	TransitionTimeout time.Duration
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "defrag")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 4)
	v.SetDefault("HOLIDAY_API_URL", "http://localhost:9090")
	v.SetDefault("HOLIDAY_FETCH_TIMEOUT", "10s")
	v.SetDefault("HOLIDAY_WINDOW_DAYS", 365)
	v.SetDefault("LEDGER_TRANSITION_TIMEOUT", "5s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Holiday: HolidayConfig{
			BaseURL:      v.GetString("HOLIDAY_API_URL"),
			FetchTimeout: v.GetDuration("HOLIDAY_FETCH_TIMEOUT"),
			WindowDays:   v.GetInt("HOLIDAY_WINDOW_DAYS"),
		},
		Ledger: LedgerConfig{
			TransitionTimeout: v.GetDuration("LEDGER_TRANSITION_TIMEOUT"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if c.Holiday.BaseURL == "" {
		return fmt.Errorf("HOLIDAY_API_URL is required")
	}
	if c.Holiday.FetchTimeout <= 0 {
		return fmt.Errorf("HOLIDAY_FETCH_TIMEOUT must be positive")
	}
	if c.Holiday.WindowDays < 1 {
		return fmt.Errorf("HOLIDAY_WINDOW_DAYS must be at least 1")
	}

	if c.Ledger.TransitionTimeout <= 0 {
		return fmt.Errorf("LEDGER_TRANSITION_TIMEOUT must be positive")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
