package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven configuration for the application.
// Every os.Getenv call in the repository goes through this package.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External APIs
	Provider ProviderConfig
	Finnhub  FinnhubConfig

	// Screening pipeline
	Screener ScreenerConfig

	// Optional cycle-history database
	Database DatabaseConfig

	// Optional Discord alerts
	Discord DiscordConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ProviderConfig holds options-data provider API configuration.
type ProviderConfig struct {
	APIKey  string
	BaseURL string

	// Cooldown applied after an HTTP 429 before the call is reported
	// back to the caller as rate limited.
	RateLimitCooldown time.Duration

	// Sustained request rate allowed against the provider.
	RequestsPerSecond float64
}

// FinnhubConfig holds earnings-calendar provider configuration.
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
}

// ScreenerConfig holds fetch-pipeline tuning.
type ScreenerConfig struct {
	// Workers bounds how many per-ticker fetch tasks run at once.
	Workers int

	// RetryBudget is the number of extra attempts after a rate-limited
	// call. The default of 1 means "original attempt plus one retry".
	RetryBudget int

	// RefreshInterval drives the periodic refresh job.
	RefreshInterval time.Duration

	// UserConfigPath points at the YAML screening-settings file.
	UserConfigPath string
}

// DatabaseConfig holds PostgreSQL configuration. The cycle-history
// store is enabled only when URL is non-empty.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DiscordConfig holds Discord alert configuration. Alerts are enabled
// only when both fields are non-empty.
type DiscordConfig struct {
	BotToken  string
	ChannelID string
}

// Load reads configuration from environment variables, consulting a
// .env file first when one is present.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Provider: ProviderConfig{
			APIKey:            getEnv("PROVIDER_API_KEY", ""),
			BaseURL:           getEnv("PROVIDER_BASE_URL", "https://api.tdameritrade.com"),
			RateLimitCooldown: getEnvAsDuration("PROVIDER_RATE_LIMIT_COOLDOWN", "50s"),
			RequestsPerSecond: getEnvAsFloat("PROVIDER_REQUESTS_PER_SECOND", 2),
		},

		Finnhub: FinnhubConfig{
			APIKey:  getEnv("FINNHUB_API_KEY", ""),
			BaseURL: getEnv("FINNHUB_BASE_URL", "https://finnhub.io"),
		},

		Screener: ScreenerConfig{
			Workers:         getEnvAsInt("SCREENER_WORKERS", 5),
			RetryBudget:     getEnvAsInt("SCREENER_RETRY_BUDGET", 1),
			RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", "300s"),
			UserConfigPath:  getEnv("USER_CONFIG_PATH", "theta_tracker_user.yaml"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Discord: DiscordConfig{
			BotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
			ChannelID: getEnv("DISCORD_CHANNEL_ID", ""),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks constraints that would otherwise surface as confusing
// failures deep inside the pipeline.
func (c *Config) validate() error {
	if c.Screener.Workers < 1 {
		return fmt.Errorf("SCREENER_WORKERS must be >= 1, got %d", c.Screener.Workers)
	}
	if c.Screener.RetryBudget < 0 {
		return fmt.Errorf("SCREENER_RETRY_BUDGET must be >= 0, got %d", c.Screener.RetryBudget)
	}
	if c.Screener.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be >= 1s, got %s", c.Screener.RefreshInterval)
	}
	if c.Provider.RequestsPerSecond <= 0 {
		return fmt.Errorf("PROVIDER_REQUESTS_PER_SECOND must be > 0, got %g", c.Provider.RequestsPerSecond)
	}
	return nil
}

// StoreEnabled reports whether the cycle-history store should be wired.
func (c *Config) StoreEnabled() bool {
	return c.Database.URL != ""
}

// DiscordEnabled reports whether Discord alerts should be wired.
func (c *Config) DiscordEnabled() bool {
	return c.Discord.BotToken != "" && c.Discord.ChannelID != ""
}

// loadEnvFile tries the working directory and its parents for a .env file.
func loadEnvFile() {
	candidates := []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key, fallback string) time.Duration {
	value := getEnv(key, fallback)
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	parsed, _ := time.ParseDuration(fallback)
	return parsed
}
