package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ChannelTelegram = "telegram"
	ChannelGreenAPI = "greenapi"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Channel string `env:"CHANNEL" envDefault:"telegram"`

	TelegramToken string `env:"TELEGRAM_TOKEN"`

	GreenAPIURL   string `env:"GREENAPI_URL" envDefault:"https://api.green-api.com"`
	GreenAPIID    string `env:"GREENAPI_ID"`
	GreenAPIToken string `env:"GREENAPI_TOKEN"`
	WebhookToken  string `env:"GREENAPI_WEBHOOK_TOKEN"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL,required,notEmpty"`

	SessionTTLHours int      `env:"SESSION_TTL_HOURS" envDefault:"0"`
	AdminPhones     []string `env:"ADMIN_PHONES" envSeparator:","`
	Timezone        string   `env:"TIMEZONE" envDefault:"Asia/Jakarta"`

	DispatchIntervalSeconds     int `env:"DISPATCH_INTERVAL_SECONDS" envDefault:"30"`
	DispatchBackoffSeconds      int `env:"DISPATCH_BACKOFF_SECONDS" envDefault:"60"`
	DispatchCycleTimeoutSeconds int `env:"DISPATCH_CYCLE_TIMEOUT_SECONDS" envDefault:"120"`
	LedgerTTLHours              int `env:"LEDGER_TTL_HOURS" envDefault:"168"`

	CronSpecReferenceRefresh string `env:"CRON_SPEC_REFERENCE_REFRESH" envDefault:"*/15 * * * *"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Channel = strings.ToLower(strings.TrimSpace(cfg.Channel))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *AppConfig) Validate() error {
	switch c.Channel {
	case ChannelTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
	case ChannelGreenAPI:
		if c.GreenAPIID == "" || c.GreenAPIToken == "" {
			return fmt.Errorf("GREENAPI_ID and GREENAPI_TOKEN must be set for the greenapi channel")
		}
	default:
		return fmt.Errorf("unknown CHANNEL %q (want %s or %s)", c.Channel, ChannelTelegram, ChannelGreenAPI)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if c.DispatchIntervalSeconds <= 0 || c.DispatchBackoffSeconds <= 0 || c.DispatchCycleTimeoutSeconds <= 0 {
		return fmt.Errorf("dispatch interval, backoff and cycle timeout must be positive")
	}
	if c.SessionTTLHours < 0 || c.LedgerTTLHours < 0 {
		return fmt.Errorf("ttl values must not be negative")
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *AppConfig) DispatchInterval() time.Duration {
	return time.Duration(c.DispatchIntervalSeconds) * time.Second
}

func (c *AppConfig) DispatchBackoff() time.Duration {
	return time.Duration(c.DispatchBackoffSeconds) * time.Second
}

func (c *AppConfig) DispatchCycleTimeout() time.Duration {
	return time.Duration(c.DispatchCycleTimeoutSeconds) * time.Second
}

// SessionTTL is zero when sessions never expire.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *AppConfig) LedgerTTL() time.Duration {
	return time.Duration(c.LedgerTTLHours) * time.Hour
}
