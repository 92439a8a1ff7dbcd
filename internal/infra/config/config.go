package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	LockBackendDatabase = "database"
	LockBackendRedis    = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig holds all configuration for the worker.
type AppConfig struct {
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	Environment    string `mapstructure:"ENVIRONMENT"`

	LockBackend string        `mapstructure:"LOCK_BACKEND"`
	RedisAddr   string        `mapstructure:"REDIS_ADDR"`
	LockTTL     time.Duration `mapstructure:"LOCK_TTL"`

	CronSpecExpiryNotifier string `mapstructure:"CRON_SPEC_EXPIRY_NOTIFIER"` // daily, fixed local time
	CronSpecAutoConfirm    string `mapstructure:"CRON_SPEC_AUTO_CONFIRM"`
	CronSpecKeepAlive      string `mapstructure:"CRON_SPEC_KEEPALIVE"`

	ExpiryWindowDays       int           `mapstructure:"EXPIRY_WINDOW_DAYS"`
	AutoConfirmGracePeriod time.Duration `mapstructure:"AUTO_CONFIRM_GRACE_PERIOD"`
	AutoConfirmWorkers     int           `mapstructure:"AUTO_CONFIRM_WORKERS"`
	JobTimeout             time.Duration `mapstructure:"JOB_TIMEOUT"`

	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	TelegramToken     string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramOpsChatID int64  `mapstructure:"TELEGRAM_OPS_CHAT_ID"`
}

var defaults = map[string]any{
	"DATABASE_DRIVER":           "mysql",
	"LOG_LEVEL":                 "info",
	"ENVIRONMENT":               "development",
	"LOCK_BACKEND":              LockBackendDatabase,
	"LOCK_TTL":                  "10m",
	"CRON_SPEC_EXPIRY_NOTIFIER": "0 10 * * *",   // 10:00 every day
	"CRON_SPEC_AUTO_CONFIRM":    "*/10 * * * *", // every 10 minutes
	"CRON_SPEC_KEEPALIVE":       "@every 5m",
	"EXPIRY_WINDOW_DAYS":        5,
	"AUTO_CONFIRM_GRACE_PERIOD": "72h",
	"AUTO_CONFIRM_WORKERS":      4,
	"JOB_TIMEOUT":               "5m",
	"HTTP_ADDR":                 ":8090",
	"AMQP_EXCHANGE":             "franchise.ops",
}

var envOnly = []string{
	"DATABASE_URL",
	"REDIS_ADDR",
	"AMQP_URL",
	"TELEGRAM_TOKEN",
	"TELEGRAM_OPS_CHAT_ID",
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}
	for _, key := range envOnly {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	cfg.LockBackend = strings.ToLower(strings.TrimSpace(cfg.LockBackend))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", ErrInvalidConfig)
	}
	switch c.DatabaseDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("%w: DATABASE_DRIVER must be mysql or postgres, got %q", ErrInvalidConfig, c.DatabaseDriver)
	}
	switch c.LockBackend {
	case LockBackendDatabase:
	case LockBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required when LOCK_BACKEND=redis", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: LOCK_BACKEND must be database or redis, got %q", ErrInvalidConfig, c.LockBackend)
	}
	if c.ExpiryWindowDays < 1 {
		return fmt.Errorf("%w: EXPIRY_WINDOW_DAYS must be at least 1", ErrInvalidConfig)
	}
	if c.AutoConfirmGracePeriod <= 0 {
		return fmt.Errorf("%w: AUTO_CONFIRM_GRACE_PERIOD must be positive", ErrInvalidConfig)
	}
	if c.AutoConfirmWorkers < 1 {
		return fmt.Errorf("%w: AUTO_CONFIRM_WORKERS must be at least 1", ErrInvalidConfig)
	}
	if c.TelegramToken != "" && c.TelegramOpsChatID == 0 {
		return fmt.Errorf("%w: TELEGRAM_OPS_CHAT_ID is required when TELEGRAM_TOKEN is set", ErrInvalidConfig)
	}
	return nil
}

// TelegramEnabled reports whether the ops chat relay is configured.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
