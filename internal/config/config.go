package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	// Background cadences. The sweep and reminder intervals are tuning
	// parameters, not contracts.
	SweepInterval     time.Duration `mapstructure:"SWEEP_INTERVAL"`
	ReminderInterval  time.Duration `mapstructure:"REMINDER_INTERVAL"`
	ReminderLookahead time.Duration `mapstructure:"REMINDER_LOOKAHEAD"`
	NotifyTimeout     time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	PushoverAppToken string `mapstructure:"PUSHOVER_APP_TOKEN"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("REMINDER_INTERVAL", "5m")
	v.SetDefault("REMINDER_LOOKAHEAD", "10m")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MIGRATIONS_DIR")
	v.BindEnv("SWEEP_INTERVAL")
	v.BindEnv("REMINDER_INTERVAL")
	v.BindEnv("REMINDER_LOOKAHEAD")
	v.BindEnv("NOTIFY_TIMEOUT")
	v.BindEnv("TELEGRAM_BOT_TOKEN")
	v.BindEnv("PUSHOVER_APP_TOKEN")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is required so real authentication is enforced, and the
// background cadences must be sane.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q; refusing to start without authentication", c.Env)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.ReminderLookahead < c.ReminderInterval {
		return fmt.Errorf("REMINDER_LOOKAHEAD (%s) must be at least REMINDER_INTERVAL (%s), or intakes could fall between polls",
			c.ReminderLookahead, c.ReminderInterval)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.NotifyTimeout)
	}
	return nil
}
