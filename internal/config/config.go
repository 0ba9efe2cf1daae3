package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/segyhp/loan-console/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Backend   BackendConfig   `mapstructure:",squash"`
	Ledger    LedgerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Alert     AlertConfig     `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Report    ReportConfig    `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

// BackendConfig points at the remote loan-servicing and core-banking services
type BackendConfig struct {
	LoansURL  string `mapstructure:"LOANS_API_BASE_URL"`
	LedgerURL string `mapstructure:"LEDGER_API_BASE_URL"`
	Timeout   string `mapstructure:"BACKEND_TIMEOUT"`
}

type LedgerConfig struct {
	OriginAccount    string `mapstructure:"LEDGER_ORIGIN_ACCOUNT"`
	CardMovementType string `mapstructure:"LEDGER_CARD_MOVEMENT_TYPE"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	LockTTL  string `mapstructure:"PAYMENT_LOCK_TTL"`
}

type SchedulerConfig struct {
	ReconcileSchedule    string `mapstructure:"RECONCILE_SCHEDULE"`
	ReconcileConcurrency int    `mapstructure:"RECONCILE_CONCURRENCY"`
}

type AlertConfig struct {
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	From         string `mapstructure:"ALERT_FROM"`
	To           string `mapstructure:"ALERT_TO"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type ReportConfig struct {
	PageSize int `mapstructure:"REPORT_PAGE_SIZE"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("LOANS_API_BASE_URL", "")
	v.SetDefault("LEDGER_API_BASE_URL", "")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("LEDGER_ORIGIN_ACCOUNT", "")
	v.SetDefault("LEDGER_CARD_MOVEMENT_TYPE", string(domain.CardMovementType))
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYMENT_LOCK_TTL", "60s")
	v.SetDefault("RECONCILE_SCHEDULE", "0 */15 * * * *")
	v.SetDefault("RECONCILE_CONCURRENCY", 4)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("ALERT_FROM", "")
	v.SetDefault("ALERT_TO", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("REPORT_PAGE_SIZE", 10)
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Logging.Format == "" {
		config.Logging.Format = config.defaultLogFormat()
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if err := validateBaseURL("LOANS_API_BASE_URL", c.Backend.LoansURL); err != nil {
		return err
	}
	if err := validateBaseURL("LEDGER_API_BASE_URL", c.Backend.LedgerURL); err != nil {
		return err
	}

	if strings.TrimSpace(c.Ledger.OriginAccount) == "" {
		return fmt.Errorf("LEDGER_ORIGIN_ACCOUNT is required")
	}

	if !domain.MovementType(c.Ledger.CardMovementType).IsValid() {
		return fmt.Errorf("LEDGER_CARD_MOVEMENT_TYPE must be %s or %s", domain.MovementTypeDeposit, domain.MovementTypeTransfer)
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"BACKEND_TIMEOUT":            c.Backend.Timeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"PAYMENT_LOCK_TTL":           c.Redis.LockTTL,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for key, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be greater than 0", key)
		}
	}

	// an attempt makes two sequential backend calls under the lock
	if c.GetLockTTL() <= 2*c.GetBackendTimeout() {
		return fmt.Errorf("PAYMENT_LOCK_TTL (%s) must be longer than twice BACKEND_TIMEOUT (%s)", c.Redis.LockTTL, c.Backend.Timeout)
	}

	if c.Scheduler.ReconcileConcurrency <= 0 {
		return fmt.Errorf("RECONCILE_CONCURRENCY must be greater than 0")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Scheduler.ReconcileSchedule); err != nil {
		return fmt.Errorf("RECONCILE_SCHEDULE must be a valid cron spec: %w", err)
	}

	if c.Report.PageSize <= 0 {
		return fmt.Errorf("REPORT_PAGE_SIZE must be greater than 0")
	}

	return nil
}

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", key)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// defaultLogFormat is used when LOG_FORMAT is unset: readable text while
// developing, JSON everywhere else
func (c *Config) defaultLogFormat() string {
	if c.IsDevelopment() {
		return "text"
	}
	return "json"
}

// JournalEnabled reports whether the reconciliation journal has a database
func (c *Config) JournalEnabled() bool {
	return c.Database.URL != ""
}

// LockEnabled reports whether payments are guarded by a Redis lock
func (c *Config) LockEnabled() bool {
	return c.Redis.Host != ""
}

// AlertsEnabled reports whether stuck payments are mailed to operators
func (c *Config) AlertsEnabled() bool {
	return c.Alert.SMTPHost != "" && c.Alert.From != "" && c.Alert.To != ""
}

// AlertRecipients splits ALERT_TO on commas
func (c *Config) AlertRecipients() []string {
	var out []string
	for _, addr := range strings.Split(c.Alert.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// GetCardMovementType returns the ledger movement type used for card payments
func (c *Config) GetCardMovementType() domain.MovementType {
	return domain.MovementType(c.Ledger.CardMovementType)
}

// GetBackendTimeout returns the outbound HTTP timeout as duration
func (c *Config) GetBackendTimeout() time.Duration {
	return mustDuration(c.Backend.Timeout)
}

func (c *Config) GetReadTimeout() time.Duration {
	return mustDuration(c.Server.ReadTimeout)
}

func (c *Config) GetWriteTimeout() time.Duration {
	return mustDuration(c.Server.WriteTimeout)
}

func (c *Config) GetConnMaxLifetime() time.Duration {
	return mustDuration(c.Database.ConnMaxLifetime)
}

func (c *Config) GetLockTTL() time.Duration {
	return mustDuration(c.Redis.LockTTL)
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	return mustDuration(c.Health.Timeout)
}

// durations are checked by Validate
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
