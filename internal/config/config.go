package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Payments  PaymentsConfig  `yaml:"payments"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains API token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains reservation policy settings
type BookingConfig struct {
	// MinLeadDays is the earliest a rental may start, counted in whole
	// days from today. 0 permits same-day bookings; backdated bookings
	// are always rejected.
	MinLeadDays int `yaml:"min_lead_days"`
	// PaymentGraceHours is how long after the rental start an approved,
	// unpaid order is kept before the sweep job auto-cancels it.
	PaymentGraceHours int `yaml:"payment_grace_hours"`
	// LockTimeoutMS bounds how long a booking or transition waits on a
	// row lock before failing with a busy error.
	LockTimeoutMS int `yaml:"lock_timeout_ms"`
}

// PaymentsConfig contains payment gateway settings
type PaymentsConfig struct {
	// RetryFlagThreshold is the failed-attempt count at which a rental is
	// flagged for staff review. Failures never cancel the rental.
	RetryFlagThreshold int    `yaml:"retry_flag_threshold"`
	WebhookSecret      string `yaml:"webhook_secret"`
}

// SendGridConfig contains email notification settings
type SendGridConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	// OpsEmail receives staff-facing lifecycle notices.
	OpsEmail string `yaml:"ops_email"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireUnpaidRentals    string `yaml:"expire_unpaid_rentals"`
	CompleteOverdueRentals string `yaml:"complete_overdue_rentals"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Payments
	if val := os.Getenv("PAYMENT_WEBHOOK_SECRET"); val != "" {
		c.Payments.WebhookSecret = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Payments validation
	if c.Payments.WebhookSecret == "" {
		return fmt.Errorf("payment webhook secret is required")
	}
	if c.Payments.RetryFlagThreshold == 0 {
		c.Payments.RetryFlagThreshold = 3
	}

	// SendGrid validation
	if c.SendGrid.Enabled {
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required when sendgrid is enabled")
		}
		if c.SendGrid.FromEmail == "" {
			return fmt.Errorf("sendgrid from email is required when sendgrid is enabled")
		}
		if c.SendGrid.OpsEmail == "" {
			return fmt.Errorf("sendgrid ops email is required when sendgrid is enabled")
		}
	}

	// Booking defaults
	if c.Booking.MinLeadDays < 0 {
		return fmt.Errorf("booking min_lead_days must not be negative")
	}
	if c.Booking.PaymentGraceHours == 0 {
		c.Booking.PaymentGraceHours = 24
	}
	if c.Booking.LockTimeoutMS == 0 {
		c.Booking.LockTimeoutMS = 3000
	}

	// Scheduler defaults
	if c.Scheduler.ExpireUnpaidRentals == "" {
		c.Scheduler.ExpireUnpaidRentals = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.CompleteOverdueRentals == "" {
		c.Scheduler.CompleteOverdueRentals = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
