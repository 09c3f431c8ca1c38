package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Hunt          HuntConfig          `yaml:"hunt"`
	Notifications NotificationConfig  `yaml:"notifications"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Addr            string  `yaml:"addr"`
	SubmitRateLimit float64 `yaml:"submit_rate_limit"` // requests per second per IP
	SubmitBurst     int     `yaml:"submit_burst"`
}

// HuntConfig gates submissions for non-staff participants.
type HuntConfig struct {
	Active bool      `yaml:"active"`
	EndsAt time.Time `yaml:"ends_at"`
}

// NotificationConfig holds first-solve webhook settings.
type NotificationConfig struct {
	Enabled        bool          `yaml:"enabled"`
	WebhookURL     string        `yaml:"webhook_url"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	DeliverTimeout time.Duration `yaml:"deliver_timeout"`
	RatePerMinute  int           `yaml:"rate_per_minute"`
}

// QueueConfig holds River settings for the timed release job.
type QueueConfig struct {
	ReleaseInterval time.Duration `yaml:"release_interval"`
	MaxWorkers      int           `yaml:"max_workers"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnvOverrides lets deployment env vars win over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("HUNT_ACTIVE"); v != "" {
		cfg.Hunt.Active = v == "true"
	}
	if v := os.Getenv("HUNT_ENDS_AT"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid HUNT_ENDS_AT value: %w", err)
		}
		cfg.Hunt.EndsAt = t
	}
	if v := os.Getenv("DISCORD_NOTIFICATIONS_ENABLED"); v != "" {
		cfg.Notifications.Enabled = v == "true"
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notifications.WebhookURL = v
	}
	if v := os.Getenv("NOTIFICATION_PUBLISH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Notifications.PublishTimeout = d
		}
	}
	if v := os.Getenv("RELEASE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Queue.ReleaseInterval = d
		}
	}
	if v := os.Getenv("SUBMIT_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HTTP.SubmitRateLimit = f
		}
	}
	return nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.SubmitRateLimit <= 0 {
		c.HTTP.SubmitRateLimit = 2
	}
	if c.HTTP.SubmitBurst <= 0 {
		c.HTTP.SubmitBurst = 10
	}
	if c.Notifications.PublishTimeout <= 0 {
		c.Notifications.PublishTimeout = 3 * time.Second
	}
	if c.Notifications.DeliverTimeout <= 0 {
		c.Notifications.DeliverTimeout = 10 * time.Second
	}
	if c.Notifications.RatePerMinute <= 0 {
		c.Notifications.RatePerMinute = 30
	}
	if c.Queue.ReleaseInterval <= 0 {
		c.Queue.ReleaseInterval = time.Minute
	}
	if c.Queue.MaxWorkers <= 0 {
		c.Queue.MaxWorkers = 5
	}
}

// HuntOpen reports whether non-staff submissions are accepted at now.
func (h HuntConfig) HuntOpen(now time.Time) bool {
	if !h.Active {
		return false
	}
	return h.EndsAt.IsZero() || now.Before(h.EndsAt)
}
