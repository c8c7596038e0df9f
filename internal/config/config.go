package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Server
	APIPort int `mapstructure:"API_PORT"`

	// Carrier SMTP bridge
	SMTPBridgeEnabled bool   `mapstructure:"SMTP_BRIDGE_ENABLED"`
	SMTPAddr          string `mapstructure:"SMTP_ADDR"`
	SMTPDomain        string `mapstructure:"SMTP_DOMAIN"`

	// Locking
	RedisURL string        `mapstructure:"REDIS_URL"`
	LockTTL  time.Duration `mapstructure:"LOCK_TTL"`

	// Cooldowns
	CreateCooldown  time.Duration `mapstructure:"CREATE_COOLDOWN"`
	RecoverCooldown time.Duration `mapstructure:"RECOVER_COOLDOWN"`

	// Provisioning
	ProvisionTimeout   time.Duration `mapstructure:"PROVISION_TIMEOUT"`
	GatewayFailureRate float64       `mapstructure:"GATEWAY_FAILURE_RATE"`
	GatewayMinLatency  time.Duration `mapstructure:"GATEWAY_MIN_LATENCY"`
	GatewayMaxLatency  time.Duration `mapstructure:"GATEWAY_MAX_LATENCY"`

	// Retention
	PurgeAfter    time.Duration `mapstructure:"PURGE_AFTER"`
	PurgeInterval time.Duration `mapstructure:"PURGE_INTERVAL"`

	// Routing
	SenderCategoryFilter bool `mapstructure:"SENDER_CATEGORY_FILTER"`

	// Seeded physical number
	PhysicalNumber string `mapstructure:"PHYSICAL_NUMBER"`
	OwnerName      string `mapstructure:"OWNER_NAME"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Security
	APIKey         string `mapstructure:"API_KEY"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	AppEnv         string `mapstructure:"APP_ENV"`

	// Rate Limiting
	RateLimitRequests float64 `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitBurst    int     `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"DATABASE_URL":           "sqlite://proxynum.db",
	"API_PORT":               8080,
	"SMTP_BRIDGE_ENABLED":    false,
	"SMTP_ADDR":              ":2525",
	"SMTP_DOMAIN":            "sms.localhost",
	"REDIS_URL":              "",
	"LOCK_TTL":               "30s",
	"CREATE_COOLDOWN":        "5m",
	"RECOVER_COOLDOWN":       "5m",
	"PROVISION_TIMEOUT":      "15s",
	"GATEWAY_FAILURE_RATE":   0.0,
	"GATEWAY_MIN_LATENCY":    "50ms",
	"GATEWAY_MAX_LATENCY":    "250ms",
	"PURGE_AFTER":            "168h",
	"PURGE_INTERVAL":         "1h",
	"SENDER_CATEGORY_FILTER": false,
	"PHYSICAL_NUMBER":        "9000000000",
	"OWNER_NAME":             "owner",
	"LOG_LEVEL":              "info",
	"API_KEY":                "",
	"ALLOWED_ORIGINS":        "",
	"APP_ENV":                "development",
	"RATE_LIMIT_REQUESTS":    10.0,
	"RATE_LIMIT_BURST":       20,
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// .env is optional
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return &cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPBridgeEnabled && c.SMTPDomain == "" {
		return fmt.Errorf("SMTP_DOMAIN is required when the SMTP bridge is enabled")
	}
	if c.CreateCooldown < 0 || c.RecoverCooldown < 0 {
		return fmt.Errorf("cooldown durations cannot be negative")
	}
	if c.ProvisionTimeout <= 0 {
		return fmt.Errorf("PROVISION_TIMEOUT must be positive")
	}
	if c.RedisURL != "" {
		// the lease must outlive the longest critical section
		if c.LockTTL <= 0 {
			return fmt.Errorf("LOCK_TTL must be positive when REDIS_URL is set")
		}
		if c.LockTTL <= c.ProvisionTimeout {
			return fmt.Errorf("LOCK_TTL must be longer than PROVISION_TIMEOUT")
		}
	}
	if c.GatewayFailureRate < 0 || c.GatewayFailureRate > 1 {
		return fmt.Errorf("GATEWAY_FAILURE_RATE must be between 0 and 1")
	}
	if c.GatewayMaxLatency < c.GatewayMinLatency {
		return fmt.Errorf("GATEWAY_MAX_LATENCY must not be below GATEWAY_MIN_LATENCY")
	}
	if c.PurgeInterval <= 0 {
		return fmt.Errorf("PURGE_INTERVAL must be positive")
	}
	if c.PhysicalNumber == "" {
		return fmt.Errorf("PHYSICAL_NUMBER cannot be empty")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// Origins splits ALLOWED_ORIGINS into a trimmed list
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Bool("smtp_bridge_enabled", c.SMTPBridgeEnabled),
		slog.String("smtp_domain", c.SMTPDomain),
		slog.Bool("redis_lock", c.RedisURL != ""),
		slog.Duration("create_cooldown", c.CreateCooldown),
		slog.Duration("recover_cooldown", c.RecoverCooldown),
		slog.Duration("provision_timeout", c.ProvisionTimeout),
		slog.Float64("gateway_failure_rate", c.GatewayFailureRate),
		slog.Duration("purge_after", c.PurgeAfter),
		slog.Bool("sender_category_filter", c.SenderCategoryFilter),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
