package config

import (
	"fmt"
	"net"
	"strconv"
)

const (
	// SettingsEnv names the environment variable pointing at an optional YAML settings file
	SettingsEnv = "MICROBLOG_SETTINGS"

	DefaultDatabasePath        = "./microblog.db"
	DefaultSecretKey           = "development key"
	DefaultPort                = 5000
	DefaultMaintenanceSchedule = "@daily"
)

// Config is the process configuration. It is built once at startup and
// passed by reference to whatever needs it; nothing mutates it afterwards.
type Config struct {
	DatabasePath        string        `yaml:"database"`
	SecretKey           string        `yaml:"secret_key"`
	Port                int           `yaml:"port"`
	Bind                string        `yaml:"bind"`
	AllowSubnet         string        `yaml:"allow_subnet"`
	SecureCookies       bool          `yaml:"secure_cookies"`
	MaintenanceSchedule string        `yaml:"maintenance_schedule"`
	Log                 LogConfig     `yaml:"log"`
	Timeouts            TimeoutConfig `yaml:"timeouts"`
}

// LogConfig holds log level and rotation settings
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the development configuration
func Default() *Config {
	return &Config{
		DatabasePath:        DefaultDatabasePath,
		SecretKey:           DefaultSecretKey,
		Port:                DefaultPort,
		MaintenanceSchedule: DefaultMaintenanceSchedule,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Timeouts: DefaultTimeoutConfig(),
	}
}

// Load builds the configuration from defaults, the settings file named by
// MICROBLOG_SETTINGS (skipped when unset) and the DB_PATH, SECRET_KEY and
// PORT environment variables, in that order.
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path := getenv(SettingsEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if v := getenv("DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT environment variable %q: %w", v, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Timeouts.Request <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Timeouts.Request)
	}
	if c.Bind != "" {
		if ip := net.ParseIP(c.Bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", c.Bind)
		}
	}
	if _, err := c.AllowedNet(); err != nil {
		return err
	}
	return nil
}

// AllowedNet parses AllowSubnet. It returns nil when no restriction is configured.
func (c *Config) AllowedNet() (*net.IPNet, error) {
	if c.AllowSubnet == "" {
		return nil, nil
	}
	_, parsed, err := net.ParseCIDR(c.AllowSubnet)
	if err != nil {
		return nil, fmt.Errorf("invalid allow-subnet CIDR: %s", c.AllowSubnet)
	}
	return parsed, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	if c.Bind != "" {
		return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
	}
	return fmt.Sprintf(":%d", c.Port)
}
