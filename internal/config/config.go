package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Registry    RegistryConfig
	Bank        BankConfig
	Audit       AuditConfig
	Persistence PersistenceConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// Write modes for the registry persistence strategy.
const (
	WriteModeThrough = "write-through"
	WriteModeBehind  = "write-behind"
)

// RegistryConfig holds guild registry persistence settings
type RegistryConfig struct {
	WriteMode     string
	FlushInterval time.Duration
}

// BankConfig holds treasury behavior settings
type BankConfig struct {
	AuditWithdrawals bool
}

// AuditConfig holds audit log retention settings
type AuditConfig struct {
	// MaxEntries caps the in-memory entries kept per guild. Zero means
	// unbounded; durable entries are never trimmed.
	MaxEntries int
}

// PersistenceConfig holds background writer settings
type PersistenceConfig struct {
	Workers   int
	QueueSize int
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("SERVER_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "bastion"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Registry: RegistryConfig{
			WriteMode:     getEnv("REGISTRY_WRITE_MODE", WriteModeBehind),
			FlushInterval: getDurationEnv("REGISTRY_FLUSH_INTERVAL", 10*time.Second),
		},
		Bank: BankConfig{
			AuditWithdrawals: getBoolEnv("BANK_AUDIT_WITHDRAWALS", false),
		},
		Audit: AuditConfig{
			MaxEntries: getIntEnv("AUDIT_MAX_ENTRIES", 0),
		},
		Persistence: PersistenceConfig{
			Workers:   getIntEnv("PERSIST_WORKERS", 2),
			QueueSize: getIntEnv("PERSIST_QUEUE_SIZE", 256),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// WriteThrough returns true when guild mutations persist synchronously.
func (c *Config) WriteThrough() bool {
	return c.Registry.WriteMode == WriteModeThrough
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Registry validation
	if c.Registry.WriteMode != WriteModeThrough && c.Registry.WriteMode != WriteModeBehind {
		errs = append(errs, fmt.Errorf("REGISTRY_WRITE_MODE must be '%s' or '%s', got '%s'", WriteModeThrough, WriteModeBehind, c.Registry.WriteMode))
	}
	if c.Registry.WriteMode == WriteModeBehind && c.Registry.FlushInterval <= 0 {
		errs = append(errs, errors.New("REGISTRY_FLUSH_INTERVAL must be positive for write-behind mode"))
	}

	// Audit validation
	if c.Audit.MaxEntries < 0 {
		errs = append(errs, errors.New("AUDIT_MAX_ENTRIES must be zero or positive"))
	}

	// Persistence validation
	if c.Persistence.Workers <= 0 {
		errs = append(errs, errors.New("PERSIST_WORKERS must be positive"))
	}
	if c.Persistence.QueueSize <= 0 {
		errs = append(errs, errors.New("PERSIST_QUEUE_SIZE must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
