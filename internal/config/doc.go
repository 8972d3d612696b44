// Package config manages application configuration for the Bastion service.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts)
//   - DatabaseConfig: SurrealDB connection settings
//   - RegistryConfig: guild persistence strategy (write-through or
//     write-behind) and flush cadence
//   - BankConfig: treasury behavior toggles
//   - AuditConfig: in-memory audit log retention
//   - PersistenceConfig: background writer pool sizing
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT              - HTTP server port (default: 8080)
//	SERVER_ENV               - development, production, or test
//	DB_HOST, DB_PORT         - SurrealDB endpoint
//	DB_NAMESPACE, DB_DATABASE
//	DB_USER, DB_PASSWORD
//	REGISTRY_WRITE_MODE      - write-through or write-behind (default)
//	REGISTRY_FLUSH_INTERVAL  - dirty-guild flush cadence for write-behind
//	BANK_AUDIT_WITHDRAWALS   - record withdrawal entries in the audit log
//	AUDIT_MAX_ENTRIES        - per-guild in-memory entry cap (0 = unbounded)
//	PERSIST_WORKERS          - background writer goroutines
//	PERSIST_QUEUE_SIZE       - background writer queue capacity
//
// Sensible defaults are provided for development; Validate reports every
// problem it finds in a single joined error.
package config
