// Package database provides SurrealDB connectivity for the Bastion guild
// registry.
//
// The Database interface narrows SurrealDB to the three query shapes the
// repositories need:
//   - Query: multiple results (bulk guild loads, ledger scans)
//   - QueryOne: a single result (lookups by id)
//   - Execute: no result (upserts, appends)
//
// The registry serializes mutation in memory and writes whole aggregates,
// so there is no transaction surface here.
//
// # Error Handling
//
// Standard errors are defined for common failure cases and checked with
// errors.Is():
//   - ErrNotFound: record does not exist
//   - ErrConnection: connection or communication failure
//   - ErrQuery: query execution failure
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with
	// the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results.
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result.
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations).
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
