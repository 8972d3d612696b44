package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in the command layer predictable.

// ===== Validation Errors =====
// User-correctable input problems. Zero side effects.
var (
	ErrAmountNotANumber = errors.New("amount is not a number")
	ErrInvalidAmount    = errors.New("amount must not be negative")
)

// ===== Business Rule Errors =====
// The operation is well-formed but the rules forbid it. Zero side effects.
var (
	ErrInsufficientFunds      = errors.New("not enough funds in external balance")
	ErrInsufficientGuildFunds = errors.New("not enough funds in guild bank")
	ErrOverTierCapacity       = errors.New("deposit would exceed the tier's bank capacity")
)

// ===== Authorization Errors =====
// The actor's guild role does not allow the operation. Zero side effects.
var (
	ErrNoPermission = errors.New("guild role does not permit this operation")
)

// ===== Lookup Errors =====
var (
	ErrGuildNotFound   = errors.New("guild not found")
	ErrNotGuildMember  = errors.New("not a member of any guild")
	ErrAlreadyInGuild  = errors.New("already a member of a guild")
	ErrGuildNameExists = errors.New("a guild with this name already exists")
)

// ===== Storage Errors =====
// Wrapped around persistence and external-economy failures. When a failure
// happens after the in-memory commit the state is NOT rolled back; the
// inconsistency is logged for operator remediation instead.
var (
	ErrStorage = errors.New("storage failure")
)

// errCancelled aborts a mutation from inside the registry's critical section
// without marking the guild dirty. It never escapes the bank service: a
// veto by an event subscriber is a silent no-op, not an error.
var errCancelled = errors.New("cancelled by extension")
