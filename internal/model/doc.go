// Package model defines the domain entities of the Bastion guild registry.
//
// The model package contains the Guild aggregate, the tier progression
// catalog, ledger entries and the per-guild audit log, plus the money
// normalization rules shared by every layer.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Guild: a player-formed group with a shared treasury and role-based
//     membership, owned by the registry for the process lifetime
//   - Tier: an immutable progression rank bounding guild capabilities,
//     including the maximum treasury balance
//   - LedgerEntry: an immutable record of a single treasury-affecting
//     transaction
//   - AuditLog: the append-only, per-guild ordered sequence of ledger entries
//
// # Money
//
// Balances and amounts are github.com/shopspring/decimal values. Raw
// externally supplied amounts are float64 and must pass through IsFinite and
// RoundAmount before any comparison or mutation; see money.go.
//
// # Ownership and locking
//
// Guild aggregates carry no locking of their own. The registry serializes
// every mutation through a per-guild lock, so model methods assume exclusive
// access for writes. AuditLog is the exception: it is read by transcript
// rendering concurrently with appends and synchronizes internally.
package model
