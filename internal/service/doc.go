// Package service implements the business logic of the Bastion guild
// registry and treasury.
//
// The package contains the three core components plus the interfaces to the
// subsystem's external collaborators:
//
//   - Registry: owns every Guild aggregate for the process lifetime,
//     provides O(1) lookup by id and by member, and serializes all mutation
//     through a per-guild lock synchronized with durable storage
//   - BankService: the stateless transaction logic - deposit, withdraw,
//     balance reads and audit transcripts
//   - AuditLogManager: lazily materializes per-guild audit logs and keeps
//     them durable through the async persister
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxx) accepts a config struct with
//     collaborator dependencies
//   - Collaborators (PersistenceGateway, ExternalEconomy, EventBus) are
//     consumer-side interfaces defined in this package, never resolved by
//     reflection or a DI container
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation
//
// # Error Handling
//
// Domain errors are package-level sentinels in errors.go, grouped by class:
// validation, business rule, lookup and storage. Pre-commit cancellation by
// an event subscriber is deliberately not an error; it surfaces as a
// cancelled receipt with zero side effects.
package service
