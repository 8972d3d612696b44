// Package repository implements the durable storage layer of the guild
// registry on SurrealDB.
//
// Two repositories cover the two independently persisted shapes:
//
//   - GuildRepository: whole-aggregate upserts and the startup bulk load
//   - LedgerRepository: append-only ledger entries per guild
//
// Gateway composes both into the service.PersistenceGateway contract.
//
// Guild aggregates are written whole: the registry serializes mutation in
// memory, so storage never needs row-level coordination. Tier references
// are stored as bare ranks and come back as placeholders the registry
// resolves against its catalog.
package repository
