package service

import (
	"context"

	"github.com/forgo/bastion/internal/model"
)

// PersistenceGateway defines the durable storage contract for guilds and
// their audit logs. Callers must not assume memory and store are
// reconciled until an upsert succeeds.
type PersistenceGateway interface {
	// LoadAll returns every stored guild. Tier references are left
	// unresolved; the registry binds them against its catalog.
	LoadAll(ctx context.Context) ([]*model.Guild, error)
	// UpsertGuild writes the full aggregate state keyed by guild id.
	UpsertGuild(ctx context.Context, guild *model.Guild) error
	// AppendEntry durably appends one ledger entry to a guild's log.
	AppendEntry(ctx context.Context, guildID string, entry model.LedgerEntry) error
	// LoadLog returns a guild's ledger entries, oldest first.
	LoadLog(ctx context.Context, guildID string) ([]model.LedgerEntry, error)
}
