package repository

import (
	"context"
	"fmt"

	"github.com/forgo/bastion/internal/database"
	"github.com/forgo/bastion/internal/model"
)

// LedgerRepository persists append-only transaction entries.
type LedgerRepository struct {
	db database.Database
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db database.Database) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AppendEntry writes a single ledger entry. Entries are never updated
// or deleted.
func (r *LedgerRepository) AppendEntry(ctx context.Context, guildID string, entry model.LedgerEntry) error {
	query := `
		CREATE ledger_entry CONTENT {
			guild_id: $guild_id,
			type: $type,
			actor: $actor,
			amount: $amount,
			at: $at
		}
	`

	vars := map[string]interface{}{
		"guild_id": guildID,
		"type":     string(entry.Type),
		"actor":    entry.Actor,
		"amount":   model.FormatAmount(entry.Amount),
		"at":       entry.At.UnixMilli(),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return fmt.Errorf("append ledger entry for guild %s: %w", guildID, err)
	}
	return nil
}

// LoadLog returns the stored entries for a guild, oldest first.
func (r *LedgerRepository) LoadLog(ctx context.Context, guildID string) ([]model.LedgerEntry, error) {
	query := `SELECT * FROM ledger_entry WHERE guild_id = $guild_id ORDER BY at ASC`

	results, err := r.db.Query(ctx, query, map[string]interface{}{"guild_id": guildID})
	if err != nil {
		return nil, fmt.Errorf("load ledger for guild %s: %w", guildID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	rows, ok := results[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected ledger result shape", database.ErrQuery)
	}

	entries := make([]model.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected ledger row shape", database.ErrQuery)
		}
		entry, err := parseEntry(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(m map[string]interface{}) (model.LedgerEntry, error) {
	amount, err := fieldDecimal(m, "amount")
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return model.LedgerEntry{
		Type:   model.EntryType(fieldString(m, "type")),
		Actor:  fieldString(m, "actor"),
		Amount: amount,
		At:     fieldTimeMs(m, "at"),
	}, nil
}

// Gateway bundles the guild and ledger repositories behind the single
// persistence surface the service layer consumes.
type Gateway struct {
	*GuildRepository
	*LedgerRepository
}

// NewGateway creates a gateway backed by the given database.
func NewGateway(db database.Database) *Gateway {
	return &Gateway{
		GuildRepository:  NewGuildRepository(db),
		LedgerRepository: NewLedgerRepository(db),
	}
}
