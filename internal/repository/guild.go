package repository

import (
	"context"
	"fmt"

	"github.com/forgo/bastion/internal/database"
	"github.com/forgo/bastion/internal/model"
)

// GuildRepository persists whole guild aggregates.
type GuildRepository struct {
	db database.Database
}

// NewGuildRepository creates a new guild repository.
func NewGuildRepository(db database.Database) *GuildRepository {
	return &GuildRepository{db: db}
}

// UpsertGuild writes the full aggregate state keyed by guild id.
func (r *GuildRepository) UpsertGuild(ctx context.Context, guild *model.Guild) error {
	query := `
		UPSERT type::thing('guild', $guild_id) CONTENT {
			guild_id: $guild_id,
			name: $name,
			prefix: $prefix,
			tier_rank: $tier_rank,
			balance: $balance,
			members: $members,
			created_on: $created_on,
			updated_on: $updated_on
		}
	`

	members := make(map[string]interface{}, len(guild.Members))
	for player, role := range guild.Members {
		members[player] = string(role)
	}

	tierRank := 0
	if guild.Tier != nil {
		tierRank = guild.Tier.Rank
	}

	vars := map[string]interface{}{
		"guild_id":   guild.ID,
		"name":       guild.Name,
		"prefix":     guild.Prefix,
		"tier_rank":  tierRank,
		"balance":    model.FormatAmount(guild.Balance),
		"members":    members,
		"created_on": guild.CreatedOn.UnixMilli(),
		"updated_on": guild.UpdatedOn.UnixMilli(),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return fmt.Errorf("upsert guild %s: %w", guild.ID, err)
	}
	return nil
}

// LoadAll returns every stored guild. Tier references come back as bare
// rank placeholders for the registry to resolve.
func (r *GuildRepository) LoadAll(ctx context.Context) ([]*model.Guild, error) {
	results, err := r.db.Query(ctx, `SELECT * FROM guild`, nil)
	if err != nil {
		return nil, fmt.Errorf("load guilds: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	rows, ok := results[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected guild result shape", database.ErrQuery)
	}

	guilds := make([]*model.Guild, 0, len(rows))
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected guild row shape", database.ErrQuery)
		}
		g, err := parseGuild(m)
		if err != nil {
			return nil, err
		}
		guilds = append(guilds, g)
	}
	return guilds, nil
}

func parseGuild(m map[string]interface{}) (*model.Guild, error) {
	balance, err := fieldDecimal(m, "balance")
	if err != nil {
		return nil, err
	}

	members := make(map[string]model.GuildRole)
	for player, role := range fieldStringMap(m, "members") {
		members[player] = model.GuildRole(role)
	}

	return &model.Guild{
		ID:        fieldString(m, "guild_id"),
		Name:      fieldString(m, "name"),
		Prefix:    fieldString(m, "prefix"),
		Tier:      &model.Tier{Rank: fieldInt(m, "tier_rank")},
		Balance:   balance,
		Members:   members,
		CreatedOn: fieldTimeMs(m, "created_on"),
		UpdatedOn: fieldTimeMs(m, "updated_on"),
	}, nil
}
