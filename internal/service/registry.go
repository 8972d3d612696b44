package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/forgo/bastion/internal/model"
)

// guildSlot pairs a guild with its mutation lock. The lock is the single
// serialization point for every read-then-write on the aggregate, including
// the external-economy check+withdraw pair and event-bus dispatch.
type guildSlot struct {
	mu      sync.Mutex
	guild   *model.Guild
	dirty   bool
	version uint64 // bumped on every successful mutation
}

// RegistryConfig holds the collaborators of the registry.
type RegistryConfig struct {
	Gateway PersistenceGateway
	Catalog *model.TierCatalog
	Tasks   TaskQueue // async persistence; may be nil in tests
	Logger  *slog.Logger
	// WriteThrough persists every mutation synchronously instead of leaving
	// dirty guilds to the periodic flusher.
	WriteThrough bool
}

// Registry owns all Guild aggregates for the process lifetime. It provides
// O(1) lookup by id and by member, serializes mutation per guild, and keeps
// memory synchronized with durable storage either write-through or
// write-behind.
type Registry struct {
	gateway      PersistenceGateway
	catalog      *model.TierCatalog
	tasks        TaskQueue
	log          *slog.Logger
	writeThrough bool

	mu       sync.RWMutex
	slots    map[string]*guildSlot
	byMember map[string]string // player id -> guild id
	byName   map[string]string // lowercased name -> guild id
}

// NewRegistry creates an empty registry; call LoadAll before serving.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		gateway:      cfg.Gateway,
		catalog:      cfg.Catalog,
		tasks:        cfg.Tasks,
		log:          logger,
		writeThrough: cfg.WriteThrough,
		slots:        make(map[string]*guildSlot),
		byMember:     make(map[string]string),
		byName:       make(map[string]string),
	}
}

// LoadAll bulk-loads every guild from storage, resolves tier references
// against the catalog and builds the lookup indices. Called once at
// startup, before any concurrent access.
func (r *Registry) LoadAll(ctx context.Context) error {
	guilds, err := r.gateway.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load guilds: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range guilds {
		r.resolveTier(g)
		r.indexLocked(g)
	}
	r.log.Info("guild registry loaded", slog.Int("guilds", len(guilds)))
	return nil
}

// resolveTier rebinds a loaded guild's tier placeholder to the shared
// catalog entry. Unknown ranks fall back to the lowest tier.
func (r *Registry) resolveTier(g *model.Guild) {
	rank := 0
	if g.Tier != nil {
		rank = g.Tier.Rank
	}
	if tier, ok := r.catalog.Get(rank); ok {
		g.Tier = tier
		return
	}
	r.log.Warn("guild has unknown tier rank, falling back to lowest",
		slog.String("guild_id", g.ID),
		slog.Int("rank", rank),
	)
	g.Tier = r.catalog.Lowest()
}

func (r *Registry) indexLocked(g *model.Guild) {
	r.slots[g.ID] = &guildSlot{guild: g}
	r.byName[strings.ToLower(g.Name)] = g.ID
	for member := range g.Members {
		r.byMember[member] = g.ID
	}
}

// Create founds a new guild at the lowest tier with the given player as
// master. A player can belong to at most one guild at a time.
func (r *Registry) Create(ctx context.Context, name, prefix, masterID string) (*model.Guild, error) {
	if name == "" || len(name) > model.MaxGuildNameLength {
		return nil, fmt.Errorf("guild name must be 1-%d characters", model.MaxGuildNameLength)
	}
	if len(prefix) > model.MaxGuildPrefixLength {
		return nil, fmt.Errorf("guild prefix must be at most %d characters", model.MaxGuildPrefixLength)
	}

	r.mu.Lock()
	if _, taken := r.byMember[masterID]; taken {
		r.mu.Unlock()
		return nil, ErrAlreadyInGuild
	}
	if _, taken := r.byName[strings.ToLower(name)]; taken {
		r.mu.Unlock()
		return nil, ErrGuildNameExists
	}
	g := model.NewGuild(name, prefix, r.catalog.Lowest(), masterID)
	r.indexLocked(g)
	slot := r.slots[g.ID]
	r.mu.Unlock()

	slot.mu.Lock()
	slot.dirty = true
	slot.version++
	snapshot := g.Clone()
	version := slot.version
	slot.mu.Unlock()

	r.persist(ctx, slot, snapshot, version)
	return snapshot, nil
}

// slot returns the serialization slot for a guild id.
func (r *Registry) slot(guildID string) (*guildSlot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[guildID]
	return s, ok
}

// View runs fn with read access to the guild under its lock. fn must not
// retain the pointer.
func (r *Registry) View(guildID string, fn func(g *model.Guild) error) error {
	slot, ok := r.slot(guildID)
	if !ok {
		return ErrGuildNotFound
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return fn(slot.guild)
}

// Snapshot returns a deep copy of the guild.
func (r *Registry) Snapshot(guildID string) (*model.Guild, error) {
	var snap *model.Guild
	err := r.View(guildID, func(g *model.Guild) error {
		snap = g.Clone()
		return nil
	})
	return snap, err
}

// GuildIDByMember resolves the guild a player belongs to.
func (r *Registry) GuildIDByMember(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byMember[playerID]
	return id, ok
}

// GuildIDByName resolves a guild id from its name, case-insensitively.
func (r *Registry) GuildIDByName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(name)]
	return id, ok
}

// GuildIDs returns the ids of all registered guilds.
func (r *Registry) GuildIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.slots)
}

// Update is the single serialization point for guild mutation: it runs fn
// under the per-guild lock and, when fn succeeds, marks the guild dirty and
// persists it according to the configured write mode. When fn fails no
// state is persisted; fn must leave the aggregate untouched on error.
func (r *Registry) Update(ctx context.Context, guildID string, fn func(g *model.Guild) error) error {
	slot, ok := r.slot(guildID)
	if !ok {
		return ErrGuildNotFound
	}

	slot.mu.Lock()
	if err := fn(slot.guild); err != nil {
		slot.mu.Unlock()
		return err
	}
	slot.dirty = true
	slot.version++
	version := slot.version
	snapshot := slot.guild.Clone()
	slot.mu.Unlock()

	if r.writeThrough {
		r.persist(ctx, slot, snapshot, version)
	}
	return nil
}

// persist upserts a snapshot and clears the dirty flag unless the guild
// mutated again in the meantime. Failures leave the flag set for the
// flusher and are logged, never retried inline.
func (r *Registry) persist(ctx context.Context, slot *guildSlot, snapshot *model.Guild, version uint64) {
	if err := r.gateway.UpsertGuild(ctx, snapshot); err != nil {
		r.log.Error("guild upsert failed",
			slog.String("guild_id", snapshot.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	slot.mu.Lock()
	if slot.version == version {
		slot.dirty = false
	}
	slot.mu.Unlock()
}

// AddMember adds a player to a guild with the default member role. The
// member index entry is reserved inside the taken-check's critical section,
// so concurrent joins for the same player cannot land the player in two
// guilds; the reservation is released if the guild mutation fails.
func (r *Registry) AddMember(ctx context.Context, guildID, playerID string) error {
	r.mu.Lock()
	if _, taken := r.byMember[playerID]; taken {
		r.mu.Unlock()
		return ErrAlreadyInGuild
	}
	if _, ok := r.slots[guildID]; !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	r.byMember[playerID] = guildID
	r.mu.Unlock()

	err := r.Update(ctx, guildID, func(g *model.Guild) error {
		if g.Tier != nil && g.Tier.MaxMembers > 0 && g.MemberCount() >= g.Tier.MaxMembers {
			return fmt.Errorf("guild is full (%d members)", g.MemberCount())
		}
		g.Members[playerID] = model.RoleMember
		g.UpdatedOn = time.Now().UTC()
		return nil
	})
	if err != nil {
		r.mu.Lock()
		if r.byMember[playerID] == guildID {
			delete(r.byMember, playerID)
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

// RemoveMember removes a player from a guild. The master cannot leave.
func (r *Registry) RemoveMember(ctx context.Context, guildID, playerID string) error {
	err := r.Update(ctx, guildID, func(g *model.Guild) error {
		role, ok := g.Role(playerID)
		if !ok {
			return ErrNotGuildMember
		}
		if role == model.RoleMaster {
			return fmt.Errorf("the guild master cannot be removed")
		}
		delete(g.Members, playerID)
		return nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.byMember, playerID)
	r.mu.Unlock()
	return nil
}

// Promote moves a member one role level up, stopping at officer.
func (r *Registry) Promote(ctx context.Context, guildID, playerID string) error {
	return r.Update(ctx, guildID, func(g *model.Guild) error {
		if !g.IsMember(playerID) {
			return ErrNotGuildMember
		}
		if !g.Promote(playerID) {
			return fmt.Errorf("player cannot be promoted further")
		}
		return nil
	})
}

// Demote moves a member one role level down, stopping at member.
func (r *Registry) Demote(ctx context.Context, guildID, playerID string) error {
	return r.Update(ctx, guildID, func(g *model.Guild) error {
		if !g.IsMember(playerID) {
			return ErrNotGuildMember
		}
		if !g.Demote(playerID) {
			return fmt.Errorf("player cannot be demoted further")
		}
		return nil
	})
}

// FlushDirty snapshots every dirty guild and hands the upserts to the async
// persister. Called periodically by the flusher job in write-behind mode.
func (r *Registry) FlushDirty(ctx context.Context) int {
	r.mu.RLock()
	slots := lo.Values(r.slots)
	r.mu.RUnlock()

	flushed := 0
	for _, slot := range slots {
		slot.mu.Lock()
		if !slot.dirty {
			slot.mu.Unlock()
			continue
		}
		snapshot := slot.guild.Clone()
		version := slot.version
		slot.mu.Unlock()

		flushed++
		if r.tasks == nil {
			r.persist(ctx, slot, snapshot, version)
			continue
		}
		s := slot
		if !r.tasks.Enqueue("guild-upsert", func(taskCtx context.Context) error {
			r.persist(taskCtx, s, snapshot, version)
			return nil
		}) {
			r.log.Error("persistence queue full, guild flush deferred",
				slog.String("guild_id", snapshot.ID))
		}
	}
	return flushed
}

// Flush synchronously upserts every dirty guild. Called on shutdown before
// ownership is released. A failed upsert leaves the dirty flag set, same as
// the async persist path.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.RLock()
	slots := lo.Values(r.slots)
	r.mu.RUnlock()

	var errs []error
	for _, slot := range slots {
		slot.mu.Lock()
		if !slot.dirty {
			slot.mu.Unlock()
			continue
		}
		snapshot := slot.guild.Clone()
		version := slot.version
		slot.mu.Unlock()

		if err := r.gateway.UpsertGuild(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("flush guild %s: %w", snapshot.ID, err))
			continue
		}
		slot.mu.Lock()
		if slot.version == version {
			slot.dirty = false
		}
		slot.mu.Unlock()
	}
	return errors.Join(errs...)
}
