package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuildRole is a member's rank inside a guild. Roles form a ladder where a
// lower level means more authority.
type GuildRole string

const (
	RoleMaster  GuildRole = "master"  // Level 0 - owns the guild
	RoleOfficer GuildRole = "officer" // Level 1 - can manage treasury
	RoleMember  GuildRole = "member"  // Level 2 - default
)

// Level returns the ladder position of the role, lower is more powerful.
// Unknown roles report -1.
func (r GuildRole) Level() int {
	switch r {
	case RoleMaster:
		return 0
	case RoleOfficer:
		return 1
	case RoleMember:
		return 2
	default:
		return -1
	}
}

// IsValid returns true if the role is a known guild role.
func (r GuildRole) IsValid() bool {
	return r.Level() >= 0
}

// CanDeposit reports whether the role grants the treasury deposit
// capability. Every member may pay in.
func (r GuildRole) CanDeposit() bool {
	return r.IsValid()
}

// CanWithdraw reports whether the role grants the treasury withdraw
// capability.
func (r GuildRole) CanWithdraw() bool {
	return r == RoleMaster || r == RoleOfficer
}

// roleForLevel is the inverse of Level.
func roleForLevel(level int) (GuildRole, bool) {
	switch level {
	case 0:
		return RoleMaster, true
	case 1:
		return RoleOfficer, true
	case 2:
		return RoleMember, true
	default:
		return "", false
	}
}

// Guild is the mutable unit of state in the registry: a player-formed group
// with a shared treasury and role-based membership. The registry owns every
// Guild for the process lifetime and serializes mutations through a
// per-guild lock, so the aggregate carries no locking of its own.
//
// Invariant: 0 <= Balance <= Tier.MaxBankBalance.
type Guild struct {
	ID      string
	Name    string
	Prefix  string
	Tier    *Tier // non-owning reference into the tier catalog
	Balance decimal.Decimal
	Members map[string]GuildRole // player id -> role

	CreatedOn time.Time
	UpdatedOn time.Time
}

// NewGuild creates a guild at the given tier with the founding player as
// master.
func NewGuild(name, prefix string, tier *Tier, masterID string) *Guild {
	now := time.Now().UTC()
	return &Guild{
		ID:        uuid.NewString(),
		Name:      name,
		Prefix:    prefix,
		Tier:      tier,
		Balance:   decimal.Zero,
		Members:   map[string]GuildRole{masterID: RoleMaster},
		CreatedOn: now,
		UpdatedOn: now,
	}
}

// CanHold is the pure capacity check: balance + delta stays within the
// tier's maximum bank balance.
func (g *Guild) CanHold(delta decimal.Decimal) bool {
	if g.Tier == nil {
		return false
	}
	return g.Balance.Add(delta).LessThanOrEqual(g.Tier.MaxBankBalance)
}

// ApplyDelta applies a balance change the caller has already validated
// against the treasury invariant.
func (g *Guild) ApplyDelta(delta decimal.Decimal) {
	g.Balance = g.Balance.Add(delta)
	g.UpdatedOn = time.Now().UTC()
}

// Role returns the role of a player inside the guild.
func (g *Guild) Role(playerID string) (GuildRole, bool) {
	r, ok := g.Members[playerID]
	return r, ok
}

// IsMember reports whether the player belongs to the guild.
func (g *Guild) IsMember(playerID string) bool {
	_, ok := g.Members[playerID]
	return ok
}

// MemberCount returns the number of members, master included.
func (g *Guild) MemberCount() int {
	return len(g.Members)
}

// Master returns the player id holding the master role, or "" when the
// guild has none (should not happen for well-formed guilds).
func (g *Guild) Master() string {
	for id, role := range g.Members {
		if role == RoleMaster {
			return id
		}
	}
	return ""
}

// Promote moves a member one role level up the ladder. Members can only be
// promoted as far as officer; the master role is never granted this way.
func (g *Guild) Promote(playerID string) bool {
	role, ok := g.Members[playerID]
	if !ok || role.Level() <= RoleOfficer.Level() {
		return false
	}
	next, ok := roleForLevel(role.Level() - 1)
	if !ok {
		return false
	}
	g.Members[playerID] = next
	g.UpdatedOn = time.Now().UTC()
	return true
}

// Demote moves a member one role level down the ladder. The master cannot
// be demoted and members are already at the bottom.
func (g *Guild) Demote(playerID string) bool {
	role, ok := g.Members[playerID]
	if !ok || role == RoleMaster || role.Level() >= RoleMember.Level() {
		return false
	}
	prev, ok := roleForLevel(role.Level() + 1)
	if !ok {
		return false
	}
	g.Members[playerID] = prev
	g.UpdatedOn = time.Now().UTC()
	return true
}

// Clone returns a deep copy for persistence snapshots, so storage writes
// never observe a guild mid-mutation.
func (g *Guild) Clone() *Guild {
	members := make(map[string]GuildRole, len(g.Members))
	for id, role := range g.Members {
		members[id] = role
	}
	cp := *g
	cp.Members = members
	return &cp
}

// Business constraints
const (
	MaxGuildNameLength   = 64
	MaxGuildPrefixLength = 8
)
