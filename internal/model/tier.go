package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier bounds a guild's capabilities at a progression rank. Tiers are
// immutable after catalog construction and shared read-only; guilds hold a
// non-owning reference to their current tier.
type Tier struct {
	Rank           int
	Name           string
	MaxBankBalance decimal.Decimal
	MaxMembers     int
}

// TierCatalog is the immutable ordered set of tier definitions the
// progression system is built on.
type TierCatalog struct {
	ordered []*Tier
	byRank  map[int]*Tier
}

// NewTierCatalog builds a catalog from tier definitions. Definitions must be
// non-empty with strictly ascending, unique ranks and non-negative balance
// caps.
func NewTierCatalog(tiers []Tier) (*TierCatalog, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier catalog requires at least one tier")
	}

	c := &TierCatalog{
		ordered: make([]*Tier, 0, len(tiers)),
		byRank:  make(map[int]*Tier, len(tiers)),
	}
	prev := tiers[0].Rank - 1
	for i := range tiers {
		t := tiers[i]
		if t.Rank <= prev {
			return nil, fmt.Errorf("tier ranks must be strictly ascending, got %d after %d", t.Rank, prev)
		}
		if t.MaxBankBalance.IsNegative() {
			return nil, fmt.Errorf("tier %q has negative max bank balance", t.Name)
		}
		prev = t.Rank
		c.ordered = append(c.ordered, &t)
		c.byRank[t.Rank] = &t
	}
	return c, nil
}

// Get returns the tier at the given rank.
func (c *TierCatalog) Get(rank int) (*Tier, bool) {
	t, ok := c.byRank[rank]
	return t, ok
}

// Lowest returns the entry tier every new guild starts at.
func (c *TierCatalog) Lowest() *Tier {
	return c.ordered[0]
}

// Next returns the tier that follows the given rank in progression order.
func (c *TierCatalog) Next(rank int) (*Tier, bool) {
	for i, t := range c.ordered {
		if t.Rank == rank && i+1 < len(c.ordered) {
			return c.ordered[i+1], true
		}
	}
	return nil, false
}

// Tiers returns the definitions in ascending rank order.
func (c *TierCatalog) Tiers() []*Tier {
	out := make([]*Tier, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// DefaultTiers is the stock progression ladder used when no custom tiers are
// configured.
func DefaultTiers() []Tier {
	return []Tier{
		{Rank: 1, Name: "Bronze", MaxBankBalance: decimal.NewFromInt(10_000), MaxMembers: 20},
		{Rank: 2, Name: "Silver", MaxBankBalance: decimal.NewFromInt(50_000), MaxMembers: 40},
		{Rank: 3, Name: "Gold", MaxBankBalance: decimal.NewFromInt(250_000), MaxMembers: 80},
	}
}
