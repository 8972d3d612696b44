package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/forgo/bastion/internal/model"
)

// ============================================================================
// Mock Collaborators
// ============================================================================

type mockGateway struct {
	mu      sync.Mutex
	guilds  map[string]*model.Guild
	entries map[string][]model.LedgerEntry
	upserts int

	loadAllFunc func(ctx context.Context) ([]*model.Guild, error)
	loadLogFunc func(ctx context.Context, guildID string) ([]model.LedgerEntry, error)
	upsertErr   error
	appendErr   error
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		guilds:  make(map[string]*model.Guild),
		entries: make(map[string][]model.LedgerEntry),
	}
}

func (m *mockGateway) LoadAll(ctx context.Context) ([]*model.Guild, error) {
	if m.loadAllFunc != nil {
		return m.loadAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockGateway) UpsertGuild(ctx context.Context, guild *model.Guild) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guilds[guild.ID] = guild
	m.upserts++
	return nil
}

func (m *mockGateway) AppendEntry(ctx context.Context, guildID string, entry model.LedgerEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[guildID] = append(m.entries[guildID], entry)
	return nil
}

func (m *mockGateway) LoadLog(ctx context.Context, guildID string) ([]model.LedgerEntry, error) {
	if m.loadLogFunc != nil {
		return m.loadLogFunc(ctx, guildID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LedgerEntry(nil), m.entries[guildID]...), nil
}

func (m *mockGateway) storedEntries(guildID string) []model.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LedgerEntry(nil), m.entries[guildID]...)
}

func (m *mockGateway) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

type mockEconomy struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal

	hasErr      error
	withdrawErr error
	depositErr  error
}

func newMockEconomy() *mockEconomy {
	return &mockEconomy{balances: make(map[string]decimal.Decimal)}
}

func (m *mockEconomy) HasAtLeast(ctx context.Context, actorID string, amount decimal.Decimal) (bool, error) {
	if m.hasErr != nil {
		return false, m.hasErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[actorID].GreaterThanOrEqual(amount), nil
}

func (m *mockEconomy) Withdraw(ctx context.Context, actorID string, amount decimal.Decimal) error {
	if m.withdrawErr != nil {
		return m.withdrawErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[actorID] = m.balances[actorID].Sub(amount)
	return nil
}

func (m *mockEconomy) Deposit(ctx context.Context, actorID string, amount decimal.Decimal) error {
	if m.depositErr != nil {
		return m.depositErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[actorID] = m.balances[actorID].Add(amount)
	return nil
}

func (m *mockEconomy) balance(actorID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[actorID]
}

type mockBus struct {
	publishFunc func(ctx context.Context, name string, payload any) bool
	published   []string
}

func (m *mockBus) Publish(ctx context.Context, name string, payload any) bool {
	m.published = append(m.published, name)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, name, payload)
	}
	return false
}

// ============================================================================
// Fixtures
// ============================================================================

func testCatalog() *model.TierCatalog {
	catalog, err := model.NewTierCatalog([]model.Tier{
		{Rank: 1, Name: "Bronze", MaxBankBalance: decimal.NewFromInt(150), MaxMembers: 4},
		{Rank: 2, Name: "Silver", MaxBankBalance: decimal.NewFromInt(1000), MaxMembers: 8},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}

// storedGuild builds a guild shaped the way the gateway returns it: the tier
// reference is a bare placeholder carrying only the rank.
func storedGuild(id, name, masterID string, rank int, balance decimal.Decimal) *model.Guild {
	return &model.Guild{
		ID:      id,
		Name:    name,
		Tier:    &model.Tier{Rank: rank},
		Balance: balance,
		Members: map[string]model.GuildRole{masterID: model.RoleMaster},
	}
}

// newTestRegistry loads a registry with the given guilds through the normal
// LoadAll path.
func newTestRegistry(gw *mockGateway, writeThrough bool, guilds ...*model.Guild) *Registry {
	gw.loadAllFunc = func(ctx context.Context) ([]*model.Guild, error) {
		return guilds, nil
	}
	r := NewRegistry(RegistryConfig{
		Gateway:      gw,
		Catalog:      testCatalog(),
		WriteThrough: writeThrough,
	})
	if err := r.LoadAll(context.Background()); err != nil {
		panic(err)
	}
	return r
}
