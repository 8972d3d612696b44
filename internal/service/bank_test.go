package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/forgo/bastion/internal/model"
)

type bankFixture struct {
	bank    *BankService
	gateway *mockGateway
	economy *mockEconomy
	bus     *mockBus
	audit   *AuditLogManager
}

// newBankFixture wires a bank over one guild ("guild-1", master "alice")
// with balance 100.00 at a tier capped at 150.00, and gives alice an
// external balance of 1000.00.
func newBankFixture(t *testing.T, auditWithdrawals bool) *bankFixture {
	t.Helper()

	gateway := newMockGateway()
	registry := newTestRegistry(gateway, false,
		storedGuild("guild-1", "Ironhold", "alice", 1, decimal.NewFromInt(100)))

	economy := newMockEconomy()
	economy.balances["alice"] = decimal.NewFromInt(1000)

	bus := &mockBus{}
	audit := NewAuditLogManager(AuditConfig{Gateway: gateway})

	bank := NewBankService(BankConfig{
		Registry:         registry,
		Economy:          economy,
		Events:           bus,
		Audit:            audit,
		AuditWithdrawals: auditWithdrawals,
	})
	return &bankFixture{bank: bank, gateway: gateway, economy: economy, bus: bus, audit: audit}
}

func (f *bankFixture) guildBalance(t *testing.T) string {
	t.Helper()
	balance, err := f.bank.Balance(context.Background(), "guild-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	return model.FormatAmount(balance)
}

func (f *bankFixture) auditLen(t *testing.T) int {
	t.Helper()
	return f.audit.GetOrCreate(context.Background(), "guild-1").Len()
}

// ============================================================================
// Deposit Tests
// ============================================================================

func TestDeposit_Success_RoundsHalfUp(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	receipt, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 30.005)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if receipt.Cancelled {
		t.Fatal("unexpected cancellation")
	}

	if got := model.FormatAmount(receipt.Amount); got != "30.01" {
		t.Errorf("rounded amount = %s, want 30.01", got)
	}
	if got := f.guildBalance(t); got != "130.01" {
		t.Errorf("guild balance = %s, want 130.01", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "969.99" {
		t.Errorf("external balance = %s, want 969.99", got)
	}

	entries := f.audit.GetOrCreate(context.Background(), "guild-1").Entries()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Type != model.EntryDeposit || e.Actor != "alice" || model.FormatAmount(e.Amount) != "30.01" {
		t.Errorf("unexpected audit entry: %+v", e)
	}

	stored := f.gateway.storedEntries("guild-1")
	if len(stored) != 1 || stored[0].Actor != "alice" {
		t.Errorf("durable audit entries = %v, want the deposit entry", stored)
	}
}

func TestDeposit_NonFiniteAmount(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	for _, raw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", raw); !errors.Is(err, ErrAmountNotANumber) {
			t.Errorf("Deposit(%v) error = %v, want ErrAmountNotANumber", raw, err)
		}
	}

	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance mutated: %s", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "1000.00" {
		t.Errorf("external balance mutated: %s", got)
	}
	if f.auditLen(t) != 0 {
		t.Error("audit log grew on rejected deposit")
	}
}

func TestDeposit_NegativeAmount(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance mutated: %s", got)
	}
}

func TestDeposit_InsufficientExternalFunds(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.economy.balances["alice"] = decimal.NewFromInt(10)

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 25); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("error = %v, want ErrInsufficientFunds", err)
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance mutated: %s", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "10.00" {
		t.Errorf("external balance mutated: %s", got)
	}
}

func TestDeposit_EconomyCheckFailure(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.economy.hasErr = errors.New("economy offline")

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 10); !errors.Is(err, ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance mutated: %s", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "1000.00" {
		t.Errorf("external balance mutated: %s", got)
	}
	if f.auditLen(t) != 0 {
		t.Error("audit log grew on a failed economy check")
	}
	if len(f.bus.published) != 0 {
		t.Error("no event may be published before the economy check passes")
	}
}

func TestDeposit_CapacityExceeded(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	// balance=100.00, cap=150.00, actor holds 1000.00: 60.00 must not fit.
	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 60); !errors.Is(err, ErrOverTierCapacity) {
		t.Errorf("error = %v, want ErrOverTierCapacity", err)
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance = %s, want 100.00", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "1000.00" {
		t.Errorf("external balance mutated: %s", got)
	}
	if f.auditLen(t) != 0 {
		t.Error("audit log grew on rejected deposit")
	}
}

func TestDeposit_ExactlyAtCapacity(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 50); err != nil {
		t.Fatalf("deposit to exactly the cap should succeed: %v", err)
	}
	if got := f.guildBalance(t); got != "150.00" {
		t.Errorf("guild balance = %s, want 150.00", got)
	}
}

func TestDeposit_CancelledByExtension(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.bus.publishFunc = func(ctx context.Context, name string, payload any) bool {
		return true
	}

	receipt, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 25)
	if err != nil {
		t.Fatalf("cancellation must not surface as an error, got %v", err)
	}
	if !receipt.Cancelled {
		t.Error("receipt should be marked cancelled")
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance = %s, want 100.00", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "1000.00" {
		t.Errorf("external balance mutated: %s", got)
	}
	if f.auditLen(t) != 0 {
		t.Error("audit log grew on cancelled deposit")
	}
}

func TestDeposit_ExternalWithdrawFailure(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.economy.withdrawErr = errors.New("economy offline")

	_, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 25)
	if !errors.Is(err, ErrStorage) {
		t.Errorf("error = %v, want ErrStorage-wrapped", err)
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance mutated on failed external withdraw: %s", got)
	}
	if f.auditLen(t) != 0 {
		t.Error("audit log grew on failed deposit")
	}
}

func TestDeposit_UnknownGuild(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-404", 10); !errors.Is(err, ErrGuildNotFound) {
		t.Errorf("error = %v, want ErrGuildNotFound", err)
	}
}

// ============================================================================
// Withdraw Tests
// ============================================================================

func TestWithdraw_Success(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	receipt, err := f.bank.Withdraw(context.Background(), "alice", "guild-1", 40)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if model.FormatAmount(receipt.NewBalance) != "60.00" {
		t.Errorf("receipt balance = %s, want 60.00", model.FormatAmount(receipt.NewBalance))
	}
	if got := f.guildBalance(t); got != "60.00" {
		t.Errorf("guild balance = %s, want 60.00", got)
	}
	if got := model.FormatAmount(f.economy.balance("alice")); got != "1040.00" {
		t.Errorf("external balance = %s, want 1040.00", got)
	}
	// Reference behavior: withdrawals leave no audit entry.
	if f.auditLen(t) != 0 {
		t.Error("withdrawal appended an audit entry with auditing disabled")
	}
}

func TestWithdraw_AuditEnabled(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, true)

	if _, err := f.bank.Withdraw(context.Background(), "alice", "guild-1", 15); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	entries := f.audit.GetOrCreate(context.Background(), "guild-1").Entries()
	if len(entries) != 1 || entries[0].Type != model.EntryWithdraw {
		t.Errorf("expected one WITHDRAW entry, got %v", entries)
	}
}

func TestWithdraw_InsufficientGuildFunds(t *testing.T) {
	t.Parallel()
	gateway := newMockGateway()
	registry := newTestRegistry(gateway, false,
		storedGuild("guild-1", "Ironhold", "alice", 1, decimal.NewFromInt(50)))
	economy := newMockEconomy()
	bank := NewBankService(BankConfig{
		Registry: registry,
		Economy:  economy,
		Events:   &mockBus{},
		Audit:    NewAuditLogManager(AuditConfig{Gateway: gateway}),
	})

	_, err := bank.Withdraw(context.Background(), "alice", "guild-1", 75)
	if !errors.Is(err, ErrInsufficientGuildFunds) {
		t.Errorf("error = %v, want ErrInsufficientGuildFunds", err)
	}

	balance, _ := bank.Balance(context.Background(), "guild-1")
	if model.FormatAmount(balance) != "50.00" {
		t.Errorf("guild balance = %s, want 50.00", model.FormatAmount(balance))
	}
}

func TestWithdraw_CancelledByExtension(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.bus.publishFunc = func(ctx context.Context, name string, payload any) bool {
		return true
	}

	receipt, err := f.bank.Withdraw(context.Background(), "alice", "guild-1", 40)
	if err != nil {
		t.Fatalf("cancellation must not surface as an error, got %v", err)
	}
	if !receipt.Cancelled {
		t.Error("receipt should be marked cancelled")
	}
	if got := f.guildBalance(t); got != "100.00" {
		t.Errorf("guild balance = %s, want 100.00", got)
	}
}

func TestWithdraw_PostCommitExternalFailure(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)
	f.economy.depositErr = errors.New("economy offline")

	// The treasury decrement is a user-visible success; the failed external
	// credit is logged, not rolled back.
	receipt, err := f.bank.Withdraw(context.Background(), "alice", "guild-1", 40)
	if err != nil {
		t.Fatalf("post-commit failure must not fail the operation: %v", err)
	}
	if model.FormatAmount(receipt.NewBalance) != "60.00" {
		t.Errorf("receipt balance = %s, want 60.00", model.FormatAmount(receipt.NewBalance))
	}
	if got := f.guildBalance(t); got != "60.00" {
		t.Errorf("guild balance = %s, want 60.00", got)
	}
}

// ============================================================================
// Transcript Tests
// ============================================================================

func TestTranscript_OldestFirst(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bank.Deposit(context.Background(), "alice", "guild-1", 20); err != nil {
		t.Fatal(err)
	}

	lines, err := f.bank.Transcript(context.Background(), "guild-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "10.00") || !strings.Contains(lines[1], "20.00") {
		t.Errorf("transcript not oldest-first: %v", lines)
	}
}

func TestTranscript_UnknownGuild(t *testing.T) {
	t.Parallel()
	f := newBankFixture(t, false)

	if _, err := f.bank.Transcript(context.Background(), "guild-404"); !errors.Is(err, ErrGuildNotFound) {
		t.Errorf("error = %v, want ErrGuildNotFound", err)
	}
}
