package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryDeposit  EntryType = "DEPOSIT"
	EntryWithdraw EntryType = "WITHDRAW"
)

// LedgerEntry is an immutable record of a single treasury-affecting
// transaction. Amount is already rounded and never negative; At carries
// millisecond wall-clock precision.
type LedgerEntry struct {
	Type   EntryType
	Actor  string
	Amount decimal.Decimal
	At     time.Time
}

// NewLedgerEntry stamps an entry with the current wall clock.
func NewLedgerEntry(t EntryType, actor string, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{
		Type:   t,
		Actor:  actor,
		Amount: amount,
		At:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

// String renders the entry as one transcript line.
func (e LedgerEntry) String() string {
	return fmt.Sprintf("- %s has %s %s at %s",
		e.Actor,
		strings.ToLower(string(e.Type)),
		FormatAmount(e.Amount),
		e.At.UTC().Format(time.DateTime),
	)
}

// AuditLog is the append-only, per-guild ordered sequence of ledger entries.
// Insertion order is chronological order. Appends and reads may come from
// different goroutines, so the log synchronizes internally; all other
// aggregate state relies on the registry's per-guild lock instead.
type AuditLog struct {
	GuildID string

	mu         sync.RWMutex
	entries    []LedgerEntry
	maxEntries int // 0 = unbounded
}

// NewAuditLog creates an empty log. maxEntries of 0 keeps every entry in
// memory; a positive cap drops the oldest entries past it. Durable history
// is never truncated here.
func NewAuditLog(guildID string, maxEntries int) *AuditLog {
	return &AuditLog{GuildID: guildID, maxEntries: maxEntries}
}

// Append adds an entry at the end of the log.
func (l *AuditLog) Append(e LedgerEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		overflow := len(l.entries) - l.maxEntries
		l.entries = append(l.entries[:0:0], l.entries[overflow:]...)
	}
}

// Restore replaces the in-memory content with entries hydrated from
// storage. Intended for first access only; the retention cap still applies.
func (l *AuditLog) Restore(entries []LedgerEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxEntries > 0 && len(entries) > l.maxEntries {
		entries = entries[len(entries)-l.maxEntries:]
	}
	l.entries = append([]LedgerEntry(nil), entries...)
}

// Entries returns a copy of the log, oldest first.
func (l *AuditLog) Entries() []LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LedgerEntry(nil), l.entries...)
}

// Len returns the number of in-memory entries.
func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
