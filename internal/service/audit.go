package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/forgo/bastion/internal/model"
)

// AuditConfig holds the collaborators of the audit log manager.
type AuditConfig struct {
	Gateway PersistenceGateway
	Tasks   TaskQueue // async durable appends; may be nil for synchronous writes
	Logger  *slog.Logger
	// MaxEntries caps the in-memory log per guild, 0 keeps everything.
	// Durable history is never truncated by this subsystem.
	MaxEntries int
}

// logHolder defers storage hydration to the first caller while later
// callers wait on the same once, so a log is hydrated exactly once and
// never after an append.
type logHolder struct {
	log  *model.AuditLog
	once sync.Once
}

// AuditLogManager lazily materializes per-guild audit logs. Logs live for
// the process lifetime and have a separate persistence lifecycle from the
// Guild they describe: in-memory appends are immediate, durable appends ride
// the async persister.
type AuditLogManager struct {
	gateway    PersistenceGateway
	tasks      TaskQueue
	log        *slog.Logger
	maxEntries int

	mu      sync.Mutex
	holders map[string]*logHolder
}

// NewAuditLogManager creates an empty manager.
func NewAuditLogManager(cfg AuditConfig) *AuditLogManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogManager{
		gateway:    cfg.Gateway,
		tasks:      cfg.Tasks,
		log:        logger,
		maxEntries: cfg.MaxEntries,
		holders:    make(map[string]*logHolder),
	}
}

// GetOrCreate returns the guild's audit log, creating it on first access.
// Idempotent and guild-scoped: every call in the same process returns the
// same log identity. First access hydrates the in-memory log from durable
// history; a hydration failure is logged and the log starts empty rather
// than failing the transaction it was fetched for.
func (m *AuditLogManager) GetOrCreate(ctx context.Context, guildID string) *model.AuditLog {
	m.mu.Lock()
	holder, ok := m.holders[guildID]
	if !ok {
		holder = &logHolder{log: model.NewAuditLog(guildID, m.maxEntries)}
		m.holders[guildID] = holder
	}
	m.mu.Unlock()

	holder.once.Do(func() {
		entries, err := m.gateway.LoadLog(ctx, guildID)
		if err != nil {
			m.log.Warn("audit log hydration failed, starting empty",
				slog.String("guild_id", guildID),
				slog.String("error", err.Error()),
			)
			return
		}
		if len(entries) > 0 {
			holder.log.Restore(entries)
		}
	})
	return holder.log
}

// Append adds the entry to the in-memory log immediately, so local readers
// never observe read-after-write lag, and schedules the durable append on
// the persister. A durable-write failure is logged for operator action and
// never rolls back the in-memory entry.
func (m *AuditLogManager) Append(log *model.AuditLog, entry model.LedgerEntry) {
	log.Append(entry)

	guildID := log.GuildID
	write := func(ctx context.Context) error {
		if err := m.gateway.AppendEntry(ctx, guildID, entry); err != nil {
			return fmt.Errorf("append ledger entry for guild %s: %w", guildID, err)
		}
		return nil
	}

	if m.tasks == nil {
		if err := write(context.Background()); err != nil {
			m.log.Error("ledger entry not persisted", slog.String("error", err.Error()))
		}
		return
	}
	if !m.tasks.Enqueue("ledger-append", write) {
		m.log.Error("persistence queue full, ledger entry not persisted",
			slog.String("guild_id", guildID),
			slog.String("actor", entry.Actor),
		)
	}
}
