package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/forgo/bastion/internal/events"
	"github.com/forgo/bastion/internal/model"
)

// BankConfig holds the collaborators of the bank service.
type BankConfig struct {
	Registry *Registry
	Economy  ExternalEconomy
	Events   EventBus
	Audit    *AuditLogManager
	Logger   *slog.Logger
	// AuditWithdrawals also appends WITHDRAW ledger entries. The reference
	// behavior records deposits only, so this defaults to off.
	AuditWithdrawals bool
}

// BankService implements the stateless treasury transaction logic. All
// mutation runs inside Registry.Update, so the external-economy check and
// withdraw execute in the same per-guild critical section and no operation
// on the same actor's external balance can interleave.
type BankService struct {
	registry         *Registry
	economy          ExternalEconomy
	events           EventBus
	audit            *AuditLogManager
	log              *slog.Logger
	auditWithdrawals bool
}

// NewBankService creates a bank service.
func NewBankService(cfg BankConfig) *BankService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BankService{
		registry:         cfg.Registry,
		economy:          cfg.Economy,
		events:           cfg.Events,
		audit:            cfg.Audit,
		log:              logger,
		auditWithdrawals: cfg.AuditWithdrawals,
	}
}

// Receipt reports the outcome of a treasury operation.
type Receipt struct {
	GuildID    string
	Actor      string
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
	// Cancelled means a pre-commit subscriber vetoed the operation: nothing
	// changed and no error was raised.
	Cancelled bool
}

// normalize applies the shared amount validation: non-finite values are a
// distinct error, then the amount is rounded half-up to the fixed precision
// and negative results rejected.
func normalize(raw float64) (decimal.Decimal, error) {
	if !model.IsFinite(raw) {
		return decimal.Decimal{}, ErrAmountNotANumber
	}
	rounded := model.RoundAmount(raw)
	if rounded.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return rounded, nil
}

// Deposit moves funds from the actor's external balance into the guild
// treasury. All-or-nothing: any validation or business-rule failure leaves
// every balance and the audit log untouched. A veto by a pre-commit
// subscriber returns a cancelled receipt and a nil error.
func (s *BankService) Deposit(ctx context.Context, actorID, guildID string, raw float64) (*Receipt, error) {
	rounded, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{GuildID: guildID, Actor: actorID, Amount: rounded}
	err = s.registry.Update(ctx, guildID, func(g *model.Guild) error {
		ok, err := s.economy.HasAtLeast(ctx, actorID, rounded)
		if err != nil {
			return fmt.Errorf("%w: external economy check: %v", ErrStorage, err)
		}
		if !ok {
			return ErrInsufficientFunds
		}
		if !g.CanHold(rounded) {
			return ErrOverTierCapacity
		}

		cancelled := s.events.Publish(ctx, events.BankDepositName, events.BankDeposit{
			Actor:   actorID,
			GuildID: guildID,
			Amount:  rounded,
		})
		if cancelled {
			return errCancelled
		}

		// Commit order: external withdraw, then treasury, then audit trail.
		if err := s.economy.Withdraw(ctx, actorID, rounded); err != nil {
			return fmt.Errorf("%w: external withdraw: %v", ErrStorage, err)
		}
		g.ApplyDelta(rounded)
		receipt.NewBalance = g.Balance

		s.audit.Append(
			s.audit.GetOrCreate(ctx, guildID),
			model.NewLedgerEntry(model.EntryDeposit, actorID, rounded),
		)
		return nil
	})
	if errors.Is(err, errCancelled) {
		receipt.Cancelled = true
		return receipt, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("deposit committed",
		slog.String("guild_id", guildID),
		slog.String("actor", actorID),
		slog.String("amount", model.FormatAmount(rounded)),
	)
	return receipt, nil
}

// Withdraw moves funds from the guild treasury to the actor's external
// balance. The external credit happens after the treasury decrement; if it
// fails post-commit the treasury is not rolled back - the inconsistency is
// logged for operator remediation instead of silently reverting a
// user-visible success.
func (s *BankService) Withdraw(ctx context.Context, actorID, guildID string, raw float64) (*Receipt, error) {
	rounded, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{GuildID: guildID, Actor: actorID, Amount: rounded}
	err = s.registry.Update(ctx, guildID, func(g *model.Guild) error {
		if g.Balance.LessThan(rounded) {
			return ErrInsufficientGuildFunds
		}

		cancelled := s.events.Publish(ctx, events.BankWithdrawName, events.BankWithdraw{
			Actor:   actorID,
			GuildID: guildID,
			Amount:  rounded,
		})
		if cancelled {
			return errCancelled
		}

		g.ApplyDelta(rounded.Neg())
		receipt.NewBalance = g.Balance

		if err := s.economy.Deposit(ctx, actorID, rounded); err != nil {
			s.log.Error("external credit failed after treasury withdrawal",
				slog.String("guild_id", guildID),
				slog.String("actor", actorID),
				slog.String("amount", model.FormatAmount(rounded)),
				slog.String("error", err.Error()),
			)
		}

		if s.auditWithdrawals {
			s.audit.Append(
				s.audit.GetOrCreate(ctx, guildID),
				model.NewLedgerEntry(model.EntryWithdraw, actorID, rounded),
			)
		}
		return nil
	})
	if errors.Is(err, errCancelled) {
		receipt.Cancelled = true
		return receipt, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("withdrawal committed",
		slog.String("guild_id", guildID),
		slog.String("actor", actorID),
		slog.String("amount", model.FormatAmount(rounded)),
	)
	return receipt, nil
}

// Balance reads the guild's treasury balance.
func (s *BankService) Balance(ctx context.Context, guildID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.registry.View(guildID, func(g *model.Guild) error {
		balance = g.Balance
		return nil
	})
	return balance, err
}

// Transcript renders the guild's audit log as human-readable lines, oldest
// first.
func (s *BankService) Transcript(ctx context.Context, guildID string) ([]string, error) {
	if _, ok := s.registry.slot(guildID); !ok {
		return nil, ErrGuildNotFound
	}
	log := s.audit.GetOrCreate(ctx, guildID)
	return lo.Map(log.Entries(), func(e model.LedgerEntry, _ int) string {
		return e.String()
	}), nil
}
