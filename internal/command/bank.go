package command

import (
	"context"
	"fmt"

	"github.com/forgo/bastion/internal/model"
	"github.com/forgo/bastion/internal/service"
)

// Bank handles guild treasury commands
type Bank struct {
	registry *service.Registry
	bank     *service.BankService
}

// NewBank creates a new bank command facade
func NewBank(registry *service.Registry, bank *service.BankService) *Bank {
	return &Bank{registry: registry, bank: bank}
}

// resolve returns the actor's guild id and role.
func (b *Bank) resolve(actorID string) (string, model.GuildRole, error) {
	guildID, ok := b.registry.GuildIDByMember(actorID)
	if !ok {
		return "", "", service.ErrNotGuildMember
	}

	var role model.GuildRole
	err := b.registry.View(guildID, func(g *model.Guild) error {
		r, ok := g.Role(actorID)
		if !ok {
			return service.ErrNotGuildMember
		}
		role = r
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return guildID, role, nil
}

// Balance reports the treasury balance of the actor's guild.
func (b *Bank) Balance(ctx context.Context, actorID string) Result {
	guildID, _, err := b.resolve(actorID)
	if err != nil {
		return failure(err)
	}

	balance, err := b.bank.Balance(ctx, guildID)
	if err != nil {
		return failure(err)
	}
	return success(fmt.Sprintf("Guild bank balance: %s", model.FormatAmount(balance)))
}

// Deposit moves funds from the actor's external balance into the guild
// treasury.
func (b *Bank) Deposit(ctx context.Context, actorID string, amount float64) Result {
	guildID, role, err := b.resolve(actorID)
	if err != nil {
		return failure(err)
	}
	if !role.CanDeposit() {
		return failure(service.ErrNoPermission)
	}

	receipt, err := b.bank.Deposit(ctx, actorID, guildID, amount)
	if err != nil {
		return failure(err)
	}
	if receipt.Cancelled {
		return success("Deposit not processed.")
	}
	return success(fmt.Sprintf("Deposited %s. New balance: %s",
		model.FormatAmount(receipt.Amount), model.FormatAmount(receipt.NewBalance)))
}

// Withdraw moves funds from the guild treasury to the actor's external
// balance. Only masters and officers may withdraw.
func (b *Bank) Withdraw(ctx context.Context, actorID string, amount float64) Result {
	guildID, role, err := b.resolve(actorID)
	if err != nil {
		return failure(err)
	}
	if !role.CanWithdraw() {
		return failure(service.ErrNoPermission)
	}

	receipt, err := b.bank.Withdraw(ctx, actorID, guildID, amount)
	if err != nil {
		return failure(err)
	}
	if receipt.Cancelled {
		return success("Withdrawal not processed.")
	}
	return success(fmt.Sprintf("Withdrew %s. New balance: %s",
		model.FormatAmount(receipt.Amount), model.FormatAmount(receipt.NewBalance)))
}

// Logs returns the guild's transaction transcript, oldest first.
func (b *Bank) Logs(ctx context.Context, actorID string) Result {
	guildID, _, err := b.resolve(actorID)
	if err != nil {
		return failure(err)
	}

	lines, err := b.bank.Transcript(ctx, guildID)
	if err != nil {
		return failure(err)
	}
	if len(lines) == 0 {
		return success("No bank transactions yet.")
	}
	return Result{OK: true, Message: "Guild bank log:", Lines: lines}
}
