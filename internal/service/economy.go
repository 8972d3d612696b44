package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExternalEconomy is the player-currency store outside this subsystem, the
// source of deposits and the sink of withdrawals. There is no transactional
// coupling with guild state across a process crash: the has-check and the
// later withdraw are two separate calls, serialized only by the registry's
// per-guild critical section.
type ExternalEconomy interface {
	// HasAtLeast reports whether the actor's external balance covers amount.
	HasAtLeast(ctx context.Context, actorID string, amount decimal.Decimal) (bool, error)
	// Withdraw removes amount from the actor's external balance.
	Withdraw(ctx context.Context, actorID string, amount decimal.Decimal) error
	// Deposit credits amount to the actor's external balance.
	Deposit(ctx context.Context, actorID string, amount decimal.Decimal) error
}
