// Package events provides the default in-process event bus and the payload
// types published by the treasury.
//
// The bus is synchronous: every subscriber for a name runs before Publish
// returns, and any subscriber may veto the in-flight operation by returning
// true. It satisfies the service.EventBus interface; deployments embedding
// this subsystem in a larger host can substitute their own bus.
package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Event names published by the bank service.
const (
	BankDepositName  = "bank.deposit"
	BankWithdrawName = "bank.withdraw"
)

// BankDeposit is the payload of the cancellable pre-commit deposit event.
// Amount is already rounded.
type BankDeposit struct {
	Actor   string
	GuildID string
	Amount  decimal.Decimal
}

// BankWithdraw is the payload of the cancellable pre-commit withdraw event.
type BankWithdraw struct {
	Actor   string
	GuildID string
	Amount  decimal.Decimal
}

// Handler inspects a published payload and may veto the operation by
// returning true.
type Handler func(ctx context.Context, payload any) (cancel bool)

// Bus is a synchronous in-process publish/subscribe hub.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event name. Handlers run on the
// publishing goroutine; the order between handlers of the same name is
// unspecified.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish notifies every subscriber of name synchronously and reports
// whether any of them cancelled. All subscribers run even after a veto.
func (b *Bus) Publish(ctx context.Context, name string, payload any) bool {
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()

	cancelled := false
	for _, h := range handlers {
		if h(ctx, payload) {
			cancelled = true
		}
	}
	return cancelled
}
