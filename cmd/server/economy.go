package main

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// devEconomy is an in-memory currency provider for development. Every
// actor starts with the same balance. Production deployments replace
// this with a bridge to the real provider.
type devEconomy struct {
	mu       sync.Mutex
	start    decimal.Decimal
	balances map[string]decimal.Decimal
}

func newDevEconomy(start decimal.Decimal) *devEconomy {
	return &devEconomy{
		start:    start,
		balances: make(map[string]decimal.Decimal),
	}
}

func (e *devEconomy) balance(actorID string) decimal.Decimal {
	if b, ok := e.balances[actorID]; ok {
		return b
	}
	return e.start
}

func (e *devEconomy) HasAtLeast(ctx context.Context, actorID string, amount decimal.Decimal) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance(actorID).GreaterThanOrEqual(amount), nil
}

func (e *devEconomy) Withdraw(ctx context.Context, actorID string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[actorID] = e.balance(actorID).Sub(amount)
	return nil
}

func (e *devEconomy) Deposit(ctx context.Context, actorID string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balances[actorID] = e.balance(actorID).Add(amount)
	return nil
}
