package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBus_PublishNoSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	if bus.Publish(context.Background(), BankDepositName, BankDeposit{}) {
		t.Error("publish with no subscribers must not cancel")
	}
}

func TestBus_SubscriberVetoes(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.Subscribe(BankDepositName, func(ctx context.Context, payload any) bool {
		return true
	})

	payload := BankDeposit{Actor: "alice", GuildID: "guild-1", Amount: decimal.NewFromInt(10)}
	if !bus.Publish(context.Background(), BankDepositName, payload) {
		t.Error("expected veto to cancel the publish")
	}
}

func TestBus_AllSubscribersRun(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ran := 0
	bus.Subscribe(BankWithdrawName, func(ctx context.Context, payload any) bool {
		ran++
		return true
	})
	bus.Subscribe(BankWithdrawName, func(ctx context.Context, payload any) bool {
		ran++
		return false
	})

	cancelled := bus.Publish(context.Background(), BankWithdrawName, BankWithdraw{})
	if !cancelled {
		t.Error("expected cancellation")
	}
	if ran != 2 {
		t.Errorf("ran = %d, want 2 (all subscribers notified)", ran)
	}
}

func TestBus_NamesAreIndependent(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.Subscribe(BankDepositName, func(ctx context.Context, payload any) bool {
		return true
	})

	if bus.Publish(context.Background(), BankWithdrawName, BankWithdraw{}) {
		t.Error("withdraw publish must not reach deposit subscribers")
	}
}
