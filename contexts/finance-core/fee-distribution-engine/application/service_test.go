package application

import (
	"context"
	"errors"
	"testing"

	"fatcow/contexts/finance-core/fee-distribution-engine/adapters/memory"
	domainerrors "fatcow/contexts/finance-core/fee-distribution-engine/domain/errors"
	"fatcow/internal/shared/feesplit"
)

type stubAdminGuard struct {
	administrator string
}

func (g stubAdminGuard) IsAdministrator(_ context.Context, caller string) (bool, error) {
	return caller == g.administrator, nil
}

func (g stubAdminGuard) IsPaused(_ context.Context) (bool, error) {
	return false, nil
}

func newService(store *memory.Store) Service {
	return Service{
		Policies:      store,
		Shares:        store,
		Distributions: store,
		Admin:         stubAdminGuard{administrator: "tz1-admin"},
		Idempotency:   store,
		Outbox:        store,
		Clock:         store,
		IDGen:         store,
	}
}

func configureDefaultPolicy(t *testing.T, service Service) {
	t.Helper()
	_, err := service.ConfigurePolicy(context.Background(), ConfigurePolicyCommand{
		Caller: "tz1-admin",
		Lines: []feesplit.Line{
			{Recipient: "tz1-minter", RatePermille: 50},
			{Recipient: "tz1-creator", RatePermille: 50},
			{Recipient: "tz1-platform", RatePermille: 250},
		},
		ResidualRecipient: "tz1-seller",
	})
	if err != nil {
		t.Fatalf("ConfigurePolicy: %v", err)
	}
}

func TestConfigurePolicyRequiresAdministrator(t *testing.T) {
	service := newService(memory.NewStore())

	_, err := service.ConfigurePolicy(context.Background(), ConfigurePolicyCommand{
		Caller:            "tz1-mallory",
		Lines:             []feesplit.Line{{Recipient: "tz1-mallory", RatePermille: 100}},
		ResidualRecipient: "tz1-mallory",
	})
	if !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestConfigurePolicyRejectsRateOverflow(t *testing.T) {
	service := newService(memory.NewStore())

	_, err := service.ConfigurePolicy(context.Background(), ConfigurePolicyCommand{
		Caller: "tz1-admin",
		Lines: []feesplit.Line{
			{Recipient: "tz1-a", RatePermille: 600},
			{Recipient: "tz1-b", RatePermille: 600},
		},
		ResidualRecipient: "tz1-seller",
	})
	if !errors.Is(err, domainerrors.ErrWrongRates) {
		t.Fatalf("expected ErrWrongRates, got %v", err)
	}
}

func TestConfigurePolicyIsValueNeutral(t *testing.T) {
	service := newService(memory.NewStore())

	_, err := service.ConfigurePolicy(context.Background(), ConfigurePolicyCommand{
		Caller:            "tz1-admin",
		AttachedMutez:     1,
		Lines:             []feesplit.Line{{Recipient: "tz1-a", RatePermille: 100}},
		ResidualRecipient: "tz1-seller",
	})
	if !errors.Is(err, domainerrors.ErrTezTransfer) {
		t.Fatalf("expected ErrTezTransfer, got %v", err)
	}
}

func TestDistributeConservesValue(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	configureDefaultPolicy(t, service)

	distribution, replayed, err := service.Distribute(context.Background(), "key-1", DistributeInput{
		AmountMutez: 1_000_003,
	})
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if replayed {
		t.Fatalf("first call must not replay")
	}

	var total uint64
	for _, payout := range distribution.Payouts {
		total += payout.AmountMutez
	}
	if total+distribution.ResidualMutez != 1_000_003 {
		t.Fatalf("value not conserved: payouts %d residual %d", total, distribution.ResidualMutez)
	}
	if distribution.ResidualTo != "tz1-seller" {
		t.Fatalf("expected residual to tz1-seller, got %s", distribution.ResidualTo)
	}

	pending := store.PendingOutbox()
	if len(pending) != 1 || pending[0].EventType != "fee.distributed" {
		t.Fatalf("expected one fee.distributed envelope, got %+v", pending)
	}
}

func TestDistributeReplaysOnSameKey(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	configureDefaultPolicy(t, service)

	first, _, err := service.Distribute(context.Background(), "key-1", DistributeInput{AmountMutez: 500})
	if err != nil {
		t.Fatalf("first Distribute: %v", err)
	}
	second, replayed, err := service.Distribute(context.Background(), "key-1", DistributeInput{AmountMutez: 500})
	if err != nil {
		t.Fatalf("second Distribute: %v", err)
	}
	if !replayed {
		t.Fatalf("expected replay on identical key and payload")
	}
	if second.DistributionID != first.DistributionID {
		t.Fatalf("replay must return the original record")
	}

	// Same key, different payload is a conflict.
	_, _, err = service.Distribute(context.Background(), "key-1", DistributeInput{AmountMutez: 600})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	configureDefaultPolicy(t, service)

	preview, err := service.PreviewDistribution(context.Background(), 1000)
	if err != nil {
		t.Fatalf("PreviewDistribution: %v", err)
	}
	if len(preview.Payouts) != 3 {
		t.Fatalf("expected 3 payouts, got %d", len(preview.Payouts))
	}

	history, err := service.ListHistory(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("preview must not persist, found %d records", len(history))
	}
}

func TestRegisterShareOverwritesRate(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	if _, err := service.RegisterShare(context.Background(), RegisterShareCommand{
		Caller:       "tz1-admin",
		Address:      "tz1-partner",
		RatePermille: 100,
	}); err != nil {
		t.Fatalf("RegisterShare: %v", err)
	}
	if _, err := service.RegisterShare(context.Background(), RegisterShareCommand{
		Caller:       "tz1-admin",
		Address:      "tz1-partner",
		RatePermille: 150,
	}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	share, err := service.GetShare(context.Background(), "tz1-partner")
	if err != nil {
		t.Fatalf("GetShare: %v", err)
	}
	if share.RatePermille != 150 {
		t.Fatalf("expected overwritten rate 150, got %d", share.RatePermille)
	}

	_, err = service.RegisterShare(context.Background(), RegisterShareCommand{
		Caller:       "tz1-admin",
		Address:      "tz1-greedy",
		RatePermille: 1001,
	})
	if !errors.Is(err, domainerrors.ErrWrongRates) {
		t.Fatalf("expected ErrWrongRates above scale, got %v", err)
	}
}

func TestRevenueLinesFlattenRegistryInAddressOrder(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	registered := []RegisterShareCommand{
		{Caller: "tz1-admin", Address: "tz1-writer", RatePermille: 50},
		{Caller: "tz1-admin", Address: "tz1-artist", RatePermille: 100},
		{Caller: "tz1-admin", Address: "tz1-dormant", RatePermille: 0},
	}
	for _, cmd := range registered {
		if _, err := service.RegisterShare(context.Background(), cmd); err != nil {
			t.Fatalf("RegisterShare %s: %v", cmd.Address, err)
		}
	}

	lines, err := service.RevenueLines(context.Background())
	if err != nil {
		t.Fatalf("RevenueLines: %v", err)
	}
	want := []feesplit.Line{
		{Recipient: "tz1-artist", RatePermille: 100},
		{Recipient: "tz1-writer", RatePermille: 50},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %+v", len(want), lines)
	}
	for i, line := range lines {
		if line != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, line, want[i])
		}
	}
}
