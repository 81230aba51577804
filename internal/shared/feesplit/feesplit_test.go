package feesplit

import (
	"errors"
	"math"
	"testing"
)

func TestDistributeExactShares(t *testing.T) {
	lines := []Line{
		{Recipient: "tz1minter", RatePermille: 50},
		{Recipient: "tz1creator", RatePermille: 50},
		{Recipient: "tz1commission", RatePermille: 250},
	}

	payouts, residual, err := Distribute(1000, lines)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(payouts) != 3 {
		t.Fatalf("expected 3 payouts, got %d", len(payouts))
	}
	expected := []uint64{50, 50, 250}
	var total uint64
	for i, payout := range payouts {
		if payout.AmountMutez != expected[i] {
			t.Fatalf("payout %d: expected %d, got %d", i, expected[i], payout.AmountMutez)
		}
		total += payout.AmountMutez
	}
	if residual != 650 {
		t.Fatalf("expected residual 650, got %d", residual)
	}
	if total+residual != 1000 {
		t.Fatalf("shares plus residual must equal the amount, got %d", total+residual)
	}
}

func TestDistributeFloorsIndivisibleAmounts(t *testing.T) {
	payouts, residual, err := Distribute(7, []Line{{Recipient: "tz1a", RatePermille: 333}})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(payouts) != 1 || payouts[0].AmountMutez != 2 {
		t.Fatalf("expected single share of 2, got %+v", payouts)
	}
	if residual != 5 {
		t.Fatalf("expected residual 5, got %d", residual)
	}
}

func TestDistributeStaysExactOnLargeAmounts(t *testing.T) {
	amount := uint64(1) << 60
	payouts, residual, err := Distribute(amount, []Line{{Recipient: "tz1a", RatePermille: 250}})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	want := uint64(1) << 58 // floor(2^60 * 250 / 1000)
	if len(payouts) != 1 || payouts[0].AmountMutez != want {
		t.Fatalf("expected share %d, got %+v", want, payouts)
	}
	if residual != amount-want {
		t.Fatalf("expected residual %d, got %d", amount-want, residual)
	}

	payouts, residual, err = Distribute(math.MaxUint64, []Line{{Recipient: "tz1a", RatePermille: RateScale}})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(payouts) != 1 || payouts[0].AmountMutez != math.MaxUint64 || residual != 0 {
		t.Fatalf("full-rate split of MaxUint64 = %+v residual %d, want the whole amount", payouts, residual)
	}
}

func TestShareMatchesWideningArithmetic(t *testing.T) {
	cases := []struct {
		amount uint64
		rate   uint64
		want   uint64
	}{
		{1000, 250, 250},
		{7, 333, 2},
		{1 << 60, 250, 1 << 58},
		{math.MaxUint64, 1000, math.MaxUint64},
		{math.MaxUint64, 1, math.MaxUint64 / 1000},
	}
	for _, c := range cases {
		if got := Share(c.amount, c.rate); got != c.want {
			t.Fatalf("Share(%d, %d) = %d, want %d", c.amount, c.rate, got, c.want)
		}
	}
}

func TestDistributeDropsZeroShares(t *testing.T) {
	payouts, residual, err := Distribute(9, []Line{
		{Recipient: "tz1a", RatePermille: 100},
		{Recipient: "tz1b", RatePermille: 5},
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(payouts) != 0 {
		t.Fatalf("expected all shares dropped as zero, got %+v", payouts)
	}
	if residual != 9 {
		t.Fatalf("expected residual 9, got %d", residual)
	}
}

func TestDistributePreservesPayoutOrder(t *testing.T) {
	payouts, _, err := Distribute(10000, []Line{
		{Recipient: "tz1minter", RatePermille: 10},
		{Recipient: "tz1creator", RatePermille: 20},
		{Recipient: "tz1commission", RatePermille: 30},
		{Recipient: "tz1donation", RatePermille: 40},
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	order := []string{"tz1minter", "tz1creator", "tz1commission", "tz1donation"}
	if len(payouts) != len(order) {
		t.Fatalf("expected %d payouts, got %d", len(order), len(payouts))
	}
	for i, payout := range payouts {
		if payout.Recipient != order[i] {
			t.Fatalf("payout %d: expected recipient %s, got %s", i, order[i], payout.Recipient)
		}
	}
}

func TestValidateLinesRejectsOverflow(t *testing.T) {
	err := ValidateLines([]Line{
		{Recipient: "tz1a", RatePermille: 600},
		{Recipient: "tz1b", RatePermille: 401},
	})
	if !errors.Is(err, ErrRateOverflow) {
		t.Fatalf("expected rate overflow, got %v", err)
	}
}

func TestValidateLinesRequiresRecipient(t *testing.T) {
	err := ValidateLines([]Line{{RatePermille: 10}})
	if !errors.Is(err, ErrMissingRecipient) {
		t.Fatalf("expected missing recipient, got %v", err)
	}
}

func TestDistributeConservesValueForManyAmounts(t *testing.T) {
	lines := []Line{
		{Recipient: "tz1minter", RatePermille: 50},
		{Recipient: "tz1creator", RatePermille: 50},
		{Recipient: "tz1commission", RatePermille: 250},
		{Recipient: "tz1donation", RatePermille: 333},
	}
	for amount := uint64(0); amount < 5000; amount += 7 {
		payouts, residual, err := Distribute(amount, lines)
		if err != nil {
			t.Fatalf("amount %d: unexpected error: %v", amount, err)
		}
		var total uint64
		for _, payout := range payouts {
			total += payout.AmountMutez
		}
		if total+residual != amount {
			t.Fatalf("amount %d: shares %d plus residual %d do not conserve value", amount, total, residual)
		}
	}
}
