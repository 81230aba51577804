// Package feesplit is the shared proportional distribution kernel used by the
// fee-distribution-engine and the marketplace purchase flow. Amounts are
// integral mutez; rates are parts per mille.
package feesplit

import (
	"errors"
	"math/bits"
)

// RateScale is the denominator for all proportional fee rates.
const RateScale = 1000

var (
	ErrRateOverflow     = errors.New("fee rates exceed 1000 per mille")
	ErrMissingRecipient = errors.New("fee line recipient is required")
)

// Line is one proportional fee entry in payout order.
type Line struct {
	Recipient    string
	RatePermille uint64
}

// Payout is a computed, non-zero share owed to a recipient.
type Payout struct {
	Recipient   string
	AmountMutez uint64
}

// ValidateLines checks that every line names a recipient and that the summed
// rates never exceed RateScale, which keeps the residual non-negative for any
// amount.
func ValidateLines(lines []Line) error {
	var total uint64
	for _, line := range lines {
		if line.Recipient == "" {
			return ErrMissingRecipient
		}
		total += line.RatePermille
		if total > RateScale {
			return ErrRateOverflow
		}
	}
	return nil
}

// Share computes floor(amountMutez * ratePermille / RateScale). The product
// is taken at 128 bits so the result stays exact for every uint64 amount.
// ratePermille must not exceed RateScale.
func Share(amountMutez uint64, ratePermille uint64) uint64 {
	hi, lo := bits.Mul64(amountMutez, ratePermille)
	quotient, _ := bits.Div64(hi, lo, RateScale)
	return quotient
}

// Distribute splits amount across the lines in order, each share computed as
// floor(amount * rate / 1000). Zero shares are dropped so callers never issue
// futile zero-value payments. The second return value is the residual owed to
// the residual recipient: amount minus the sum of all computed shares.
func Distribute(amountMutez uint64, lines []Line) ([]Payout, uint64, error) {
	if err := ValidateLines(lines); err != nil {
		return nil, 0, err
	}

	payouts := make([]Payout, 0, len(lines))
	var distributed uint64
	for _, line := range lines {
		share := Share(amountMutez, line.RatePermille)
		distributed += share
		if share == 0 {
			continue
		}
		payouts = append(payouts, Payout{
			Recipient:   line.Recipient,
			AmountMutez: share,
		})
	}
	return payouts, amountMutez - distributed, nil
}
