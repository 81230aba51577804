package entities

import (
	"time"

	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/internal/shared/feesplit"
)

// MaxFeeRatePermille caps each configurable fee line at 25%.
const MaxFeeRatePermille uint64 = 250

// Settings holds the marketplace fee configuration. Each named line is a
// proportional cut of the sale price; donations are an additional open list.
// Whatever the lines leave over goes to the seller.
type Settings struct {
	ListingFeeMutez uint64
	MinterRoyalty   feesplit.Line
	CreatorRoyalty  feesplit.Line
	Commission      feesplit.Line
	Donations       []feesplit.Line
	UpdatedAt       time.Time
}

// FeeLines flattens the configured cuts into distribution order: minter
// royalty, creator royalty, commission, then donations.
func (s Settings) FeeLines() []feesplit.Line {
	lines := make([]feesplit.Line, 0, 3+len(s.Donations))
	for _, line := range []feesplit.Line{s.MinterRoyalty, s.CreatorRoyalty, s.Commission} {
		if line.RatePermille == 0 {
			continue
		}
		lines = append(lines, line)
	}
	for _, line := range s.Donations {
		if line.RatePermille == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Validate enforces the per-line cap and the whole-price ceiling.
func (s Settings) Validate() error {
	for _, line := range []feesplit.Line{s.MinterRoyalty, s.CreatorRoyalty, s.Commission} {
		if line.RatePermille > MaxFeeRatePermille {
			return domainerrors.ErrWrongFees
		}
		if line.RatePermille > 0 && line.Recipient == "" {
			return domainerrors.ErrInvalidInput
		}
	}
	for _, line := range s.Donations {
		if line.RatePermille > MaxFeeRatePermille {
			return domainerrors.ErrWrongFees
		}
		if line.RatePermille > 0 && line.Recipient == "" {
			return domainerrors.ErrInvalidInput
		}
	}
	if err := feesplit.ValidateLines(s.FeeLines()); err != nil {
		return domainerrors.ErrWrongFees
	}
	return nil
}
