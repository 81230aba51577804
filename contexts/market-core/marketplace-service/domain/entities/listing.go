package entities

import (
	"time"

	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
)

type ListingState string

const (
	// ListingStateCreated means the token sits in escrow awaiting a buyer.
	ListingStateCreated ListingState = "created"
	ListingStateSold    ListingState = "sold"
	// ListingStateInactive marks a cancelled listing; the row is kept for history.
	ListingStateInactive ListingState = "inactive"
)

// Listing is one token offered at a fixed price. ListingID comes from the
// marketplace counter and is never reused.
type Listing struct {
	ListingID     uint64
	LedgerAddress string
	TokenID       uint64
	Seller        string
	Buyer         string
	PriceMutez    uint64
	State         ListingState
	LastActor     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewListing(
	listingID uint64,
	ledgerAddress string,
	tokenID uint64,
	seller string,
	priceMutez uint64,
	createdAt time.Time,
) (Listing, error) {
	if ledgerAddress == "" || seller == "" {
		return Listing{}, domainerrors.ErrInvalidInput
	}
	if priceMutez == 0 {
		return Listing{}, domainerrors.ErrInvalidInput
	}
	return Listing{
		ListingID:     listingID,
		LedgerAddress: ledgerAddress,
		TokenID:       tokenID,
		Seller:        seller,
		PriceMutez:    priceMutez,
		State:         ListingStateCreated,
		LastActor:     seller,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     createdAt.UTC(),
	}, nil
}

// Sell marks the listing sold to buyer. Only an open listing can sell, and
// the seller cannot be the buyer.
func (l *Listing) Sell(buyer string, at time.Time) error {
	if buyer == "" {
		return domainerrors.ErrInvalidInput
	}
	if l.State != ListingStateCreated {
		return domainerrors.ErrListingNotActive
	}
	if buyer == l.Seller {
		return domainerrors.ErrIsSeller
	}
	l.State = ListingStateSold
	l.Buyer = buyer
	l.LastActor = buyer
	l.UpdatedAt = at.UTC()
	return nil
}

// Deactivate cancels an open listing on behalf of its seller.
func (l *Listing) Deactivate(actor string, at time.Time) error {
	if actor != l.Seller {
		return domainerrors.ErrNotSeller
	}
	if l.State != ListingStateCreated {
		return domainerrors.ErrListingNotActive
	}
	l.State = ListingStateInactive
	l.LastActor = actor
	l.UpdatedAt = at.UTC()
	return nil
}
