package commands

import (
	"context"
	"log/slog"
	"time"

	application "fatcow/contexts/market-core/marketplace-service/application"
	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
)

type CancelListingCommand struct {
	Caller        string
	AttachedMutez uint64
	ListingID     uint64
}

type CancelListingResult struct {
	Listing entities.Listing
}

// CancelListingUseCase deactivates an open listing and queues the escrow
// return. Seller only, value neutral; the listing fee is not refunded.
type CancelListingUseCase struct {
	Listings      ports.ListingRepository
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	EscrowAddress string
	Logger        *slog.Logger
}

func (u CancelListingUseCase) Execute(ctx context.Context, cmd CancelListingCommand) (CancelListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.AttachedMutez != 0 {
		return CancelListingResult{}, domainerrors.ErrTezTransfer
	}
	if cmd.Caller == "" {
		return CancelListingResult{}, domainerrors.ErrInvalidInput
	}

	listing, err := u.Listings.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return CancelListingResult{}, err
	}
	now := u.now()
	if err := listing.Deactivate(cmd.Caller, now); err != nil {
		return CancelListingResult{}, err
	}

	// Escrow returns to the seller on the marketplace's authority.
	escrowReturn, err := transferRequestEnvelope(
		u.IDGen, ctx, listing.ListingID, u.EscrowAddress, u.EscrowAddress, listing.Seller, listing.TokenID, now,
	)
	if err != nil {
		return CancelListingResult{}, err
	}
	cancelledID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return CancelListingResult{}, err
	}
	cancelled, err := newMarketEnvelope(cancelledID, listingCancelledEventType, listing.ListingID, now, map[string]any{
		"listing_id": listing.ListingID,
		"seller":     listing.Seller,
	})
	if err != nil {
		return CancelListingResult{}, err
	}

	if err := u.Listings.UpdateListingWithOutbox(ctx, listing, []ports.EventEnvelope{escrowReturn, cancelled}); err != nil {
		logger.Error("listing cancel failed on write transaction",
			"event", "market_listing_cancel_failed",
			"module", "market-core/marketplace-service",
			"layer", "application",
			"listing_id", listing.ListingID,
			"error", err.Error(),
		)
		return CancelListingResult{}, err
	}

	logger.Info("listing cancelled",
		"event", "market_listing_cancelled",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"listing_id", listing.ListingID,
		"seller", listing.Seller,
	)
	return CancelListingResult{Listing: listing}, nil
}

func (u CancelListingUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
