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

type CreateListingCommand struct {
	Caller        string
	AttachedMutez uint64
	LedgerAddress string
	TokenID       uint64
	PriceMutez    uint64
}

type CreateListingResult struct {
	Listing entities.Listing
}

// CreateListingUseCase opens a listing and queues the escrow pull. The
// attached amount must equal the configured listing fee exactly; the fee is
// retained by the marketplace until checkout.
type CreateListingUseCase struct {
	Listings      ports.ListingRepository
	Settings      ports.SettingsRepository
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	EscrowAddress string
	Logger        *slog.Logger
}

func (u CreateListingUseCase) Execute(ctx context.Context, cmd CreateListingCommand) (CreateListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller == "" {
		return CreateListingResult{}, domainerrors.ErrInvalidInput
	}

	settings, err := u.Settings.GetSettings(ctx)
	if err != nil {
		return CreateListingResult{}, err
	}
	if cmd.AttachedMutez != settings.ListingFeeMutez {
		return CreateListingResult{}, domainerrors.ErrWrongTezAmount
	}

	listingID, err := u.Listings.NextListingID(ctx)
	if err != nil {
		return CreateListingResult{}, err
	}
	now := u.now()
	listing, err := entities.NewListing(listingID, cmd.LedgerAddress, cmd.TokenID, cmd.Caller, cmd.PriceMutez, now)
	if err != nil {
		return CreateListingResult{}, err
	}

	// The token moves into escrow on the seller's own authority.
	escrow, err := transferRequestEnvelope(
		u.IDGen, ctx, listingID, cmd.Caller, cmd.Caller, u.EscrowAddress, cmd.TokenID, now,
	)
	if err != nil {
		return CreateListingResult{}, err
	}
	createdID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return CreateListingResult{}, err
	}
	created, err := newMarketEnvelope(createdID, listingCreatedEventType, listingID, now, map[string]any{
		"listing_id":  listingID,
		"ledger":      listing.LedgerAddress,
		"token_id":    listing.TokenID,
		"seller":      listing.Seller,
		"price_mutez": listing.PriceMutez,
	})
	if err != nil {
		return CreateListingResult{}, err
	}

	if err := u.Listings.CreateListingWithOutbox(ctx, listing, []ports.EventEnvelope{escrow, created}); err != nil {
		logger.Error("listing create failed on write transaction",
			"event", "market_listing_create_failed",
			"module", "market-core/marketplace-service",
			"layer", "application",
			"listing_id", listingID,
			"error", err.Error(),
		)
		return CreateListingResult{}, err
	}

	logger.Info("listing created",
		"event", "market_listing_created",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"listing_id", listingID,
		"seller", listing.Seller,
		"token_id", listing.TokenID,
		"price_mutez", listing.PriceMutez,
	)
	return CreateListingResult{Listing: listing}, nil
}

func (u CreateListingUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
