package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "fatcow/contexts/market-core/marketplace-service/application"
	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/feesplit"
)

type PurchaseListingCommand struct {
	Caller        string
	AttachedMutez uint64
	ListingID     uint64
}

type PurchaseListingResult struct {
	Listing  entities.Listing
	Replayed bool
}

// PurchaseListingUseCase settles a sale: the buyer pays the exact price, the
// token leaves escrow toward the buyer, every configured fee line gets its
// floored cut and the seller receives the remainder. All of it commits as one
// write with the payout effects queued behind it.
type PurchaseListingUseCase struct {
	Listings       ports.ListingRepository
	Settings       ports.SettingsRepository
	Admin          ports.AdminGuard
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	EscrowAddress  string
	Logger         *slog.Logger
}

func (u PurchaseListingUseCase) Execute(
	ctx context.Context,
	idempotencyKey string,
	cmd PurchaseListingCommand,
) (PurchaseListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller == "" || strings.TrimSpace(idempotencyKey) == "" {
		return PurchaseListingResult{}, domainerrors.ErrInvalidInput
	}

	paused, err := u.Admin.IsPaused(ctx)
	if err != nil {
		return PurchaseListingResult{}, err
	}
	if paused {
		return PurchaseListingResult{}, domainerrors.ErrCollectsPaused
	}

	now := u.now()
	requestHash := hashPurchase(cmd)
	record, found, err := u.Idempotency.GetRecord(ctx, strings.TrimSpace(idempotencyKey), now)
	if err != nil {
		return PurchaseListingResult{}, err
	}
	if found {
		if record.RequestHash != requestHash {
			return PurchaseListingResult{}, domainerrors.ErrIdempotencyConflict
		}
		var replayed entities.Listing
		if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
			return PurchaseListingResult{}, err
		}
		return PurchaseListingResult{Listing: replayed, Replayed: true}, nil
	}

	listing, err := u.Listings.GetListing(ctx, cmd.ListingID)
	if err != nil {
		return PurchaseListingResult{}, err
	}
	if cmd.AttachedMutez != listing.PriceMutez {
		return PurchaseListingResult{}, domainerrors.ErrWrongTezAmount
	}
	if listing.State == entities.ListingStateSold && listing.Buyer == cmd.Caller {
		// A retry can land after the sale committed but before the
		// idempotency record was stored. The sold row already names this
		// caller as the buyer, so heal the record and replay.
		payload, err := json.Marshal(listing)
		if err != nil {
			return PurchaseListingResult{}, err
		}
		if err := u.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
			Key:             strings.TrimSpace(idempotencyKey),
			RequestHash:     requestHash,
			ResponsePayload: payload,
			ExpiresAt:       now.Add(u.idempotencyTTL()),
		}); err != nil {
			return PurchaseListingResult{}, err
		}
		return PurchaseListingResult{Listing: listing, Replayed: true}, nil
	}
	if err := listing.Sell(cmd.Caller, now); err != nil {
		return PurchaseListingResult{}, err
	}

	settings, err := u.Settings.GetSettings(ctx)
	if err != nil {
		return PurchaseListingResult{}, err
	}
	envelopes, err := u.saleEnvelopes(ctx, listing, settings, now)
	if err != nil {
		return PurchaseListingResult{}, err
	}

	if err := u.Listings.UpdateListingWithOutbox(ctx, listing, envelopes); err != nil {
		logger.Error("purchase failed on write transaction",
			"event", "market_purchase_write_failed",
			"module", "market-core/marketplace-service",
			"layer", "application",
			"listing_id", listing.ListingID,
			"error", err.Error(),
		)
		return PurchaseListingResult{}, err
	}

	payload, err := json.Marshal(listing)
	if err != nil {
		return PurchaseListingResult{}, err
	}
	if err := u.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             strings.TrimSpace(idempotencyKey),
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(u.idempotencyTTL()),
	}); err != nil {
		return PurchaseListingResult{}, err
	}

	logger.Info("listing sold",
		"event", "market_listing_sold",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"listing_id", listing.ListingID,
		"buyer", listing.Buyer,
		"seller", listing.Seller,
		"price_mutez", listing.PriceMutez,
	)
	return PurchaseListingResult{Listing: listing}, nil
}

// saleEnvelopes queues, in order: the token leaving escrow, one payout per
// non-zero fee line, the seller's remainder and the sold event.
func (u PurchaseListingUseCase) saleEnvelopes(
	ctx context.Context,
	listing entities.Listing,
	settings entities.Settings,
	now time.Time,
) ([]ports.EventEnvelope, error) {
	envelopes := make([]ports.EventEnvelope, 0, 6)

	tokenOut, err := transferRequestEnvelope(
		u.IDGen, ctx, listing.ListingID, u.EscrowAddress, u.EscrowAddress, listing.Buyer, listing.TokenID, now,
	)
	if err != nil {
		return nil, err
	}
	envelopes = append(envelopes, tokenOut)

	lines, reasons := settingsLinesWithReasons(settings)
	payouts, residual, err := feesplit.Distribute(listing.PriceMutez, lines)
	if err != nil {
		return nil, err
	}
	// The split drops zero payouts, so keep only the reasons whose line
	// floors to a positive share to stay index-aligned.
	survivors := make([]string, 0, len(reasons))
	for i, line := range lines {
		if feesplit.Share(listing.PriceMutez, line.RatePermille) > 0 {
			survivors = append(survivors, reasons[i])
		}
	}
	for i, payout := range payouts {
		reason := "fee"
		if i < len(survivors) {
			reason = survivors[i]
		}
		envelope, err := paymentRequestEnvelope(
			u.IDGen, ctx, listing.ListingID, payout.Recipient, payout.AmountMutez, reason, now,
		)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope)
	}
	if residual > 0 {
		proceeds, err := paymentRequestEnvelope(
			u.IDGen, ctx, listing.ListingID, listing.Seller, residual, "sale_proceeds", now,
		)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, proceeds)
	}

	soldID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	sold, err := newMarketEnvelope(soldID, listingSoldEventType, listing.ListingID, now, map[string]any{
		"listing_id":  listing.ListingID,
		"buyer":       listing.Buyer,
		"seller":      listing.Seller,
		"price_mutez": listing.PriceMutez,
	})
	if err != nil {
		return nil, err
	}
	return append(envelopes, sold), nil
}

// settingsLinesWithReasons mirrors Settings.FeeLines with a parallel payout
// reason per surviving line. Zero-rate payouts are dropped by the split, so
// reasons stay index-aligned only when zero-rate lines are filtered the same
// way, which FeeLines guarantees.
func settingsLinesWithReasons(settings entities.Settings) ([]feesplit.Line, []string) {
	lines := make([]feesplit.Line, 0, 3+len(settings.Donations))
	reasons := make([]string, 0, cap(lines))
	named := []struct {
		line   feesplit.Line
		reason string
	}{
		{settings.MinterRoyalty, "minter_royalty"},
		{settings.CreatorRoyalty, "creator_royalty"},
		{settings.Commission, "commission"},
	}
	for _, entry := range named {
		if entry.line.RatePermille == 0 {
			continue
		}
		lines = append(lines, entry.line)
		reasons = append(reasons, entry.reason)
	}
	for _, donation := range settings.Donations {
		if donation.RatePermille == 0 {
			continue
		}
		lines = append(lines, donation)
		reasons = append(reasons, "donation")
	}
	return lines, reasons
}

func hashPurchase(cmd PurchaseListingCommand) string {
	raw := strings.Join([]string{
		cmd.Caller,
		strconv.FormatUint(cmd.ListingID, 10),
		strconv.FormatUint(cmd.AttachedMutez, 10),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (u PurchaseListingUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func (u PurchaseListingUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return u.IdempotencyTTL
}
