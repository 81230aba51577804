package unit

import (
	"context"
	"errors"
	"testing"

	administrationservice "fatcow/contexts/governance/administration-service"
	governancehttp "fatcow/contexts/governance/administration-service/transport/http"
	marketplaceservice "fatcow/contexts/market-core/marketplace-service"
	marketerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	markethttp "fatcow/contexts/market-core/marketplace-service/transport/http"
)

const testEscrowAddress = "KT1MarketplaceEscrow"

func newMarketModule(t *testing.T) (marketplaceservice.Module, administrationservice.Module) {
	t.Helper()
	governance := administrationservice.NewInMemoryModule(nil, "tz1Admin")
	return marketplaceservice.NewInMemoryModule(nil, governance.Service, nil, testEscrowAddress), governance
}

func configureMarketFees(t *testing.T, module marketplaceservice.Module) {
	t.Helper()
	ctx := context.Background()
	if _, err := module.Handler.UpdateFeeRecipientsHandler(ctx, "tz1Admin", 0,
		markethttp.UpdateFeeRecipientsRequest{CommissionRecipient: "tz1Platform"}); err != nil {
		t.Fatalf("update fee recipients failed: %v", err)
	}
	if _, err := module.Handler.UpdateFeesHandler(ctx, "tz1Admin", 0, markethttp.UpdateFeesRequest{
		ListingFeeMutez:    100,
		CommissionPermille: 25,
	}); err != nil {
		t.Fatalf("update fees failed: %v", err)
	}
}

func TestMarketplaceListPurchaseFlow(t *testing.T) {
	module, _ := newMarketModule(t)
	configureMarketFees(t, module)
	ctx := context.Background()

	created, err := module.Handler.CreateListingHandler(ctx, "tz1Seller", 100,
		markethttp.CreateListingRequest{
			LedgerAddress: "KT1Ledger",
			TokenID:       7,
			PriceMutez:    1_000,
		})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	if created.Item.State != "created" {
		t.Fatalf("listing state = %s, want created", created.Item.State)
	}

	purchased, err := module.Handler.PurchaseListingHandler(
		ctx, "tz1Buyer", 1_000, "purchase-1", created.Item.ListingID)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if purchased.Item.State != "sold" || purchased.Item.Buyer != "tz1Buyer" {
		t.Fatalf("purchased listing = %+v, want sold to tz1Buyer", purchased.Item)
	}

	replayed, err := module.Handler.PurchaseListingHandler(
		ctx, "tz1Buyer", 1_000, "purchase-1", created.Item.ListingID)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replayed.Replayed {
		t.Fatalf("expected replayed purchase")
	}

	sellerListings, err := module.Handler.ListUserListingsHandler(ctx, "tz1Seller", 10, 0)
	if err != nil {
		t.Fatalf("list seller listings failed: %v", err)
	}
	buyerListings, err := module.Handler.ListUserListingsHandler(ctx, "tz1Buyer", 10, 0)
	if err != nil {
		t.Fatalf("list buyer listings failed: %v", err)
	}
	if len(sellerListings.Items) != 1 || len(buyerListings.Items) != 1 {
		t.Fatalf("listings = seller %d, buyer %d; want 1 and 1",
			len(sellerListings.Items), len(buyerListings.Items))
	}
}

func TestMarketplaceCreateRejectsWrongListingFee(t *testing.T) {
	module, _ := newMarketModule(t)
	configureMarketFees(t, module)

	_, err := module.Handler.CreateListingHandler(context.Background(), "tz1Seller", 99,
		markethttp.CreateListingRequest{
			LedgerAddress: "KT1Ledger",
			TokenID:       7,
			PriceMutez:    1_000,
		})
	if !errors.Is(err, marketerrors.ErrWrongTezAmount) {
		t.Fatalf("wrong fee err = %v, want ErrWrongTezAmount", err)
	}
}

func TestMarketplacePurchaseRespectsPauseGate(t *testing.T) {
	module, governance := newMarketModule(t)
	configureMarketFees(t, module)
	ctx := context.Background()

	created, err := module.Handler.CreateListingHandler(ctx, "tz1Seller", 100,
		markethttp.CreateListingRequest{
			LedgerAddress: "KT1Ledger",
			TokenID:       7,
			PriceMutez:    1_000,
		})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	if _, err := governance.Handler.SetPauseHandler(ctx, "tz1Admin", 0,
		governancehttp.SetPauseRequest{Paused: true}); err != nil {
		t.Fatalf("set paused: %v", err)
	}
	_, err = module.Handler.PurchaseListingHandler(ctx, "tz1Buyer", 1_000, "purchase-1", created.Item.ListingID)
	if !errors.Is(err, marketerrors.ErrCollectsPaused) {
		t.Fatalf("paused purchase err = %v, want ErrCollectsPaused", err)
	}

	// Cancelling stays available while purchases are paused.
	cancelled, err := module.Handler.CancelListingHandler(ctx, "tz1Seller", 0, created.Item.ListingID)
	if err != nil {
		t.Fatalf("cancel during pause failed: %v", err)
	}
	if cancelled.Item.State != "inactive" {
		t.Fatalf("cancelled state = %s, want inactive", cancelled.Item.State)
	}
}

func TestMarketplaceFeeUpdateIsAdminOnly(t *testing.T) {
	module, _ := newMarketModule(t)

	_, err := module.Handler.UpdateFeesHandler(context.Background(), "tz1Stranger", 0,
		markethttp.UpdateFeesRequest{ListingFeeMutez: 100})
	if !errors.Is(err, marketerrors.ErrNotAdmin) {
		t.Fatalf("stranger fee update err = %v, want ErrNotAdmin", err)
	}

	_, err = module.Handler.UpdateFeesHandler(context.Background(), "tz1Admin", 0,
		markethttp.UpdateFeesRequest{CommissionPermille: 251})
	if !errors.Is(err, marketerrors.ErrWrongFees) {
		t.Fatalf("over-cap fee err = %v, want ErrWrongFees", err)
	}
}

func TestMarketplaceCheckoutDrainsRetainedFees(t *testing.T) {
	module, _ := newMarketModule(t)
	ctx := context.Background()

	_, err := module.Handler.CheckoutHandler(ctx, "tz1Stranger", 0, markethttp.CheckoutRequest{
		BalanceMutez: 300,
		Destination:  "tz1Treasury",
	})
	if !errors.Is(err, marketerrors.ErrNotAdmin) {
		t.Fatalf("stranger checkout err = %v, want ErrNotAdmin", err)
	}

	resp, err := module.Handler.CheckoutHandler(ctx, "tz1Admin", 0, markethttp.CheckoutRequest{
		BalanceMutez: 300,
		Destination:  "tz1Treasury",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if resp.AmountMutez != 300 || resp.Destination != "tz1Treasury" {
		t.Fatalf("checkout response = %+v", resp)
	}
}
