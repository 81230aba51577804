package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fatcow/contexts/market-core/marketplace-service/adapters/memory"
	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/feesplit"
)

const escrowAddress = "KT1MarketplaceEscrow"

type stubAdminGuard struct {
	administrator string
	paused        bool
}

func (s stubAdminGuard) IsAdministrator(_ context.Context, caller string) (bool, error) {
	return caller == s.administrator, nil
}

func (s stubAdminGuard) IsPaused(_ context.Context) (bool, error) {
	return s.paused, nil
}

type transferPayload struct {
	Operator string `json:"operator"`
	From     string `json:"from_"`
	To       string `json:"to_"`
	TokenID  uint64 `json:"token_id"`
	Amount   uint64 `json:"amount"`
}

type paymentPayload struct {
	Recipient   string `json:"recipient"`
	AmountMutez uint64 `json:"amount_mutez"`
	Reason      string `json:"reason"`
}

func saveSettings(t *testing.T, store *memory.Store, settings entities.Settings) {
	t.Helper()
	if err := store.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

func createListing(t *testing.T, store *memory.Store, seller string, price uint64) entities.Listing {
	t.Helper()
	useCase := CreateListingUseCase{
		Listings:      store,
		Settings:      store,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
	}
	settings, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	result, err := useCase.Execute(context.Background(), CreateListingCommand{
		Caller:        seller,
		AttachedMutez: settings.ListingFeeMutez,
		LedgerAddress: "KT1Ledger",
		TokenID:       7,
		PriceMutez:    price,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return result.Listing
}

func pendingEnvelopes(t *testing.T, store *memory.Store) []ports.EventEnvelope {
	t.Helper()
	rows, err := store.ListPendingOutbox(context.Background(), 100)
	if err != nil {
		t.Fatalf("list pending outbox: %v", err)
	}
	envelopes := make([]ports.EventEnvelope, 0, len(rows))
	for _, row := range rows {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			t.Fatalf("decode envelope %s: %v", row.OutboxID, err)
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes
}

func TestCreateListingRequiresExactFee(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{ListingFeeMutez: 100})
	useCase := CreateListingUseCase{
		Listings:      store,
		Settings:      store,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
	}

	_, err := useCase.Execute(context.Background(), CreateListingCommand{
		Caller:        "tz1Seller",
		AttachedMutez: 50,
		LedgerAddress: "KT1Ledger",
		TokenID:       7,
		PriceMutez:    1_000,
	})
	if !errors.Is(err, domainerrors.ErrWrongTezAmount) {
		t.Fatalf("underpaid fee err = %v, want ErrWrongTezAmount", err)
	}
	_, err = useCase.Execute(context.Background(), CreateListingCommand{
		Caller:        "tz1Seller",
		AttachedMutez: 150,
		LedgerAddress: "KT1Ledger",
		TokenID:       7,
		PriceMutez:    1_000,
	})
	if !errors.Is(err, domainerrors.ErrWrongTezAmount) {
		t.Fatalf("overpaid fee err = %v, want ErrWrongTezAmount", err)
	}
}

func TestCreateListingQueuesEscrowPull(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	if listing.State != entities.ListingStateCreated {
		t.Fatalf("state = %s, want created", listing.State)
	}

	envelopes := pendingEnvelopes(t, store)
	if len(envelopes) != 2 {
		t.Fatalf("len(envelopes) = %d, want 2", len(envelopes))
	}
	if envelopes[0].EventType != "ledger.transfer.requested" {
		t.Fatalf("first event type = %s, want ledger.transfer.requested", envelopes[0].EventType)
	}
	var transfer transferPayload
	if err := json.Unmarshal(envelopes[0].Data, &transfer); err != nil {
		t.Fatalf("decode transfer payload: %v", err)
	}
	// The seller moves their own token, so the seller is the operator.
	if transfer.Operator != "tz1Seller" || transfer.From != "tz1Seller" || transfer.To != escrowAddress {
		t.Fatalf("escrow pull = %+v, want seller -> escrow on seller authority", transfer)
	}
	if transfer.Amount != 1 {
		t.Fatalf("transfer amount = %d, want 1", transfer.Amount)
	}
	if envelopes[1].EventType != "market.listing.created" {
		t.Fatalf("second event type = %s, want market.listing.created", envelopes[1].EventType)
	}
}

func TestCancelListingIsSellerOnlyAndValueNeutral(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	useCase := CancelListingUseCase{
		Listings:      store,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
	}

	_, err := useCase.Execute(context.Background(), CancelListingCommand{
		Caller:        "tz1Seller",
		AttachedMutez: 5,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrTezTransfer) {
		t.Fatalf("attached cancel err = %v, want ErrTezTransfer", err)
	}
	_, err = useCase.Execute(context.Background(), CancelListingCommand{
		Caller:    "tz1Stranger",
		ListingID: listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrNotSeller) {
		t.Fatalf("stranger cancel err = %v, want ErrNotSeller", err)
	}

	result, err := useCase.Execute(context.Background(), CancelListingCommand{
		Caller:    "tz1Seller",
		ListingID: listing.ListingID,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if result.Listing.State != entities.ListingStateInactive {
		t.Fatalf("state = %s, want inactive", result.Listing.State)
	}

	envelopes := pendingEnvelopes(t, store)
	// Two from create, two from cancel.
	if len(envelopes) != 4 {
		t.Fatalf("len(envelopes) = %d, want 4", len(envelopes))
	}
	var escrowReturn transferPayload
	if err := json.Unmarshal(envelopes[2].Data, &escrowReturn); err != nil {
		t.Fatalf("decode escrow return: %v", err)
	}
	if escrowReturn.Operator != escrowAddress || escrowReturn.From != escrowAddress || escrowReturn.To != "tz1Seller" {
		t.Fatalf("escrow return = %+v, want escrow -> seller on marketplace authority", escrowReturn)
	}
	if envelopes[3].EventType != "market.listing.cancelled" {
		t.Fatalf("last event type = %s, want market.listing.cancelled", envelopes[3].EventType)
	}

	// A cancelled listing cannot cancel again.
	_, err = useCase.Execute(context.Background(), CancelListingCommand{
		Caller:    "tz1Seller",
		ListingID: listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrListingNotActive) {
		t.Fatalf("repeat cancel err = %v, want ErrListingNotActive", err)
	}
}

func newPurchaseUseCase(store *memory.Store, admin ports.AdminGuard) PurchaseListingUseCase {
	return PurchaseListingUseCase{
		Listings:      store,
		Settings:      store,
		Admin:         admin,
		Idempotency:   store,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
	}
}

func TestPurchasePauseGate(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin", paused: true})

	_, err := useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
		Caller:        "tz1Buyer",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrCollectsPaused) {
		t.Fatalf("paused purchase err = %v, want ErrCollectsPaused", err)
	}
}

func TestPurchaseRequiresExactPrice(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin"})

	for _, attached := range []uint64{999, 1_001} {
		_, err := useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
			Caller:        "tz1Buyer",
			AttachedMutez: attached,
			ListingID:     listing.ListingID,
		})
		if !errors.Is(err, domainerrors.ErrWrongTezAmount) {
			t.Fatalf("attached %d err = %v, want ErrWrongTezAmount", attached, err)
		}
	}
}

func TestPurchaseRejectsSellerAsBuyer(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin"})

	_, err := useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
		Caller:        "tz1Seller",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrIsSeller) {
		t.Fatalf("self purchase err = %v, want ErrIsSeller", err)
	}
}

func TestPurchaseSplitsPriceAcrossFeeLines(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{
		MinterRoyalty:  feesplit.Line{Recipient: "tz1Minter", RatePermille: 100},
		CreatorRoyalty: feesplit.Line{Recipient: "tz1Creator", RatePermille: 50},
		Commission:     feesplit.Line{Recipient: "tz1Platform", RatePermille: 25},
	})
	listing := createListing(t, store, "tz1Seller", 1_003)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin"})

	result, err := useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
		Caller:        "tz1Buyer",
		AttachedMutez: 1_003,
		ListingID:     listing.ListingID,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Listing.State != entities.ListingStateSold || result.Listing.Buyer != "tz1Buyer" {
		t.Fatalf("listing after sale = %+v, want sold to tz1Buyer", result.Listing)
	}

	envelopes := pendingEnvelopes(t, store)
	// Two from create, then: token out, three fee payouts, seller remainder,
	// sold event.
	if len(envelopes) != 8 {
		t.Fatalf("len(envelopes) = %d, want 8", len(envelopes))
	}
	sale := envelopes[2:]

	var tokenOut transferPayload
	if err := json.Unmarshal(sale[0].Data, &tokenOut); err != nil {
		t.Fatalf("decode token out: %v", err)
	}
	if tokenOut.Operator != escrowAddress || tokenOut.From != escrowAddress || tokenOut.To != "tz1Buyer" {
		t.Fatalf("token out = %+v, want escrow -> buyer on marketplace authority", tokenOut)
	}

	wantPayouts := []paymentPayload{
		{Recipient: "tz1Minter", AmountMutez: 100, Reason: "minter_royalty"},
		{Recipient: "tz1Creator", AmountMutez: 50, Reason: "creator_royalty"},
		{Recipient: "tz1Platform", AmountMutez: 25, Reason: "commission"},
		{Recipient: "tz1Seller", AmountMutez: 828, Reason: "sale_proceeds"},
	}
	var paidTotal uint64
	for i, want := range wantPayouts {
		envelope := sale[1+i]
		if envelope.EventType != "payment.requested" {
			t.Fatalf("sale[%d] event type = %s, want payment.requested", 1+i, envelope.EventType)
		}
		var payout paymentPayload
		if err := json.Unmarshal(envelope.Data, &payout); err != nil {
			t.Fatalf("decode payout %d: %v", i, err)
		}
		if payout != want {
			t.Fatalf("payout %d = %+v, want %+v", i, payout, want)
		}
		paidTotal += payout.AmountMutez
	}
	// Every mutez of the price ends up somewhere.
	if paidTotal != listing.PriceMutez {
		t.Fatalf("paid total = %d, want %d", paidTotal, listing.PriceMutez)
	}
	if sale[len(sale)-1].EventType != "market.listing.sold" {
		t.Fatalf("last event type = %s, want market.listing.sold", sale[len(sale)-1].EventType)
	}

	// A sold listing cannot sell again.
	_, err = useCase.Execute(context.Background(), "key-2", PurchaseListingCommand{
		Caller:        "tz1Other",
		AttachedMutez: 1_003,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrListingNotActive) {
		t.Fatalf("repeat purchase err = %v, want ErrListingNotActive", err)
	}
}

func TestPurchaseSplitStaysExactOnLargePrices(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{
		Commission: feesplit.Line{Recipient: "tz1Platform", RatePermille: 250},
	})
	price := uint64(1) << 60
	listing := createListing(t, store, "tz1Seller", price)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin"})

	_, err := useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
		Caller:        "tz1Buyer",
		AttachedMutez: price,
		ListingID:     listing.ListingID,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	envelopes := pendingEnvelopes(t, store)
	// Two from create, then: token out, commission, seller remainder, sold.
	if len(envelopes) != 6 {
		t.Fatalf("len(envelopes) = %d, want 6", len(envelopes))
	}
	var commission paymentPayload
	if err := json.Unmarshal(envelopes[3].Data, &commission); err != nil {
		t.Fatalf("decode commission: %v", err)
	}
	wantCommission := uint64(1) << 58 // floor(2^60 * 250 / 1000)
	if commission.Recipient != "tz1Platform" || commission.AmountMutez != wantCommission {
		t.Fatalf("commission = %+v, want %d to tz1Platform", commission, wantCommission)
	}
	var proceeds paymentPayload
	if err := json.Unmarshal(envelopes[4].Data, &proceeds); err != nil {
		t.Fatalf("decode proceeds: %v", err)
	}
	if proceeds.Recipient != "tz1Seller" || proceeds.AmountMutez != price-wantCommission {
		t.Fatalf("proceeds = %+v, want %d to tz1Seller", proceeds, price-wantCommission)
	}
}

func TestPurchaseReplaysOnSameKey(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	useCase := newPurchaseUseCase(store, stubAdminGuard{administrator: "tz1Admin"})

	cmd := PurchaseListingCommand{
		Caller:        "tz1Buyer",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	}
	first, err := useCase.Execute(context.Background(), "key-1", cmd)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if first.Replayed {
		t.Fatalf("first purchase marked replayed")
	}
	outboxBefore := len(pendingEnvelopes(t, store))

	second, err := useCase.Execute(context.Background(), "key-1", cmd)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("replay not marked replayed")
	}
	if second.Listing.Buyer != first.Listing.Buyer || second.Listing.State != first.Listing.State {
		t.Fatalf("replayed listing = %+v, want %+v", second.Listing, first.Listing)
	}
	if got := len(pendingEnvelopes(t, store)); got != outboxBefore {
		t.Fatalf("replay queued new envelopes: %d -> %d", outboxBefore, got)
	}

	// The same key with a different request is a conflict, not a replay.
	_, err = useCase.Execute(context.Background(), "key-1", PurchaseListingCommand{
		Caller:        "tz1Other",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("conflicting replay err = %v, want ErrIdempotencyConflict", err)
	}
}

func TestCheckoutRequiresAdministrator(t *testing.T) {
	store := memory.NewStore()
	useCase := CheckoutUseCase{
		Admin:  stubAdminGuard{administrator: "tz1Admin"},
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}

	_, err := useCase.Execute(context.Background(), CheckoutCommand{
		Caller:       "tz1Stranger",
		BalanceMutez: 500,
		Destination:  "tz1Treasury",
	})
	if !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("stranger checkout err = %v, want ErrNotAdmin", err)
	}

	result, err := useCase.Execute(context.Background(), CheckoutCommand{
		Caller:       "tz1Admin",
		BalanceMutez: 500,
		Destination:  "tz1Treasury",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.AmountMutez != 500 || result.Destination != "tz1Treasury" {
		t.Fatalf("checkout result = %+v", result)
	}

	envelopes := pendingEnvelopes(t, store)
	if len(envelopes) != 2 {
		t.Fatalf("len(envelopes) = %d, want 2", len(envelopes))
	}
	var payment paymentPayload
	if err := json.Unmarshal(envelopes[0].Data, &payment); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if payment.Recipient != "tz1Treasury" || payment.AmountMutez != 500 || payment.Reason != "checkout" {
		t.Fatalf("payment = %+v", payment)
	}
	if envelopes[1].EventType != "market.checkout.completed" {
		t.Fatalf("second event type = %s, want market.checkout.completed", envelopes[1].EventType)
	}
}

type recordFailingStore struct {
	*memory.Store
	failures int
}

func (s *recordFailingStore) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("idempotency store unavailable")
	}
	return s.Store.PutRecord(ctx, record)
}

func TestPurchaseRetriesAfterLostIdempotencyRecord(t *testing.T) {
	store := memory.NewStore()
	listing := createListing(t, store, "tz1Seller", 1_000)
	flaky := &recordFailingStore{Store: store, failures: 1}
	useCase := PurchaseListingUseCase{
		Listings:      store,
		Settings:      store,
		Admin:         stubAdminGuard{administrator: "tz1Admin"},
		Idempotency:   flaky,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
	}

	cmd := PurchaseListingCommand{
		Caller:        "tz1Buyer",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	}
	// The sale commits, then storing the idempotency record fails.
	if _, err := useCase.Execute(context.Background(), "key-1", cmd); err == nil {
		t.Fatalf("expected record write failure to surface")
	}
	outboxAfterSale := len(pendingEnvelopes(t, store))

	// The retry on the same key finds the row already sold to this caller
	// and replays instead of failing on listing state.
	result, err := useCase.Execute(context.Background(), "key-1", cmd)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !result.Replayed {
		t.Fatalf("retry not marked replayed")
	}
	if result.Listing.State != entities.ListingStateSold || result.Listing.Buyer != "tz1Buyer" {
		t.Fatalf("retried listing = %+v, want sold to tz1Buyer", result.Listing)
	}
	if got := len(pendingEnvelopes(t, store)); got != outboxAfterSale {
		t.Fatalf("retry queued new envelopes: %d -> %d", outboxAfterSale, got)
	}

	// A different buyer is a genuine double sale, not a retry.
	_, err = useCase.Execute(context.Background(), "key-2", PurchaseListingCommand{
		Caller:        "tz1Other",
		AttachedMutez: 1_000,
		ListingID:     listing.ListingID,
	})
	if !errors.Is(err, domainerrors.ErrListingNotActive) {
		t.Fatalf("other buyer err = %v, want ErrListingNotActive", err)
	}
}

type stubShareProvider struct {
	lines []feesplit.Line
}

func (s stubShareProvider) RevenueLines(_ context.Context) ([]feesplit.Line, error) {
	return s.lines, nil
}

func TestCheckoutSplitsRevenueSharesAndCommission(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{
		Commission: feesplit.Line{Recipient: "tz1Platform", RatePermille: 250},
	})
	useCase := CheckoutUseCase{
		Settings: store,
		Shares: stubShareProvider{lines: []feesplit.Line{
			{Recipient: "tz1Artist", RatePermille: 100},
		}},
		Admin:  stubAdminGuard{administrator: "tz1Admin"},
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}

	result, err := useCase.Execute(context.Background(), CheckoutCommand{
		Caller:       "tz1Admin",
		BalanceMutez: 1_000,
		Destination:  "tz1Treasury",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.AmountMutez != 1_000 {
		t.Fatalf("checkout amount = %d, want 1000", result.AmountMutez)
	}

	envelopes := pendingEnvelopes(t, store)
	// Revenue share, commission, remainder, completed event.
	if len(envelopes) != 4 {
		t.Fatalf("len(envelopes) = %d, want 4", len(envelopes))
	}
	wantPayments := []paymentPayload{
		{Recipient: "tz1Artist", AmountMutez: 100, Reason: "revenue_share"},
		{Recipient: "tz1Platform", AmountMutez: 250, Reason: "commission"},
		{Recipient: "tz1Treasury", AmountMutez: 650, Reason: "checkout"},
	}
	var paidTotal uint64
	for i, want := range wantPayments {
		if envelopes[i].EventType != "payment.requested" {
			t.Fatalf("envelope %d type = %s, want payment.requested", i, envelopes[i].EventType)
		}
		var payment paymentPayload
		if err := json.Unmarshal(envelopes[i].Data, &payment); err != nil {
			t.Fatalf("decode payment %d: %v", i, err)
		}
		if payment != want {
			t.Fatalf("payment %d = %+v, want %+v", i, payment, want)
		}
		paidTotal += payment.AmountMutez
	}
	// The drained balance is conserved across the split.
	if paidTotal != 1_000 {
		t.Fatalf("paid total = %d, want 1000", paidTotal)
	}
	if envelopes[3].EventType != "market.checkout.completed" {
		t.Fatalf("last event type = %s, want market.checkout.completed", envelopes[3].EventType)
	}
}

func TestUpdateFeesRejectsRateOverCap(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{
		Commission: feesplit.Line{Recipient: "tz1Platform"},
	})
	useCase := SettingsUseCase{
		Settings: store,
		Admin:    stubAdminGuard{administrator: "tz1Admin"},
		Clock:    store,
	}

	_, err := useCase.UpdateFees(context.Background(), UpdateFeesCommand{
		Caller:             "tz1Admin",
		CommissionPermille: entities.MaxFeeRatePermille + 1,
	})
	if !errors.Is(err, domainerrors.ErrWrongFees) {
		t.Fatalf("over-cap rate err = %v, want ErrWrongFees", err)
	}

	_, err = useCase.UpdateFees(context.Background(), UpdateFeesCommand{
		Caller:             "tz1Stranger",
		CommissionPermille: 25,
	})
	if !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("stranger update err = %v, want ErrNotAdmin", err)
	}

	settings, err := useCase.UpdateFees(context.Background(), UpdateFeesCommand{
		Caller:             "tz1Admin",
		ListingFeeMutez:    100,
		CommissionPermille: 25,
	})
	if err != nil {
		t.Fatalf("update fees: %v", err)
	}
	if settings.Commission.RatePermille != 25 {
		t.Fatalf("commission = %d, want 25", settings.Commission.RatePermille)
	}
	if settings.Commission.Recipient != "tz1Platform" {
		t.Fatalf("commission recipient = %q, want tz1Platform kept", settings.Commission.Recipient)
	}
}

func TestUpdateFeeRecipientsKeepsUnsetFields(t *testing.T) {
	store := memory.NewStore()
	saveSettings(t, store, entities.Settings{
		Commission:    feesplit.Line{Recipient: "tz1Old", RatePermille: 25},
		MinterRoyalty: feesplit.Line{Recipient: "tz1Minter", RatePermille: 50},
	})
	useCase := SettingsUseCase{
		Settings: store,
		Admin:    stubAdminGuard{administrator: "tz1Admin"},
		Clock:    store,
	}

	settings, err := useCase.UpdateFeeRecipients(context.Background(), UpdateFeeRecipientsCommand{
		Caller:              "tz1Admin",
		CommissionRecipient: "tz1New",
	})
	if err != nil {
		t.Fatalf("update recipients: %v", err)
	}
	if settings.Commission.Recipient != "tz1New" {
		t.Fatalf("commission recipient = %q, want tz1New", settings.Commission.Recipient)
	}
	if settings.MinterRoyalty.Recipient != "tz1Minter" {
		t.Fatalf("minter recipient = %q, want unchanged tz1Minter", settings.MinterRoyalty.Recipient)
	}
}
