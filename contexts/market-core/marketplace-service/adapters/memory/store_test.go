package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
)

func newListing(t *testing.T, id uint64, seller string, price uint64) entities.Listing {
	t.Helper()
	listing, err := entities.NewListing(id, "KT1Ledger", id, seller, price, time.Now())
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	return listing
}

func TestCreateListingAdvancesCounter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.CreateListingWithOutbox(ctx, newListing(t, 0, "tz1Seller", 500), nil); err != nil {
		t.Fatalf("create listing 0: %v", err)
	}
	next, err := store.NextListingID(ctx)
	if err != nil {
		t.Fatalf("next listing id: %v", err)
	}
	if next != 1 {
		t.Fatalf("next listing id = %d, want 1", next)
	}

	// A stale id means a concurrent create won the race.
	err = store.CreateListingWithOutbox(ctx, newListing(t, 0, "tz1Other", 500), nil)
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("stale create err = %v, want ErrConflict", err)
	}
}

func TestUpdateListingRequiresExistingRow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.UpdateListingWithOutbox(ctx, newListing(t, 7, "tz1Seller", 500), nil)
	if !errors.Is(err, domainerrors.ErrListingNotFound) {
		t.Fatalf("update missing err = %v, want ErrListingNotFound", err)
	}
}

func TestListUserListingsFiltersAndOrders(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := uint64(0); i < 3; i++ {
		seller := "tz1Alice"
		if i == 1 {
			seller = "tz1Bob"
		}
		if err := store.CreateListingWithOutbox(ctx, newListing(t, i, seller, 500), nil); err != nil {
			t.Fatalf("create listing %d: %v", i, err)
		}
	}

	items, err := store.ListUserListings(ctx, "tz1Alice", 50, 0)
	if err != nil {
		t.Fatalf("list user listings: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ListingID != 2 || items[1].ListingID != 0 {
		t.Fatalf("order = [%d %d], want newest first [2 0]", items[0].ListingID, items[1].ListingID)
	}
}

func TestOutboxPreservesAppendOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := ports.EventEnvelope{EventID: "evt-1", EventType: "ledger.transfer.requested"}
	second := ports.EventEnvelope{EventID: "evt-2", EventType: "market.listing.created"}
	if err := store.CreateListingWithOutbox(ctx, newListing(t, 0, "tz1Seller", 500),
		[]ports.EventEnvelope{first, second}); err != nil {
		t.Fatalf("create listing: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	if pending[0].OutboxID != "evt-1" || pending[1].OutboxID != "evt-2" {
		t.Fatalf("order = [%s %s], want [evt-1 evt-2]", pending[0].OutboxID, pending[1].OutboxID)
	}

	if err := store.MarkOutboxSent(ctx, "evt-1", time.Now()); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	pending, err = store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending after mark: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("pending after mark = %v, want only evt-2", pending)
	}
}

func TestIdempotencyRecordExpires(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	record := ports.IdempotencyRecord{
		Key:             "purchase-1",
		RequestHash:     "abc",
		ResponsePayload: []byte(`{"ok":true}`),
		ExpiresAt:       now.Add(time.Hour),
	}
	if err := store.PutRecord(ctx, record); err != nil {
		t.Fatalf("put record: %v", err)
	}

	got, found, err := store.GetRecord(ctx, "purchase-1", now)
	if err != nil || !found {
		t.Fatalf("get record = (%v, %v, %v), want found", got, found, err)
	}
	if got.RequestHash != "abc" {
		t.Fatalf("request hash = %q, want abc", got.RequestHash)
	}

	_, found, err = store.GetRecord(ctx, "purchase-1", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("get expired record: %v", err)
	}
	if found {
		t.Fatalf("expired record still found")
	}
}
