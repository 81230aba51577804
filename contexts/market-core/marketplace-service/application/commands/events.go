package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"fatcow/contexts/market-core/marketplace-service/ports"
)

const (
	listingCreatedEventType    = "market.listing.created"
	listingSoldEventType       = "market.listing.sold"
	listingCancelledEventType  = "market.listing.cancelled"
	checkoutEventType          = "market.checkout.completed"
	transferRequestedEventType = "ledger.transfer.requested"
	paymentRequestedEventType  = "payment.requested"
)

// newMarketEnvelope builds canonical envelopes for marketplace effects. All
// trade effects partition on the listing id so they replay in order.
func newMarketEnvelope(
	eventID string,
	eventType string,
	listingID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "marketplace-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "listing_id",
		PartitionKey:     strconv.FormatUint(listingID, 10),
		Data:             payload,
	}, nil
}

// transferRequestEnvelope queues a ledger transfer executed on the named
// operator's authority once the local write commits.
func transferRequestEnvelope(
	idGen ports.IDGenerator,
	ctx context.Context,
	listingID uint64,
	operator string,
	from string,
	to string,
	tokenID uint64,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return newMarketEnvelope(eventID, transferRequestedEventType, listingID, occurredAt, map[string]any{
		"operator": operator,
		"from_":    from,
		"to_":      to,
		"token_id": tokenID,
		"amount":   1,
	})
}

// paymentRequestEnvelope queues one outbound payout.
func paymentRequestEnvelope(
	idGen ports.IDGenerator,
	ctx context.Context,
	listingID uint64,
	recipient string,
	amountMutez uint64,
	reason string,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return newMarketEnvelope(eventID, paymentRequestedEventType, listingID, occurredAt, map[string]any{
		"recipient":    recipient,
		"amount_mutez": amountMutez,
		"reason":       reason,
		"listing_id":   listingID,
	})
}
