package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fatcow/contexts/market-core/marketplace-service/application/commands"
	"fatcow/contexts/market-core/marketplace-service/application/queries"
	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	httptransport "fatcow/contexts/market-core/marketplace-service/transport/http"
	"fatcow/internal/shared/feesplit"
)

type Handler struct {
	Create   commands.CreateListingUseCase
	Cancel   commands.CancelListingUseCase
	Purchase commands.PurchaseListingUseCase
	Checkout commands.CheckoutUseCase
	Settings commands.SettingsUseCase

	GetListing       queries.GetListingUseCase
	ListUserListings queries.ListUserListingsUseCase

	Logger *slog.Logger
}

// CreateListingHandler godoc
// @Summary Create a listing
// @Description Opens a fixed-price listing; the attached amount must equal the listing fee and the token is pulled into escrow.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header int true "Attached amount in mutez"
// @Param request body httptransport.CreateListingRequest true "Listing payload"
// @Success 201 {object} httptransport.CreateListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /market/listings [post]
func (h Handler) CreateListingHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.CreateListingRequest,
) (httptransport.CreateListingResponse, error) {
	result, err := h.Create.Execute(ctx, commands.CreateListingCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		LedgerAddress: req.LedgerAddress,
		TokenID:       req.TokenID,
		PriceMutez:    req.PriceMutez,
	})
	if err != nil {
		return httptransport.CreateListingResponse{}, err
	}
	return httptransport.CreateListingResponse{Item: listingDTO(result.Listing)}, nil
}

// CancelListingHandler godoc
// @Summary Cancel a listing
// @Description Seller deactivates an open listing; the escrowed token returns, the listing fee does not.
// @Tags marketplace
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param id path int true "Listing id"
// @Success 200 {object} httptransport.CancelListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /market/listings/{id}/cancel [post]
func (h Handler) CancelListingHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	listingID uint64,
) (httptransport.CancelListingResponse, error) {
	result, err := h.Cancel.Execute(ctx, commands.CancelListingCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		ListingID:     listingID,
	})
	if err != nil {
		return httptransport.CancelListingResponse{}, err
	}
	return httptransport.CancelListingResponse{Item: listingDTO(result.Listing)}, nil
}

// PurchaseListingHandler godoc
// @Summary Purchase a listing
// @Description Buyer pays the exact price; the token leaves escrow and every fee line gets its cut. Safe to retry with the same Idempotency-Key.
// @Tags marketplace
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header int true "Attached amount in mutez"
// @Param Idempotency-Key header string true "Purchase idempotency key"
// @Param id path int true "Listing id"
// @Success 200 {object} httptransport.PurchaseListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /market/listings/{id}/purchase [post]
func (h Handler) PurchaseListingHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	idempotencyKey string,
	listingID uint64,
) (httptransport.PurchaseListingResponse, error) {
	result, err := h.Purchase.Execute(ctx, idempotencyKey, commands.PurchaseListingCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		ListingID:     listingID,
	})
	if err != nil {
		return httptransport.PurchaseListingResponse{}, err
	}
	return httptransport.PurchaseListingResponse{
		Item:     listingDTO(result.Listing),
		Replayed: result.Replayed,
	}, nil
}

// CheckoutHandler godoc
// @Summary Check out the retained balance
// @Description Administrator drains the accumulated listing fees to a destination address.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.CheckoutRequest true "Checkout payload"
// @Success 202 {object} httptransport.CheckoutResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /market/checkout [post]
func (h Handler) CheckoutHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.CheckoutRequest,
) (httptransport.CheckoutResponse, error) {
	result, err := h.Checkout.Execute(ctx, commands.CheckoutCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		BalanceMutez:  req.BalanceMutez,
		Destination:   req.Destination,
	})
	if err != nil {
		return httptransport.CheckoutResponse{}, err
	}
	return httptransport.CheckoutResponse{
		EventID:     result.EventID,
		AmountMutez: result.AmountMutez,
		Destination: result.Destination,
	}, nil
}

// UpdateFeesHandler godoc
// @Summary Update fee rates
// @Description Administrator sets the listing fee and the proportional fee rates; each line is capped at 250 permille.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.UpdateFeesRequest true "Fee configuration"
// @Success 200 {object} httptransport.SettingsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /market/fees [put]
func (h Handler) UpdateFeesHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.UpdateFeesRequest,
) (httptransport.SettingsResponse, error) {
	donations := make([]feesplit.Line, 0, len(req.Donations))
	for _, line := range req.Donations {
		donations = append(donations, feesplit.Line{
			Recipient:    line.Recipient,
			RatePermille: line.RatePermille,
		})
	}
	settings, err := h.Settings.UpdateFees(ctx, commands.UpdateFeesCommand{
		Caller:                 caller,
		AttachedMutez:          attachedMutez,
		ListingFeeMutez:        req.ListingFeeMutez,
		MinterRoyaltyPermille:  req.MinterRoyaltyPermille,
		CreatorRoyaltyPermille: req.CreatorRoyaltyPermille,
		CommissionPermille:     req.CommissionPermille,
		Donations:              donations,
	})
	if err != nil {
		return httptransport.SettingsResponse{}, err
	}
	return httptransport.SettingsResponse{Item: settingsDTO(settings)}, nil
}

// UpdateFeeRecipientsHandler godoc
// @Summary Update fee recipients
// @Description Administrator redirects the named fee lines; empty fields keep the current recipient.
// @Tags marketplace
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.UpdateFeeRecipientsRequest true "Recipient configuration"
// @Success 200 {object} httptransport.SettingsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /market/fees/recipients [put]
func (h Handler) UpdateFeeRecipientsHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.UpdateFeeRecipientsRequest,
) (httptransport.SettingsResponse, error) {
	settings, err := h.Settings.UpdateFeeRecipients(ctx, commands.UpdateFeeRecipientsCommand{
		Caller:                  caller,
		AttachedMutez:           attachedMutez,
		MinterRoyaltyRecipient:  req.MinterRoyaltyRecipient,
		CreatorRoyaltyRecipient: req.CreatorRoyaltyRecipient,
		CommissionRecipient:     req.CommissionRecipient,
	})
	if err != nil {
		return httptransport.SettingsResponse{}, err
	}
	return httptransport.SettingsResponse{Item: settingsDTO(settings)}, nil
}

// GetSettingsHandler godoc
// @Summary Get the fee configuration
// @Tags marketplace
// @Produce json
// @Success 200 {object} httptransport.SettingsResponse
// @Router /market/fees [get]
func (h Handler) GetSettingsHandler(ctx context.Context) (httptransport.SettingsResponse, error) {
	settings, err := h.Settings.GetSettings(ctx)
	if err != nil {
		return httptransport.SettingsResponse{}, err
	}
	return httptransport.SettingsResponse{Item: settingsDTO(settings)}, nil
}

// GetListingHandler godoc
// @Summary Get a listing
// @Tags marketplace
// @Produce json
// @Param id path int true "Listing id"
// @Success 200 {object} httptransport.GetListingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /market/listings/{id} [get]
func (h Handler) GetListingHandler(
	ctx context.Context,
	listingID uint64,
) (httptransport.GetListingResponse, error) {
	result, err := h.GetListing.Execute(ctx, queries.GetListingQuery{ListingID: listingID})
	if err != nil {
		return httptransport.GetListingResponse{}, err
	}
	return httptransport.GetListingResponse{Item: listingDTO(result.Listing)}, nil
}

// ListUserListingsHandler godoc
// @Summary List a user's listings
// @Description Listings the user touched as seller or buyer, newest first.
// @Tags marketplace
// @Produce json
// @Param user query string true "User address"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} httptransport.ListUserListingsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /market/listings/by-user [get]
func (h Handler) ListUserListingsHandler(
	ctx context.Context,
	user string,
	limit int,
	offset int,
) (httptransport.ListUserListingsResponse, error) {
	result, err := h.ListUserListings.Execute(ctx, queries.ListUserListingsQuery{
		User:   user,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.ListUserListingsResponse{}, err
	}
	items := make([]httptransport.ListingDTO, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, listingDTO(listing))
	}
	return httptransport.ListUserListingsResponse{Items: items}, nil
}

func listingDTO(listing entities.Listing) httptransport.ListingDTO {
	return httptransport.ListingDTO{
		ListingID:     listing.ListingID,
		LedgerAddress: listing.LedgerAddress,
		TokenID:       listing.TokenID,
		Seller:        listing.Seller,
		Buyer:         listing.Buyer,
		PriceMutez:    listing.PriceMutez,
		State:         string(listing.State),
		CreatedAt:     listing.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     listing.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func settingsDTO(settings entities.Settings) httptransport.SettingsDTO {
	donations := make([]httptransport.FeeLineDTO, 0, len(settings.Donations))
	for _, line := range settings.Donations {
		donations = append(donations, feeLineDTO(line))
	}
	return httptransport.SettingsDTO{
		ListingFeeMutez: settings.ListingFeeMutez,
		MinterRoyalty:   feeLineDTO(settings.MinterRoyalty),
		CreatorRoyalty:  feeLineDTO(settings.CreatorRoyalty),
		Commission:      feeLineDTO(settings.Commission),
		Donations:       donations,
		UpdatedAt:       settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func feeLineDTO(line feesplit.Line) httptransport.FeeLineDTO {
	return httptransport.FeeLineDTO{
		Recipient:    line.Recipient,
		RatePermille: line.RatePermille,
	}
}
