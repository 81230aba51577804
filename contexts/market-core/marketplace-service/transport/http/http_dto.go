package httptransport

type FeeLineDTO struct {
	Recipient    string `json:"recipient"`
	RatePermille uint64 `json:"rate_permille"`
}

type ListingDTO struct {
	ListingID     uint64 `json:"listing_id"`
	LedgerAddress string `json:"ledger_address"`
	TokenID       uint64 `json:"token_id"`
	Seller        string `json:"seller"`
	Buyer         string `json:"buyer,omitempty"`
	PriceMutez    uint64 `json:"price_mutez"`
	State         string `json:"state"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type CreateListingRequest struct {
	LedgerAddress string `json:"ledger_address"`
	TokenID       uint64 `json:"token_id"`
	PriceMutez    uint64 `json:"price_mutez"`
}

type CreateListingResponse struct {
	Item ListingDTO `json:"item"`
}

type CancelListingResponse struct {
	Item ListingDTO `json:"item"`
}

type PurchaseListingResponse struct {
	Item     ListingDTO `json:"item"`
	Replayed bool       `json:"replayed"`
}

type CheckoutRequest struct {
	BalanceMutez uint64 `json:"balance_mutez"`
	Destination  string `json:"destination"`
}

type CheckoutResponse struct {
	EventID     string `json:"event_id"`
	AmountMutez uint64 `json:"amount_mutez"`
	Destination string `json:"destination"`
}

type SettingsDTO struct {
	ListingFeeMutez uint64       `json:"listing_fee_mutez"`
	MinterRoyalty   FeeLineDTO   `json:"minter_royalty"`
	CreatorRoyalty  FeeLineDTO   `json:"creator_royalty"`
	Commission      FeeLineDTO   `json:"commission"`
	Donations       []FeeLineDTO `json:"donations,omitempty"`
	UpdatedAt       string       `json:"updated_at"`
}

type UpdateFeesRequest struct {
	ListingFeeMutez        uint64       `json:"listing_fee_mutez"`
	MinterRoyaltyPermille  uint64       `json:"minter_royalty_permille"`
	CreatorRoyaltyPermille uint64       `json:"creator_royalty_permille"`
	CommissionPermille     uint64       `json:"commission_permille"`
	Donations              []FeeLineDTO `json:"donations,omitempty"`
}

type UpdateFeeRecipientsRequest struct {
	MinterRoyaltyRecipient  string `json:"minter_royalty_recipient,omitempty"`
	CreatorRoyaltyRecipient string `json:"creator_royalty_recipient,omitempty"`
	CommissionRecipient     string `json:"commission_recipient,omitempty"`
}

type SettingsResponse struct {
	Item SettingsDTO `json:"item"`
}

type GetListingResponse struct {
	Item ListingDTO `json:"item"`
}

type ListUserListingsResponse struct {
	Items []ListingDTO `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
