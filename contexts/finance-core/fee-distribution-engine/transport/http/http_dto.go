package httptransport

type LineDTO struct {
	Recipient    string `json:"recipient"`
	RatePermille uint64 `json:"rate_permille"`
}

type PayoutDTO struct {
	Recipient   string `json:"recipient"`
	AmountMutez uint64 `json:"amount_mutez"`
}

type ConfigurePolicyRequest struct {
	Lines             []LineDTO `json:"lines"`
	ResidualRecipient string    `json:"residual_recipient"`
}

type PolicyResponse struct {
	Lines             []LineDTO `json:"lines"`
	ResidualRecipient string    `json:"residual_recipient"`
}

type RegisterShareRequest struct {
	Address      string `json:"address"`
	RatePermille uint64 `json:"rate_permille"`
}

type ShareDTO struct {
	Address      string `json:"address"`
	RatePermille uint64 `json:"rate_permille"`
	RegisteredAt string `json:"registered_at"`
}

type ShareResponse struct {
	Item ShareDTO `json:"item"`
}

type ListSharesResponse struct {
	Items []ShareDTO `json:"items"`
}

type DistributeRequest struct {
	AmountMutez   uint64 `json:"amount_mutez"`
	SourceEventID string `json:"source_event_id,omitempty"`
}

type DistributionDTO struct {
	DistributionID string      `json:"distribution_id,omitempty"`
	AmountMutez    uint64      `json:"amount_mutez"`
	Payouts        []PayoutDTO `json:"payouts"`
	ResidualMutez  uint64      `json:"residual_mutez"`
	ResidualTo     string      `json:"residual_to"`
	DistributedAt  string      `json:"distributed_at"`
}

type DistributeResponse struct {
	Replayed bool            `json:"replayed"`
	Item     DistributionDTO `json:"item"`
}

type PreviewResponse struct {
	Item DistributionDTO `json:"item"`
}

type ListDistributionsResponse struct {
	Items []DistributionDTO `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
