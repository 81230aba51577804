package httptransport

// Transfer payload field names follow the wire convention of the asset
// interface the ledger implements, hence from_ and to_.

type TokenDTO struct {
	TokenID  uint64            `json:"token_id"`
	Owner    string            `json:"owner"`
	Metadata map[string][]byte `json:"metadata,omitempty"`
	MintedAt string            `json:"minted_at"`
}

type MintRequest struct {
	To       string            `json:"to_"`
	Metadata map[string][]byte `json:"metadata,omitempty"`
}

type MintResponse struct {
	Item TokenDTO `json:"item"`
}

type TransferTxDTO struct {
	To      string `json:"to_"`
	TokenID uint64 `json:"token_id"`
	Amount  uint64 `json:"amount"`
}

type TransferBatchDTO struct {
	From string          `json:"from_"`
	Txs  []TransferTxDTO `json:"txs"`
}

type TransferRequest struct {
	Batches []TransferBatchDTO `json:"batches"`
}

type TransferResponse struct {
	AppliedCount int `json:"applied_count"`
}

type BalanceRequestDTO struct {
	Owner   string `json:"owner"`
	TokenID uint64 `json:"token_id"`
}

type BalanceOfRequest struct {
	Requests []BalanceRequestDTO `json:"requests"`
	Callback string              `json:"callback"`
}

type BalanceOfResponse struct {
	EventID      string `json:"event_id"`
	RequestCount int    `json:"request_count"`
}

type OperatorUpdateDTO struct {
	Kind     string `json:"kind"`
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	TokenID  uint64 `json:"token_id"`
}

type UpdateOperatorsRequest struct {
	Updates []OperatorUpdateDTO `json:"updates"`
}

type UpdateOperatorsResponse struct {
	AppliedCount int `json:"applied_count"`
}

type IsOperatorResponse struct {
	Owner      string `json:"owner"`
	Operator   string `json:"operator"`
	TokenID    uint64 `json:"token_id"`
	Authorized bool   `json:"authorized"`
}

type GetTokenResponse struct {
	Item TokenDTO `json:"item"`
}

type ListTokensResponse struct {
	Items       []TokenDTO `json:"items"`
	TotalSupply uint64     `json:"total_supply"`
}

type GetBalanceResponse struct {
	Owner   string `json:"owner"`
	TokenID uint64 `json:"token_id"`
	Balance uint64 `json:"balance"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
