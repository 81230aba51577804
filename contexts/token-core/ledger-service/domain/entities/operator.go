package entities

import domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"

// OperatorKey is the (owner, operator, token) authorization triple. Presence
// in the registry grants Operator the right to move TokenID on behalf of
// Owner; grants are independent per token, there is no wildcard grant.
type OperatorKey struct {
	Owner    string
	Operator string
	TokenID  uint64
}

func NewOperatorKey(owner string, operator string, tokenID uint64) (OperatorKey, error) {
	if owner == "" || operator == "" {
		return OperatorKey{}, domainerrors.ErrInvalidInput
	}
	return OperatorKey{
		Owner:    owner,
		Operator: operator,
		TokenID:  tokenID,
	}, nil
}

type OperatorUpdateKind string

const (
	OperatorAdd    OperatorUpdateKind = "add_operator"
	OperatorRemove OperatorUpdateKind = "remove_operator"
)

// OperatorUpdate is one action of an update_operators batch.
type OperatorUpdate struct {
	Kind OperatorUpdateKind
	Key  OperatorKey
}

func (u OperatorUpdate) Validate() error {
	if u.Kind != OperatorAdd && u.Kind != OperatorRemove {
		return domainerrors.ErrInvalidInput
	}
	if u.Key.Owner == "" || u.Key.Operator == "" {
		return domainerrors.ErrInvalidInput
	}
	return nil
}
