package entities

import (
	"time"

	domainerrors "fatcow/contexts/governance/administration-service/domain/errors"
)

// Administration is the single persisted governance record for a deployment.
// ProposedAdministrator is empty while no handoff is pending.
type Administration struct {
	Administrator         string
	ProposedAdministrator string
	Paused                bool
	UpdatedAt             time.Time
}

func NewAdministration(administrator string, at time.Time) (Administration, error) {
	if administrator == "" {
		return Administration{}, domainerrors.ErrInvalidInput
	}
	return Administration{
		Administrator: administrator,
		UpdatedAt:     at.UTC(),
	}, nil
}

// Propose records addr as the pending successor, overwriting any earlier
// proposal that was never accepted.
func (a *Administration) Propose(addr string, at time.Time) error {
	if addr == "" {
		return domainerrors.ErrInvalidInput
	}
	a.ProposedAdministrator = addr
	a.UpdatedAt = at.UTC()
	return nil
}

// Accept promotes caller to administrator. Only the pending proposed
// administrator may accept; the proposal is cleared on success.
func (a *Administration) Accept(caller string, at time.Time) error {
	if a.ProposedAdministrator == "" {
		return domainerrors.ErrNoNewAdmin
	}
	if caller != a.ProposedAdministrator {
		return domainerrors.ErrNotProposedAdmin
	}
	a.Administrator = caller
	a.ProposedAdministrator = ""
	a.UpdatedAt = at.UTC()
	return nil
}

func (a *Administration) SetPaused(paused bool, at time.Time) {
	a.Paused = paused
	a.UpdatedAt = at.UTC()
}
