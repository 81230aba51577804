package application

import (
	"context"
	"log/slog"
	"time"

	"fatcow/contexts/governance/administration-service/domain/entities"
	domainerrors "fatcow/contexts/governance/administration-service/domain/errors"
	"fatcow/contexts/governance/administration-service/ports"
)

// Service runs the governance operations. Every mutating operation is
// value-neutral: a non-zero attached amount fails before anything else so
// administration can never move value incidentally.
type Service struct {
	Repo   ports.AdministrationRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

type ProposeAdministratorCommand struct {
	Caller        string
	AttachedMutez uint64
	Proposed      string
}

type AcceptAdministratorCommand struct {
	Caller        string
	AttachedMutez uint64
}

type SetPauseCommand struct {
	Caller        string
	AttachedMutez uint64
	Paused        bool
}

func (s Service) ProposeAdministrator(ctx context.Context, cmd ProposeAdministratorCommand) error {
	if cmd.AttachedMutez != 0 {
		return domainerrors.ErrTezTransfer
	}
	if cmd.Caller == "" || cmd.Proposed == "" {
		return domainerrors.ErrInvalidInput
	}

	record, err := s.Repo.GetAdministration(ctx)
	if err != nil {
		return err
	}
	if cmd.Caller != record.Administrator {
		return domainerrors.ErrNotAdmin
	}
	if err := record.Propose(cmd.Proposed, s.now()); err != nil {
		return err
	}
	if err := s.Repo.SaveAdministration(ctx, record); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("administrator handoff proposed",
		"event", "administrator_proposed",
		"module", "governance/administration-service",
		"layer", "application",
		"administrator", record.Administrator,
		"proposed", record.ProposedAdministrator,
	)
	return nil
}

func (s Service) AcceptAdministrator(ctx context.Context, cmd AcceptAdministratorCommand) (entities.Administration, error) {
	if cmd.AttachedMutez != 0 {
		return entities.Administration{}, domainerrors.ErrTezTransfer
	}
	if cmd.Caller == "" {
		return entities.Administration{}, domainerrors.ErrInvalidInput
	}

	record, err := s.Repo.GetAdministration(ctx)
	if err != nil {
		return entities.Administration{}, err
	}
	if err := record.Accept(cmd.Caller, s.now()); err != nil {
		return entities.Administration{}, err
	}
	if err := s.Repo.SaveAdministration(ctx, record); err != nil {
		return entities.Administration{}, err
	}

	ResolveLogger(s.Logger).Info("administrator handoff accepted",
		"event", "administrator_accepted",
		"module", "governance/administration-service",
		"layer", "application",
		"administrator", record.Administrator,
	)
	return record, nil
}

func (s Service) SetPause(ctx context.Context, cmd SetPauseCommand) error {
	if cmd.AttachedMutez != 0 {
		return domainerrors.ErrTezTransfer
	}
	if cmd.Caller == "" {
		return domainerrors.ErrInvalidInput
	}

	record, err := s.Repo.GetAdministration(ctx)
	if err != nil {
		return err
	}
	if cmd.Caller != record.Administrator {
		return domainerrors.ErrNotAdmin
	}
	record.SetPaused(cmd.Paused, s.now())
	if err := s.Repo.SaveAdministration(ctx, record); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("pause flag updated",
		"event", "pause_updated",
		"module", "governance/administration-service",
		"layer", "application",
		"paused", record.Paused,
	)
	return nil
}

func (s Service) GetAdministration(ctx context.Context) (entities.Administration, error) {
	return s.Repo.GetAdministration(ctx)
}

// IsAdministrator is the guard consulted by the ledger and marketplace
// engines before any administrator-only operation.
func (s Service) IsAdministrator(ctx context.Context, caller string) (bool, error) {
	record, err := s.Repo.GetAdministration(ctx)
	if err != nil {
		return false, err
	}
	return caller != "" && caller == record.Administrator, nil
}

// IsPaused reports the pause gate state.
func (s Service) IsPaused(ctx context.Context) (bool, error) {
	record, err := s.Repo.GetAdministration(ctx)
	if err != nil {
		return false, err
	}
	return record.Paused, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
