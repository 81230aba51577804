package commands

import (
	"context"
	"log/slog"
	"time"

	application "fatcow/contexts/market-core/marketplace-service/application"
	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/feesplit"
)

type UpdateFeesCommand struct {
	Caller                 string
	AttachedMutez          uint64
	ListingFeeMutez        uint64
	MinterRoyaltyPermille  uint64
	CreatorRoyaltyPermille uint64
	CommissionPermille     uint64
	Donations              []feesplit.Line
}

type UpdateFeeRecipientsCommand struct {
	Caller                  string
	AttachedMutez           uint64
	MinterRoyaltyRecipient  string
	CreatorRoyaltyRecipient string
	CommissionRecipient     string
}

// SettingsUseCase covers administrator fee configuration: the rates and the
// recipients change independently, both admin-only and value neutral.
type SettingsUseCase struct {
	Settings ports.SettingsRepository
	Admin    ports.AdminGuard
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (u SettingsUseCase) UpdateFees(ctx context.Context, cmd UpdateFeesCommand) (entities.Settings, error) {
	settings, err := u.guard(ctx, cmd.Caller, cmd.AttachedMutez)
	if err != nil {
		return entities.Settings{}, err
	}

	settings.ListingFeeMutez = cmd.ListingFeeMutez
	settings.MinterRoyalty.RatePermille = cmd.MinterRoyaltyPermille
	settings.CreatorRoyalty.RatePermille = cmd.CreatorRoyaltyPermille
	settings.Commission.RatePermille = cmd.CommissionPermille
	settings.Donations = append([]feesplit.Line(nil), cmd.Donations...)
	settings.UpdatedAt = u.now()
	if err := settings.Validate(); err != nil {
		return entities.Settings{}, err
	}

	if err := u.Settings.SaveSettings(ctx, settings); err != nil {
		return entities.Settings{}, err
	}
	application.ResolveLogger(u.Logger).Info("marketplace fees updated",
		"event", "market_fees_updated",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"listing_fee_mutez", settings.ListingFeeMutez,
		"commission_permille", settings.Commission.RatePermille,
	)
	return settings, nil
}

func (u SettingsUseCase) UpdateFeeRecipients(
	ctx context.Context,
	cmd UpdateFeeRecipientsCommand,
) (entities.Settings, error) {
	settings, err := u.guard(ctx, cmd.Caller, cmd.AttachedMutez)
	if err != nil {
		return entities.Settings{}, err
	}

	if cmd.MinterRoyaltyRecipient != "" {
		settings.MinterRoyalty.Recipient = cmd.MinterRoyaltyRecipient
	}
	if cmd.CreatorRoyaltyRecipient != "" {
		settings.CreatorRoyalty.Recipient = cmd.CreatorRoyaltyRecipient
	}
	if cmd.CommissionRecipient != "" {
		settings.Commission.Recipient = cmd.CommissionRecipient
	}
	settings.UpdatedAt = u.now()
	if err := settings.Validate(); err != nil {
		return entities.Settings{}, err
	}

	if err := u.Settings.SaveSettings(ctx, settings); err != nil {
		return entities.Settings{}, err
	}
	application.ResolveLogger(u.Logger).Info("marketplace fee recipients updated",
		"event", "market_fee_recipients_updated",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"commission_recipient", settings.Commission.Recipient,
	)
	return settings, nil
}

func (u SettingsUseCase) GetSettings(ctx context.Context) (entities.Settings, error) {
	return u.Settings.GetSettings(ctx)
}

func (u SettingsUseCase) guard(ctx context.Context, caller string, attachedMutez uint64) (entities.Settings, error) {
	if attachedMutez != 0 {
		return entities.Settings{}, domainerrors.ErrTezTransfer
	}
	if caller == "" {
		return entities.Settings{}, domainerrors.ErrInvalidInput
	}
	isAdmin, err := u.Admin.IsAdministrator(ctx, caller)
	if err != nil {
		return entities.Settings{}, err
	}
	if !isAdmin {
		return entities.Settings{}, domainerrors.ErrNotAdmin
	}
	return u.Settings.GetSettings(ctx)
}

func (u SettingsUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
