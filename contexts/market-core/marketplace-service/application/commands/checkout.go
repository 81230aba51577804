package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "fatcow/contexts/market-core/marketplace-service/application"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/feesplit"
)

type CheckoutCommand struct {
	Caller        string
	AttachedMutez uint64
	BalanceMutez  uint64
	Destination   string
}

type CheckoutResult struct {
	EventID     string
	AmountMutez uint64
	Destination string
}

// CheckoutUseCase drains the marketplace's retained balance, which is the
// accumulated listing fees. The drain is split proportionally: each registered
// revenue share gets its cut, the commission line gets its cut, and whatever
// remains goes to the destination the administrator names.
type CheckoutUseCase struct {
	Settings ports.SettingsRepository
	Shares   ports.RevenueShareProvider
	Admin    ports.AdminGuard
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (u CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.AttachedMutez != 0 {
		return CheckoutResult{}, domainerrors.ErrTezTransfer
	}
	if cmd.Caller == "" || cmd.Destination == "" || cmd.BalanceMutez == 0 {
		return CheckoutResult{}, domainerrors.ErrInvalidInput
	}

	isAdmin, err := u.Admin.IsAdministrator(ctx, cmd.Caller)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !isAdmin {
		return CheckoutResult{}, domainerrors.ErrNotAdmin
	}

	lines, reasons, err := u.drainLines(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}
	payouts, residual, err := feesplit.Distribute(cmd.BalanceMutez, lines)
	if err != nil {
		if errors.Is(err, feesplit.ErrRateOverflow) {
			return CheckoutResult{}, domainerrors.ErrWrongFees
		}
		return CheckoutResult{}, err
	}

	now := u.now()
	survivors := make([]string, 0, len(reasons))
	for i, line := range lines {
		if feesplit.Share(cmd.BalanceMutez, line.RatePermille) > 0 {
			survivors = append(survivors, reasons[i])
		}
	}
	for i, payout := range payouts {
		reason := "fee"
		if i < len(survivors) {
			reason = survivors[i]
		}
		payment, err := paymentRequestEnvelope(u.IDGen, ctx, 0, payout.Recipient, payout.AmountMutez, reason, now)
		if err != nil {
			return CheckoutResult{}, err
		}
		if err := u.Outbox.AppendOutbox(ctx, payment); err != nil {
			return CheckoutResult{}, err
		}
	}
	if residual > 0 {
		remainder, err := paymentRequestEnvelope(u.IDGen, ctx, 0, cmd.Destination, residual, "checkout", now)
		if err != nil {
			return CheckoutResult{}, err
		}
		if err := u.Outbox.AppendOutbox(ctx, remainder); err != nil {
			return CheckoutResult{}, err
		}
	}

	completedID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}
	completed, err := newMarketEnvelope(completedID, checkoutEventType, 0, now, map[string]any{
		"destination":    cmd.Destination,
		"amount_mutez":   cmd.BalanceMutez,
		"payout_count":   len(payouts),
		"residual_mutez": residual,
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := u.Outbox.AppendOutbox(ctx, completed); err != nil {
		return CheckoutResult{}, err
	}

	logger.Info("marketplace balance checked out",
		"event", "market_checkout_completed",
		"module", "market-core/marketplace-service",
		"layer", "application",
		"destination", cmd.Destination,
		"amount_mutez", cmd.BalanceMutez,
		"payout_count", len(payouts),
		"residual_mutez", residual,
	)
	return CheckoutResult{
		EventID:     completed.EventID,
		AmountMutez: cmd.BalanceMutez,
		Destination: cmd.Destination,
	}, nil
}

// drainLines assembles the split applied to the drained balance: every
// registered revenue share first, then the configured commission line.
func (u CheckoutUseCase) drainLines(ctx context.Context) ([]feesplit.Line, []string, error) {
	lines := make([]feesplit.Line, 0, 4)
	reasons := make([]string, 0, 4)
	if u.Shares != nil {
		shareLines, err := u.Shares.RevenueLines(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, line := range shareLines {
			if line.RatePermille == 0 {
				continue
			}
			lines = append(lines, line)
			reasons = append(reasons, "revenue_share")
		}
	}
	if u.Settings != nil {
		settings, err := u.Settings.GetSettings(ctx)
		if err != nil {
			return nil, nil, err
		}
		if settings.Commission.RatePermille > 0 {
			lines = append(lines, settings.Commission)
			reasons = append(reasons, "commission")
		}
	}
	return lines, reasons, nil
}

func (u CheckoutUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
