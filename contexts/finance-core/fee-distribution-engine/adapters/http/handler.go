package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fatcow/contexts/finance-core/fee-distribution-engine/application"
	"fatcow/contexts/finance-core/fee-distribution-engine/ports"
	httptransport "fatcow/contexts/finance-core/fee-distribution-engine/transport/http"
	"fatcow/internal/shared/feesplit"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// ConfigurePolicyHandler godoc
// @Summary Configure the distribution policy
// @Description Administrator replaces the proportional split lines and residual recipient.
// @Tags fees
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header string false "Attached amount in mutez"
// @Param request body httptransport.ConfigurePolicyRequest true "Policy payload"
// @Success 200 {object} httptransport.PolicyResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /fees/policy [put]
func (h Handler) ConfigurePolicyHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.ConfigurePolicyRequest,
) (httptransport.PolicyResponse, error) {
	lines := make([]feesplit.Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, feesplit.Line{
			Recipient:    line.Recipient,
			RatePermille: line.RatePermille,
		})
	}
	policy, err := h.Service.ConfigurePolicy(ctx, application.ConfigurePolicyCommand{
		Caller:            caller,
		AttachedMutez:     attachedMutez,
		Lines:             lines,
		ResidualRecipient: req.ResidualRecipient,
	})
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(policy), nil
}

// GetPolicyHandler godoc
// @Summary Get the distribution policy
// @Tags fees
// @Produce json
// @Success 200 {object} httptransport.PolicyResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /fees/policy [get]
func (h Handler) GetPolicyHandler(ctx context.Context) (httptransport.PolicyResponse, error) {
	policy, err := h.Service.GetPolicy(ctx)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(policy), nil
}

// RegisterShareHandler godoc
// @Summary Register a revenue share
// @Tags fees
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header string false "Attached amount in mutez"
// @Param request body httptransport.RegisterShareRequest true "Share payload"
// @Success 201 {object} httptransport.ShareResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /fees/shares [post]
func (h Handler) RegisterShareHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.RegisterShareRequest,
) (httptransport.ShareResponse, error) {
	share, err := h.Service.RegisterShare(ctx, application.RegisterShareCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		Address:       req.Address,
		RatePermille:  req.RatePermille,
	})
	if err != nil {
		return httptransport.ShareResponse{}, err
	}
	return httptransport.ShareResponse{Item: shareDTO(share)}, nil
}

// ListSharesHandler godoc
// @Summary List revenue shares
// @Tags fees
// @Produce json
// @Success 200 {object} httptransport.ListSharesResponse
// @Router /fees/shares [get]
func (h Handler) ListSharesHandler(ctx context.Context) (httptransport.ListSharesResponse, error) {
	shares, err := h.Service.ListShares(ctx)
	if err != nil {
		return httptransport.ListSharesResponse{}, err
	}
	items := make([]httptransport.ShareDTO, 0, len(shares))
	for _, share := range shares {
		items = append(items, shareDTO(share))
	}
	return httptransport.ListSharesResponse{Items: items}, nil
}

// DistributeHandler godoc
// @Summary Record a fee distribution
// @Description Splits the amount per the current policy; idempotent on the Idempotency-Key header.
// @Tags fees
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body httptransport.DistributeRequest true "Distribution payload"
// @Success 200 {object} httptransport.DistributeResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fees/distributions [post]
func (h Handler) DistributeHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.DistributeRequest,
) (httptransport.DistributeResponse, error) {
	distribution, replayed, err := h.Service.Distribute(ctx, idempotencyKey, application.DistributeInput{
		AmountMutez:   req.AmountMutez,
		SourceEventID: req.SourceEventID,
	})
	if err != nil {
		return httptransport.DistributeResponse{}, err
	}
	return httptransport.DistributeResponse{
		Replayed: replayed,
		Item:     distributionDTO(distribution),
	}, nil
}

// PreviewHandler godoc
// @Summary Preview a distribution
// @Tags fees
// @Produce json
// @Param amount query int true "Amount in mutez"
// @Success 200 {object} httptransport.PreviewResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /fees/distributions/preview [get]
func (h Handler) PreviewHandler(ctx context.Context, amountMutez uint64) (httptransport.PreviewResponse, error) {
	distribution, err := h.Service.PreviewDistribution(ctx, amountMutez)
	if err != nil {
		return httptransport.PreviewResponse{}, err
	}
	return httptransport.PreviewResponse{Item: distributionDTO(distribution)}, nil
}

// ListDistributionsHandler godoc
// @Summary List recorded distributions
// @Tags fees
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} httptransport.ListDistributionsResponse
// @Router /fees/distributions [get]
func (h Handler) ListDistributionsHandler(
	ctx context.Context,
	limit int,
	offset int,
) (httptransport.ListDistributionsResponse, error) {
	distributions, err := h.Service.ListHistory(ctx, limit, offset)
	if err != nil {
		return httptransport.ListDistributionsResponse{}, err
	}
	items := make([]httptransport.DistributionDTO, 0, len(distributions))
	for _, distribution := range distributions {
		items = append(items, distributionDTO(distribution))
	}
	return httptransport.ListDistributionsResponse{Items: items}, nil
}

func policyResponse(policy ports.Policy) httptransport.PolicyResponse {
	lines := make([]httptransport.LineDTO, 0, len(policy.Lines))
	for _, line := range policy.Lines {
		lines = append(lines, httptransport.LineDTO{
			Recipient:    line.Recipient,
			RatePermille: line.RatePermille,
		})
	}
	return httptransport.PolicyResponse{
		Lines:             lines,
		ResidualRecipient: policy.ResidualRecipient,
	}
}

func shareDTO(share ports.Share) httptransport.ShareDTO {
	return httptransport.ShareDTO{
		Address:      share.Address,
		RatePermille: share.RatePermille,
		RegisteredAt: share.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

func distributionDTO(distribution ports.Distribution) httptransport.DistributionDTO {
	payouts := make([]httptransport.PayoutDTO, 0, len(distribution.Payouts))
	for _, payout := range distribution.Payouts {
		payouts = append(payouts, httptransport.PayoutDTO{
			Recipient:   payout.Recipient,
			AmountMutez: payout.AmountMutez,
		})
	}
	return httptransport.DistributionDTO{
		DistributionID: distribution.DistributionID,
		AmountMutez:    distribution.AmountMutez,
		Payouts:        payouts,
		ResidualMutez:  distribution.ResidualMutez,
		ResidualTo:     distribution.ResidualTo,
		DistributedAt:  distribution.DistributedAt.UTC().Format(time.RFC3339),
	}
}
