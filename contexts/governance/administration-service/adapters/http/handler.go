package httpadapter

import (
	"context"
	"log/slog"

	"fatcow/contexts/governance/administration-service/application"
	httptransport "fatcow/contexts/governance/administration-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// ProposeAdministratorHandler godoc
// @Summary Propose a new administrator
// @Description Current administrator names a successor; overwrites any pending proposal.
// @Tags administration
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header string false "Attached amount in mutez"
// @Param request body httptransport.ProposeAdministratorRequest true "Proposal payload"
// @Success 200 {object} httptransport.ProposeAdministratorResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /governance/administrator/propose [post]
func (h Handler) ProposeAdministratorHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.ProposeAdministratorRequest,
) (httptransport.ProposeAdministratorResponse, error) {
	err := h.Service.ProposeAdministrator(ctx, application.ProposeAdministratorCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		Proposed:      req.Proposed,
	})
	if err != nil {
		return httptransport.ProposeAdministratorResponse{}, err
	}
	record, err := h.Service.GetAdministration(ctx)
	if err != nil {
		return httptransport.ProposeAdministratorResponse{}, err
	}
	return httptransport.ProposeAdministratorResponse{
		Administrator: record.Administrator,
		Proposed:      record.ProposedAdministrator,
	}, nil
}

// AcceptAdministratorHandler godoc
// @Summary Accept a pending administrator handoff
// @Description Proposed administrator assumes the role; proposal is cleared.
// @Tags administration
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header string false "Attached amount in mutez"
// @Success 200 {object} httptransport.AcceptAdministratorResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /governance/administrator/accept [post]
func (h Handler) AcceptAdministratorHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
) (httptransport.AcceptAdministratorResponse, error) {
	record, err := h.Service.AcceptAdministrator(ctx, application.AcceptAdministratorCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
	})
	if err != nil {
		return httptransport.AcceptAdministratorResponse{}, err
	}
	return httptransport.AcceptAdministratorResponse{
		Administrator: record.Administrator,
	}, nil
}

// SetPauseHandler godoc
// @Summary Toggle the pause gate
// @Description Administrator pauses or resumes mint and gated marketplace operations.
// @Tags administration
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param X-Attached-Mutez header string false "Attached amount in mutez"
// @Param request body httptransport.SetPauseRequest true "Pause payload"
// @Success 200 {object} httptransport.SetPauseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /governance/pause [post]
func (h Handler) SetPauseHandler(
	ctx context.Context,
	caller string,
	attachedMutez uint64,
	req httptransport.SetPauseRequest,
) (httptransport.SetPauseResponse, error) {
	err := h.Service.SetPause(ctx, application.SetPauseCommand{
		Caller:        caller,
		AttachedMutez: attachedMutez,
		Paused:        req.Paused,
	})
	if err != nil {
		return httptransport.SetPauseResponse{}, err
	}
	return httptransport.SetPauseResponse{Paused: req.Paused}, nil
}

// GetAdministrationHandler godoc
// @Summary Get the governance record
// @Description Returns administrator, pending proposal and pause state.
// @Tags administration
// @Produce json
// @Success 200 {object} httptransport.GetAdministrationResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /governance/administration [get]
func (h Handler) GetAdministrationHandler(ctx context.Context) (httptransport.GetAdministrationResponse, error) {
	record, err := h.Service.GetAdministration(ctx)
	if err != nil {
		return httptransport.GetAdministrationResponse{}, err
	}
	return httptransport.GetAdministrationResponse{
		Item: httptransport.AdministrationDTO{
			Administrator:         record.Administrator,
			ProposedAdministrator: record.ProposedAdministrator,
			Paused:                record.Paused,
		},
	}, nil
}
