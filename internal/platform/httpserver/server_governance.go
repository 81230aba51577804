package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	governanceerrors "fatcow/contexts/governance/administration-service/domain/errors"
	governancehttp "fatcow/contexts/governance/administration-service/transport/http"
)

func (s *Server) handleProposeAdministrator(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req governancehttp.ProposeAdministratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.ProposeAdministratorHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptAdministrator(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	resp, err := s.governance.Handler.AcceptAdministratorHandler(r.Context(), callerAddress(r), attached)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPause(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req governancehttp.SetPauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.SetPauseHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAdministration(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetAdministrationHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrNotAdmin):
		writeGovernanceError(w, http.StatusForbidden, "MP_NOT_ADMIN", err.Error())
	case errors.Is(err, governanceerrors.ErrNoNewAdmin):
		writeGovernanceError(w, http.StatusConflict, "MP_NO_NEW_ADMIN", err.Error())
	case errors.Is(err, governanceerrors.ErrNotProposedAdmin):
		writeGovernanceError(w, http.StatusForbidden, "MP_NOT_PROPOSED_ADMIN", err.Error())
	case errors.Is(err, governanceerrors.ErrTezTransfer):
		writeGovernanceError(w, http.StatusBadRequest, "MP_TEZ_TRANSFER", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidInput):
		writeGovernanceError(w, http.StatusBadRequest, "MP_INVALID_INPUT", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
