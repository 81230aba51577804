package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	feeerrors "fatcow/contexts/finance-core/fee-distribution-engine/domain/errors"
	feehttp "fatcow/contexts/finance-core/fee-distribution-engine/transport/http"
)

func (s *Server) handleConfigurePolicy(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeFeeError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req feehttp.ConfigurePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.fees.Handler.ConfigurePolicyHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.fees.Handler.GetPolicyHandler(r.Context())
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterShare(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeFeeError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req feehttp.RegisterShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.fees.Handler.RegisterShareHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	resp, err := s.fees.Handler.ListSharesHandler(r.Context())
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req feehttp.DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.fees.Handler.DistributeHandler(r.Context(), r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDistributions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePageParams(r)
	resp, err := s.fees.Handler.ListDistributionsHandler(r.Context(), limit, offset)
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreviewDistribution(w http.ResponseWriter, r *http.Request) {
	amount, err := parseQueryID(r.URL.Query().Get("amount"))
	if err != nil {
		writeFeeError(w, http.StatusBadRequest, "invalid_amount", "amount must be an integer")
		return
	}
	resp, err := s.fees.Handler.PreviewHandler(r.Context(), amount)
	if err != nil {
		writeFeeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFeeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feeerrors.ErrNotAdmin):
		writeFeeError(w, http.StatusForbidden, "DIST_NOT_ADMIN", err.Error())
	case errors.Is(err, feeerrors.ErrWrongRates):
		writeFeeError(w, http.StatusBadRequest, "DIST_WRONG_RATES", err.Error())
	case errors.Is(err, feeerrors.ErrTezTransfer):
		writeFeeError(w, http.StatusBadRequest, "DIST_TEZ_TRANSFER", err.Error())
	case errors.Is(err, feeerrors.ErrNotFound), errors.Is(err, feeerrors.ErrShareNotFound):
		writeFeeError(w, http.StatusNotFound, "DIST_NOT_FOUND", err.Error())
	case errors.Is(err, feeerrors.ErrIdempotencyKeyMissing):
		writeFeeError(w, http.StatusBadRequest, "DIST_IDEMPOTENCY_KEY_REQUIRED", err.Error())
	case errors.Is(err, feeerrors.ErrIdempotencyConflict):
		writeFeeError(w, http.StatusConflict, "DIST_IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, feeerrors.ErrInvalidInput):
		writeFeeError(w, http.StatusBadRequest, "DIST_INVALID_INPUT", err.Error())
	default:
		writeFeeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeFeeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, feehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
