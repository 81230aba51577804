package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	ledgerhttp "fatcow/contexts/token-core/ledger-service/transport/http"
)

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.MintHandler(r.Context(), callerAddress(r), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.TransferHandler(r.Context(), callerAddress(r), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.BalanceOfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.BalanceOfHandler(r.Context(), callerAddress(r), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleUpdateOperators(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.UpdateOperatorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.UpdateOperatorsHandler(r.Context(), callerAddress(r), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parsePathID(r, "id")
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_token_id", "token id must be an integer")
		return
	}
	resp, err := s.ledger.Handler.GetTokenHandler(r.Context(), tokenID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePageParams(r)
	resp, err := s.ledger.Handler.ListTokensHandler(r.Context(), limit, offset)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIsOperator(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tokenID, err := parseQueryID(query.Get("token_id"))
	if err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_token_id", "token_id must be an integer")
		return
	}
	resp, err := s.ledger.Handler.IsOperatorHandler(
		r.Context(),
		query.Get("owner"),
		query.Get("operator"),
		tokenID,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parsePathID(r, "id")
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_token_id", "token id must be an integer")
		return
	}
	resp, err := s.ledger.Handler.GetBalanceHandler(r.Context(), r.URL.Query().Get("owner"), tokenID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrNotAdmin):
		writeLedgerError(w, http.StatusForbidden, "FA2_NOT_ADMIN", err.Error())
	case errors.Is(err, ledgererrors.ErrMintPaused):
		writeLedgerError(w, http.StatusForbidden, "MINT_PAUSED", err.Error())
	case errors.Is(err, ledgererrors.ErrTokenUndefined):
		writeLedgerError(w, http.StatusNotFound, "FA2_TOKEN_UNDEFINED", err.Error())
	case errors.Is(err, ledgererrors.ErrNotOperator):
		writeLedgerError(w, http.StatusForbidden, "FA2_NOT_OPERATOR", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writeLedgerError(w, http.StatusBadRequest, "FA2_INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, ledgererrors.ErrNotOwner):
		writeLedgerError(w, http.StatusForbidden, "FA2_NOT_OWNER", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidInput):
		writeLedgerError(w, http.StatusBadRequest, "FA2_INVALID_INPUT", err.Error())
	case errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "FA2_WRITE_CONFLICT", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
