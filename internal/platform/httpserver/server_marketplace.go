package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	marketerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	markethttp "fatcow/contexts/market-core/marketplace-service/transport/http"
)

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req markethttp.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.marketplace.Handler.CreateListingHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		// The attached amount check on create is the listing fee, and a zero
		// price is its own failure, so both get their specific codes here.
		switch {
		case errors.Is(err, marketerrors.ErrWrongTezAmount):
			writeMarketError(w, http.StatusBadRequest, "MP_WRONG_FEE", err.Error())
		case errors.Is(err, marketerrors.ErrInvalidInput) && req.PriceMutez == 0:
			writeMarketError(w, http.StatusBadRequest, "MP_WRONG_PRICE", err.Error())
		default:
			writeMarketDomainError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	listingID, ok := parsePathID(r, "id")
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_listing_id", "listing id must be an integer")
		return
	}
	resp, err := s.marketplace.Handler.CancelListingHandler(r.Context(), callerAddress(r), attached, listingID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurchaseListing(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	listingID, ok := parsePathID(r, "id")
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_listing_id", "listing id must be an integer")
		return
	}
	resp, err := s.marketplace.Handler.PurchaseListingHandler(
		r.Context(),
		callerAddress(r),
		attached,
		r.Header.Get("Idempotency-Key"),
		listingID,
	)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req markethttp.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.marketplace.Handler.CheckoutHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleUpdateFees(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req markethttp.UpdateFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.marketplace.Handler.UpdateFeesHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateFeeRecipients(w http.ResponseWriter, r *http.Request) {
	attached, ok := attachedMutez(r)
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_attached_amount", "X-Attached-Mutez must be an integer")
		return
	}
	var req markethttp.UpdateFeeRecipientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.marketplace.Handler.UpdateFeeRecipientsHandler(r.Context(), callerAddress(r), attached, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMarketSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetSettingsHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingID, ok := parsePathID(r, "id")
	if !ok {
		writeMarketError(w, http.StatusBadRequest, "invalid_listing_id", "listing id must be an integer")
		return
	}
	resp, err := s.marketplace.Handler.GetListingHandler(r.Context(), listingID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUserListings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePageParams(r)
	resp, err := s.marketplace.Handler.ListUserListingsHandler(r.Context(), r.URL.Query().Get("user"), limit, offset)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMarketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrNotAdmin):
		writeMarketError(w, http.StatusForbidden, "MP_NOT_ADMIN", err.Error())
	case errors.Is(err, marketerrors.ErrTezTransfer):
		writeMarketError(w, http.StatusBadRequest, "MP_TEZ_TRANSFER", err.Error())
	case errors.Is(err, marketerrors.ErrWrongTezAmount):
		writeMarketError(w, http.StatusBadRequest, "MP_WRONG_TEZ_AMOUNT", err.Error())
	case errors.Is(err, marketerrors.ErrCollectsPaused):
		writeMarketError(w, http.StatusForbidden, "MP_COLLECTS_PAUSED", err.Error())
	case errors.Is(err, marketerrors.ErrWrongFees):
		writeMarketError(w, http.StatusBadRequest, "MP_WRONG_FEES", err.Error())
	case errors.Is(err, marketerrors.ErrListingNotFound):
		writeMarketError(w, http.StatusNotFound, "MP_ITEM_NOT_EXISTS", err.Error())
	case errors.Is(err, marketerrors.ErrListingNotActive):
		writeMarketError(w, http.StatusConflict, "MP_WRONG_STATE", err.Error())
	case errors.Is(err, marketerrors.ErrNotSeller):
		writeMarketError(w, http.StatusForbidden, "MP_NOT_SELLER", err.Error())
	case errors.Is(err, marketerrors.ErrIsSeller):
		writeMarketError(w, http.StatusConflict, "MP_IS_SELLER", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidInput):
		writeMarketError(w, http.StatusBadRequest, "MP_INVALID_INPUT", err.Error())
	case errors.Is(err, marketerrors.ErrIdempotencyConflict):
		writeMarketError(w, http.StatusConflict, "MP_IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, marketerrors.ErrConflict):
		writeMarketError(w, http.StatusConflict, "MP_WRITE_CONFLICT", err.Error())
	default:
		writeMarketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
