package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	feedistributionengine "fatcow/contexts/finance-core/fee-distribution-engine"
	administrationservice "fatcow/contexts/governance/administration-service"
	marketplaceservice "fatcow/contexts/market-core/marketplace-service"
	ledgerservice "fatcow/contexts/token-core/ledger-service"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "fatcow/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	ledger      ledgerservice.Module
	marketplace marketplaceservice.Module
	governance  administrationservice.Module
	fees        feedistributionengine.Module
}

func New(
	ledger ledgerservice.Module,
	marketplace marketplaceservice.Module,
	governance administrationservice.Module,
	fees feedistributionengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		ledger:      ledger,
		marketplace: marketplace,
		governance:  governance,
		fees:        fees,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /ledger/tokens", s.handleMint)
	s.mux.HandleFunc("GET /ledger/tokens", s.handleListTokens)
	s.mux.HandleFunc("GET /ledger/tokens/{id}", s.handleGetToken)
	s.mux.HandleFunc("GET /ledger/tokens/{id}/balance", s.handleGetBalance)
	s.mux.HandleFunc("POST /ledger/transfers", s.handleTransfer)
	s.mux.HandleFunc("POST /ledger/balance-of", s.handleBalanceOf)
	s.mux.HandleFunc("POST /ledger/operators", s.handleUpdateOperators)
	s.mux.HandleFunc("GET /ledger/operators/check", s.handleIsOperator)

	s.mux.HandleFunc("POST /market/listings", s.handleCreateListing)
	s.mux.HandleFunc("GET /market/listings/by-user", s.handleListUserListings)
	s.mux.HandleFunc("GET /market/listings/{id}", s.handleGetListing)
	s.mux.HandleFunc("POST /market/listings/{id}/cancel", s.handleCancelListing)
	s.mux.HandleFunc("POST /market/listings/{id}/purchase", s.handlePurchaseListing)
	s.mux.HandleFunc("POST /market/checkout", s.handleCheckout)
	s.mux.HandleFunc("PUT /market/fees", s.handleUpdateFees)
	s.mux.HandleFunc("GET /market/fees", s.handleGetMarketSettings)
	s.mux.HandleFunc("PUT /market/fees/recipients", s.handleUpdateFeeRecipients)

	s.mux.HandleFunc("POST /governance/administrator/propose", s.handleProposeAdministrator)
	s.mux.HandleFunc("POST /governance/administrator/accept", s.handleAcceptAdministrator)
	s.mux.HandleFunc("POST /governance/pause", s.handleSetPause)
	s.mux.HandleFunc("GET /governance/administration", s.handleGetAdministration)

	s.mux.HandleFunc("PUT /fees/policy", s.handleConfigurePolicy)
	s.mux.HandleFunc("GET /fees/policy", s.handleGetPolicy)
	s.mux.HandleFunc("POST /fees/shares", s.handleRegisterShare)
	s.mux.HandleFunc("GET /fees/shares", s.handleListShares)
	s.mux.HandleFunc("POST /fees/distributions", s.handleDistribute)
	s.mux.HandleFunc("GET /fees/distributions", s.handleListDistributions)
	s.mux.HandleFunc("GET /fees/distributions/preview", s.handlePreviewDistribution)
}

// Mux exposes the routing table for in-process tests.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// callerAddress reads the invocation sender. Operations that require a caller
// reject the request themselves when it is empty.
func callerAddress(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Caller-Address"))
}

// attachedMutez reads the funds carried by the invocation; absent means zero.
func attachedMutez(r *http.Request) (uint64, bool) {
	raw := strings.TrimSpace(r.Header.Get("X-Attached-Mutez"))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parsePageParams(r *http.Request) (int, int) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	return limit, offset
}

func parsePathID(r *http.Request, name string) (uint64, bool) {
	value, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parseQueryID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}
