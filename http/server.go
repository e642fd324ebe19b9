// Package http exposes transaction construction over a JSON HTTP API.
// Signing roles are named by address and resolved through a keyring; the
// service returns signed, encoded transactions and never submits them.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/assetkit-go/client"
	"github.com/mark3labs/assetkit-go/http/internal/helpers"
	"github.com/mark3labs/assetkit-go/keypair"
	"github.com/mark3labs/assetkit-go/validation"
)

// DefaultMaxBodySize caps request bodies.
const DefaultMaxBodySize = 1 << 20

// Server routes construction requests to a client.Client.
type Server struct {
	client      *client.Client
	keys        *keypair.Keyring
	logger      *slog.Logger
	maxBodySize int64
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(size int64) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("max body size must be positive, got %d", size)
		}
		s.maxBodySize = size
		return nil
	}
}

// NewServer creates a Server signing with the handles in keys.
func NewServer(c *client.Client, keys *keypair.Keyring, opts ...Option) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if keys == nil {
		return nil, fmt.Errorf("keyring cannot be nil")
	}
	s := &Server{
		client:      c,
		keys:        keys,
		logger:      slog.Default(),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sol/transfer", handleOperation[TransferSOLRequest](s))
		r.Post("/tokens", handleOperation[CreateTokenRequest](s))
		r.Post("/tokens/mint", handleOperation[MintTokenRequest](s))
		r.Post("/tokens/transfer", handleOperation[TransferTokenRequest](s))
		r.Post("/tokens/burn", handleOperation[BurnTokenRequest](s))
		r.Post("/nfts/mint", handleOperation[MintNFTRequest](s))
		r.Post("/nfts/transfer", handleOperation[TransferNFTRequest](s))
		r.Post("/nfts/burn", handleOperation[BurnNFTRequest](s))
		r.Post("/batch", s.handleBatch)
		r.Get("/balances/{owner}", s.handleBalances)
		r.Get("/balances/{owner}/{mint}", s.handleBalance)
	})
	return r
}

// TransactionResponse is the JSON body of every successful construction request.
type TransactionResponse struct {
	Transaction          string                        `json:"transaction"`
	Signature            string                        `json:"signature"`
	Blockhash            string                        `json:"blockhash"`
	LastValidBlockHeight uint64                        `json:"lastValidBlockHeight"`
	Size                 int                           `json:"size"`
	Kind                 string                        `json:"kind"`
	Asset                string                        `json:"asset,omitempty"`
	Amount               string                        `json:"amount,omitempty"`
	Accounts             map[string]solana.PublicKey   `json:"accounts,omitempty"`
	Items                []map[string]solana.PublicKey `json:"items,omitempty"`
}

func newTransactionResponse(result *client.Result) TransactionResponse {
	resp := TransactionResponse{
		Transaction:          result.Payload,
		Signature:            result.Signature.String(),
		Blockhash:            result.ChainTip.Blockhash.String(),
		LastValidBlockHeight: result.ChainTip.LastValidBlockHeight,
		Size:                 result.Size,
		Kind:                 string(result.Kind),
		Asset:                string(result.Kind.Asset()),
		Accounts:             result.Accounts,
		Items:                result.Items,
	}
	if result.Amount != nil {
		resp.Amount = result.Amount.String()
	}
	return resp
}

func handleOperation[T operationRequest](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := s.decode(w, r, &req); err != nil {
			helpers.WriteError(w, err)
			return
		}
		op, err := req.operation(s.keys)
		if err != nil {
			helpers.WriteError(w, err)
			return
		}
		result, err := s.client.Do(r.Context(), op, req.showLog())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, newTransactionResponse(result))
	}
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	batch, err := req.batch(s.keys)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	result, err := s.client.Batch(r.Context(), batch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newTransactionResponse(result))
}

// BalancesResponse is the body of GET /v1/balances/{owner}. Amounts are in base units.
type BalancesResponse struct {
	Owner    string            `json:"owner"`
	Balances map[string]string `json:"balances"`
}

// BalanceResponse is the body of GET /v1/balances/{owner}/{mint}.
type BalanceResponse struct {
	Owner  string `json:"owner"`
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	owner, err := validation.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	balances, err := s.client.Composer().TokenBalances(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := BalancesResponse{Owner: owner.String(), Balances: make(map[string]string, len(balances))}
	for mint, amount := range balances {
		out.Balances[mint.String()] = fmt.Sprintf("%d", amount)
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := validation.ParseAddress(chi.URLParam(r, "owner"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	mint, err := validation.ParseAddress(chi.URLParam(r, "mint"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	amount, err := s.client.Composer().Balance(r.Context(), mint, owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, BalanceResponse{
		Owner:  owner.String(),
		Mint:   mint.String(),
		Amount: fmt.Sprintf("%d", amount),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", helpers.ErrBadRequest, err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := helpers.StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("construction failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	helpers.WriteError(w, err)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
