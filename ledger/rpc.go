package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
)

// RPC implements Query, Submitter and StatusQuery over Solana JSON-RPC.
type RPC struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	logger     *slog.Logger
}

// RPCOption configures an RPC.
type RPCOption func(*RPC) error

// NewRPC creates an RPC against endpoint. Commitment defaults to confirmed.
func NewRPC(endpoint string, opts ...RPCOption) (*RPC, error) {
	r := &RPC{
		commitment: rpc.CommitmentConfirmed,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.client == nil {
		if endpoint == "" {
			return nil, fmt.Errorf("%w: rpc endpoint cannot be empty", assetkit.ErrInvalidNetwork)
		}
		r.client = rpc.New(endpoint)
	}
	return r, nil
}

// WithCommitment sets the commitment used for reads.
func WithCommitment(commitment rpc.CommitmentType) RPCOption {
	return func(r *RPC) error {
		switch commitment {
		case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
			r.commitment = commitment
			return nil
		default:
			return fmt.Errorf("unsupported commitment %q", commitment)
		}
	}
}

// WithRPCClient uses an existing client instead of dialing endpoint.
func WithRPCClient(client *rpc.Client) RPCOption {
	return func(r *RPC) error {
		r.client = client
		return nil
	}
}

// WithLogger sets the logger for rejected submissions.
func WithLogger(logger *slog.Logger) RPCOption {
	return func(r *RPC) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// GetAccountInfo implements Query.
func (r *RPC) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*AccountInfo, error) {
	out, err := r.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: r.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}

	return &AccountInfo{
		Address:    address,
		Owner:      out.Value.Owner,
		Lamports:   out.Value.Lamports,
		Data:       out.GetBinary(),
		Executable: out.Value.Executable,
	}, nil
}

// GetTokenAccountsByOwner implements Query.
func (r *RPC) GetTokenAccountsByOwner(ctx context.Context, owner, programID solana.PublicKey) ([]KeyedAccount, error) {
	out, err := r.client.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: r.commitment,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts of %s: %w", owner, err)
	}

	accounts := make([]KeyedAccount, 0, len(out.Value))
	for _, ta := range out.Value {
		if ta == nil {
			continue
		}
		var data []byte
		if ta.Account.Data != nil {
			data = ta.Account.Data.GetBinary()
		}
		accounts = append(accounts, KeyedAccount{
			Address: ta.Pubkey,
			Account: AccountInfo{
				Address:    ta.Pubkey,
				Owner:      ta.Account.Owner,
				Lamports:   ta.Account.Lamports,
				Data:       data,
				Executable: ta.Account.Executable,
			},
		})
	}
	return accounts, nil
}

// GetLatestChainTip implements Query.
func (r *RPC) GetLatestChainTip(ctx context.Context) (assetkit.ChainTip, error) {
	out, err := r.client.GetLatestBlockhash(ctx, r.commitment)
	if err != nil {
		return assetkit.ChainTip{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return assetkit.ChainTip{}, fmt.Errorf("failed to get latest blockhash: empty response")
	}
	return assetkit.ChainTip{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

// GetMinimumBalanceForRentExemption implements Query.
func (r *RPC) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := r.client.GetMinimumBalanceForRentExemption(ctx, size, r.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption for %d bytes: %w", size, err)
	}
	return lamports, nil
}

// Submit implements Submitter. Preflight runs at the configured commitment,
// so most rejections surface here rather than after confirmation.
func (r *RPC) Submit(ctx context.Context, payload string) (solana.Signature, error) {
	sig, err := r.client.SendEncodedTransactionWithOpts(ctx, payload, rpc.TransactionOpts{
		PreflightCommitment: r.commitment,
	})
	if err != nil {
		rejection := ClassifyRejection(err)
		r.logger.Warn("transaction rejected", "error", err, "kind", rejection.Kind)
		return solana.Signature{}, rejection
	}
	return sig, nil
}

// SignatureStatus implements StatusQuery.
func (r *RPC) SignatureStatus(ctx context.Context, signature solana.Signature) (*SignatureStatus, error) {
	out, err := r.client.GetSignatureStatuses(ctx, true, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get status of %s: %w", signature, err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	status := out.Value[0]
	return &SignatureStatus{
		Slot:               status.Slot,
		ConfirmationStatus: status.ConfirmationStatus,
		Err:                status.Err,
	}, nil
}

var (
	insufficientMarkers = []string{
		"insufficient funds",
		"insufficient lamports",
		"attempt to debit an account but found no record of a prior credit",
	}

	// SPL token error 1 is InsufficientFunds.
	tokenInsufficientFunds = regexp.MustCompile(`custom program error: 0x1\b`)
)

// ClassifyRejection maps a ledger rejection message to ErrInsufficientBalance
// or ErrLedgerRejected.
func ClassifyRejection(err error) *assetkit.LedgerError {
	msg := err.Error()
	lower := strings.ToLower(msg)

	kind := assetkit.ErrLedgerRejected
	if tokenInsufficientFunds.MatchString(lower) {
		kind = assetkit.ErrInsufficientBalance
	}
	for _, marker := range insufficientMarkers {
		if strings.Contains(lower, marker) {
			kind = assetkit.ErrInsufficientBalance
			break
		}
	}
	return &assetkit.LedgerError{Kind: kind, Message: msg}
}
