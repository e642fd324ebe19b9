// Package txbuilder signs instruction lists into legacy wire transactions.
// It never submits: the result is handed back to the caller.
package txbuilder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/encoding"
	"github.com/mark3labs/assetkit-go/instructions"
	"github.com/mark3labs/assetkit-go/ledger"
)

// Builder signs and encodes transactions, reading the chain tip from query
// when the caller does not supply one.
type Builder struct {
	query   ledger.Query
	maxSize int
	logger  *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// WithMaxSize overrides the wire size ceiling, assetkit.MaxTransactionSize by default.
func WithMaxSize(size int) Option {
	return func(b *Builder) error {
		if size <= 0 {
			return fmt.Errorf("max transaction size must be positive, got %d", size)
		}
		b.maxSize = size
		return nil
	}
}

// New creates a Builder.
func New(query ledger.Query, opts ...Option) (*Builder, error) {
	if query == nil {
		return nil, fmt.Errorf("ledger query cannot be nil")
	}
	b := &Builder{
		query:   query,
		maxSize: assetkit.MaxTransactionSize,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

type encodeConfig struct {
	tip *assetkit.ChainTip
}

// EncodeOption adjusts a single SignAndEncode call.
type EncodeOption func(*encodeConfig)

// WithChainTip binds the transaction to a pre-fetched tip instead of querying one.
func WithChainTip(tip assetkit.ChainTip) EncodeOption {
	return func(c *encodeConfig) {
		c.tip = &tip
	}
}

// SignAndEncode assembles instructions, in order, into one transaction paid
// by feePayer, signs it once per required signer and returns the base64 wire
// form. Handles in signers beyond the required set are ignored. It fails
// with assetkit.ErrMissingSignature when a required signer has no handle and
// with assetkit.ErrTransactionTooLarge when the wire form exceeds the ceiling.
// A failed chain tip query is reported as assetkit.ErrAccountResolutionFailed,
// the kind used for every unreachable query service.
func (b *Builder) SignAndEncode(ctx context.Context, feePayer solana.PublicKey, ixs []solana.Instruction, signers []assetkit.Signer, opts ...EncodeOption) (*assetkit.EncodedTransaction, error) {
	if len(ixs) == 0 {
		return nil, assetkit.ErrEmptyTransaction
	}
	if feePayer.IsZero() {
		return nil, fmt.Errorf("%w: fee payer is required", assetkit.ErrInvalidAddress)
	}

	cfg := &encodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// The transaction compiler merges account metas in place.
	cloned := make([]solana.Instruction, len(ixs))
	for i, ix := range ixs {
		c, err := instructions.Clone(ix)
		if err != nil {
			return nil, err
		}
		cloned[i] = c
	}

	tip, err := b.chainTip(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(cloned, tip.Blockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	handles := assetkit.SignerSet(nil).Add(signers...)
	required := tx.Message.Signers()
	var missing []solana.PublicKey
	for _, address := range required {
		if handles.Lookup(address) == nil {
			missing = append(missing, address)
		}
	}
	if len(missing) > 0 {
		return nil, &assetkit.MissingSignatureError{Missing: missing}
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	tx.Signatures = make([]solana.Signature, 0, len(required))
	for _, address := range required {
		sig, err := handles.Lookup(address).Sign(message)
		if err != nil {
			return nil, fmt.Errorf("failed to sign with %s: %w", address, err)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}

	payload, err := encoding.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	size := encoding.WireSize(payload)
	if size > b.maxSize {
		return nil, fmt.Errorf("%w: %d bytes with %d instructions, limit is %d", assetkit.ErrTransactionTooLarge, size, len(ixs), b.maxSize)
	}

	b.logger.Debug("encoded transaction",
		"signature", tx.Signatures[0],
		"instructions", len(ixs),
		"signers", len(required),
		"size", size,
	)

	return &assetkit.EncodedTransaction{
		Payload:   payload,
		Signature: tx.Signatures[0],
		ChainTip:  tip,
		Size:      size,
	}, nil
}

// Seal signs and encodes op with its own fee payer and signer handles.
func (b *Builder) Seal(ctx context.Context, op *assetkit.UnsignedOperation, opts ...EncodeOption) (*assetkit.EncodedTransaction, error) {
	if op == nil {
		return nil, assetkit.ErrEmptyTransaction
	}
	return b.SignAndEncode(ctx, op.FeePayer, op.Instructions, op.Signers, opts...)
}

func (b *Builder) chainTip(ctx context.Context, cfg *encodeConfig) (assetkit.ChainTip, error) {
	if cfg.tip != nil {
		return *cfg.tip, nil
	}
	tip, err := b.query.GetLatestChainTip(ctx)
	if err != nil {
		return assetkit.ChainTip{}, fmt.Errorf("%w: failed to get chain tip: %w", assetkit.ErrAccountResolutionFailed, err)
	}
	return tip, nil
}
