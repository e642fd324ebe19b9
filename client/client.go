// Package client runs compose and encode in one call for each asset
// operation and for batches, logging a summary line per encoded transaction.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/compose"
	"github.com/mark3labs/assetkit-go/ledger"
	"github.com/mark3labs/assetkit-go/metadata"
	"github.com/mark3labs/assetkit-go/txbuilder"
)

// Client wires a Composer to a Builder.
type Client struct {
	composer  *compose.Composer
	builder   *txbuilder.Builder
	submitter ledger.Submitter
	logger    *slog.Logger

	composeOpts []compose.Option
	builderOpts []txbuilder.Option
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets the logger used for summary lines and passes it down to
// the composer and builder.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetadataFetcher sets how NFT metadata URIs are loaded.
func WithMetadataFetcher(fetcher metadata.Fetcher) Option {
	return func(c *Client) error {
		c.composeOpts = append(c.composeOpts, compose.WithMetadataFetcher(fetcher))
		return nil
	}
}

// WithMetadataStandard selects the NFT metadata scheme.
func WithMetadataStandard(standard assetkit.MetadataStandard) Option {
	return func(c *Client) error {
		c.composeOpts = append(c.composeOpts, compose.WithMetadataStandard(standard))
		return nil
	}
}

// WithMaxTransactionSize overrides the wire size ceiling.
func WithMaxTransactionSize(size int) Option {
	return func(c *Client) error {
		c.builderOpts = append(c.builderOpts, txbuilder.WithMaxSize(size))
		return nil
	}
}

// WithSubmitter enables Send.
func WithSubmitter(submitter ledger.Submitter) Option {
	return func(c *Client) error {
		if submitter == nil {
			return fmt.Errorf("submitter cannot be nil")
		}
		c.submitter = submitter
		return nil
	}
}

// New creates a Client reading the ledger through query.
func New(query ledger.Query, opts ...Option) (*Client, error) {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	composer, err := compose.New(query, append([]compose.Option{compose.WithLogger(c.logger)}, c.composeOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}
	builder, err := txbuilder.New(query, append([]txbuilder.Option{txbuilder.WithLogger(c.logger)}, c.builderOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction builder: %w", err)
	}
	c.composer = composer
	c.builder = builder
	c.composeOpts, c.builderOpts = nil, nil
	return c, nil
}

// Composer returns the underlying composer, for callers that want the
// unsigned operation.
func (c *Client) Composer() *compose.Composer {
	return c.composer
}

// Builder returns the underlying transaction builder.
func (c *Client) Builder() *txbuilder.Builder {
	return c.builder
}

// Result is an encoded transaction together with the addresses it touches.
type Result struct {
	*assetkit.EncodedTransaction

	Kind assetkit.OperationKind `json:"kind"`

	// Accounts names the key addresses of the operation. For a batch it
	// holds the first occurrence of each name.
	Accounts map[string]solana.PublicKey `json:"accounts"`

	// Items holds the named addresses of every batched operation in order.
	Items []map[string]solana.PublicKey `json:"items,omitempty"`

	// Amount in base units, nil for batches and token creation.
	Amount *big.Int `json:"amount,omitempty"`
}

// Operation is anything the client can compose: every request type in this
// package implements it.
type Operation interface {
	compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error)
}

// Do composes and encodes a single operation.
func (c *Client) Do(ctx context.Context, op Operation, showLog *bool) (*Result, error) {
	if op == nil {
		return nil, assetkit.ErrEmptyTransaction
	}
	unsigned, err := op.compose(ctx, c.composer)
	if err != nil {
		return nil, err
	}
	return c.encode(ctx, unsigned, nil, showLog)
}

// BatchRequest is a heterogeneous list of operations encoded as one
// transaction. The first operation's fee payer pays for the batch.
type BatchRequest struct {
	ShowLog    *bool
	Operations []Operation
}

// Batch composes every operation, aggregates them in order and encodes the
// result once. The first failing item aborts the whole batch.
func (c *Client) Batch(ctx context.Context, req BatchRequest) (*Result, error) {
	if len(req.Operations) == 0 {
		return nil, assetkit.ErrEmptyTransaction
	}

	ops := make([]*assetkit.UnsignedOperation, 0, len(req.Operations))
	items := make([]map[string]solana.PublicKey, 0, len(req.Operations))
	for i, op := range req.Operations {
		if op == nil {
			return nil, fmt.Errorf("batch item %d: %w", i, assetkit.ErrEmptyTransaction)
		}
		unsigned, err := op.compose(ctx, c.composer)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		ops = append(ops, unsigned)
		items = append(items, unsigned.Accounts)
	}

	batch, err := assetkit.Aggregate(ops...)
	if err != nil {
		return nil, err
	}
	return c.encode(ctx, batch, items, req.ShowLog)
}

// Send submits an encoded transaction through the configured submitter.
func (c *Client) Send(ctx context.Context, result *Result) (solana.Signature, error) {
	if c.submitter == nil {
		return solana.Signature{}, fmt.Errorf("client has no submitter")
	}
	if result == nil || result.EncodedTransaction == nil {
		return solana.Signature{}, assetkit.ErrEmptyTransaction
	}
	sig, err := c.submitter.Submit(ctx, result.Payload)
	if err != nil {
		c.logger.Warn("submission rejected", "kind", result.Kind, "signature", result.Signature, "error", err)
		return sig, err
	}
	return sig, nil
}

func (c *Client) encode(ctx context.Context, op *assetkit.UnsignedOperation, items []map[string]solana.PublicKey, showLog *bool) (*Result, error) {
	encoded, err := c.builder.Seal(ctx, op)
	if err != nil {
		return nil, err
	}
	result := &Result{
		EncodedTransaction: encoded,
		Kind:               op.Kind,
		Accounts:           op.Accounts,
		Items:              items,
		Amount:             op.Amount,
	}
	if showLog == nil || *showLog {
		c.summary(result)
	}
	return result, nil
}

var summaryTitles = map[assetkit.OperationKind]string{
	assetkit.OpSOLTransfer:   "SOL Transfer",
	assetkit.OpTokenCreate:   "Token Create",
	assetkit.OpTokenMint:     "Token Mint",
	assetkit.OpTokenTransfer: "Token Transfer",
	assetkit.OpTokenBurn:     "Token Burn",
	assetkit.OpNFTMint:       "NFT Mint",
	assetkit.OpNFTTransfer:   "NFT Transfer",
	assetkit.OpNFTBurn:       "NFT Burn",
	assetkit.OpBatch:         "Batch",
}

func (c *Client) summary(result *Result) {
	title, ok := summaryTitles[result.Kind]
	if !ok {
		title = string(result.Kind)
	}

	names := make([]string, 0, len(result.Accounts))
	for name := range result.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	args := []any{"signature", result.Signature.String(), "size", result.Size}
	if asset := result.Kind.Asset(); asset != "" {
		args = append(args, "asset", string(asset))
	}
	if result.Amount != nil {
		if result.Kind.Asset() == assetkit.AssetSOL {
			args = append(args, "sol", assetkit.LamportsToSOL(result.Amount.Uint64()))
		} else {
			args = append(args, "amount", result.Amount.String())
		}
	}
	for _, name := range names {
		args = append(args, name, result.Accounts[name].String())
	}
	if len(result.Items) > 0 {
		args = append(args, "operations", len(result.Items))
	}
	c.logger.Info(title, args...)
}
