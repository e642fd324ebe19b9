// Package compose turns logical asset operations into ordered instruction
// lists with their minimal signer sets. Nothing here signs or submits.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
	"github.com/mark3labs/assetkit-go/keypair"
	"github.com/mark3labs/assetkit-go/ledger"
	"github.com/mark3labs/assetkit-go/metadata"
	"github.com/mark3labs/assetkit-go/resolver"
)

// Composer builds UnsignedOperations against a ledger view.
type Composer struct {
	query    ledger.Query
	resolver *resolver.Resolver
	fetcher  metadata.Fetcher
	standard assetkit.MetadataStandard
	logger   *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithMetadataFetcher sets how metadata URIs are loaded when a mint request
// carries a URI instead of a document.
func WithMetadataFetcher(fetcher metadata.Fetcher) Option {
	return func(c *Composer) error {
		if fetcher == nil {
			return fmt.Errorf("metadata fetcher cannot be nil")
		}
		c.fetcher = fetcher
		return nil
	}
}

// WithMetadataStandard selects the NFT metadata scheme. It is fixed for the
// lifetime of the composer.
func WithMetadataStandard(standard assetkit.MetadataStandard) Option {
	return func(c *Composer) error {
		if err := standard.Validate(); err != nil {
			return fmt.Errorf("%w: %q", err, standard)
		}
		c.standard = standard
		return nil
	}
}

// WithResolver replaces the account resolver.
func WithResolver(r *resolver.Resolver) Option {
	return func(c *Composer) error {
		if r == nil {
			return fmt.Errorf("resolver cannot be nil")
		}
		c.resolver = r
		return nil
	}
}

// New creates a Composer reading ledger state through query.
func New(query ledger.Query, opts ...Option) (*Composer, error) {
	if query == nil {
		return nil, fmt.Errorf("ledger query cannot be nil")
	}
	c := &Composer{
		query:    query,
		standard: assetkit.MetadataStandardTokenMetadataV3,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.resolver == nil {
		c.resolver = resolver.New(query, resolver.WithLogger(c.logger))
	}
	if c.fetcher == nil {
		fetcher, err := metadata.NewHTTPFetcher(metadata.WithLogger(c.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata fetcher: %w", err)
		}
		c.fetcher = fetcher
	}
	return c, nil
}

// MetadataStandard returns the configured NFT metadata scheme.
func (c *Composer) MetadataStandard() assetkit.MetadataStandard {
	return c.standard
}

// Resolver returns the account resolver in use.
func (c *Composer) Resolver() *resolver.Resolver {
	return c.resolver
}

func (c *Composer) rentFor(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.query.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get rent exemption: %w", assetkit.ErrAccountResolutionFailed, err)
	}
	return lamports, nil
}

// newMint returns mint, or a freshly generated keypair when mint is nil.
func newMint(mint assetkit.Signer) (assetkit.Signer, error) {
	if mint != nil {
		return mint, nil
	}
	generated, err := keypair.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint keypair: %w", err)
	}
	return generated, nil
}

func requireSigner(role string, s assetkit.Signer) error {
	if s == nil {
		return fmt.Errorf("%w: %s signer is required", assetkit.ErrMissingSignature, role)
	}
	return nil
}

func requireAddress(role string, address solana.PublicKey) error {
	if address.IsZero() {
		return fmt.Errorf("%w: %s is required", assetkit.ErrInvalidAddress, role)
	}
	return nil
}

func amountOf(amount *big.Int) (uint64, error) {
	v, err := assetkit.ToUint64(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", err, amount)
	}
	return v, nil
}

// withCreate appends the create instruction of every lookup that needs one.
func withCreate(ixs []solana.Instruction, lookups ...*assetkit.AssociatedAccountLookup) []solana.Instruction {
	for _, l := range lookups {
		if l != nil && l.CreateInstruction != nil {
			ixs = append(ixs, l.CreateInstruction)
		}
	}
	return ixs
}

func (c *Composer) composed(op *assetkit.UnsignedOperation) *assetkit.UnsignedOperation {
	c.logger.Debug("composed operation",
		"kind", op.Kind,
		"instructions", len(op.Instructions),
		"signers", len(op.RequiredSigners),
	)
	return op
}

// mintSize is MintSize as the rent query wants it.
const mintSize = uint64(instructions.MintSize)
