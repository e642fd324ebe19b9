// Package resolver decides, per call, whether an owner's associated token
// account for a mint exists or has to be created.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
	"github.com/mark3labs/assetkit-go/ledger"
)

// Resolver looks up associated token accounts. It holds no state between
// calls: every Resolve queries the ledger again.
type Resolver struct {
	query  ledger.Query
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for malformed account data.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver reading from query.
func New(query ledger.Query, opts ...Option) *Resolver {
	r := &Resolver{
		query:  query,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve derives owner's associated token account for mint and reads it.
// An absent account is not an error: the lookup then carries an instruction
// creating it, paid by feePayer.
func (r *Resolver) Resolve(ctx context.Context, mint, owner, feePayer solana.PublicKey) (*assetkit.AssociatedAccountLookup, error) {
	address, err := instructions.AssociatedAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assetkit.ErrAccountResolutionFailed, err)
	}

	lookup := &assetkit.AssociatedAccountLookup{
		Address: address,
		Mint:    mint,
		Owner:   owner,
	}

	info, err := r.query.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get account %s: %w", assetkit.ErrAccountResolutionFailed, address, err)
	}

	if info == nil {
		create, err := instructions.CreateAssociatedAccount(feePayer, owner, mint)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", assetkit.ErrAccountResolutionFailed, err)
		}
		lookup.CreateInstruction = create
		return lookup, nil
	}

	account, err := DecodeTokenAccount(info)
	if err != nil {
		r.logger.Warn("malformed associated account", "address", address, "error", err)
		return nil, err
	}
	if !account.Mint.Equals(mint) || !account.Owner.Equals(owner) {
		return nil, fmt.Errorf("%w: account %s holds mint %s for %s", assetkit.ErrAccountResolutionFailed, address, account.Mint, account.Owner)
	}

	lookup.Exists = true
	lookup.Account = account
	return lookup, nil
}

// DecodeTokenAccount decodes the SPL token account held in info.
func DecodeTokenAccount(info *ledger.AccountInfo) (*token.Account, error) {
	if !info.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: account %s is owned by %s, not the token program", assetkit.ErrAccountResolutionFailed, info.Address, info.Owner)
	}
	if len(info.Data) < instructions.TokenAccountSize {
		return nil, fmt.Errorf("%w: account %s has %d bytes of data, want %d", assetkit.ErrAccountResolutionFailed, info.Address, len(info.Data), instructions.TokenAccountSize)
	}

	var account token.Account
	if err := bin.NewBinDecoder(info.Data).Decode(&account); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token account %s: %w", assetkit.ErrAccountResolutionFailed, info.Address, err)
	}
	return &account, nil
}
