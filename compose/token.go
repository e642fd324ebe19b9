package compose

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
)

// CreateTokenRequest creates a new fungible token mint.
type CreateTokenRequest struct {
	FeePayer assetkit.Signer

	// MintAuthority may mint new supply. It does not sign creation.
	MintAuthority solana.PublicKey

	// FreezeAuthority defaults to MintAuthority.
	FreezeAuthority *solana.PublicKey

	// Decimals defaults to assetkit.DefaultTokenDecimals.
	Decimals *uint8

	// Mint is the new mint account. A fresh keypair is generated when nil;
	// it is returned in the operation's signers and under the "mint" account.
	Mint assetkit.Signer
}

// CreateToken composes [createAccount, initializeMint]. Signers are {FeePayer, Mint}.
func (c *Composer) CreateToken(ctx context.Context, req CreateTokenRequest) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", req.FeePayer); err != nil {
		return nil, err
	}
	if err := requireAddress("mint authority", req.MintAuthority); err != nil {
		return nil, err
	}

	decimals := assetkit.DefaultTokenDecimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	freeze := req.MintAuthority
	if req.FreezeAuthority != nil {
		freeze = *req.FreezeAuthority
	}

	mint, err := newMint(req.Mint)
	if err != nil {
		return nil, err
	}
	rent, err := c.rentFor(ctx, mintSize)
	if err != nil {
		return nil, err
	}

	ixs, err := instructions.CreateMint(req.FeePayer.PublicKey(), mint.PublicKey(), rent, decimals, req.MintAuthority, freeze)
	if err != nil {
		return nil, err
	}

	op := assetkit.NewUnsignedOperation(assetkit.OpTokenCreate, req.FeePayer.PublicKey(), ixs, req.FeePayer, mint).
		WithAccount("mint", mint.PublicKey()).
		WithAccount("mintAuthority", req.MintAuthority)
	return c.composed(op), nil
}

// MintTokenRequest mints new supply of an existing fungible token.
type MintTokenRequest struct {
	FeePayer      assetkit.Signer
	Mint          solana.PublicKey
	MintAuthority assetkit.Signer

	// Destination owns the receiving account. Defaults to MintAuthority.
	Destination solana.PublicKey

	// Amount in base units.
	Amount *big.Int
}

// MintToken composes [createATA?, mintTo]. Signers are {FeePayer, MintAuthority}.
func (c *Composer) MintToken(ctx context.Context, req MintTokenRequest) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", req.FeePayer); err != nil {
		return nil, err
	}
	if err := requireSigner("mint authority", req.MintAuthority); err != nil {
		return nil, err
	}
	if err := requireAddress("mint", req.Mint); err != nil {
		return nil, err
	}
	amount, err := amountOf(req.Amount)
	if err != nil {
		return nil, err
	}

	owner := req.Destination
	if owner.IsZero() {
		owner = req.MintAuthority.PublicKey()
	}

	dest, err := c.resolver.Resolve(ctx, req.Mint, owner, req.FeePayer.PublicKey())
	if err != nil {
		return nil, err
	}
	mintTo, err := instructions.MintTo(req.Mint, dest.Address, req.MintAuthority.PublicKey(), amount)
	if err != nil {
		return nil, err
	}

	ixs := append(withCreate(nil, dest), mintTo)
	op := assetkit.NewUnsignedOperation(assetkit.OpTokenMint, req.FeePayer.PublicKey(), ixs, req.FeePayer, req.MintAuthority).
		WithAccount("mint", req.Mint).
		WithAccount("destination", dest.Address).
		WithAmount(amount)
	return c.composed(op), nil
}

// TransferTokenRequest moves fungible tokens between owners.
type TransferTokenRequest struct {
	FeePayer    assetkit.Signer
	Mint        solana.PublicKey
	Source      assetkit.Signer
	Destination solana.PublicKey

	// Amount in base units. Zero is allowed.
	Amount *big.Int
}

// TransferToken composes [createATA(source)?, createATA(destination)?, transfer].
// Signers are {FeePayer, Source}.
func (c *Composer) TransferToken(ctx context.Context, req TransferTokenRequest) (*assetkit.UnsignedOperation, error) {
	amount, err := amountOf(req.Amount)
	if err != nil {
		return nil, err
	}
	return c.transfer(ctx, assetkit.OpTokenTransfer, req.FeePayer, req.Mint, req.Source, req.Destination, amount)
}

func (c *Composer) transfer(ctx context.Context, kind assetkit.OperationKind, feePayer assetkit.Signer, mint solana.PublicKey, source assetkit.Signer, destination solana.PublicKey, amount uint64) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", feePayer); err != nil {
		return nil, err
	}
	if err := requireSigner("source", source); err != nil {
		return nil, err
	}
	if err := requireAddress("mint", mint); err != nil {
		return nil, err
	}
	if err := requireAddress("destination", destination); err != nil {
		return nil, err
	}

	payer := feePayer.PublicKey()
	from, err := c.resolver.Resolve(ctx, mint, source.PublicKey(), payer)
	if err != nil {
		return nil, err
	}
	to, err := c.resolver.Resolve(ctx, mint, destination, payer)
	if err != nil {
		return nil, err
	}

	ixs := withCreate(nil, from)
	if !to.Address.Equals(from.Address) {
		ixs = withCreate(ixs, to)
	}

	transfer, err := instructions.Transfer(from.Address, to.Address, source.PublicKey(), amount)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, transfer)

	op := assetkit.NewUnsignedOperation(kind, payer, ixs, feePayer, source).
		WithAccount("mint", mint).
		WithAccount("source", from.Address).
		WithAccount("destination", to.Address).
		WithAmount(amount)
	return c.composed(op), nil
}

// BurnTokenRequest destroys fungible tokens held by Owner.
type BurnTokenRequest struct {
	FeePayer assetkit.Signer
	Mint     solana.PublicKey
	Owner    assetkit.Signer

	// Amount in base units. It is not checked against the balance; an
	// overdraw is rejected by the ledger on submission.
	Amount *big.Int
}

// BurnToken composes [burn]. The token account is never closed because other
// balance may remain in it. Signers are {FeePayer, Owner}.
func (c *Composer) BurnToken(ctx context.Context, req BurnTokenRequest) (*assetkit.UnsignedOperation, error) {
	amount, err := amountOf(req.Amount)
	if err != nil {
		return nil, err
	}
	return c.burn(ctx, assetkit.OpTokenBurn, req.FeePayer, req.Mint, req.Owner, amount, false)
}

func (c *Composer) burn(ctx context.Context, kind assetkit.OperationKind, feePayer assetkit.Signer, mint solana.PublicKey, owner assetkit.Signer, amount uint64, closeAccount bool) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", feePayer); err != nil {
		return nil, err
	}
	if err := requireSigner("owner", owner); err != nil {
		return nil, err
	}
	if err := requireAddress("mint", mint); err != nil {
		return nil, err
	}

	account, err := c.resolver.Resolve(ctx, mint, owner.PublicKey(), feePayer.PublicKey())
	if err != nil {
		return nil, err
	}
	if !account.Exists {
		c.logger.Debug("burning from an account that does not exist yet", "account", account.Address, "mint", mint)
	}

	burn, err := instructions.Burn(account.Address, mint, owner.PublicKey(), amount)
	if err != nil {
		return nil, err
	}
	ixs := []solana.Instruction{burn}

	if closeAccount {
		closeIx, err := instructions.CloseAccount(account.Address, owner.PublicKey(), owner.PublicKey())
		if err != nil {
			return nil, fmt.Errorf("failed to close burned account: %w", err)
		}
		ixs = append(ixs, closeIx)
	}

	op := assetkit.NewUnsignedOperation(kind, feePayer.PublicKey(), ixs, feePayer, owner).
		WithAccount("mint", mint).
		WithAccount("account", account.Address).
		WithAmount(amount)
	return c.composed(op), nil
}
