package compose

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/resolver"
)

// Balance returns owner's balance of mint in base units, zero when the
// associated account does not exist.
func (c *Composer) Balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error) {
	if err := requireAddress("mint", mint); err != nil {
		return 0, err
	}
	if err := requireAddress("owner", owner); err != nil {
		return 0, err
	}
	lookup, err := c.resolver.Resolve(ctx, mint, owner, owner)
	if err != nil {
		return 0, err
	}
	return lookup.Balance(), nil
}

// TokenBalances sums owner's token accounts per mint. Accounts that do not
// decode are skipped. A per-mint total beyond u64 fails with
// assetkit.ErrInvalidAmount.
func (c *Composer) TokenBalances(ctx context.Context, owner solana.PublicKey) (map[solana.PublicKey]uint64, error) {
	if err := requireAddress("owner", owner); err != nil {
		return nil, err
	}
	accounts, err := c.query.GetTokenAccountsByOwner(ctx, owner, solana.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list token accounts: %w", assetkit.ErrAccountResolutionFailed, err)
	}

	balances := make(map[solana.PublicKey]uint64, len(accounts))
	for _, keyed := range accounts {
		account, err := resolver.DecodeTokenAccount(&keyed.Account)
		if err != nil {
			c.logger.Warn("skipping malformed token account", "account", keyed.Address, "error", err)
			continue
		}
		sum, carry := bits.Add64(balances[account.Mint], account.Amount, 0)
		if carry != 0 {
			return nil, fmt.Errorf("%w: balance of mint %s overflows u64", assetkit.ErrInvalidAmount, account.Mint)
		}
		balances[account.Mint] = sum
	}
	return balances, nil
}
