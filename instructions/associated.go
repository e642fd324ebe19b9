package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
)

// AssociatedAddress derives the associated token account of owner for mint.
// It is a pure computation.
func AssociatedAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return address, nil
}

// CreateAssociatedAccount creates owner's associated token account for mint, paid by payer.
func CreateAssociatedAccount(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	if err := requireKey("payer", payer); err != nil {
		return nil, err
	}
	if err := requireKey("owner", owner); err != nil {
		return nil, err
	}
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}

	ix, err := associatedtokenaccount.NewCreateInstruction(payer, owner, mint).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build create associated account instruction: %w", err)
	}
	return freeze("create associated account", ix)
}
