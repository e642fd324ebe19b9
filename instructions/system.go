package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// CreateAccount allocates space for a new account owned by owner, funded by payer.
// Both payer and account sign.
func CreateAccount(payer, account solana.PublicKey, lamports, space uint64, owner solana.PublicKey) (solana.Instruction, error) {
	if err := requireKey("payer", payer); err != nil {
		return nil, err
	}
	if err := requireKey("new account", account); err != nil {
		return nil, err
	}

	ix, err := system.NewCreateAccountInstruction(lamports, space, owner, payer, account).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build create account instruction: %w", err)
	}
	return freeze("create account", ix)
}

// TransferLamports moves native SOL between two system accounts.
func TransferLamports(from, to solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	if err := requireKey("source", from); err != nil {
		return nil, err
	}
	if err := requireKey("destination", to); err != nil {
		return nil, err
	}

	ix, err := system.NewTransferInstruction(lamports, from, to).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return freeze("transfer", ix)
}
