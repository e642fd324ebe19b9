package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// CreateMint returns the two instructions that bring a new mint to life:
// a system account of MintSize bytes owned by the token program, then
// InitializeMint. rentLamports must cover rent exemption for MintSize.
// A zero freezeAuthority leaves the mint without one.
func CreateMint(payer, mint solana.PublicKey, rentLamports uint64, decimals uint8, mintAuthority, freezeAuthority solana.PublicKey) ([]solana.Instruction, error) {
	create, err := CreateAccount(payer, mint, rentLamports, MintSize, solana.TokenProgramID)
	if err != nil {
		return nil, err
	}
	initialize, err := InitializeMint(mint, decimals, mintAuthority, freezeAuthority)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{create, initialize}, nil
}

// InitializeMint sets decimals and authorities on a freshly allocated mint account.
func InitializeMint(mint solana.PublicKey, decimals uint8, mintAuthority, freezeAuthority solana.PublicKey) (solana.Instruction, error) {
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}
	if err := requireKey("mint authority", mintAuthority); err != nil {
		return nil, err
	}

	builder := token.NewInitializeMintInstructionBuilder().
		SetDecimals(decimals).
		SetMintAuthority(mintAuthority).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey)
	if !freezeAuthority.IsZero() {
		builder.SetFreezeAuthority(freezeAuthority)
	}

	ix, err := builder.ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize mint instruction: %w", err)
	}
	return freeze("initialize mint", ix)
}

// MintTo mints amount new tokens into destination, a token account of mint.
func MintTo(mint, destination, authority solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := token.NewMintToInstruction(amount, mint, destination, authority, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build mint to instruction: %w", err)
	}
	return freeze("mint to", ix)
}

// Transfer moves amount tokens between two token accounts of the same mint.
func Transfer(source, destination, owner solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := token.NewTransferInstruction(amount, source, destination, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build token transfer instruction: %w", err)
	}
	return freeze("token transfer", ix)
}

// Burn destroys amount tokens held in account.
func Burn(account, mint, owner solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := token.NewBurnInstruction(amount, account, mint, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build burn instruction: %w", err)
	}
	return freeze("burn", ix)
}

// CloseAccount closes an empty token account and returns its rent to destination.
func CloseAccount(account, destination, owner solana.PublicKey) (solana.Instruction, error) {
	ix, err := token.NewCloseAccountInstruction(account, destination, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build close account instruction: %w", err)
	}
	return freeze("close account", ix)
}
