// Package instructions holds pure builders, each producing one ledger
// instruction (two for CreateMint). Nothing here talks to the network.
//
// Every builder returns a frozen *solana.GenericInstruction: data is encoded
// up front and account metas are private copies, so an instruction cannot
// change after it is built.
package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account sizes of the SPL token program.
const (
	MintSize         = 82
	TokenAccountSize = 165
)

// freeze encodes ix once and copies its account metas.
func freeze(name string, ix solana.Instruction) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s instruction: %w", name, err)
	}

	metas := ix.Accounts()
	accounts := make(solana.AccountMetaSlice, len(metas))
	for i, meta := range metas {
		if meta == nil {
			return nil, fmt.Errorf("failed to build %s instruction: account %d is not set", name, i)
		}
		accounts[i] = &solana.AccountMeta{
			PublicKey:  meta.PublicKey,
			IsWritable: meta.IsWritable,
			IsSigner:   meta.IsSigner,
		}
	}

	return solana.NewInstruction(ix.ProgramID(), accounts, data), nil
}

// Clone returns a deep copy of ix with fresh account metas. The transaction
// compiler merges duplicate metas in place, so callers hand it clones.
func Clone(ix solana.Instruction) (solana.Instruction, error) {
	return freeze("cloned", ix)
}

func requireKey(name string, key solana.PublicKey) error {
	if key.IsZero() {
		return fmt.Errorf("%s address is required", name)
	}
	return nil
}
