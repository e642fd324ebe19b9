package assetkit

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// UnsignedOperation is an ordered instruction list with the addresses that
// must sign it and the handles able to do so. Every composer returns one;
// Aggregate merges several; the transaction builder signs and encodes it.
type UnsignedOperation struct {
	Kind OperationKind

	// FeePayer pays fees and rent and is always the first required signer.
	FeePayer solana.PublicKey

	// Instructions execute sequentially in this order.
	Instructions []solana.Instruction

	// RequiredSigners is the deduplicated set of addresses marked as signers
	// by any instruction, fee payer first.
	RequiredSigners []solana.PublicKey

	// Signers holds the signing handles, unique by address.
	Signers SignerSet

	// Accounts names the key addresses involved, for summary lines.
	Accounts map[string]solana.PublicKey

	// Amount moved, minted or burned in base units. Nil for operations
	// without a single amount, such as batches and token creation.
	Amount *big.Int
}

// NewUnsignedOperation derives the required signer set from the instructions.
func NewUnsignedOperation(kind OperationKind, feePayer solana.PublicKey, instructions []solana.Instruction, signers ...Signer) *UnsignedOperation {
	op := &UnsignedOperation{
		Kind:         kind,
		FeePayer:     feePayer,
		Instructions: instructions,
		Signers:      SignerSet(nil).Add(signers...),
		Accounts:     map[string]solana.PublicKey{},
	}
	op.RequiredSigners = requiredSigners(feePayer, instructions)
	return op
}

// WithAccount records a named address for observability and returns op.
func (op *UnsignedOperation) WithAccount(name string, address solana.PublicKey) *UnsignedOperation {
	if op.Accounts == nil {
		op.Accounts = map[string]solana.PublicKey{}
	}
	op.Accounts[name] = address
	return op
}

// WithAmount records the base unit amount of op and returns op.
func (op *UnsignedOperation) WithAmount(amount uint64) *UnsignedOperation {
	op.Amount = new(big.Int).SetUint64(amount)
	return op
}

// Missing returns the required signers that have no handle in signers.
func (op *UnsignedOperation) Missing(signers SignerSet) []solana.PublicKey {
	var missing []solana.PublicKey
	for _, address := range op.RequiredSigners {
		if signers.Lookup(address) == nil {
			missing = append(missing, address)
		}
	}
	return missing
}

// Covers reports whether signers satisfy every required signer of op.
func (op *UnsignedOperation) Covers(signers SignerSet) bool {
	return len(op.Missing(signers)) == 0
}

// Aggregate concatenates the instructions of ops in the order given and
// unions their signers by address. The first operation's fee payer pays for
// the combined transaction. No size check is performed here.
func Aggregate(ops ...*UnsignedOperation) (*UnsignedOperation, error) {
	var (
		instructions []solana.Instruction
		signers      SignerSet
		feePayer     solana.PublicKey
	)
	for _, op := range ops {
		if op == nil {
			continue
		}
		if feePayer.IsZero() {
			feePayer = op.FeePayer
		}
		instructions = append(instructions, op.Instructions...)
		signers = signers.Add(op.Signers...)
	}
	if len(instructions) == 0 {
		return nil, ErrEmptyTransaction
	}

	out := NewUnsignedOperation(OpBatch, feePayer, instructions, signers...)
	for _, op := range ops {
		if op == nil {
			continue
		}
		for name, address := range op.Accounts {
			if _, ok := out.Accounts[name]; !ok {
				out.Accounts[name] = address
			}
		}
	}
	return out, nil
}

func requiredSigners(feePayer solana.PublicKey, instructions []solana.Instruction) []solana.PublicKey {
	var out []solana.PublicKey
	if !feePayer.IsZero() {
		out = append(out, feePayer)
	}
	for _, ix := range instructions {
		for _, meta := range ix.Accounts() {
			if meta.IsSigner {
				out = appendUnique(out, meta.PublicKey)
			}
		}
	}
	return out
}

func appendUnique(list []solana.PublicKey, keys ...solana.PublicKey) []solana.PublicKey {
	for _, key := range keys {
		if solana.PublicKeySlice(list).Has(key) {
			continue
		}
		list = append(list, key)
	}
	return list
}
