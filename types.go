package assetkit

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// AssetKind identifies one of the three asset classes the library handles.
type AssetKind string

const (
	// AssetSOL is the native coin.
	AssetSOL AssetKind = "sol"
	// AssetFungible is an SPL token with arbitrary decimals and supply.
	AssetFungible AssetKind = "fungible"
	// AssetNonFungible is an SPL mint with zero decimals, supply one, metadata and a master edition.
	AssetNonFungible AssetKind = "non-fungible"
)

// OperationKind names a logical operation. It is carried on every
// UnsignedOperation and shows up in summary log lines.
type OperationKind string

const (
	OpSOLTransfer   OperationKind = "sol.transfer"
	OpTokenCreate   OperationKind = "token.create"
	OpTokenMint     OperationKind = "token.mint"
	OpTokenTransfer OperationKind = "token.transfer"
	OpTokenBurn     OperationKind = "token.burn"
	OpNFTMint       OperationKind = "nft.mint"
	OpNFTTransfer   OperationKind = "nft.transfer"
	OpNFTBurn       OperationKind = "nft.burn"
	OpBatch         OperationKind = "batch"
)

// Asset returns the asset class the operation acts on. A batch may mix
// classes and returns the empty kind.
func (k OperationKind) Asset() AssetKind {
	switch k {
	case OpBatch:
		return ""
	case OpSOLTransfer:
		return AssetSOL
	case OpNFTMint, OpNFTTransfer, OpNFTBurn:
		return AssetNonFungible
	default:
		return AssetFungible
	}
}

// MetadataStandard selects the NFT metadata and edition scheme.
type MetadataStandard string

const (
	// MetadataStandardTokenMetadataV3 targets CreateMetadataAccountV3 and
	// CreateMasterEditionV3 of the token metadata program, with optional
	// VerifyCollection for unsized collections.
	MetadataStandardTokenMetadataV3 MetadataStandard = "token-metadata-v3"
)

// Validate reports whether the standard is one the library can build.
func (s MetadataStandard) Validate() error {
	if s == MetadataStandardTokenMetadataV3 {
		return nil
	}
	return ErrUnsupportedMetadataStandard
}

// AssociatedAccountLookup is the transient result of resolving an associated
// token account. It is never cached.
type AssociatedAccountLookup struct {
	// Address is the derived associated token account.
	Address solana.PublicKey

	// Mint and Owner are the inputs of the derivation.
	Mint  solana.PublicKey
	Owner solana.PublicKey

	// Exists is true when the ledger already holds the account.
	Exists bool

	// Account is the decoded token account when Exists is true.
	Account *token.Account

	// CreateInstruction creates the account, paid by the requested fee payer.
	// It is nil when Exists is true.
	CreateInstruction solana.Instruction
}

// Balance returns the token balance held by the account, or zero when absent.
func (l *AssociatedAccountLookup) Balance() uint64 {
	if l == nil || l.Account == nil {
		return 0
	}
	return l.Account.Amount
}

// ChainTip is the recent blockhash a transaction is bound to, plus the last
// block height at which it is still valid.
type ChainTip struct {
	Blockhash            solana.Hash `json:"blockhash"`
	LastValidBlockHeight uint64      `json:"lastValidBlockHeight"`
}

// EncodedTransaction is a fully signed transaction in base64 wire format.
type EncodedTransaction struct {
	// Payload is the base64 encoded wire transaction.
	Payload string `json:"transaction"`

	// Signature is the fee payer's signature, which is also the transaction id.
	Signature solana.Signature `json:"signature"`

	// ChainTip is the blockhash the transaction was signed against.
	ChainTip ChainTip `json:"chainTip"`

	// Size is the wire size in bytes.
	Size int `json:"size"`
}

// ToUint64 converts an arbitrary precision amount into the ledger's u64.
func ToUint64(amount *big.Int) (uint64, error) {
	if amount == nil || amount.Sign() < 0 || !amount.IsUint64() {
		return 0, ErrInvalidAmount
	}
	return amount.Uint64(), nil
}

// NewAmount wraps a u64 amount, e.g. a balance read from the ledger.
func NewAmount(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// AmountToBigInt converts a decimal amount string to *big.Int in base units.
// For example, "0.5" with 9 decimals becomes 500000000.
func AmountToBigInt(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, ErrInvalidAmount
	}
	value, ok := new(big.Rat).SetString(amount)
	if !ok || value.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value.Mul(value, new(big.Rat).SetInt(scale))
	if !value.IsInt() {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Set(value.Num()), nil
}

// BigIntToAmount converts a base unit amount to a decimal string.
// For example, 1500000000 with 9 decimals becomes "1.500000000".
func BigIntToAmount(value *big.Int, decimals int) string {
	if value == nil {
		value = new(big.Int)
	}
	if decimals <= 0 {
		return value.String()
	}
	r := new(big.Rat).SetFrac(value, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	return r.FloatString(decimals)
}

// LamportsToSOL renders lamports as a SOL decimal string.
func LamportsToSOL(lamports uint64) string {
	return BigIntToAmount(NewAmount(lamports), SOLDecimals)
}
