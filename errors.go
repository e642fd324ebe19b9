package assetkit

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Assembly-time errors. These are raised before anything reaches the ledger
// and abort the whole operation or batch.
var (
	// ErrAccountResolutionFailed indicates the ledger query service was unreachable
	// or returned account data that could not be decoded.
	ErrAccountResolutionFailed = errors.New("assetkit: account resolution failed")

	// ErrMetadataFetch indicates the metadata JSON could not be fetched or did not match the expected schema.
	ErrMetadataFetch = errors.New("assetkit: metadata fetch failed")

	// ErrInvalidMetadata indicates metadata violates the token metadata program limits.
	ErrInvalidMetadata = errors.New("assetkit: invalid metadata")

	// ErrMissingSignature indicates the signer set does not cover every required signer.
	ErrMissingSignature = errors.New("assetkit: missing signature")

	// ErrTransactionTooLarge indicates the serialized transaction exceeds the ledger size ceiling.
	ErrTransactionTooLarge = errors.New("assetkit: transaction too large")

	// ErrEmptyTransaction indicates there are no instructions to encode.
	ErrEmptyTransaction = errors.New("assetkit: transaction has no instructions")

	// ErrInvalidAmount indicates an amount is missing, negative or does not fit in 64 bits.
	ErrInvalidAmount = errors.New("assetkit: invalid amount")

	// ErrInvalidAddress indicates an address is not a valid base58 public key.
	ErrInvalidAddress = errors.New("assetkit: invalid address")

	// ErrInvalidKey indicates a private key could not be parsed.
	ErrInvalidKey = errors.New("assetkit: invalid private key")

	// ErrInvalidKeystore indicates a keygen file could not be read.
	ErrInvalidKeystore = errors.New("assetkit: invalid keystore file")

	// ErrInvalidMnemonic indicates a mnemonic phrase failed checksum validation.
	ErrInvalidMnemonic = errors.New("assetkit: invalid mnemonic phrase")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("assetkit: invalid or unsupported network")

	// ErrUnknownSigner indicates no signer handle is registered for an address.
	ErrUnknownSigner = errors.New("assetkit: no signer for address")

	// ErrUnsupportedMetadataStandard indicates a metadata standard other than the supported one was configured.
	ErrUnsupportedMetadataStandard = errors.New("assetkit: unsupported metadata standard")
)

// Post-submission errors. The ledger reports these after the transaction has
// left the library; they are always wrapped in a *LedgerError.
var (
	// ErrInsufficientBalance indicates the ledger rejected the transaction for lack of funds or tokens.
	ErrInsufficientBalance = errors.New("assetkit: insufficient balance")

	// ErrLedgerRejected indicates any other ledger-side rejection.
	ErrLedgerRejected = errors.New("assetkit: ledger rejected transaction")
)

// LedgerError carries a ledger rejection together with the ledger's own message.
type LedgerError struct {
	Kind      error
	Signature solana.Signature
	Message   string
}

func (e *LedgerError) Error() string {
	if !e.Signature.IsZero() {
		return fmt.Sprintf("%v (signature %s): %s", e.Kind, e.Signature, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *LedgerError) Unwrap() error {
	return e.Kind
}

// IsLedgerError reports whether err came from the ledger rather than from assembly.
func IsLedgerError(err error) bool {
	var ledgerErr *LedgerError
	return errors.As(err, &ledgerErr)
}

// MissingSignatureError lists the addresses that had no signer handle at encode time.
type MissingSignatureError struct {
	Missing []solana.PublicKey
}

func (e *MissingSignatureError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMissingSignature, e.Missing)
}

func (e *MissingSignatureError) Unwrap() error {
	return ErrMissingSignature
}
