package validation

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
	"github.com/mr-tron/base58"
)

// MaxTokenDecimals is the largest decimals value accepted for fungible tokens.
const MaxTokenDecimals = 9

// ValidateAddress validates that address is a base58 string that decodes to
// a 32 byte public key.
func ValidateAddress(address string) error {
	_, err := ParseAddress(address)
	return err
}

// ParseAddress validates address and returns the public key it encodes.
func ParseAddress(address string) (solana.PublicKey, error) {
	if address == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: address cannot be empty", assetkit.ErrInvalidAddress)
	}

	raw, err := base58.Decode(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s is not base58: %v", assetkit.ErrInvalidAddress, address, err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("%w: %s decodes to %d bytes, expected %d", assetkit.ErrInvalidAddress, address, len(raw), solana.PublicKeyLength)
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// ValidateAmount validates that an amount string is a non-negative integer
// that fits the ledger's u64 amounts.
func ValidateAmount(amount string) error {
	_, err := ParseAmount(amount)
	return err
}

// ParseAmount validates amount and returns it as a big.Int in base units.
func ParseAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("%w: amount cannot be empty", assetkit.ErrInvalidAmount)
	}

	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid amount format: %s", assetkit.ErrInvalidAmount, amount)
	}
	if amt.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative, got: %s", assetkit.ErrInvalidAmount, amount)
	}
	if !amt.IsUint64() {
		return nil, fmt.Errorf("%w: amount %s does not fit in 64 bits", assetkit.ErrInvalidAmount, amount)
	}
	return amt, nil
}

// ValidateDecimals validates a fungible token decimals value.
func ValidateDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxTokenDecimals {
		return fmt.Errorf("decimals must be between 0 and %d, got: %d", MaxTokenDecimals, decimals)
	}
	return nil
}

// ValidateURI validates a metadata JSON location. Accepted schemes are http,
// https, ipfs and ar, and the URI must fit the on-chain field.
func ValidateURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: uri cannot be empty", assetkit.ErrInvalidMetadata)
	}
	if len(uri) > instructions.MaxURILength {
		return fmt.Errorf("%w: uri is %d bytes, limit is %d", assetkit.ErrInvalidMetadata, len(uri), instructions.MaxURILength)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: malformed uri: %v", assetkit.ErrInvalidMetadata, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "ipfs", "ar":
	default:
		return fmt.Errorf("%w: unsupported uri scheme %q", assetkit.ErrInvalidMetadata, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: uri has no host: %s", assetkit.ErrInvalidMetadata, uri)
	}
	return nil
}
