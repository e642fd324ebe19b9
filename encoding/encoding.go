// Package encoding converts signed transactions to and from the base64 text
// form used for transport.
package encoding

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// EncodeTransaction serializes tx to the legacy wire format and base64-encodes it.
// Signatures that are not set are written as zeros.
//
// Returns an error if the message cannot be serialized.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("failed to encode transaction: nil transaction")
	}
	wire, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(wire), nil
}

// DecodeTransaction parses a base64 wire transaction.
//
// Returns an error if base64 decoding or wire decoding fails.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	wire, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	tx, err := solana.TransactionFromBytes(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return tx, nil
}

// WireSize returns the number of bytes encoded represents on the wire.
func WireSize(encoded string) int {
	return base64.StdEncoding.DecodedLen(len(encoded)) - padding(encoded)
}

func padding(encoded string) int {
	n := 0
	for i := len(encoded) - 1; i >= 0 && encoded[i] == '='; i-- {
		n++
	}
	return n
}
