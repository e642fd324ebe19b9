package encoding

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

func signedTransfer(t *testing.T) *solana.Transaction {
	t.Helper()

	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	dest := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(5000, payer.PublicKey(), dest).Build()},
		solana.Hash{7, 7, 7},
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := signedTransfer(t)

	encoded, err := EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("EncodeTransaction() error = %v", err)
	}

	decoded, err := DecodeTransaction(encoded)
	if err != nil {
		t.Fatalf("DecodeTransaction() error = %v", err)
	}

	want, _ := tx.MarshalBinary()
	got, err := decoded.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to re-marshal decoded transaction: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("decoded transaction does not serialize to the original bytes")
	}
	if len(decoded.Signatures) != 1 || decoded.Signatures[0] != tx.Signatures[0] {
		t.Errorf("signatures = %v, want %v", decoded.Signatures, tx.Signatures)
	}
	if decoded.Message.RecentBlockhash != tx.Message.RecentBlockhash {
		t.Errorf("blockhash = %s, want %s", decoded.Message.RecentBlockhash, tx.Message.RecentBlockhash)
	}
	if WireSize(encoded) != len(want) {
		t.Errorf("WireSize() = %d, want %d", WireSize(encoded), len(want))
	}
}

func TestDecodeTransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr string
	}{
		{
			name:    "invalid base64",
			encoded: "not base64!!!",
			wantErr: "failed to decode base64",
		},
		{
			name:    "truncated wire bytes",
			encoded: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
			wantErr: "failed to unmarshal transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransaction(tt.encoded)
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeTransactionNil(t *testing.T) {
	if _, err := EncodeTransaction(nil); err == nil {
		t.Error("expected error for nil transaction")
	}
}
