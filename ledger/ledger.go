// Package ledger defines the read and submit contracts the library needs from
// a Solana cluster, with an RPC implementation and an in-memory fake.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
)

// AccountInfo is the raw state of one ledger account.
type AccountInfo struct {
	Address    solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// KeyedAccount pairs an address with its state.
type KeyedAccount struct {
	Address solana.PublicKey
	Account AccountInfo
}

// Query is the read-only view of the ledger used during assembly.
type Query interface {
	// GetAccountInfo returns nil and no error when the account does not exist.
	GetAccountInfo(ctx context.Context, address solana.PublicKey) (*AccountInfo, error)

	// GetTokenAccountsByOwner lists the token accounts of owner held under programID.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID solana.PublicKey) ([]KeyedAccount, error)

	// GetLatestChainTip returns a recent blockhash and its expiry height.
	GetLatestChainTip(ctx context.Context) (assetkit.ChainTip, error)

	// GetMinimumBalanceForRentExemption returns the lamports an account of size bytes needs.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

// Submitter delivers a signed, base64 encoded transaction and returns its signature.
// Rejections are reported as *assetkit.LedgerError.
type Submitter interface {
	Submit(ctx context.Context, payload string) (solana.Signature, error)
}

// SignatureStatus is the cluster's view of a submitted transaction.
type SignatureStatus struct {
	Slot               uint64
	ConfirmationStatus rpc.ConfirmationStatusType
	// Err is the ledger's execution error, nil on success.
	Err any
}

// StatusQuery reads the status of submitted transactions.
type StatusQuery interface {
	// SignatureStatus returns nil and no error when the cluster has not seen the signature yet.
	SignatureStatus(ctx context.Context, signature solana.Signature) (*SignatureStatus, error)
}
