package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/encoding"
	"github.com/mark3labs/assetkit-go/instructions"
)

// Rent parameters of the default cluster configuration.
const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionThreshold     = 2
)

// Memory is an in-memory ledger. It implements Query, Submitter and
// StatusQuery for tests and offline tooling. Submitted transactions are
// recorded but never executed.
type Memory struct {
	mu          sync.Mutex
	accounts    map[solana.PublicKey]AccountInfo
	tip         assetkit.ChainTip
	failure     error
	reject      error
	submissions []string
	statuses    map[solana.Signature]*SignatureStatus

	accountQueries int
	tipQueries     int
}

// NewMemory returns an empty ledger with a fixed chain tip.
func NewMemory() *Memory {
	return &Memory{
		accounts: map[solana.PublicKey]AccountInfo{},
		tip: assetkit.ChainTip{
			Blockhash:            solana.Hash(sha256.Sum256([]byte("assetkit memory ledger"))),
			LastValidBlockHeight: 1_000,
		},
		statuses: map[solana.Signature]*SignatureStatus{},
	}
}

// SetAccount stores account under account.Address.
func (m *Memory) SetAccount(account AccountInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.Address] = account
}

// SetTokenAccount stores an initialized SPL token account at address.
func (m *Memory) SetTokenAccount(address solana.PublicKey, account token.Account) error {
	if account.State == token.Uninitialized {
		account.State = token.Initialized
	}

	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(account); err != nil {
		return fmt.Errorf("failed to encode token account: %w", err)
	}

	m.SetAccount(AccountInfo{
		Address:  address,
		Owner:    solana.TokenProgramID,
		Lamports: rentExemption(instructions.TokenAccountSize),
		Data:     buf.Bytes(),
	})
	return nil
}

// DeleteAccount removes address.
func (m *Memory) DeleteAccount(address solana.PublicKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, address)
}

// SetChainTip replaces the tip returned by GetLatestChainTip.
func (m *Memory) SetChainTip(tip assetkit.ChainTip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tip = tip
}

// FailQueries makes every read return err until called with nil.
func (m *Memory) FailQueries(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// RejectSubmissions makes Submit reject with message until called with "".
func (m *Memory) RejectSubmissions(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if message == "" {
		m.reject = nil
		return
	}
	m.reject = errors.New(message)
}

// SetStatus replaces the status reported for signature.
func (m *Memory) SetStatus(signature solana.Signature, status *SignatureStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[signature] = status
}

// Submissions returns the payloads accepted so far, oldest first.
func (m *Memory) Submissions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.submissions...)
}

// AccountQueries returns how many times GetAccountInfo was called.
func (m *Memory) AccountQueries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountQueries
}

// ChainTipQueries returns how many times GetLatestChainTip was called.
func (m *Memory) ChainTipQueries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tipQueries
}

// GetAccountInfo implements Query.
func (m *Memory) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*AccountInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountQueries++
	if m.failure != nil {
		return nil, m.failure
	}

	account, ok := m.accounts[address]
	if !ok {
		return nil, nil
	}
	account.Data = append([]byte(nil), account.Data...)
	return &account, nil
}

// GetTokenAccountsByOwner implements Query. Accounts are returned sorted by address.
func (m *Memory) GetTokenAccountsByOwner(ctx context.Context, owner, programID solana.PublicKey) ([]KeyedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}

	var out []KeyedAccount
	for address, account := range m.accounts {
		if !account.Owner.Equals(programID) {
			continue
		}
		var state token.Account
		if err := bin.NewBinDecoder(account.Data).Decode(&state); err != nil {
			continue
		}
		if !state.Owner.Equals(owner) {
			continue
		}
		account.Data = append([]byte(nil), account.Data...)
		out = append(out, KeyedAccount{Address: address, Account: account})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out, nil
}

// GetLatestChainTip implements Query.
func (m *Memory) GetLatestChainTip(ctx context.Context) (assetkit.ChainTip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tipQueries++
	if m.failure != nil {
		return assetkit.ChainTip{}, m.failure
	}
	return m.tip, nil
}

// GetMinimumBalanceForRentExemption implements Query.
func (m *Memory) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return 0, m.failure
	}
	return rentExemption(size), nil
}

// Submit implements Submitter. The payload must decode as a transaction
// carrying a fee payer signature, which becomes the returned signature.
// Accepted transactions are reported as processed.
func (m *Memory) Submit(ctx context.Context, payload string) (solana.Signature, error) {
	tx, err := encoding.DecodeTransaction(payload)
	if err != nil {
		return solana.Signature{}, &assetkit.LedgerError{Kind: assetkit.ErrLedgerRejected, Message: err.Error()}
	}
	if len(tx.Signatures) == 0 || tx.Signatures[0].IsZero() {
		return solana.Signature{}, &assetkit.LedgerError{Kind: assetkit.ErrLedgerRejected, Message: "transaction is not signed"}
	}
	signature := tx.Signatures[0]

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject != nil {
		rejection := ClassifyRejection(m.reject)
		rejection.Signature = signature
		return solana.Signature{}, rejection
	}

	m.submissions = append(m.submissions, payload)
	m.statuses[signature] = &SignatureStatus{ConfirmationStatus: rpc.ConfirmationStatusProcessed}
	return signature, nil
}

// SignatureStatus implements StatusQuery.
func (m *Memory) SignatureStatus(ctx context.Context, signature solana.Signature) (*SignatureStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	status, ok := m.statuses[signature]
	if !ok || status == nil {
		return nil, nil
	}
	copied := *status
	return &copied, nil
}

func rentExemption(size uint64) uint64 {
	return (size + accountStorageOverhead) * lamportsPerByteYear * exemptionThreshold
}
