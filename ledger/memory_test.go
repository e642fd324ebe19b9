package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/poll"
)

var fastPoll = poll.Config{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2.0,
}

func signedPayload(t *testing.T) (string, solana.Signature) {
	t.Helper()

	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()},
		solana.Hash{1},
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}
	if _, err := tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &payer }); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	wire, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return base64.StdEncoding.EncodeToString(wire), tx.Signatures[0]
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	address := solana.NewWallet().PublicKey()

	info, err := m.GetAccountInfo(ctx, address)
	if err != nil || info != nil {
		t.Fatalf("GetAccountInfo() of absent account = %v, %v; want nil, nil", info, err)
	}

	if err := m.SetTokenAccount(address, token.Account{Mint: mint, Owner: owner, Amount: 42}); err != nil {
		t.Fatalf("SetTokenAccount() error = %v", err)
	}

	info, err = m.GetAccountInfo(ctx, address)
	if err != nil || info == nil {
		t.Fatalf("GetAccountInfo() = %v, %v", info, err)
	}
	if !info.Owner.Equals(solana.TokenProgramID) {
		t.Errorf("owner = %s, want token program", info.Owner)
	}
	if len(info.Data) != 165 {
		t.Errorf("data length = %d, want 165", len(info.Data))
	}

	accounts, err := m.GetTokenAccountsByOwner(ctx, owner, solana.TokenProgramID)
	if err != nil {
		t.Fatalf("GetTokenAccountsByOwner() error = %v", err)
	}
	if len(accounts) != 1 || !accounts[0].Address.Equals(address) {
		t.Fatalf("GetTokenAccountsByOwner() = %v, want [%s]", accounts, address)
	}

	others, err := m.GetTokenAccountsByOwner(ctx, solana.NewWallet().PublicKey(), solana.TokenProgramID)
	if err != nil || len(others) != 0 {
		t.Errorf("GetTokenAccountsByOwner() for another owner = %v, %v; want empty", others, err)
	}

	m.DeleteAccount(address)
	if info, _ := m.GetAccountInfo(ctx, address); info != nil {
		t.Error("account still present after DeleteAccount")
	}
	if m.AccountQueries() != 3 {
		t.Errorf("AccountQueries() = %d, want 3", m.AccountQueries())
	}
}

func TestMemoryRentExemption(t *testing.T) {
	tests := []struct {
		size uint64
		want uint64
	}{
		{size: 0, want: 890880},
		{size: 82, want: 1461600},
		{size: 165, want: 2039280},
	}

	m := NewMemory()
	for _, tt := range tests {
		got, err := m.GetMinimumBalanceForRentExemption(context.Background(), tt.size)
		if err != nil {
			t.Fatalf("GetMinimumBalanceForRentExemption(%d) error = %v", tt.size, err)
		}
		if got != tt.want {
			t.Errorf("GetMinimumBalanceForRentExemption(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestMemoryFailQueries(t *testing.T) {
	m := NewMemory()
	boom := errors.New("connection refused")
	m.FailQueries(boom)

	if _, err := m.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey()); !errors.Is(err, boom) {
		t.Errorf("GetAccountInfo() error = %v, want %v", err, boom)
	}
	if _, err := m.GetLatestChainTip(context.Background()); !errors.Is(err, boom) {
		t.Errorf("GetLatestChainTip() error = %v, want %v", err, boom)
	}

	m.FailQueries(nil)
	if _, err := m.GetLatestChainTip(context.Background()); err != nil {
		t.Errorf("GetLatestChainTip() after reset error = %v", err)
	}
}

func TestMemorySubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		m := NewMemory()
		payload, want := signedPayload(t)

		got, err := m.Submit(ctx, payload)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if got != want {
			t.Errorf("Submit() = %s, want %s", got, want)
		}
		if len(m.Submissions()) != 1 {
			t.Errorf("Submissions() has %d entries, want 1", len(m.Submissions()))
		}
		status, err := m.SignatureStatus(ctx, want)
		if err != nil || status == nil || status.ConfirmationStatus != rpc.ConfirmationStatusProcessed {
			t.Errorf("SignatureStatus() = %+v, %v; want processed", status, err)
		}
	})

	t.Run("rejected for funds", func(t *testing.T) {
		m := NewMemory()
		m.RejectSubmissions("Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1")
		payload, _ := signedPayload(t)

		_, err := m.Submit(ctx, payload)
		if !errors.Is(err, assetkit.ErrInsufficientBalance) {
			t.Fatalf("Submit() error = %v, want ErrInsufficientBalance", err)
		}
		if !assetkit.IsLedgerError(err) {
			t.Error("rejection should be a ledger error")
		}
		if len(m.Submissions()) != 0 {
			t.Error("rejected payload was recorded")
		}
	})

	t.Run("garbage payload", func(t *testing.T) {
		m := NewMemory()
		_, err := m.Submit(ctx, "AAAA")
		if !errors.Is(err, assetkit.ErrLedgerRejected) {
			t.Errorf("Submit() error = %v, want ErrLedgerRejected", err)
		}
	})
}

func TestWaitForConfirmation(t *testing.T) {
	ctx := context.Background()
	sig := solana.Signature{9}

	tests := []struct {
		name    string
		status  *SignatureStatus
		level   rpc.ConfirmationStatusType
		wantErr error
	}{
		{
			name:   "already confirmed",
			status: &SignatureStatus{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
			level:  rpc.ConfirmationStatusConfirmed,
		},
		{
			name:   "finalized satisfies confirmed",
			status: &SignatureStatus{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusFinalized},
			level:  rpc.ConfirmationStatusConfirmed,
		},
		{
			name:    "never reaches finalized",
			status:  &SignatureStatus{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusProcessed},
			level:   rpc.ConfirmationStatusFinalized,
			wantErr: poll.ErrExhausted,
		},
		{
			name:    "unknown signature",
			level:   rpc.ConfirmationStatusProcessed,
			wantErr: poll.ErrExhausted,
		},
		{
			name:    "execution failed",
			status:  &SignatureStatus{Slot: 10, ConfirmationStatus: rpc.ConfirmationStatusConfirmed, Err: map[string]any{"InstructionError": []any{0, "InvalidAccountData"}}},
			level:   rpc.ConfirmationStatusConfirmed,
			wantErr: assetkit.ErrLedgerRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			if tt.status != nil {
				m.SetStatus(sig, tt.status)
			}

			status, err := WaitForConfirmation(ctx, m, sig, fastPoll, tt.level)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("WaitForConfirmation() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("WaitForConfirmation() error = %v", err)
			}
			if status.Slot != 10 {
				t.Errorf("slot = %d, want 10", status.Slot)
			}
		})
	}
}

func TestWaitForConfirmationQueryError(t *testing.T) {
	m := NewMemory()
	boom := errors.New("rpc down")
	m.FailQueries(boom)

	_, err := WaitForConfirmation(context.Background(), m, solana.Signature{1}, fastPoll, rpc.ConfirmationStatusConfirmed)
	if !errors.Is(err, boom) {
		t.Errorf("WaitForConfirmation() error = %v, want %v", err, boom)
	}
}
