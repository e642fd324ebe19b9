package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/ledger"
)

func TestResolveAbsentIsNeverCached(t *testing.T) {
	ctx := context.Background()
	mem := ledger.NewMemory()
	r := New(mem)

	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()

	for i := 0; i < 2; i++ {
		lookup, err := r.Resolve(ctx, mint, owner, payer)
		if err != nil {
			t.Fatalf("Resolve() #%d error = %v", i+1, err)
		}
		if lookup.Exists {
			t.Fatalf("Resolve() #%d: Exists = true, want false", i+1)
		}
		if lookup.CreateInstruction == nil {
			t.Fatalf("Resolve() #%d: missing create instruction", i+1)
		}
		if !lookup.CreateInstruction.ProgramID().Equals(solana.SPLAssociatedTokenAccountProgramID) {
			t.Errorf("create instruction program = %s", lookup.CreateInstruction.ProgramID())
		}
		accounts := lookup.CreateInstruction.Accounts()
		if !accounts[0].PublicKey.Equals(payer) || !accounts[0].IsSigner {
			t.Errorf("create instruction payer = %s, want signing %s", accounts[0].PublicKey, payer)
		}
		if !accounts[1].PublicKey.Equals(lookup.Address) {
			t.Errorf("create instruction account = %s, want %s", accounts[1].PublicKey, lookup.Address)
		}
	}

	if mem.AccountQueries() != 2 {
		t.Errorf("AccountQueries() = %d, want 2", mem.AccountQueries())
	}
}

func TestResolveExistingNeverCreates(t *testing.T) {
	ctx := context.Background()
	mem := ledger.NewMemory()
	r := New(mem)

	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		t.Fatalf("failed to derive address: %v", err)
	}
	if err := mem.SetTokenAccount(address, token.Account{Mint: mint, Owner: owner, Amount: 750}); err != nil {
		t.Fatalf("SetTokenAccount() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		lookup, err := r.Resolve(ctx, mint, owner, solana.NewWallet().PublicKey())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !lookup.Exists || lookup.CreateInstruction != nil {
			t.Fatalf("Resolve() = exists %v, create %v; want existing account", lookup.Exists, lookup.CreateInstruction)
		}
		if lookup.Balance() != 750 {
			t.Errorf("Balance() = %d, want 750", lookup.Balance())
		}
	}
}

func TestResolveFailures(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		t.Fatalf("failed to derive address: %v", err)
	}

	tests := []struct {
		name  string
		setup func(m *ledger.Memory)
	}{
		{
			name: "query unreachable",
			setup: func(m *ledger.Memory) {
				m.FailQueries(errors.New("dial tcp: connection refused"))
			},
		},
		{
			name: "wrong owner program",
			setup: func(m *ledger.Memory) {
				m.SetAccount(ledger.AccountInfo{Address: address, Owner: solana.SystemProgramID, Data: make([]byte, 165)})
			},
		},
		{
			name: "truncated data",
			setup: func(m *ledger.Memory) {
				m.SetAccount(ledger.AccountInfo{Address: address, Owner: solana.TokenProgramID, Data: []byte{1, 2, 3}})
			},
		},
		{
			name: "holds another mint",
			setup: func(m *ledger.Memory) {
				_ = m.SetTokenAccount(address, token.Account{Mint: solana.NewWallet().PublicKey(), Owner: owner})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := ledger.NewMemory()
			tt.setup(mem)

			_, err := New(mem).Resolve(context.Background(), mint, owner, owner)
			if !errors.Is(err, assetkit.ErrAccountResolutionFailed) {
				t.Errorf("Resolve() error = %v, want ErrAccountResolutionFailed", err)
			}
		})
	}
}
