package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
)

// rpcStub answers JSON-RPC calls by method name. A value of type rpcFailure
// is sent back as a JSON-RPC error.
type rpcFailure string

func rpcStub(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch result := results[req.Method].(type) {
		case nil:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		case rpcFailure:
			resp["error"] = map[string]any{"code": -32002, "message": string(result)}
		default:
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRPC(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    []RPCOption
		wantErr error
	}{
		{name: "endpoint", url: "http://localhost:8899"},
		{name: "empty endpoint", url: "", wantErr: assetkit.ErrInvalidNetwork},
		{name: "client instead of endpoint", url: "", opts: []RPCOption{WithRPCClient(rpc.New("http://localhost:8899"))}},
		{name: "finalized commitment", url: "http://localhost:8899", opts: []RPCOption{WithCommitment(rpc.CommitmentFinalized)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRPC(tt.url, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRPC() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewRPC("http://localhost:8899", WithCommitment("recent")); err == nil {
		t.Error("expected error for unsupported commitment")
	}
}

func TestRPCGetAccountInfoAbsent(t *testing.T) {
	srv := rpcStub(t, map[string]any{
		"getAccountInfo": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   nil,
		},
	})

	r, err := NewRPC(srv.URL)
	if err != nil {
		t.Fatalf("NewRPC() error = %v", err)
	}
	info, err := r.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	if err != nil {
		t.Fatalf("GetAccountInfo() error = %v", err)
	}
	if info != nil {
		t.Errorf("GetAccountInfo() = %+v, want nil", info)
	}
}

func TestRPCGetLatestChainTip(t *testing.T) {
	hash := solana.Hash{4, 2}
	srv := rpcStub(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"blockhash":            hash.String(),
				"lastValidBlockHeight": 321,
			},
		},
	})

	r, err := NewRPC(srv.URL)
	if err != nil {
		t.Fatalf("NewRPC() error = %v", err)
	}
	tip, err := r.GetLatestChainTip(context.Background())
	if err != nil {
		t.Fatalf("GetLatestChainTip() error = %v", err)
	}
	if tip.Blockhash != hash || tip.LastValidBlockHeight != 321 {
		t.Errorf("GetLatestChainTip() = %+v", tip)
	}
}

func TestRPCSubmitRejected(t *testing.T) {
	srv := rpcStub(t, map[string]any{
		"sendTransaction": rpcFailure("Transaction simulation failed: Attempt to debit an account but found no record of a prior credit."),
	})

	r, err := NewRPC(srv.URL)
	if err != nil {
		t.Fatalf("NewRPC() error = %v", err)
	}
	payload, _ := signedPayload(t)

	_, err = r.Submit(context.Background(), payload)
	if !errors.Is(err, assetkit.ErrInsufficientBalance) {
		t.Errorf("Submit() error = %v, want ErrInsufficientBalance", err)
	}
}

func TestClassifyRejection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{
			name:    "token insufficient funds",
			message: "Error processing Instruction 2: custom program error: 0x1",
			want:    assetkit.ErrInsufficientBalance,
		},
		{
			name:    "other custom error",
			message: "Error processing Instruction 2: custom program error: 0x11",
			want:    assetkit.ErrLedgerRejected,
		},
		{
			name:    "system insufficient lamports",
			message: "Transfer: insufficient lamports 10, need 5000",
			want:    assetkit.ErrInsufficientBalance,
		},
		{
			name:    "fee payer has no balance",
			message: "Attempt to debit an account but found no record of a prior credit.",
			want:    assetkit.ErrInsufficientBalance,
		},
		{
			name:    "blockhash expired",
			message: "Blockhash not found",
			want:    assetkit.ErrLedgerRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRejection(errors.New(tt.message))
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyRejection(%q) = %v, want %v", tt.message, got.Kind, tt.want)
			}
			if got.Message != tt.message {
				t.Errorf("Message = %q, want %q", got.Message, tt.message)
			}
		})
	}
}
