package assetkit

import (
	"errors"
	"math/big"
	"testing"
)

func TestToUint64(t *testing.T) {
	tooBig, _ := new(big.Int).SetString("18446744073709551616", 10)

	tests := []struct {
		name    string
		amount  *big.Int
		want    uint64
		wantErr bool
	}{
		{"zero is permitted", big.NewInt(0), 0, false},
		{"plain amount", big.NewInt(500_000_000), 500_000_000, false},
		{"max u64", new(big.Int).SetUint64(^uint64(0)), ^uint64(0), false},
		{"nil", nil, 0, true},
		{"negative", big.NewInt(-1), 0, true},
		{"overflow", tooBig, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUint64(tt.amount)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ToUint64() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountToBigInt(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{"half a token", "0.5", 9, "500000000", false},
		{"whole tokens", "12", 6, "12000000", false},
		{"one NFT", "1", 0, "1", false},
		{"too many decimals", "0.0000000001", 9, "", true},
		{"negative", "-1", 9, "", true},
		{"garbage", "abc", 9, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmountToBigInt(tt.amount, tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("AmountToBigInt(%q, %d) = %s, want %s", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestBigIntToAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		decimals int
		want     string
	}{
		{"nil", nil, 9, "0.000000000"},
		{"half a token", big.NewInt(500_000_000), 9, "0.500000000"},
		{"no decimals", big.NewInt(7), 0, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BigIntToAmount(tt.value, tt.decimals); got != tt.want {
				t.Errorf("BigIntToAmount() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := LamportsToSOL(1_500_000_000); got != "1.500000000" {
		t.Errorf("LamportsToSOL() = %q", got)
	}
}

func TestOperationKindAsset(t *testing.T) {
	tests := []struct {
		kind OperationKind
		want AssetKind
	}{
		{OpSOLTransfer, AssetSOL},
		{OpTokenBurn, AssetFungible},
		{OpTokenCreate, AssetFungible},
		{OpNFTBurn, AssetNonFungible},
		{OpNFTMint, AssetNonFungible},
		{OpBatch, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Asset(); got != tt.want {
				t.Errorf("Asset() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMetadataStandardValidate(t *testing.T) {
	if err := MetadataStandardTokenMetadataV3.Validate(); err != nil {
		t.Errorf("v3 should be supported: %v", err)
	}
	if err := MetadataStandard("legacy-v1").Validate(); !errors.Is(err, ErrUnsupportedMetadataStandard) {
		t.Errorf("expected ErrUnsupportedMetadataStandard, got %v", err)
	}
}
