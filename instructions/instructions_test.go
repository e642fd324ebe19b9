package instructions

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func mustData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	if err != nil {
		t.Fatalf("Data() failed: %v", err)
	}
	return data
}

func u64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

func TestTokenInstructionData(t *testing.T) {
	mint, account, dest, owner := newKey(), newKey(), newKey(), newKey()

	tests := []struct {
		name    string
		build   func() (solana.Instruction, error)
		want    []byte
		signers []solana.PublicKey
	}{
		{
			name:    "mint to",
			build:   func() (solana.Instruction, error) { return MintTo(mint, dest, owner, 1) },
			want:    append([]byte{7}, u64(1)...),
			signers: []solana.PublicKey{owner},
		},
		{
			name:    "transfer",
			build:   func() (solana.Instruction, error) { return Transfer(account, dest, owner, 500_000_000) },
			want:    append([]byte{3}, u64(500_000_000)...),
			signers: []solana.PublicKey{owner},
		},
		{
			name:    "burn zero is allowed",
			build:   func() (solana.Instruction, error) { return Burn(account, mint, owner, 0) },
			want:    append([]byte{8}, u64(0)...),
			signers: []solana.PublicKey{owner},
		},
		{
			name:    "close account",
			build:   func() (solana.Instruction, error) { return CloseAccount(account, owner, owner) },
			want:    []byte{9},
			signers: []solana.PublicKey{owner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := tt.build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if !ix.ProgramID().Equals(solana.TokenProgramID) {
				t.Errorf("ProgramID = %s, want token program", ix.ProgramID())
			}
			if got := mustData(t, ix); !bytes.Equal(got, tt.want) {
				t.Errorf("data = %v, want %v", got, tt.want)
			}

			var signers []solana.PublicKey
			for _, meta := range ix.Accounts() {
				if meta.IsSigner {
					signers = append(signers, meta.PublicKey)
				}
			}
			if !solana.PublicKeySlice(signers).Equals(tt.signers) {
				t.Errorf("signers = %v, want %v", signers, tt.signers)
			}
		})
	}
}

func TestCreateMint(t *testing.T) {
	payer, mint, authority := newKey(), newKey(), newKey()

	ixs, err := CreateMint(payer, mint, 1_461_600, 9, authority, authority)
	if err != nil {
		t.Fatalf("CreateMint failed: %v", err)
	}
	if len(ixs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(ixs))
	}

	create, initialize := ixs[0], ixs[1]
	if !create.ProgramID().Equals(solana.SystemProgramID) {
		t.Errorf("first instruction program = %s, want system", create.ProgramID())
	}
	accounts := create.Accounts()
	if !accounts[0].PublicKey.Equals(payer) || !accounts[0].IsSigner {
		t.Error("payer must be the signing funding account")
	}
	if !accounts[1].PublicKey.Equals(mint) || !accounts[1].IsSigner {
		t.Error("mint must be the signing new account")
	}

	data := mustData(t, create)
	// system CreateAccount: u32 id 0, lamports, space, owner
	if binary.LittleEndian.Uint32(data[0:4]) != 0 {
		t.Errorf("create account id = %d", binary.LittleEndian.Uint32(data[0:4]))
	}
	if binary.LittleEndian.Uint64(data[4:12]) != 1_461_600 {
		t.Errorf("lamports = %d", binary.LittleEndian.Uint64(data[4:12]))
	}
	if binary.LittleEndian.Uint64(data[12:20]) != MintSize {
		t.Errorf("space = %d, want %d", binary.LittleEndian.Uint64(data[12:20]), MintSize)
	}
	if !bytes.Equal(data[20:52], solana.TokenProgramID[:]) {
		t.Error("mint account must be owned by the token program")
	}

	if !initialize.ProgramID().Equals(solana.TokenProgramID) {
		t.Errorf("second instruction program = %s, want token", initialize.ProgramID())
	}
	initData := mustData(t, initialize)
	if initData[0] != 0 || initData[1] != 9 {
		t.Errorf("initialize mint data header = %v, want [0 9]", initData[:2])
	}
	if !bytes.Equal(initData[2:34], authority[:]) {
		t.Error("mint authority not encoded")
	}
	if initData[34] != 1 || !bytes.Equal(initData[35:67], authority[:]) {
		t.Error("freeze authority not encoded")
	}
}

func TestInitializeMintWithoutFreezeAuthority(t *testing.T) {
	ix, err := InitializeMint(newKey(), 0, newKey(), solana.PublicKey{})
	if err != nil {
		t.Fatalf("InitializeMint failed: %v", err)
	}
	data := mustData(t, ix)
	if len(data) != 35 || data[34] != 0 {
		t.Errorf("expected absent freeze authority, data = %v", data)
	}
}

func TestTransferLamports(t *testing.T) {
	from, to := newKey(), newKey()
	ix, err := TransferLamports(from, to, 42)
	if err != nil {
		t.Fatalf("TransferLamports failed: %v", err)
	}
	data := mustData(t, ix)
	want := append([]byte{2, 0, 0, 0}, u64(42)...)
	if !bytes.Equal(data, want) {
		t.Errorf("data = %v, want %v", data, want)
	}

	if _, err := TransferLamports(solana.PublicKey{}, to, 1); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestCreateAssociatedAccount(t *testing.T) {
	payer, owner, mint := newKey(), newKey(), newKey()

	ix, err := CreateAssociatedAccount(payer, owner, mint)
	if err != nil {
		t.Fatalf("CreateAssociatedAccount failed: %v", err)
	}
	if !ix.ProgramID().Equals(solana.SPLAssociatedTokenAccountProgramID) {
		t.Errorf("ProgramID = %s", ix.ProgramID())
	}

	want, err := AssociatedAddress(owner, mint)
	if err != nil {
		t.Fatalf("AssociatedAddress failed: %v", err)
	}
	accounts := ix.Accounts()
	if !accounts[0].PublicKey.Equals(payer) || !accounts[0].IsSigner {
		t.Error("payer must sign")
	}
	if !accounts[1].PublicKey.Equals(want) {
		t.Errorf("associated account = %s, want %s", accounts[1].PublicKey, want)
	}
	if accounts[2].IsSigner {
		t.Error("owner must not be required to sign")
	}

	again, _ := AssociatedAddress(owner, mint)
	if !again.Equals(want) {
		t.Error("derivation must be deterministic")
	}
}

func TestFrozenInstructionsAreIndependent(t *testing.T) {
	owner := newKey()
	ix, err := Transfer(newKey(), newKey(), owner, 1)
	if err != nil {
		t.Fatal(err)
	}
	clone, err := Clone(ix)
	if err != nil {
		t.Fatal(err)
	}
	clone.Accounts()[0].IsSigner = true

	if ix.Accounts()[0].IsSigner {
		t.Error("mutating a clone changed the original instruction")
	}
}

func TestCreateMetadataV3Layout(t *testing.T) {
	mint, authority, payer := newKey(), newKey(), newKey()

	ix, err := CreateMetadataV3(MetadataAccounts{
		Mint:            mint,
		MintAuthority:   authority,
		Payer:           payer,
		UpdateAuthority: authority,
	}, DataV2{Name: "A", Symbol: "B", URI: "C", SellerFeeBasisPoints: 500}, true)
	if err != nil {
		t.Fatalf("CreateMetadataV3 failed: %v", err)
	}

	want := []byte{
		33,
		1, 0, 0, 0, 'A',
		1, 0, 0, 0, 'B',
		1, 0, 0, 0, 'C',
		0xf4, 0x01,
		0, // creators
		0, // collection
		0, // uses
		1, // is mutable
		0, // collection details
	}
	if got := mustData(t, ix); !bytes.Equal(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}

	metadata, err := MetadataAddress(mint)
	if err != nil {
		t.Fatal(err)
	}
	accounts := ix.Accounts()
	if len(accounts) != 6 {
		t.Fatalf("got %d accounts, want 6", len(accounts))
	}
	if !accounts[0].PublicKey.Equals(metadata) || !accounts[0].IsWritable {
		t.Error("metadata account must come first and be writable")
	}
	if !accounts[3].PublicKey.Equals(payer) || !accounts[3].IsSigner {
		t.Error("payer must sign")
	}
}

func TestCreateMetadataV3Creators(t *testing.T) {
	mint, authority, other, collection := newKey(), newKey(), newKey(), newKey()
	creators := []Creator{
		{Address: authority, Verified: true, Share: 60},
		{Address: other, Share: 40},
	}

	ix, err := CreateMetadataV3(MetadataAccounts{
		Mint: mint, MintAuthority: authority, Payer: authority, UpdateAuthority: authority,
	}, DataV2{
		Name:       "Sample NFT",
		Symbol:     "SMPL",
		URI:        "https://example.com/nft.json",
		Creators:   &creators,
		Collection: &Collection{Key: collection},
	}, false)
	if err != nil {
		t.Fatalf("CreateMetadataV3 failed: %v", err)
	}

	data := mustData(t, ix)
	var args createMetadataAccountArgsV3
	if err := borsh.Deserialize(&args, data[1:]); err != nil {
		t.Fatalf("failed to decode args: %v", err)
	}
	if args.Data.Name != "Sample NFT" || args.Data.Symbol != "SMPL" {
		t.Errorf("decoded name/symbol = %q/%q", args.Data.Name, args.Data.Symbol)
	}
	if args.Data.Creators == nil || len(*args.Data.Creators) != 2 {
		t.Fatalf("decoded creators = %v", args.Data.Creators)
	}
	if got := (*args.Data.Creators)[0]; !got.Address.Equals(authority) || !got.Verified || got.Share != 60 {
		t.Errorf("first creator = %+v", got)
	}
	if args.Data.Collection == nil || !args.Data.Collection.Key.Equals(collection) || args.Data.Collection.Verified {
		t.Errorf("decoded collection = %+v", args.Data.Collection)
	}
	if args.IsMutable {
		t.Error("IsMutable should be false")
	}
}

func TestDataV2Validate(t *testing.T) {
	long := string(bytes.Repeat([]byte("x"), 33))
	badShares := []Creator{{Address: newKey(), Share: 50}, {Address: newKey(), Share: 20}}
	tooMany := make([]Creator, 6)
	for i := range tooMany {
		tooMany[i] = Creator{Address: newKey(), Share: 10}
	}

	tests := []struct {
		name    string
		data    DataV2
		wantErr bool
	}{
		{"valid", DataV2{Name: "ok", Symbol: "OK", URI: "https://x"}, false},
		{"name too long", DataV2{Name: long}, true},
		{"symbol too long", DataV2{Symbol: "ELEVENCHARS"}, true},
		{"fee too high", DataV2{SellerFeeBasisPoints: 10001}, true},
		{"shares do not sum to 100", DataV2{Creators: &badShares}, true},
		{"too many creators", DataV2{Creators: &tooMany}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMasterEditionV3(t *testing.T) {
	mint, authority, payer := newKey(), newKey(), newKey()
	accounts := MasterEditionAccounts{Mint: mint, UpdateAuthority: authority, MintAuthority: authority, Payer: payer}

	zero := uint64(0)
	tests := []struct {
		name      string
		maxSupply *uint64
		want      []byte
	}{
		{"no prints", &zero, append([]byte{17, 1}, u64(0)...)},
		{"unlimited", nil, []byte{17, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := CreateMasterEditionV3(accounts, tt.maxSupply)
			if err != nil {
				t.Fatalf("CreateMasterEditionV3 failed: %v", err)
			}
			if got := mustData(t, ix); !bytes.Equal(got, tt.want) {
				t.Errorf("data = %v, want %v", got, tt.want)
			}
		})
	}

	ix, _ := CreateMasterEditionV3(accounts, nil)
	edition, err := MasterEditionAddress(mint)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.Accounts()[0].PublicKey.Equals(edition) {
		t.Error("edition account must come first")
	}
	if !ix.Accounts()[1].IsWritable {
		t.Error("mint must be writable so authority can move to the edition")
	}
}

func TestVerifyCollection(t *testing.T) {
	mint, authority, collection := newKey(), newKey(), newKey()

	ix, err := VerifyCollection(VerifyCollectionAccounts{
		Mint:                mint,
		CollectionAuthority: authority,
		Payer:               authority,
		CollectionMint:      collection,
	})
	if err != nil {
		t.Fatalf("VerifyCollection failed: %v", err)
	}
	if got := mustData(t, ix); !bytes.Equal(got, []byte{18}) {
		t.Errorf("data = %v, want [18]", got)
	}

	collectionMetadata, _ := MetadataAddress(collection)
	collectionEdition, _ := MasterEditionAddress(collection)
	accounts := ix.Accounts()
	if !accounts[4].PublicKey.Equals(collectionMetadata) || !accounts[5].PublicKey.Equals(collectionEdition) {
		t.Error("collection metadata and edition accounts are wrong")
	}

	if _, err := VerifyCollection(VerifyCollectionAccounts{Mint: mint}); err == nil {
		t.Error("expected error without collection mint")
	}
}
