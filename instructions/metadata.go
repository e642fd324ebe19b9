package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// Token metadata program instruction discriminators.
const (
	createMasterEditionV3Discriminator   uint8 = 17
	verifyCollectionDiscriminator        uint8 = 18
	createMetadataAccountV3Discriminator uint8 = 33
)

// Token metadata program field limits.
const (
	MaxNameLength          = 32
	MaxSymbolLength        = 10
	MaxURILength           = 200
	MaxCreators            = 5
	MaxSellerFeeBasisPoint = 10000
)

// Creator is a royalty recipient recorded in the metadata account.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection links an NFT to its collection parent mint.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Uses restricts how often an NFT can be used. Method is 0 burn, 1 multiple, 2 single.
type Uses struct {
	Method    uint8
	Remaining uint64
	Total     uint64
}

// DataV2 is the on-chain metadata payload.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
	Collection           *Collection
	Uses                 *Uses
}

// Validate checks the program limits before anything is encoded.
func (d DataV2) Validate() error {
	if len(d.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d bytes", MaxNameLength)
	}
	if len(d.Symbol) > MaxSymbolLength {
		return fmt.Errorf("symbol exceeds %d bytes", MaxSymbolLength)
	}
	if len(d.URI) > MaxURILength {
		return fmt.Errorf("uri exceeds %d bytes", MaxURILength)
	}
	if d.SellerFeeBasisPoints > MaxSellerFeeBasisPoint {
		return fmt.Errorf("seller fee basis points %d exceeds %d", d.SellerFeeBasisPoints, MaxSellerFeeBasisPoint)
	}
	if d.Creators != nil {
		creators := *d.Creators
		if len(creators) > MaxCreators {
			return fmt.Errorf("at most %d creators are allowed", MaxCreators)
		}
		total := 0
		for _, c := range creators {
			total += int(c.Share)
		}
		if len(creators) > 0 && total != 100 {
			return fmt.Errorf("creator shares sum to %d, want 100", total)
		}
	}
	return nil
}

// CollectionDetails marks a collection parent. Kind 0 is the sized V1 variant.
type CollectionDetails struct {
	Kind uint8
	Size uint64
}

type createMetadataAccountArgsV3 struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

type createMasterEditionArgs struct {
	MaxSupply *uint64
}

// MetadataAccounts are the accounts CreateMetadataV3 touches.
type MetadataAccounts struct {
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

// MasterEditionAccounts are the accounts CreateMasterEditionV3 touches.
type MasterEditionAccounts struct {
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
}

// VerifyCollectionAccounts are the accounts VerifyCollection touches.
type VerifyCollectionAccounts struct {
	Mint                solana.PublicKey
	CollectionAuthority solana.PublicKey
	Payer               solana.PublicKey
	CollectionMint      solana.PublicKey
}

// MetadataAddress derives the metadata account of mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindTokenMetadataAddress(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return address, nil
}

// MasterEditionAddress derives the master edition account of mint.
func MasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			solana.TokenMetadataProgramID[:],
			mint[:],
			[]byte("edition"),
		},
		solana.TokenMetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive master edition address: %w", err)
	}
	return address, nil
}

// CreateMetadataV3 creates the metadata account for a mint.
// The update authority signs so that creators equal to it can be marked verified.
func CreateMetadataV3(accounts MetadataAccounts, data DataV2, isMutable bool) (solana.Instruction, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	metadata, err := MetadataAddress(accounts.Mint)
	if err != nil {
		return nil, err
	}

	payload, err := encodeArgs(createMetadataAccountV3Discriminator, createMetadataAccountArgsV3{
		Data:      data,
		IsMutable: isMutable,
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		solana.TokenMetadataProgramID,
		solana.AccountMetaSlice{
			solana.Meta(metadata).WRITE(),
			solana.Meta(accounts.Mint),
			solana.Meta(accounts.MintAuthority).SIGNER(),
			solana.Meta(accounts.Payer).WRITE().SIGNER(),
			solana.Meta(accounts.UpdateAuthority).SIGNER(),
			solana.Meta(solana.SystemProgramID),
		},
		payload,
	), nil
}

// CreateMasterEditionV3 turns a supply-one mint into a master edition and
// hands mint and freeze authority to the edition account. A nil maxSupply
// allows unlimited prints.
func CreateMasterEditionV3(accounts MasterEditionAccounts, maxSupply *uint64) (solana.Instruction, error) {
	edition, err := MasterEditionAddress(accounts.Mint)
	if err != nil {
		return nil, err
	}
	metadata, err := MetadataAddress(accounts.Mint)
	if err != nil {
		return nil, err
	}

	payload, err := encodeArgs(createMasterEditionV3Discriminator, createMasterEditionArgs{MaxSupply: maxSupply})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		solana.TokenMetadataProgramID,
		solana.AccountMetaSlice{
			solana.Meta(edition).WRITE(),
			solana.Meta(accounts.Mint).WRITE(),
			solana.Meta(accounts.UpdateAuthority).SIGNER(),
			solana.Meta(accounts.MintAuthority).SIGNER(),
			solana.Meta(accounts.Payer).WRITE().SIGNER(),
			solana.Meta(metadata).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(solana.SystemProgramID),
		},
		payload,
	), nil
}

// VerifyCollection marks the collection recorded in a mint's metadata as
// verified. It must follow the metadata creation of that mint.
func VerifyCollection(accounts VerifyCollectionAccounts) (solana.Instruction, error) {
	if err := requireKey("collection mint", accounts.CollectionMint); err != nil {
		return nil, err
	}
	metadata, err := MetadataAddress(accounts.Mint)
	if err != nil {
		return nil, err
	}
	collectionMetadata, err := MetadataAddress(accounts.CollectionMint)
	if err != nil {
		return nil, err
	}
	collectionEdition, err := MasterEditionAddress(accounts.CollectionMint)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		solana.TokenMetadataProgramID,
		solana.AccountMetaSlice{
			solana.Meta(metadata).WRITE(),
			solana.Meta(accounts.CollectionAuthority).WRITE().SIGNER(),
			solana.Meta(accounts.Payer).WRITE().SIGNER(),
			solana.Meta(accounts.CollectionMint),
			solana.Meta(collectionMetadata),
			solana.Meta(collectionEdition),
		},
		[]byte{verifyCollectionDiscriminator},
	), nil
}

func encodeArgs(discriminator uint8, args any) ([]byte, error) {
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize instruction %d args: %w", discriminator, err)
	}
	return append([]byte{discriminator}, body...), nil
}
