package compose

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
	"github.com/mark3labs/assetkit-go/metadata"
)

// CollectionRef points a new NFT at a collection parent and names who may
// verify membership.
type CollectionRef struct {
	// Mint of the collection parent NFT.
	Mint solana.PublicKey

	// Authority is the collection's update authority. Defaults to the NFT's
	// mint authority.
	Authority assetkit.Signer
}

// MintNFTRequest mints a single NFT with metadata and a master edition.
type MintNFTRequest struct {
	FeePayer assetkit.Signer

	// MintAuthority is also the update authority of the metadata.
	MintAuthority assetkit.Signer

	// Owner receives the token. Defaults to MintAuthority.
	Owner solana.PublicKey

	// Mint is the new mint account. A fresh keypair is generated when nil.
	Mint assetkit.Signer

	// Metadata is used as is when set. Otherwise MetadataURI is fetched.
	Metadata    *metadata.Document
	MetadataURI string

	// MaxSupply of prints from the master edition. Defaults to 0.
	MaxSupply *uint64

	// UnlimitedPrints lifts the print limit and overrides MaxSupply.
	UnlimitedPrints bool

	// IsMutable defaults to true.
	IsMutable *bool

	// Collection, when set, is written into the metadata and verified in the
	// same transaction.
	Collection *CollectionRef
}

// MintNFT composes
// [createAccount, initializeMint(0), createMetadataV3, createATA?, mintTo 1, createMasterEditionV3, verifyCollection?].
// Signers are {FeePayer, MintAuthority, Mint} plus the collection authority.
func (c *Composer) MintNFT(ctx context.Context, req MintNFTRequest) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", req.FeePayer); err != nil {
		return nil, err
	}
	if err := requireSigner("mint authority", req.MintAuthority); err != nil {
		return nil, err
	}

	doc, err := c.document(ctx, req)
	if err != nil {
		return nil, err
	}

	var collectionAuthority assetkit.Signer
	if req.Collection != nil {
		if err := requireAddress("collection mint", req.Collection.Mint); err != nil {
			return nil, err
		}
		collectionAuthority = req.Collection.Authority
		if collectionAuthority == nil {
			collectionAuthority = req.MintAuthority
		}
		doc.Collection = &metadata.Collection{Key: req.Collection.Mint}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	mint, err := newMint(req.Mint)
	if err != nil {
		return nil, err
	}
	rent, err := c.rentFor(ctx, mintSize)
	if err != nil {
		return nil, err
	}

	payer := req.FeePayer.PublicKey()
	authority := req.MintAuthority.PublicKey()
	owner := req.Owner
	if owner.IsZero() {
		owner = authority
	}

	ixs, err := instructions.CreateMint(payer, mint.PublicKey(), rent, assetkit.NFTDecimals, authority, authority)
	if err != nil {
		return nil, err
	}

	isMutable := true
	if req.IsMutable != nil {
		isMutable = *req.IsMutable
	}
	createMetadata, err := instructions.CreateMetadataV3(instructions.MetadataAccounts{
		Mint:            mint.PublicKey(),
		MintAuthority:   authority,
		Payer:           payer,
		UpdateAuthority: authority,
	}, doc.OnChain(authority), isMutable)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assetkit.ErrInvalidMetadata, err)
	}
	ixs = append(ixs, createMetadata)

	dest, err := c.resolver.Resolve(ctx, mint.PublicKey(), owner, payer)
	if err != nil {
		return nil, err
	}
	ixs = withCreate(ixs, dest)

	mintTo, err := instructions.MintTo(mint.PublicKey(), dest.Address, authority, 1)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, mintTo)

	var maxSupply *uint64
	if !req.UnlimitedPrints {
		supply := uint64(0)
		if req.MaxSupply != nil {
			supply = *req.MaxSupply
		}
		maxSupply = &supply
	}
	edition, err := instructions.CreateMasterEditionV3(instructions.MasterEditionAccounts{
		Mint:            mint.PublicKey(),
		UpdateAuthority: authority,
		MintAuthority:   authority,
		Payer:           payer,
	}, maxSupply)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, edition)

	if req.Collection != nil {
		verify, err := instructions.VerifyCollection(instructions.VerifyCollectionAccounts{
			Mint:                mint.PublicKey(),
			CollectionAuthority: collectionAuthority.PublicKey(),
			Payer:               payer,
			CollectionMint:      req.Collection.Mint,
		})
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, verify)
	}

	op := assetkit.NewUnsignedOperation(assetkit.OpNFTMint, payer, ixs,
		req.FeePayer, req.MintAuthority, mint, collectionAuthority).
		WithAccount("mint", mint.PublicKey()).
		WithAccount("owner", owner).
		WithAccount("tokenAccount", dest.Address)
	if req.Collection != nil {
		op.WithAccount("collection", req.Collection.Mint)
	}
	return c.composed(op), nil
}

// document returns a private copy of the request's metadata document,
// fetching it when only a URI is given.
func (c *Composer) document(ctx context.Context, req MintNFTRequest) (*metadata.Document, error) {
	if req.Metadata != nil {
		doc := req.Metadata.Clone()
		if doc.URI == "" {
			doc.URI = req.MetadataURI
		}
		return doc, nil
	}
	if req.MetadataURI == "" {
		return nil, fmt.Errorf("%w: metadata document or uri is required", assetkit.ErrInvalidMetadata)
	}

	doc, err := c.fetcher.Fetch(ctx, req.MetadataURI)
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// TransferNFTRequest moves an NFT between owners.
type TransferNFTRequest struct {
	FeePayer    assetkit.Signer
	Mint        solana.PublicKey
	Source      assetkit.Signer
	Destination solana.PublicKey
}

// TransferNFT is TransferToken with amount 1.
func (c *Composer) TransferNFT(ctx context.Context, req TransferNFTRequest) (*assetkit.UnsignedOperation, error) {
	return c.transfer(ctx, assetkit.OpNFTTransfer, req.FeePayer, req.Mint, req.Source, req.Destination, 1)
}

// BurnNFTRequest destroys an NFT held by Owner.
type BurnNFTRequest struct {
	FeePayer assetkit.Signer
	Mint     solana.PublicKey
	Owner    assetkit.Signer
}

// BurnNFT composes [burn 1, closeAccount]. The emptied account's rent goes
// back to Owner. Signers are {FeePayer, Owner}.
func (c *Composer) BurnNFT(ctx context.Context, req BurnNFTRequest) (*assetkit.UnsignedOperation, error) {
	return c.burn(ctx, assetkit.OpNFTBurn, req.FeePayer, req.Mint, req.Owner, 1, true)
}
