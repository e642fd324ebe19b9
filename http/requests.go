package http

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/client"
	"github.com/mark3labs/assetkit-go/compose"
	"github.com/mark3labs/assetkit-go/http/internal/helpers"
	"github.com/mark3labs/assetkit-go/keypair"
	"github.com/mark3labs/assetkit-go/metadata"
	"github.com/mark3labs/assetkit-go/validation"
)

// operationRequest is a JSON request body that names its signing roles by
// address and resolves them through a keyring.
type operationRequest interface {
	operation(keys *keypair.Keyring) (client.Operation, error)
	showLog() *bool
}

// binder resolves request fields and keeps the first failure.
type binder struct {
	keys *keypair.Keyring
	err  error
}

func (b *binder) address(role, value string) solana.PublicKey {
	if b.err != nil {
		return solana.PublicKey{}
	}
	address, err := validation.ParseAddress(value)
	if err != nil {
		b.err = fmt.Errorf("%s: %w", role, err)
	}
	return address
}

func (b *binder) optionalAddress(role, value string) solana.PublicKey {
	if value == "" {
		return solana.PublicKey{}
	}
	return b.address(role, value)
}

func (b *binder) signer(role, value string) assetkit.Signer {
	address := b.address(role, value)
	if b.err != nil {
		return nil
	}
	s, err := b.keys.Lookup(address)
	if err != nil {
		b.err = fmt.Errorf("%s: %w", role, err)
		return nil
	}
	return s
}

// optionalSigner returns nil for an empty value.
func (b *binder) optionalSigner(role, value string) assetkit.Signer {
	if value == "" {
		return nil
	}
	return b.signer(role, value)
}

func (b *binder) amount(value string) *big.Int {
	if b.err != nil {
		return nil
	}
	amount, err := validation.ParseAmount(value)
	if err != nil {
		b.err = err
	}
	return amount
}

// TransferSOLRequest is the body of POST /v1/sol/transfer. Amount is in lamports.
type TransferSOLRequest struct {
	FeePayer    string `json:"feePayer"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	ShowLog     *bool  `json:"showLog,omitempty"`
}

func (r TransferSOLRequest) showLog() *bool { return r.ShowLog }

func (r TransferSOLRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.SOLTransferRequest{
		FeePayer:    b.signer("feePayer", r.FeePayer),
		Source:      b.signer("source", r.Source),
		Destination: b.address("destination", r.Destination),
		Amount:      b.amount(r.Amount),
	}
	return client.SOLTransferRequest{SOLTransferRequest: req}, b.err
}

// CreateTokenRequest is the body of POST /v1/tokens. Mint, when set, must be
// a keyring address; otherwise a fresh mint keypair is generated.
type CreateTokenRequest struct {
	FeePayer        string `json:"feePayer"`
	MintAuthority   string `json:"mintAuthority"`
	FreezeAuthority string `json:"freezeAuthority,omitempty"`
	Decimals        *int   `json:"decimals,omitempty"`
	Mint            string `json:"mint,omitempty"`
	ShowLog         *bool  `json:"showLog,omitempty"`
}

func (r CreateTokenRequest) showLog() *bool { return r.ShowLog }

func (r CreateTokenRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.CreateTokenRequest{
		FeePayer:      b.signer("feePayer", r.FeePayer),
		MintAuthority: b.address("mintAuthority", r.MintAuthority),
		Mint:          b.optionalSigner("mint", r.Mint),
	}
	if freeze := b.optionalAddress("freezeAuthority", r.FreezeAuthority); !freeze.IsZero() {
		req.FreezeAuthority = &freeze
	}
	if b.err != nil {
		return nil, b.err
	}
	if r.Decimals != nil {
		if err := validation.ValidateDecimals(*r.Decimals); err != nil {
			return nil, fmt.Errorf("%w: %v", helpers.ErrBadRequest, err)
		}
		decimals := uint8(*r.Decimals)
		req.Decimals = &decimals
	}
	return client.CreateTokenRequest{CreateTokenRequest: req}, nil
}

// MintTokenRequest is the body of POST /v1/tokens/mint. Amount is in base units.
type MintTokenRequest struct {
	FeePayer      string `json:"feePayer"`
	Mint          string `json:"mint"`
	MintAuthority string `json:"mintAuthority"`
	Destination   string `json:"destination,omitempty"`
	Amount        string `json:"amount"`
	ShowLog       *bool  `json:"showLog,omitempty"`
}

func (r MintTokenRequest) showLog() *bool { return r.ShowLog }

func (r MintTokenRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.MintTokenRequest{
		FeePayer:      b.signer("feePayer", r.FeePayer),
		Mint:          b.address("mint", r.Mint),
		MintAuthority: b.signer("mintAuthority", r.MintAuthority),
		Destination:   b.optionalAddress("destination", r.Destination),
		Amount:        b.amount(r.Amount),
	}
	return client.MintTokenRequest{MintTokenRequest: req}, b.err
}

// TransferTokenRequest is the body of POST /v1/tokens/transfer.
type TransferTokenRequest struct {
	FeePayer    string `json:"feePayer"`
	Mint        string `json:"mint"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	ShowLog     *bool  `json:"showLog,omitempty"`
}

func (r TransferTokenRequest) showLog() *bool { return r.ShowLog }

func (r TransferTokenRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.TransferTokenRequest{
		FeePayer:    b.signer("feePayer", r.FeePayer),
		Mint:        b.address("mint", r.Mint),
		Source:      b.signer("source", r.Source),
		Destination: b.address("destination", r.Destination),
		Amount:      b.amount(r.Amount),
	}
	return client.TransferTokenRequest{TransferTokenRequest: req}, b.err
}

// BurnTokenRequest is the body of POST /v1/tokens/burn.
type BurnTokenRequest struct {
	FeePayer string `json:"feePayer"`
	Mint     string `json:"mint"`
	Owner    string `json:"owner"`
	Amount   string `json:"amount"`
	ShowLog  *bool  `json:"showLog,omitempty"`
}

func (r BurnTokenRequest) showLog() *bool { return r.ShowLog }

func (r BurnTokenRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.BurnTokenRequest{
		FeePayer: b.signer("feePayer", r.FeePayer),
		Mint:     b.address("mint", r.Mint),
		Owner:    b.signer("owner", r.Owner),
		Amount:   b.amount(r.Amount),
	}
	return client.BurnTokenRequest{BurnTokenRequest: req}, b.err
}

// CollectionBody names a collection to verify the NFT into. Authority
// defaults to the mint authority.
type CollectionBody struct {
	Mint      string `json:"mint"`
	Authority string `json:"authority,omitempty"`
}

// MintNFTRequest is the body of POST /v1/nfts/mint. Either Metadata or
// MetadataURI must be set.
type MintNFTRequest struct {
	FeePayer        string             `json:"feePayer"`
	MintAuthority   string             `json:"mintAuthority"`
	Owner           string             `json:"owner,omitempty"`
	Mint            string             `json:"mint,omitempty"`
	Metadata        *metadata.Document `json:"metadata,omitempty"`
	MetadataURI     string             `json:"metadataUri,omitempty"`
	MaxSupply       *uint64            `json:"maxSupply,omitempty"`
	UnlimitedPrints bool               `json:"unlimitedPrints,omitempty"`
	IsMutable       *bool              `json:"isMutable,omitempty"`
	Collection      *CollectionBody    `json:"collection,omitempty"`
	ShowLog         *bool              `json:"showLog,omitempty"`
}

func (r MintNFTRequest) showLog() *bool { return r.ShowLog }

func (r MintNFTRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.MintNFTRequest{
		FeePayer:        b.signer("feePayer", r.FeePayer),
		MintAuthority:   b.signer("mintAuthority", r.MintAuthority),
		Owner:           b.optionalAddress("owner", r.Owner),
		Mint:            b.optionalSigner("mint", r.Mint),
		Metadata:        r.Metadata,
		MetadataURI:     r.MetadataURI,
		MaxSupply:       r.MaxSupply,
		UnlimitedPrints: r.UnlimitedPrints,
		IsMutable:       r.IsMutable,
	}
	if r.Collection != nil {
		req.Collection = &compose.CollectionRef{
			Mint:      b.address("collection.mint", r.Collection.Mint),
			Authority: b.optionalSigner("collection.authority", r.Collection.Authority),
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	if r.Metadata == nil {
		if err := validation.ValidateURI(r.MetadataURI); err != nil {
			return nil, err
		}
	}
	return client.MintNFTRequest{MintNFTRequest: req}, nil
}

// TransferNFTRequest is the body of POST /v1/nfts/transfer.
type TransferNFTRequest struct {
	FeePayer    string `json:"feePayer"`
	Mint        string `json:"mint"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	ShowLog     *bool  `json:"showLog,omitempty"`
}

func (r TransferNFTRequest) showLog() *bool { return r.ShowLog }

func (r TransferNFTRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.TransferNFTRequest{
		FeePayer:    b.signer("feePayer", r.FeePayer),
		Mint:        b.address("mint", r.Mint),
		Source:      b.signer("source", r.Source),
		Destination: b.address("destination", r.Destination),
	}
	return client.TransferNFTRequest{TransferNFTRequest: req}, b.err
}

// BurnNFTRequest is the body of POST /v1/nfts/burn.
type BurnNFTRequest struct {
	FeePayer string `json:"feePayer"`
	Mint     string `json:"mint"`
	Owner    string `json:"owner"`
	ShowLog  *bool  `json:"showLog,omitempty"`
}

func (r BurnNFTRequest) showLog() *bool { return r.ShowLog }

func (r BurnNFTRequest) operation(keys *keypair.Keyring) (client.Operation, error) {
	b := &binder{keys: keys}
	req := compose.BurnNFTRequest{
		FeePayer: b.signer("feePayer", r.FeePayer),
		Mint:     b.address("mint", r.Mint),
		Owner:    b.signer("owner", r.Owner),
	}
	return client.BurnNFTRequest{BurnNFTRequest: req}, b.err
}

// BatchItem is one operation of a batch. Type is an operation kind such as
// "nft.mint" and Request is the body the single operation route accepts.
type BatchItem struct {
	Type    assetkit.OperationKind `json:"type"`
	Request json.RawMessage        `json:"request"`
}

// BatchRequest is the body of POST /v1/batch.
type BatchRequest struct {
	Operations []BatchItem `json:"operations"`
	ShowLog    *bool       `json:"showLog,omitempty"`
}

var batchDecoders = map[assetkit.OperationKind]func(json.RawMessage) (operationRequest, error){
	assetkit.OpSOLTransfer:   decodeItem[TransferSOLRequest],
	assetkit.OpTokenCreate:   decodeItem[CreateTokenRequest],
	assetkit.OpTokenMint:     decodeItem[MintTokenRequest],
	assetkit.OpTokenTransfer: decodeItem[TransferTokenRequest],
	assetkit.OpTokenBurn:     decodeItem[BurnTokenRequest],
	assetkit.OpNFTMint:       decodeItem[MintNFTRequest],
	assetkit.OpNFTTransfer:   decodeItem[TransferNFTRequest],
	assetkit.OpNFTBurn:       decodeItem[BurnNFTRequest],
}

func decodeItem[T operationRequest](raw json.RawMessage) (operationRequest, error) {
	var req T
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", helpers.ErrBadRequest, err)
	}
	return req, nil
}

func (r BatchRequest) batch(keys *keypair.Keyring) (client.BatchRequest, error) {
	if len(r.Operations) == 0 {
		return client.BatchRequest{}, assetkit.ErrEmptyTransaction
	}
	out := client.BatchRequest{ShowLog: r.ShowLog, Operations: make([]client.Operation, 0, len(r.Operations))}
	for i, item := range r.Operations {
		decode, ok := batchDecoders[item.Type]
		if !ok {
			return client.BatchRequest{}, fmt.Errorf("%w: batch item %d has unknown type %q", helpers.ErrBadRequest, i, item.Type)
		}
		req, err := decode(item.Request)
		if err != nil {
			return client.BatchRequest{}, fmt.Errorf("batch item %d: %w", i, err)
		}
		op, err := req.operation(keys)
		if err != nil {
			return client.BatchRequest{}, fmt.Errorf("batch item %d: %w", i, err)
		}
		out.Operations = append(out.Operations, op)
	}
	return out, nil
}
