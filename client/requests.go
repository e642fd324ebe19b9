package client

import (
	"context"

	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/compose"
)

// SOLTransferRequest transfers lamports. ShowLog defaults to true.
type SOLTransferRequest struct {
	compose.SOLTransferRequest
	ShowLog *bool
}

func (r SOLTransferRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.TransferSOL(ctx, r.SOLTransferRequest)
}

// CreateTokenRequest creates a fungible token mint.
type CreateTokenRequest struct {
	compose.CreateTokenRequest
	ShowLog *bool
}

func (r CreateTokenRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.CreateToken(ctx, r.CreateTokenRequest)
}

// MintTokenRequest mints fungible tokens.
type MintTokenRequest struct {
	compose.MintTokenRequest
	ShowLog *bool
}

func (r MintTokenRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.MintToken(ctx, r.MintTokenRequest)
}

// TransferTokenRequest transfers fungible tokens.
type TransferTokenRequest struct {
	compose.TransferTokenRequest
	ShowLog *bool
}

func (r TransferTokenRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.TransferToken(ctx, r.TransferTokenRequest)
}

// BurnTokenRequest burns fungible tokens.
type BurnTokenRequest struct {
	compose.BurnTokenRequest
	ShowLog *bool
}

func (r BurnTokenRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.BurnToken(ctx, r.BurnTokenRequest)
}

// MintNFTRequest mints a non-fungible token.
type MintNFTRequest struct {
	compose.MintNFTRequest
	ShowLog *bool
}

func (r MintNFTRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.MintNFT(ctx, r.MintNFTRequest)
}

// TransferNFTRequest transfers a non-fungible token.
type TransferNFTRequest struct {
	compose.TransferNFTRequest
	ShowLog *bool
}

func (r TransferNFTRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.TransferNFT(ctx, r.TransferNFTRequest)
}

// BurnNFTRequest burns a non-fungible token and closes its account.
type BurnNFTRequest struct {
	compose.BurnNFTRequest
	ShowLog *bool
}

func (r BurnNFTRequest) compose(ctx context.Context, c *compose.Composer) (*assetkit.UnsignedOperation, error) {
	return c.BurnNFT(ctx, r.BurnNFTRequest)
}

// TransferSOL composes and encodes a SOL transfer.
func (c *Client) TransferSOL(ctx context.Context, req SOLTransferRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// CreateToken composes and encodes a token mint creation.
func (c *Client) CreateToken(ctx context.Context, req CreateTokenRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// MintToken composes and encodes a token mint.
func (c *Client) MintToken(ctx context.Context, req MintTokenRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// TransferToken composes and encodes a token transfer.
func (c *Client) TransferToken(ctx context.Context, req TransferTokenRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// BurnToken composes and encodes a token burn.
func (c *Client) BurnToken(ctx context.Context, req BurnTokenRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// MintNFT composes and encodes an NFT mint.
func (c *Client) MintNFT(ctx context.Context, req MintNFTRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// TransferNFT composes and encodes an NFT transfer.
func (c *Client) TransferNFT(ctx context.Context, req TransferNFTRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// BurnNFT composes and encodes an NFT burn.
func (c *Client) BurnNFT(ctx context.Context, req BurnNFTRequest) (*Result, error) {
	return c.Do(ctx, req, req.ShowLog)
}

// BatchMintNFTRequest mints several NFTs in one transaction.
type BatchMintNFTRequest struct {
	ShowLog *bool
	Items   []compose.MintNFTRequest
}

// BatchMintNFT mints every item in one transaction.
func (c *Client) BatchMintNFT(ctx context.Context, req BatchMintNFTRequest) (*Result, error) {
	ops := make([]Operation, len(req.Items))
	for i, item := range req.Items {
		ops[i] = MintNFTRequest{MintNFTRequest: item}
	}
	return c.Batch(ctx, BatchRequest{ShowLog: req.ShowLog, Operations: ops})
}

// BatchTransferNFTRequest transfers several NFTs in one transaction.
type BatchTransferNFTRequest struct {
	ShowLog *bool
	Items   []compose.TransferNFTRequest
}

// BatchTransferNFT transfers every item in one transaction.
func (c *Client) BatchTransferNFT(ctx context.Context, req BatchTransferNFTRequest) (*Result, error) {
	ops := make([]Operation, len(req.Items))
	for i, item := range req.Items {
		ops[i] = TransferNFTRequest{TransferNFTRequest: item}
	}
	return c.Batch(ctx, BatchRequest{ShowLog: req.ShowLog, Operations: ops})
}

// BatchBurnNFTRequest burns several NFTs in one transaction.
type BatchBurnNFTRequest struct {
	ShowLog *bool
	Items   []compose.BurnNFTRequest
}

// BatchBurnNFT burns every item in one transaction.
func (c *Client) BatchBurnNFT(ctx context.Context, req BatchBurnNFTRequest) (*Result, error) {
	ops := make([]Operation, len(req.Items))
	for i, item := range req.Items {
		ops[i] = BurnNFTRequest{BurnNFTRequest: item}
	}
	return c.Batch(ctx, BatchRequest{ShowLog: req.ShowLog, Operations: ops})
}
