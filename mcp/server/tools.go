package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/client"
	"github.com/mark3labs/assetkit-go/compose"
	"github.com/mark3labs/assetkit-go/keypair"
	"github.com/mark3labs/assetkit-go/mcp"
	"github.com/mark3labs/assetkit-go/metadata"
	"github.com/mark3labs/assetkit-go/validation"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	feePayer := mcpproto.WithString(mcp.ArgFeePayer, mcpproto.Required(), mcpproto.Description("Fee payer address; must be held by the server"))
	mint := mcpproto.WithString(mcp.ArgMint, mcpproto.Required(), mcpproto.Description("Mint address"))
	amount := mcpproto.WithString(mcp.ArgAmount, mcpproto.Required(), mcpproto.Description("Amount in base units"))

	s.addTool(mcpproto.NewTool(mcp.ToolSOLTransfer,
		mcpproto.WithDescription("Build a signed SOL transfer"),
		feePayer,
		mcpproto.WithString(mcp.ArgSource, mcpproto.Required(), mcpproto.Description("Sending wallet; must be held by the server")),
		mcpproto.WithString(mcp.ArgDestination, mcpproto.Required(), mcpproto.Description("Receiving wallet")),
		mcpproto.WithString(mcp.ArgAmount, mcpproto.Required(), mcpproto.Description("Amount in lamports")),
	), s.handleSOLTransfer)

	s.addTool(mcpproto.NewTool(mcp.ToolTokenTransfer,
		mcpproto.WithDescription("Build a signed fungible token transfer, creating the destination account when needed"),
		feePayer, mint, amount,
		mcpproto.WithString(mcp.ArgSource, mcpproto.Required(), mcpproto.Description("Owner of the source account; must be held by the server")),
		mcpproto.WithString(mcp.ArgDestination, mcpproto.Required(), mcpproto.Description("Receiving wallet")),
	), s.handleTokenTransfer)

	s.addTool(mcpproto.NewTool(mcp.ToolTokenBurn,
		mcpproto.WithDescription("Build a signed fungible token burn"),
		feePayer, mint, amount,
		mcpproto.WithString(mcp.ArgOwner, mcpproto.Required(), mcpproto.Description("Token owner; must be held by the server")),
	), s.handleTokenBurn)

	s.addTool(mcpproto.NewTool(mcp.ToolNFTMint,
		mcpproto.WithDescription("Build a signed NFT mint with metadata and master edition"),
		feePayer,
		mcpproto.WithString(mcp.ArgMintAuthority, mcpproto.Required(), mcpproto.Description("Mint and update authority; must be held by the server")),
		mcpproto.WithString(mcp.ArgMetadataURI, mcpproto.Required(), mcpproto.Description("Metadata JSON URI")),
		mcpproto.WithString(mcp.ArgOwner, mcpproto.Description("Recipient wallet; defaults to the mint authority")),
		mcpproto.WithString(mcp.ArgName, mcpproto.Description("On-chain name; when omitted the metadata JSON is fetched")),
		mcpproto.WithString(mcp.ArgSymbol, mcpproto.Description("On-chain symbol")),
		mcpproto.WithNumber(mcp.ArgSellerFeeBasisPoints, mcpproto.Description("Royalty in basis points")),
		mcpproto.WithString(mcp.ArgCollection, mcpproto.Description("Collection mint to verify into")),
	), s.handleNFTMint)

	s.addTool(mcpproto.NewTool(mcp.ToolNFTTransfer,
		mcpproto.WithDescription("Build a signed NFT transfer"),
		feePayer, mint,
		mcpproto.WithString(mcp.ArgSource, mcpproto.Required(), mcpproto.Description("Current holder; must be held by the server")),
		mcpproto.WithString(mcp.ArgDestination, mcpproto.Required(), mcpproto.Description("Receiving wallet")),
	), s.handleNFTTransfer)

	s.addTool(mcpproto.NewTool(mcp.ToolNFTBurn,
		mcpproto.WithDescription("Build a signed NFT burn that closes the token account"),
		feePayer, mint,
		mcpproto.WithString(mcp.ArgOwner, mcpproto.Required(), mcpproto.Description("Current holder; must be held by the server")),
	), s.handleNFTBurn)

	s.addTool(mcpproto.NewTool(mcp.ToolTokenBalances,
		mcpproto.WithDescription("List token balances of a wallet"),
		mcpproto.WithString(mcp.ArgOwner, mcpproto.Required(), mcpproto.Description("Wallet address")),
	), s.handleTokenBalances)
}

// arguments reads tool arguments and keeps the first failure.
type arguments struct {
	values map[string]any
	keys   *keypair.Keyring
	err    error
}

func (s *Server) arguments(req mcpproto.CallToolRequest) *arguments {
	return &arguments{values: req.GetArguments(), keys: s.keys}
}

func (a *arguments) fail(key string, err error) {
	if a.err == nil {
		a.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (a *arguments) optionalString(key string) string {
	raw, ok := a.values[key]
	if !ok || raw == nil {
		return ""
	}
	v, ok := raw.(string)
	if !ok {
		a.fail(key, fmt.Errorf("%w: expected string, got %T", mcp.ErrInvalidArgument, raw))
	}
	return v
}

func (a *arguments) required(key string) string {
	v := a.optionalString(key)
	if v == "" {
		a.fail(key, mcp.ErrMissingArgument)
	}
	return v
}

func (a *arguments) address(key string) solana.PublicKey {
	v := a.required(key)
	if a.err != nil {
		return solana.PublicKey{}
	}
	address, err := validation.ParseAddress(v)
	if err != nil {
		a.fail(key, err)
	}
	return address
}

func (a *arguments) optionalAddress(key string) solana.PublicKey {
	if a.optionalString(key) == "" {
		return solana.PublicKey{}
	}
	return a.address(key)
}

func (a *arguments) signer(key string) assetkit.Signer {
	address := a.address(key)
	if a.err != nil {
		return nil
	}
	s, err := a.keys.Lookup(address)
	if err != nil {
		a.fail(key, err)
		return nil
	}
	return s
}

func (a *arguments) amount(key string) *big.Int {
	v := a.required(key)
	if a.err != nil {
		return nil
	}
	amount, err := validation.ParseAmount(v)
	if err != nil {
		a.fail(key, err)
	}
	return amount
}

func (a *arguments) basisPoints(key string) uint16 {
	raw, ok := a.values[key]
	if !ok || raw == nil {
		return 0
	}
	v, ok := raw.(float64)
	if !ok || v < 0 || v > math.MaxUint16 || v != math.Trunc(v) {
		a.fail(key, fmt.Errorf("%w: expected basis points, got %v", mcp.ErrInvalidArgument, raw))
		return 0
	}
	return uint16(v)
}

func (s *Server) handleSOLTransfer(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	op := client.SOLTransferRequest{SOLTransferRequest: compose.SOLTransferRequest{
		FeePayer:    a.signer(mcp.ArgFeePayer),
		Source:      a.signer(mcp.ArgSource),
		Destination: a.address(mcp.ArgDestination),
		Amount:      a.amount(mcp.ArgAmount),
	}}
	return s.run(ctx, mcp.ToolSOLTransfer, a, op)
}

func (s *Server) handleTokenTransfer(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	op := client.TransferTokenRequest{TransferTokenRequest: compose.TransferTokenRequest{
		FeePayer:    a.signer(mcp.ArgFeePayer),
		Mint:        a.address(mcp.ArgMint),
		Source:      a.signer(mcp.ArgSource),
		Destination: a.address(mcp.ArgDestination),
		Amount:      a.amount(mcp.ArgAmount),
	}}
	return s.run(ctx, mcp.ToolTokenTransfer, a, op)
}

func (s *Server) handleTokenBurn(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	op := client.BurnTokenRequest{BurnTokenRequest: compose.BurnTokenRequest{
		FeePayer: a.signer(mcp.ArgFeePayer),
		Mint:     a.address(mcp.ArgMint),
		Owner:    a.signer(mcp.ArgOwner),
		Amount:   a.amount(mcp.ArgAmount),
	}}
	return s.run(ctx, mcp.ToolTokenBurn, a, op)
}

func (s *Server) handleNFTMint(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	mintReq := compose.MintNFTRequest{
		FeePayer:      a.signer(mcp.ArgFeePayer),
		MintAuthority: a.signer(mcp.ArgMintAuthority),
		Owner:         a.optionalAddress(mcp.ArgOwner),
		MetadataURI:   a.required(mcp.ArgMetadataURI),
	}
	if a.err == nil {
		if err := validation.ValidateURI(mintReq.MetadataURI); err != nil {
			a.fail(mcp.ArgMetadataURI, err)
		}
	}
	if name := a.optionalString(mcp.ArgName); name != "" && a.err == nil {
		mintReq.Metadata = &metadata.Document{
			Name:                 name,
			Symbol:               a.optionalString(mcp.ArgSymbol),
			URI:                  mintReq.MetadataURI,
			SellerFeeBasisPoints: a.basisPoints(mcp.ArgSellerFeeBasisPoints),
			Creators:             []metadata.Creator{{Address: mintReq.MintAuthority.PublicKey(), Share: 100}},
		}
	}
	if collection := a.optionalAddress(mcp.ArgCollection); !collection.IsZero() {
		mintReq.Collection = &compose.CollectionRef{Mint: collection}
	}
	return s.run(ctx, mcp.ToolNFTMint, a, client.MintNFTRequest{MintNFTRequest: mintReq})
}

func (s *Server) handleNFTTransfer(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	op := client.TransferNFTRequest{TransferNFTRequest: compose.TransferNFTRequest{
		FeePayer:    a.signer(mcp.ArgFeePayer),
		Mint:        a.address(mcp.ArgMint),
		Source:      a.signer(mcp.ArgSource),
		Destination: a.address(mcp.ArgDestination),
	}}
	return s.run(ctx, mcp.ToolNFTTransfer, a, op)
}

func (s *Server) handleNFTBurn(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	op := client.BurnNFTRequest{BurnNFTRequest: compose.BurnNFTRequest{
		FeePayer: a.signer(mcp.ArgFeePayer),
		Mint:     a.address(mcp.ArgMint),
		Owner:    a.signer(mcp.ArgOwner),
	}}
	return s.run(ctx, mcp.ToolNFTBurn, a, op)
}

func (s *Server) handleTokenBalances(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	a := s.arguments(req)
	owner := a.address(mcp.ArgOwner)
	if a.err != nil {
		return s.toolError(mcp.ToolTokenBalances, a.err), nil
	}

	balances, err := s.client.Composer().TokenBalances(ctx, owner)
	if err != nil {
		return s.toolError(mcp.ToolTokenBalances, err), nil
	}
	out := mcp.BalancesResult{Owner: owner.String(), Balances: make(map[string]string, len(balances))}
	for m, amount := range balances {
		out.Balances[m.String()] = fmt.Sprintf("%d", amount)
	}
	return s.text(mcp.ToolTokenBalances, out)
}

func (s *Server) run(ctx context.Context, tool string, a *arguments, op client.Operation) (*mcpproto.CallToolResult, error) {
	if a.err != nil {
		return s.toolError(tool, a.err), nil
	}
	s.logCall(tool)

	result, err := s.client.Do(ctx, op, nil)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	out := mcp.TransactionResult{
		Transaction:          result.Payload,
		Signature:            result.Signature.String(),
		Blockhash:            result.ChainTip.Blockhash.String(),
		LastValidBlockHeight: result.ChainTip.LastValidBlockHeight,
		Kind:                 string(result.Kind),
		Asset:                string(result.Kind.Asset()),
		Accounts:             make(map[string]string, len(result.Accounts)),
	}
	if result.Amount != nil {
		out.Amount = result.Amount.String()
	}
	for name, address := range result.Accounts {
		out.Accounts[name] = address.String()
	}
	return s.text(tool, out)
}

func (s *Server) text(tool string, v any) (*mcpproto.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, mcp.WrapToolError(fmt.Errorf("failed to marshal result: %w", err), tool)
	}
	return mcpproto.NewToolResultText(string(data)), nil
}

func (s *Server) toolError(tool string, err error) *mcpproto.CallToolResult {
	err = mcp.WrapToolError(err, tool)
	if !mcp.IsInputError(err) {
		s.logger.Warn("tool failed", "tool", tool, "error", err)
	}
	return mcpproto.NewToolResultError(err.Error())
}

func (s *Server) logCall(tool string) {
	if s.config.Verbose {
		s.logger.Info("tool call", "tool", tool)
		return
	}
	s.logger.Debug("tool call", "tool", tool)
}
