// Package mcp exposes transaction construction as Model Context Protocol tools.
package mcp

// Tool names.
const (
	ToolSOLTransfer   = "sol_transfer"
	ToolTokenTransfer = "token_transfer"
	ToolTokenBurn     = "token_burn"
	ToolNFTMint       = "nft_mint"
	ToolNFTTransfer   = "nft_transfer"
	ToolNFTBurn       = "nft_burn"
	ToolTokenBalances = "token_balances"
)

// Tool argument keys. Addresses are base58 strings and amounts are decimal
// strings in base units.
const (
	ArgFeePayer             = "fee_payer"
	ArgSource               = "source"
	ArgDestination          = "destination"
	ArgAmount               = "amount"
	ArgMint                 = "mint"
	ArgOwner                = "owner"
	ArgMintAuthority        = "mint_authority"
	ArgMetadataURI          = "metadata_uri"
	ArgName                 = "name"
	ArgSymbol               = "symbol"
	ArgSellerFeeBasisPoints = "seller_fee_basis_points"
	ArgCollection           = "collection"
)

// TransactionResult is the JSON text returned by every construction tool.
type TransactionResult struct {
	Transaction          string            `json:"transaction"`
	Signature            string            `json:"signature"`
	Blockhash            string            `json:"blockhash"`
	LastValidBlockHeight uint64            `json:"lastValidBlockHeight"`
	Kind                 string            `json:"kind"`
	Asset                string            `json:"asset,omitempty"`
	Amount               string            `json:"amount,omitempty"`
	Accounts             map[string]string `json:"accounts,omitempty"`
}

// BalancesResult is the JSON text returned by token_balances.
type BalancesResult struct {
	Owner    string            `json:"owner"`
	Balances map[string]string `json:"balances"`
}
