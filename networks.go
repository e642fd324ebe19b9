// Package assetkit builds, batches and signs Solana transactions for native
// SOL, SPL fungible tokens and NFTs carrying token metadata.
//
// The root package holds the shared data model: UnsignedOperation, the Signer
// capability, Aggregate for batching, network presets and error kinds. The
// compose, resolver, txbuilder and ledger packages do the work.
package assetkit

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
)

// Ledger limits and unit constants.
const (
	// MaxTransactionSize is the largest serialized legacy transaction the
	// ledger accepts, in bytes.
	MaxTransactionSize = 1232

	// SOLDecimals is the number of decimals between lamports and SOL.
	SOLDecimals = 9

	// DefaultTokenDecimals is used when a fungible token is created without explicit decimals.
	DefaultTokenDecimals uint8 = 9

	// NFTDecimals is the fixed decimals of an NFT mint.
	NFTDecimals uint8 = 0
)

// Network is a named Solana cluster and its public RPC endpoint.
type Network struct {
	// Name is the identifier used in configuration files, e.g. "devnet".
	Name string

	// RPCURL is the JSON-RPC endpoint.
	RPCURL string

	// ExplorerCluster is the cluster query parameter for explorer links.
	ExplorerCluster string
}

var (
	// Mainnet is Solana mainnet-beta.
	Mainnet = Network{Name: "mainnet-beta", RPCURL: rpc.MainNetBeta_RPC, ExplorerCluster: ""}

	// Devnet is the public development cluster.
	Devnet = Network{Name: "devnet", RPCURL: rpc.DevNet_RPC, ExplorerCluster: "devnet"}

	// Testnet is the public test cluster.
	Testnet = Network{Name: "testnet", RPCURL: rpc.TestNet_RPC, ExplorerCluster: "testnet"}

	// Localnet is a solana-test-validator on the default port.
	Localnet = Network{Name: "localnet", RPCURL: rpc.LocalNet_RPC, ExplorerCluster: "custom"}
)

// Networks lists every preset, mainnet first.
var Networks = []Network{Mainnet, Devnet, Testnet, Localnet}

// LookupNetwork resolves a network by name. "mainnet" and "solana" are accepted
// for mainnet-beta and "solana-devnet" for devnet.
func LookupNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet-beta", "mainnet", "solana":
		return Mainnet, nil
	case "devnet", "solana-devnet":
		return Devnet, nil
	case "testnet":
		return Testnet, nil
	case "localnet", "localhost":
		return Localnet, nil
	case "":
		return Network{}, fmt.Errorf("%w: network cannot be empty", ErrInvalidNetwork)
	default:
		return Network{}, fmt.Errorf("%w: %s", ErrInvalidNetwork, name)
	}
}

// ExplorerURL links a transaction signature on the public explorer.
func (n Network) ExplorerURL(signature string) string {
	url := "https://explorer.solana.com/tx/" + signature
	if n.ExplorerCluster == "" {
		return url
	}
	if n.ExplorerCluster == "custom" {
		return url + "?cluster=custom&customUrl=" + n.RPCURL
	}
	return url + "?cluster=" + n.ExplorerCluster
}
