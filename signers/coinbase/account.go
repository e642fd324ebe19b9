package coinbase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gagliardetto/solana-go"
)

const solanaAccountsPath = "/platform/v2/solana/accounts"

// Account is a CDP managed Solana account. The same address is valid on every
// cluster.
type Account struct {
	Name    string           `json:"name"`
	Address solana.PublicKey `json:"address"`
}

type listAccountsResponse struct {
	Accounts      []Account `json:"accounts"`
	NextPageToken string    `json:"nextPageToken"`
}

type createAccountRequest struct {
	Name string `json:"name"`
}

// GetOrCreateAccount returns the account called name, creating it when the
// project has none. Calling it repeatedly with the same name yields the same
// address.
func GetOrCreateAccount(ctx context.Context, c *Client, name string) (*Account, error) {
	if name == "" {
		return nil, fmt.Errorf("coinbase: account name is empty")
	}

	path := solanaAccountsPath
	for {
		var page listAccountsResponse
		if err := c.do(ctx, "GET", path, nil, &page, false); err != nil {
			return nil, fmt.Errorf("coinbase: list accounts: %w", err)
		}
		for _, a := range page.Accounts {
			if a.Name == name {
				return &a, nil
			}
		}
		if page.NextPageToken == "" {
			break
		}
		path = solanaAccountsPath + "?pageToken=" + url.QueryEscape(page.NextPageToken)
	}

	var created Account
	if err := c.do(ctx, "POST", solanaAccountsPath, createAccountRequest{Name: name}, &created, true); err != nil {
		return nil, fmt.Errorf("coinbase: create account: %w", err)
	}
	if created.Address.IsZero() {
		return nil, fmt.Errorf("coinbase: create account: empty address in response")
	}
	if created.Name == "" {
		created.Name = name
	}
	return &created, nil
}
