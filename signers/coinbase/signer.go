package coinbase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
)

// DefaultSignTimeout bounds one remote signing call including retries.
const DefaultSignTimeout = 30 * time.Second

const signatureSize = 64

// Signer is an assetkit.Signer whose key lives in a CDP managed account.
// Each Sign call is one round trip to the API.
type Signer struct {
	client  *Client
	account Account
	timeout time.Duration
}

var _ assetkit.Signer = (*Signer)(nil)

// SignerOption configures a Signer.
type SignerOption func(*Signer) error

// WithSignTimeout overrides DefaultSignTimeout.
func WithSignTimeout(d time.Duration) SignerOption {
	return func(s *Signer) error {
		if d <= 0 {
			return fmt.Errorf("coinbase: sign timeout must be positive")
		}
		s.timeout = d
		return nil
	}
}

// NewSigner resolves (or creates) the named account and returns a signer for it.
func NewSigner(ctx context.Context, c *Client, accountName string, opts ...SignerOption) (*Signer, error) {
	if c == nil {
		return nil, fmt.Errorf("coinbase: client is nil")
	}
	account, err := GetOrCreateAccount(ctx, c, accountName)
	if err != nil {
		return nil, err
	}

	s := &Signer{client: c, account: *account, timeout: DefaultSignTimeout}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// PublicKey returns the account address.
func (s *Signer) PublicKey() solana.PublicKey {
	return s.account.Address
}

// AccountName returns the CDP account name.
func (s *Signer) AccountName() string {
	return s.account.Name
}

type signTransactionRequest struct {
	Transaction string `json:"transaction"`
}

type signTransactionResponse struct {
	SignedTransaction string `json:"signedTransaction"`
}

// Sign signs a serialized transaction message. The API only signs whole
// transactions, so the message is wrapped with empty signature slots and the
// account's signature is read back from the returned transaction.
func (s *Signer) Sign(message []byte) (solana.Signature, error) {
	if len(message) == 0 {
		return solana.Signature{}, fmt.Errorf("coinbase: empty message")
	}
	slots := int(message[0])
	if slots == 0 || slots >= 0x80 {
		return solana.Signature{}, fmt.Errorf("coinbase: message is not a legacy transaction message")
	}

	unsigned := make([]byte, 0, 1+slots*signatureSize+len(message))
	unsigned = append(unsigned, byte(slots))
	unsigned = append(unsigned, make([]byte, slots*signatureSize)...)
	unsigned = append(unsigned, message...)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	path := fmt.Sprintf("%s/%s/sign/transaction", solanaAccountsPath, s.account.Address)
	var resp signTransactionResponse
	err := s.client.do(ctx, "POST", path, signTransactionRequest{
		Transaction: base64.StdEncoding.EncodeToString(unsigned),
	}, &resp, true)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("coinbase: sign transaction: %w", err)
	}

	signed, err := solana.TransactionFromBase64(resp.SignedTransaction)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("coinbase: decode signed transaction: %w", err)
	}

	keys := signed.Message.AccountKeys
	for i := 0; i < len(signed.Signatures) && i < len(keys); i++ {
		if !keys[i].Equals(s.account.Address) {
			continue
		}
		sig := signed.Signatures[i]
		if !sig.Verify(s.account.Address, message) {
			return solana.Signature{}, ErrSignerMismatch
		}
		return sig, nil
	}
	return solana.Signature{}, fmt.Errorf("%w: %s not a signer of the message", ErrSignerMismatch, s.account.Address)
}
