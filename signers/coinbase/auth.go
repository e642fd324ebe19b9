package coinbase

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const (
	apiHost = "api.cdp.coinbase.com"

	bearerLifetime     = 2 * time.Minute
	walletAuthLifetime = time.Minute
)

// Credentials holds a CDP API key and the optional wallet secret used for
// signing endpoints. It is immutable after construction.
//
//	creds, err := coinbase.NewCredentials(
//	    os.Getenv("CDP_API_KEY_NAME"),
//	    os.Getenv("CDP_API_KEY_SECRET"),
//	    os.Getenv("CDP_WALLET_SECRET"),
//	)
type Credentials struct {
	keyName      string
	walletSecret string
	key          crypto.Signer
	alg          jose.SignatureAlgorithm
}

// claims are the JWT claims the CDP API expects on every request.
type claims struct {
	*jwt.Claims
	URI     string `json:"uri"`
	ReqHash string `json:"reqHash,omitempty"`
}

// NewCredentials parses a PEM encoded ECDSA or Ed25519 API key.
func NewCredentials(keyName, keySecret, walletSecret string) (*Credentials, error) {
	if keyName == "" {
		return nil, errors.New("coinbase: api key name is empty")
	}

	block, _ := pem.Decode([]byte(keySecret))
	if block == nil {
		return nil, errors.New("coinbase: api key secret is not PEM encoded")
	}

	var parsed any
	parsed, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("coinbase: parse api key: %w", err)
		}
	}

	creds := &Credentials{keyName: keyName, walletSecret: walletSecret}
	switch k := parsed.(type) {
	case *ecdsa.PrivateKey:
		creds.key, creds.alg = k, jose.ES256
	case ed25519.PrivateKey:
		creds.key, creds.alg = k, jose.EdDSA
	default:
		return nil, errors.New("coinbase: api key must be ECDSA or Ed25519")
	}
	return creds, nil
}

// KeyName returns the API key identifier.
func (c *Credentials) KeyName() string {
	return c.keyName
}

// BearerToken returns a short lived token for the Authorization header.
func (c *Credentials) BearerToken(method, path string) (string, error) {
	return c.token(method, path, "", bearerLifetime)
}

// WalletAuthToken returns the X-Wallet-Auth token for a request body. The
// token binds the SHA-256 of the body so it cannot be replayed with another
// payload.
func (c *Credentials) WalletAuthToken(method, path string, body []byte) (string, error) {
	if c.walletSecret == "" {
		return "", ErrNoWalletSecret
	}
	sum := sha256.Sum256(body)
	return c.token(method, path, hex.EncodeToString(sum[:]), walletAuthLifetime)
}

func (c *Credentials) token(method, path, reqHash string, lifetime time.Duration) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: c.alg, Key: c.key},
		(&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", c.keyName),
	)
	if err != nil {
		return "", fmt.Errorf("coinbase: create jwt signer: %w", err)
	}

	now := time.Now()
	token, err := jwt.Signed(signer).Claims(&claims{
		Claims: &jwt.Claims{
			Subject:   c.keyName,
			Issuer:    "coinbase-cloud",
			NotBefore: jwt.NewNumericDate(now),
			Expiry:    jwt.NewNumericDate(now.Add(lifetime)),
		},
		URI:     method + " " + apiHost + path,
		ReqHash: reqHash,
	}).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("coinbase: sign jwt: %w", err)
	}
	return token, nil
}
