// Package keypair provides ed25519 keypairs that satisfy assetkit.Signer,
// loaded from base58 strings, keygen files or mnemonics, plus a keyring that
// maps addresses to signers.
package keypair

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// Keypair is an in-process ed25519 key.
type Keypair struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// Option configures a Keypair.
type Option func(*Keypair) error

// New creates a keypair from exactly one key source option.
func New(opts ...Option) (*Keypair, error) {
	k := &Keypair{}
	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, err
		}
	}

	if len(k.privateKey) != ed25519.PrivateKeySize {
		return nil, assetkit.ErrInvalidKey
	}
	k.publicKey = k.privateKey.PublicKey()
	return k, nil
}

// Generate returns a fresh random keypair.
func Generate() (*Keypair, error) {
	return New(WithGenerated())
}

// WithPrivateKey sets the private key from a base58 string of the 64 byte
// seed-and-public-key form.
func WithPrivateKey(base58Key string) Option {
	return func(k *Keypair) error {
		raw, err := base58.Decode(base58Key)
		if err != nil || len(raw) != ed25519.PrivateKeySize {
			return assetkit.ErrInvalidKey
		}
		derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(derived, raw) {
			return fmt.Errorf("%w: public key does not match seed", assetkit.ErrInvalidKey)
		}
		k.privateKey = solana.PrivateKey(raw)
		return nil
	}
}

// WithKeygenFile loads a private key from a Solana keygen JSON file.
func WithKeygenFile(path string) Option {
	return func(k *Keypair) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %v", assetkit.ErrInvalidKeystore, err)
		}

		// Parse JSON array format: [1, 2, 3, ...]
		var keyBytes []byte
		if err := json.Unmarshal(data, &keyBytes); err != nil {
			return fmt.Errorf("%w: invalid JSON format", assetkit.ErrInvalidKeystore)
		}

		if len(keyBytes) != ed25519.PrivateKeySize {
			return fmt.Errorf("%w: invalid key length", assetkit.ErrInvalidKeystore)
		}

		k.privateKey = solana.PrivateKey(keyBytes)
		return nil
	}
}

// WithMnemonic derives the key from a BIP-39 phrase. The first 32 bytes of
// the BIP-39 seed are the ed25519 seed, which matches keys created with
// `solana-keygen recover` without a derivation path.
func WithMnemonic(mnemonic, passphrase string) Option {
	return func(k *Keypair) error {
		if !bip39.IsMnemonicValid(mnemonic) {
			return assetkit.ErrInvalidMnemonic
		}
		seed := bip39.NewSeed(mnemonic, passphrase)
		k.privateKey = solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]))
		return nil
	}
}

// WithGenerated uses a new random key.
func WithGenerated() Option {
	return func(k *Keypair) error {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		k.privateKey = key
		return nil
	}
}

// PublicKey implements assetkit.Signer.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.publicKey
}

// Sign implements assetkit.Signer.
func (k *Keypair) Sign(message []byte) (solana.Signature, error) {
	return k.privateKey.Sign(message)
}

// Base58PrivateKey exports the private key in the form WithPrivateKey accepts.
func (k *Keypair) Base58PrivateKey() string {
	return base58.Encode(k.privateKey)
}

// KeygenJSON exports the private key in the Solana keygen file format.
func (k *Keypair) KeygenJSON() ([]byte, error) {
	ints := make([]int, len(k.privateKey))
	for i, b := range k.privateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}
