package keypair

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
)

// Keyring maps addresses to signer handles. It is safe for concurrent use.
type Keyring struct {
	mu      sync.RWMutex
	signers map[solana.PublicKey]assetkit.Signer
}

// NewKeyring creates a keyring holding signers.
func NewKeyring(signers ...assetkit.Signer) *Keyring {
	k := &Keyring{signers: map[solana.PublicKey]assetkit.Signer{}}
	k.Add(signers...)
	return k
}

// Add registers signers. A later signer for the same address replaces the earlier one.
func (k *Keyring) Add(signers ...assetkit.Signer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, s := range signers {
		if s == nil {
			continue
		}
		k.signers[s.PublicKey()] = s
	}
}

// Lookup returns the signer registered for address.
func (k *Keyring) Lookup(address solana.PublicKey) (assetkit.Signer, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	s, ok := k.signers[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", assetkit.ErrUnknownSigner, address)
	}
	return s, nil
}

// Addresses lists the registered addresses in byte order.
func (k *Keyring) Addresses() []solana.PublicKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]solana.PublicKey, 0, len(k.signers))
	for address := range k.signers {
		out = append(out, address)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// Len returns the number of registered signers.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.signers)
}
