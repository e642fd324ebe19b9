package assetkit

import "github.com/gagliardetto/solana-go"

// Signer is an address together with the capability to sign bytes for it.
// Implementations own their key material; the library only holds handles for
// the duration of one encode call.
type Signer interface {
	// PublicKey returns the address the signer signs for.
	PublicKey() solana.PublicKey

	// Sign produces an ed25519 signature over message.
	Sign(message []byte) (solana.Signature, error)
}

// SignerSet is an ordered collection of signers, unique by address.
type SignerSet []Signer

// Add appends signers whose address is not yet present. Nil handles are skipped.
func (s SignerSet) Add(signers ...Signer) SignerSet {
	for _, signer := range signers {
		if signer == nil {
			continue
		}
		if s.Lookup(signer.PublicKey()) != nil {
			continue
		}
		s = append(s, signer)
	}
	return s
}

// Lookup returns the signer for address, or nil.
func (s SignerSet) Lookup(address solana.PublicKey) Signer {
	for _, signer := range s {
		if signer.PublicKey().Equals(address) {
			return signer
		}
	}
	return nil
}

// Addresses returns the signer addresses in set order.
func (s SignerSet) Addresses() []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(s))
	for _, signer := range s {
		out = append(out, signer.PublicKey())
	}
	return out
}
