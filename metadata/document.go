// Package metadata holds NFT metadata documents and fetches them from their
// off-chain JSON URI.
package metadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
)

// Creator is a royalty recipient and its share in percent.
type Creator struct {
	Address solana.PublicKey `json:"address"`
	Share   uint8            `json:"share"`
}

// Collection names the parent collection mint.
type Collection struct {
	Key solana.PublicKey `json:"key"`
}

// Document is the metadata recorded on chain for an NFT.
type Document struct {
	Name                 string      `json:"name"`
	Symbol               string      `json:"symbol"`
	URI                  string      `json:"uri"`
	SellerFeeBasisPoints uint16      `json:"sellerFeeBasisPoints"`
	Creators             []Creator   `json:"creators,omitempty"`
	Collection           *Collection `json:"collection,omitempty"`
}

// Validate checks the document against the token metadata program limits.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is required", assetkit.ErrInvalidMetadata)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", assetkit.ErrInvalidMetadata)
	}
	if d.URI == "" {
		return fmt.Errorf("%w: uri is required", assetkit.ErrInvalidMetadata)
	}
	for _, c := range d.Creators {
		if c.Address.IsZero() {
			return fmt.Errorf("%w: creator address is required", assetkit.ErrInvalidMetadata)
		}
	}
	if err := d.OnChain(solana.PublicKey{}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", assetkit.ErrInvalidMetadata, err)
	}
	return nil
}

// OnChain converts the document into the program payload. A creator is
// marked verified only when it is updateAuthority, the one creator whose
// signature the mint transaction carries. The collection is always written
// unverified.
func (d *Document) OnChain(updateAuthority solana.PublicKey) instructions.DataV2 {
	data := instructions.DataV2{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		URI:                  d.URI,
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
	}

	if len(d.Creators) > 0 {
		creators := make([]instructions.Creator, 0, len(d.Creators))
		for _, c := range d.Creators {
			creators = append(creators, instructions.Creator{
				Address:  c.Address,
				Verified: !updateAuthority.IsZero() && c.Address.Equals(updateAuthority),
				Share:    c.Share,
			})
		}
		data.Creators = &creators
	}

	if d.Collection != nil && !d.Collection.Key.IsZero() {
		data.Collection = &instructions.Collection{Key: d.Collection.Key}
	}
	return data
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Creators = append([]Creator(nil), d.Creators...)
	if d.Collection != nil {
		collection := *d.Collection
		out.Collection = &collection
	}
	return &out
}
