package compose

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/instructions"
)

// SOLTransferRequest moves native SOL.
type SOLTransferRequest struct {
	// FeePayer pays the transaction fee.
	FeePayer assetkit.Signer

	// Source owns the lamports. It may be the fee payer.
	Source assetkit.Signer

	Destination solana.PublicKey

	// Amount in lamports.
	Amount *big.Int
}

// TransferSOL composes a native transfer. Signers are {FeePayer, Source}.
func (c *Composer) TransferSOL(ctx context.Context, req SOLTransferRequest) (*assetkit.UnsignedOperation, error) {
	if err := requireSigner("fee payer", req.FeePayer); err != nil {
		return nil, err
	}
	if err := requireSigner("source", req.Source); err != nil {
		return nil, err
	}
	if err := requireAddress("destination", req.Destination); err != nil {
		return nil, err
	}
	lamports, err := amountOf(req.Amount)
	if err != nil {
		return nil, err
	}

	ix, err := instructions.TransferLamports(req.Source.PublicKey(), req.Destination, lamports)
	if err != nil {
		return nil, err
	}

	op := assetkit.NewUnsignedOperation(assetkit.OpSOLTransfer, req.FeePayer.PublicKey(),
		[]solana.Instruction{ix}, req.FeePayer, req.Source).
		WithAccount("source", req.Source.PublicKey()).
		WithAccount("destination", req.Destination).
		WithAmount(lamports)
	return c.composed(op), nil
}
