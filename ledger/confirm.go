package ledger

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go/poll"
)

var confirmationRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

// WaitForConfirmation polls q until signature reaches level. It never
// resubmits. A query error stops polling and is returned; an execution error
// reported by the cluster is returned as a *assetkit.LedgerError.
func WaitForConfirmation(ctx context.Context, q StatusQuery, signature solana.Signature, config poll.Config, level rpc.ConfirmationStatusType) (*SignatureStatus, error) {
	want, ok := confirmationRank[level]
	if !ok {
		return nil, fmt.Errorf("unsupported confirmation level %q", level)
	}

	return poll.Until(ctx, config, func(ctx context.Context) (*SignatureStatus, bool, error) {
		status, err := q.SignatureStatus(ctx, signature)
		if err != nil {
			return nil, false, fmt.Errorf("failed to query signature status: %w", err)
		}
		if status == nil {
			return nil, false, nil
		}
		if status.Err != nil {
			rejection := ClassifyRejection(fmt.Errorf("%v", status.Err))
			rejection.Signature = signature
			return status, true, rejection
		}
		return status, confirmationRank[status.ConfirmationStatus] >= want, nil
	})
}
