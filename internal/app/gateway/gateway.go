package gateway

import (
	"context"

	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Filter selects program accounts whose data holds Bytes at Offset.
type Filter struct {
	Offset uint64
	Bytes  []byte
}

// Account is a raw program account returned by a scan.
type Account struct {
	Address solana.PublicKey
	Data    []byte
}

// Gateway is the ledger access endpoint. Implementations never cache account data.
type Gateway interface {
	// FetchRaw returns the account data at addr, or ErrEntityNotFound when no account exists.
	FetchRaw(ctx context.Context, addr solana.PublicKey) ([]byte, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	// Submit sends a signed transaction. A remote rejection is returned as a
	// *ledgererr.RemoteError; a lost response is ErrUnknownOutcome.
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Confirm waits until sig reaches the configured commitment or fails remotely.
	Confirm(ctx context.Context, sig solana.Signature) error
	// ListAccounts scans program accounts of one record kind, narrowed by extra filters.
	ListAccounts(ctx context.Context, disc [schema.DiscriminatorSize]byte, filters ...Filter) ([]Account, error)
}
