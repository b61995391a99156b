// Package sequence allocates the next slot of an append-only sequence kept by a
// counter on its parent record. Allocation is optimistic: the index read here is
// only claimed when the program accepts the submission, and a stale read comes
// back as ErrConflict.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"satch-client/internal/app/address"
	"satch-client/internal/app/codec"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/records"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Allocation is a candidate review slot. It is valid only until someone else appends.
type Allocation struct {
	Target  solana.PublicKey
	Bump    uint8
	Index   uint64
	Payload []byte
	Profile *records.DriverProfile
}

type Allocator struct {
	Gateway gateway.Gateway
	Deriver address.Deriver
	Codec   *codec.Codec
}

func NewAllocator(gw gateway.Gateway, deriver address.Deriver) *Allocator {
	return &Allocator{Gateway: gw, Deriver: deriver, Codec: codec.Default}
}

// NextAppend reads the driver profile, derives the review address at its current
// review_count, and lays out leave_review for that slot.
func (a *Allocator) NextAppend(ctx context.Context, profileAddr solana.PublicKey, args codec.Args) (*Allocation, error) {
	data, err := a.Gateway.FetchRaw(ctx, profileAddr)
	if err != nil {
		return nil, err
	}
	profile, err := records.DecodeDriverProfile(data)
	if err != nil {
		return nil, err
	}

	index := profile.ReviewCount
	target, bump, err := a.Deriver.Review(profileAddr, index)
	if err != nil {
		return nil, err
	}

	payload, err := a.Codec.EncodeRequest(schema.RequestLeaveReview, args)
	if err != nil {
		return nil, err
	}

	return &Allocation{
		Target:  target,
		Bump:    bump,
		Index:   index,
		Payload: payload,
		Profile: profile,
	}, nil
}

// ClassifySubmitError turns the program's answer to a stale append into ErrConflict.
// Once another append lands, the stale target either already exists or no longer
// matches the seeds the program derives from the new counter.
func ClassifySubmitError(err error) error {
	if err == nil {
		return nil
	}
	var remote *ledgererr.RemoteError
	if !errors.As(err, &remote) {
		return err
	}
	if errors.Is(err, ledgererr.ErrDuplicateKey) || remote.Code == gateway.AnchorErrConstraintSeeds {
		return fmt.Errorf("%w: %w", ledgererr.ErrConflict, err)
	}
	return err
}
