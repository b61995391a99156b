package gateway

import (
	"errors"
	"testing"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
)

func TestNewRemoteError(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		errValue interface{}
		logs     []string
		kind     error
		code     int64
	}{
		{
			name:     "rating out of range",
			message:  "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1770",
			errValue: map[string]interface{}{"InstructionError": []interface{}{float64(0), map[string]interface{}{"Custom": float64(6000)}}},
			kind:     ledgererr.ErrRemoteRejected,
			code:     SatchErrRatingOutOfRange,
		},
		{
			name:    "wrong platform authority from text only",
			message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1771",
			kind:    ledgererr.ErrRemoteRejected,
			code:    SatchErrInvalidPlatformAuthority,
		},
		{
			name:    "occupied init target",
			message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x0",
			logs:    []string{"Allocate: account Address { address: 9x..., base: None } already in use"},
			kind:    ledgererr.ErrDuplicateKey,
			code:    SystemErrAccountAlreadyInUse,
		},
		{
			name:    "seed mismatch read from anchor log",
			message: "Transaction simulation failed",
			logs:    []string{"Program log: AnchorError caused by account: review_account. Error Code: ConstraintSeeds. Error Number: 2006. Error Message: A seeds constraint was violated."},
			kind:    ledgererr.ErrRemoteRejected,
			code:    AnchorErrConstraintSeeds,
		},
		{
			name:    "no program code",
			message: "Blockhash not found",
			kind:    ledgererr.ErrRemoteRejected,
			code:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := NewRemoteError(tt.message, tt.errValue, tt.logs)
			assert.True(t, errors.Is(remote, tt.kind))
			assert.Equal(t, tt.code, remote.Code)
			assert.Equal(t, tt.logs, remote.Logs)
		})
	}
}

func TestNewRemoteErrorFromStatusValue(t *testing.T) {
	status := map[string]interface{}{"InstructionError": []interface{}{float64(0), map[string]interface{}{"Custom": float64(0)}}}

	remote := NewRemoteError("", status, nil)
	assert.True(t, errors.Is(remote, ledgererr.ErrDuplicateKey))
	assert.NotEmpty(t, remote.Message)
}

func TestReachedCommitment(t *testing.T) {
	assert.True(t, reached(rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed))
	assert.True(t, reached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed))
	assert.False(t, reached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	assert.False(t, reached("", rpc.CommitmentProcessed))
}
