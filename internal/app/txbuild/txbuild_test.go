package txbuild

import (
	"errors"
	"testing"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionFollowsSchemaOrder(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	review := solana.NewWallet().PublicKey()
	driver := solana.NewWallet().PublicKey()
	reviewer := solana.NewWallet().PublicKey()

	ix, err := Instruction(programID, schema.RequestLeaveReview, map[string]solana.PublicKey{
		schema.AccountReview:   review,
		schema.AccountDriver:   driver,
		schema.AccountReviewer: reviewer,
	}, []byte{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, programID, ix.ProgramID())
	metas := ix.Accounts()
	require.Len(t, metas, 4)
	assert.Equal(t, review, metas[0].PublicKey)
	assert.True(t, metas[0].IsWritable)
	assert.False(t, metas[0].IsSigner)
	assert.Equal(t, reviewer, metas[2].PublicKey)
	assert.True(t, metas[2].IsSigner)
	assert.Equal(t, solana.SystemProgramID, metas[3].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestInstructionMissingAccount(t *testing.T) {
	_, err := Instruction(solana.NewWallet().PublicKey(), schema.RequestRegisterPlatform, map[string]solana.PublicKey{}, nil)
	assert.True(t, errors.Is(err, ledgererr.ErrEncode))

	_, err = Instruction(solana.NewWallet().PublicKey(), "close_driver", nil, nil)
	assert.True(t, errors.Is(err, ledgererr.ErrEncode))
}
