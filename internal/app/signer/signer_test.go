package signer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeygenFile(t *testing.T, key solana.PrivateKey) string {
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	content, err := json.Marshal(values)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func twoSignerTransaction(t *testing.T, payer, cosigner solana.PublicKey) *solana.Transaction {
	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(cosigner, false, true),
		solana.NewAccountMeta(payer, true, true),
	}, []byte{0})

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{9}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func TestLoadKeypairSigner(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	path := writeKeygenFile(t, key)

	s, err := LoadKeypairSigner(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), s.PublicKey())
}

func TestLoadKeypairSignerFromEnv(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	t.Setenv(PayerKeypairEnvKey, writeKeygenFile(t, key))

	s, err := LoadKeypairSigner("")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), s.PublicKey())
}

func TestLoadKeypairSignerMissingFile(t *testing.T) {
	_, err := LoadKeypairSigner(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ledgererr.ErrSigner))
	assert.True(t, errors.Is(err, ledgererr.ErrSignerUnavailable))
}

func TestSignTransactionPlacesSignaturesByKey(t *testing.T) {
	payer := NewKeypairSigner(solana.NewWallet().PrivateKey)
	cosigner := NewKeypairSigner(solana.NewWallet().PrivateKey)
	tx := twoSignerTransaction(t, payer.PublicKey(), cosigner.PublicKey())

	// order of the signers argument does not matter
	require.NoError(t, SignTransaction(context.Background(), tx, cosigner, payer))
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
	assert.NoError(t, tx.VerifySignatures())
}

func TestSignTransactionMissingSigner(t *testing.T) {
	payer := NewKeypairSigner(solana.NewWallet().PrivateKey)
	tx := twoSignerTransaction(t, payer.PublicKey(), solana.NewWallet().PublicKey())

	err := SignTransaction(context.Background(), tx, payer)
	assert.True(t, errors.Is(err, ledgererr.ErrSignerUnavailable))
}

func TestSignMessageHonoursCancellation(t *testing.T) {
	s := NewKeypairSigner(solana.NewWallet().PrivateKey)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SignMessage(ctx, []byte("message"))
	assert.True(t, errors.Is(err, ledgererr.ErrSigner))
}

func TestKeyringLoadsByPublicKey(t *testing.T) {
	payer := NewKeypairSigner(solana.NewWallet().PrivateKey)
	driverKey := solana.NewWallet().PrivateKey
	stored := writeKeygenFile(t, driverKey)

	dir := filepath.Dir(stored)
	require.NoError(t, os.Rename(stored, filepath.Join(dir, driverKey.PublicKey().String()+".json")))

	kr := NewKeyring(dir, payer)

	s, err := kr.Signer(payer.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, payer, s)

	s, err = kr.Signer(driverKey.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, driverKey.PublicKey(), s.PublicKey())

	_, err = kr.Signer(solana.NewWallet().PublicKey())
	assert.True(t, errors.Is(err, ledgererr.ErrSignerUnavailable))
}

func TestKeyringRejectsMismatchedFile(t *testing.T) {
	claimed := solana.NewWallet().PublicKey()
	stored := writeKeygenFile(t, solana.NewWallet().PrivateKey)
	dir := filepath.Dir(stored)
	require.NoError(t, os.Rename(stored, filepath.Join(dir, claimed.String()+".json")))

	_, err := NewKeyring(dir).Signer(claimed)
	assert.True(t, errors.Is(err, ledgererr.ErrSignerUnavailable))
}
