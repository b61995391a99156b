package address

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("4D3Lfi2YVgFiqRaiN8SyBxJkob5cnbxHUo86xUtgqNoH")

func TestDeriveIsDeterministic(t *testing.T) {
	authority := solana.MustPublicKeyFromBase58("32aC89SmxFds1x5DjKNBjUtfUPKwEriNAQ4w13RGddtU")

	first, firstBump, err := Derive(DriverSeeds(authority), testProgramID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		addr, bump, err := Derive(DriverSeeds(authority), testProgramID)
		require.NoError(t, err)
		assert.Equal(t, first, addr)
		assert.Equal(t, firstBump, bump)
	}
}

func TestPlateAddressStableForSameProgram(t *testing.T) {
	d := NewDeriver(testProgramID)

	first, _, err := d.Plate("KA-01-1234")
	require.NoError(t, err)
	again, _, err := Derive([][]byte{[]byte("plate"), []byte("KA-01-1234")}, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, _, err := NewDeriver(solana.SystemProgramID).Plate("KA-01-1234")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestDerivedAddressIsHashOfSeedsBumpAndProgram(t *testing.T) {
	seeds := PlatformSeeds(solana.MustPublicKeyFromBase58("5xJ6k2Vn3eJmKqDoJzM2JYx5y7vF4m3v7F7s1kB7WQ2Z"))

	addr, bump, err := Derive(seeds, testProgramID)
	require.NoError(t, err)

	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(testProgramID.Bytes())
	h.Write([]byte("ProgramDerivedAddress"))

	assert.Equal(t, h.Sum(nil), addr.Bytes())
	assert.True(t, Verify(seeds, bump, testProgramID, addr))
	assert.False(t, Verify(seeds, bump, solana.SystemProgramID, addr))
}

func TestDerivedAddressIsOffCurve(t *testing.T) {
	addr, _, err := NewDeriver(testProgramID).Review(solana.SystemProgramID, 7)
	require.NoError(t, err)
	assert.False(t, addr.IsOnCurve())
}

func TestIndexSeedIsLittleEndian(t *testing.T) {
	assert.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0}, IndexSeed(3))
	assert.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0}, IndexSeed(256))

	seeds := ReviewSeeds(solana.SystemProgramID, 3)
	require.Len(t, seeds, 3)
	assert.True(t, bytes.Equal(seeds[2], []byte{3, 0, 0, 0, 0, 0, 0, 0}))
}

func TestReviewAddressDependsOnIndex(t *testing.T) {
	d := NewDeriver(testProgramID)
	profile, _, err := d.Driver(solana.SystemProgramID)
	require.NoError(t, err)

	a, _, err := d.Review(profile, 5)
	require.NoError(t, err)
	b, _, err := d.Review(profile, 6)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveRejectsOversizedSeeds(t *testing.T) {
	_, _, err := NewDeriver(testProgramID).Plate("THIS-PLATE-STRING-IS-FAR-TOO-LONG-FOR-A-SEED")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledgererr.ErrInvalidSeeds))

	tooMany := make([][]byte, MaxSeeds)
	_, _, err = Derive(tooMany, testProgramID)
	assert.True(t, errors.Is(err, ledgererr.ErrInvalidSeeds))
	assert.False(t, Verify(tooMany, 255, testProgramID, solana.PublicKey{}))
}
