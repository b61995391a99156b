package address

import (
	"encoding/binary"
	"fmt"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go"
)

// Seed tags used by the satch program. They are part of the wire contract.
const (
	SeedPlatform = "platform"
	SeedDriver   = "driver"
	SeedPlate    = "plate"
	SeedReview   = "review"
)

const (
	MaxSeedLength = 32
	// MaxSeeds counts the bump seed appended during the search.
	MaxSeeds = 16
)

// Derive searches bumps from 255 downwards for the first candidate that is off the
// ed25519 curve, the same procedure the runtime uses for program derived addresses.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := validateSeeds(seeds); err != nil {
		return solana.PublicKey{}, 0, err
	}

	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ledgererr.ErrDerivationExhausted, err)
	}
	return addr, bump, nil
}

// Verify recomputes the address for a known bump and reports whether it matches.
func Verify(seeds [][]byte, bump uint8, programID solana.PublicKey, addr solana.PublicKey) bool {
	if validateSeeds(seeds) != nil {
		return false
	}
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	candidate, err := solana.CreateProgramAddress(withBump, programID)
	if err != nil {
		return false
	}
	return candidate.Equals(addr)
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds)+1 > MaxSeeds {
		return fmt.Errorf("%w: %d seeds, at most %d allowed", ledgererr.ErrInvalidSeeds, len(seeds), MaxSeeds-1)
	}
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return fmt.Errorf("%w: seed %d is %d bytes, max %d", ledgererr.ErrInvalidSeeds, i, len(seed), MaxSeedLength)
		}
	}
	return nil
}

// IndexSeed is the 8-byte little-endian encoding of a sequence position.
func IndexSeed(index uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, index)
	return buf
}

func PlatformSeeds(authority solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedPlatform), authority.Bytes()}
}

func DriverSeeds(driverAuthority solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedDriver), driverAuthority.Bytes()}
}

func PlateSeeds(plate string) [][]byte {
	return [][]byte{[]byte(SeedPlate), []byte(plate)}
}

func ReviewSeeds(driverProfile solana.PublicKey, index uint64) [][]byte {
	return [][]byte{[]byte(SeedReview), driverProfile.Bytes(), IndexSeed(index)}
}

// Deriver binds the seed helpers to one program id.
type Deriver struct {
	ProgramID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

func (d Deriver) Platform(authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(PlatformSeeds(authority), d.ProgramID)
}

func (d Deriver) Driver(driverAuthority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(DriverSeeds(driverAuthority), d.ProgramID)
}

func (d Deriver) Plate(plate string) (solana.PublicKey, uint8, error) {
	return Derive(PlateSeeds(plate), d.ProgramID)
}

func (d Deriver) Review(driverProfile solana.PublicKey, index uint64) (solana.PublicKey, uint8, error) {
	return Derive(ReviewSeeds(driverProfile, index), d.ProgramID)
}
