package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"

	"satch-client/internal/app/address"
	"satch-client/internal/app/codec"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	app := newApp()
	out := &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"satchctl"}, args...))
	return out.String(), err
}

func TestDerivePlate(t *testing.T) {
	out, err := run(t, "derive", "plate", "KA-01-1234")
	require.NoError(t, err)

	want, bump, err := address.NewDeriver(solana.MustPublicKeyFromBase58(gateway.DefaultProgramId)).Plate("KA-01-1234")
	require.NoError(t, err)

	var got derived
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want, got.Address)
	assert.Equal(t, bump, got.Bump)
}

func TestDeriveReviewUsesProgramFlag(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	profile := solana.NewWallet().PublicKey()

	out, err := run(t, "--program", program.String(), "derive", "review", profile.String(), "3")
	require.NoError(t, err)

	want, _, err := address.NewDeriver(program).Review(profile, 3)
	require.NoError(t, err)
	var got derived
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want, got.Address)
}

func TestDeriveRejectsBadInput(t *testing.T) {
	_, err := run(t, "derive", "driver", "not-base58-0OIl")
	assert.Error(t, err)

	_, err = run(t, "derive", "review", solana.NewWallet().PublicKey().String(), "minus-one")
	assert.Error(t, err)

	_, err = run(t, "derive", "plate")
	assert.Error(t, err)
}

func TestDiscriminator(t *testing.T) {
	out, err := run(t, "discriminator", "--request", "leave_review")
	require.NoError(t, err)
	var entry discriminatorEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	disc := schema.RequestDiscriminator(schema.RequestLeaveReview)
	assert.Equal(t, hex.EncodeToString(disc[:]), entry.Discriminator)
	assert.Equal(t, "request", entry.Kind)

	out, err = run(t, "discriminator")
	require.NoError(t, err)
	var entries []discriminatorEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 7)
}

func TestDecodeAccount(t *testing.T) {
	plate := solana.NewWallet().PublicKey()
	data, err := codec.Default.EncodeAccount(schema.RecordLicensePlateMapping, codec.Args{
		"license_plate": "KA-01-1234",
		"driver_pda":    plate,
	})
	require.NoError(t, err)

	for _, tt := range []struct {
		encoding string
		input    string
	}{
		{"base58", base58.Encode(data)},
		{"base64", base64.StdEncoding.EncodeToString(data)},
		{"hex", hex.EncodeToString(data)},
	} {
		t.Run(tt.encoding, func(t *testing.T) {
			out, err := run(t, "decode", "--encoding", tt.encoding, tt.input)
			require.NoError(t, err)

			var got struct {
				Kind   string            `json:"kind"`
				Name   string            `json:"name"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, schema.RecordLicensePlateMapping, got.Name)
			assert.Equal(t, "KA-01-1234", got.Fields["license_plate"])
			assert.Equal(t, plate.String(), got.Fields["driver_pda"])
		})
	}
}

func TestDecodeRequest(t *testing.T) {
	data, err := codec.Default.EncodeRequest(schema.RequestLeaveReview, codec.Args{"rating": uint8(5), "message_hash": "QmX"})
	require.NoError(t, err)

	out, err := run(t, "decode", "--request", base58.Encode(data))
	require.NoError(t, err)
	var got decodedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, schema.RequestLeaveReview, got.Name)
	assert.Equal(t, "QmX", got.Fields["message_hash"])
	assert.Equal(t, float64(5), got.Fields["rating"])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := run(t, "decode", base58.Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	assert.Error(t, err)

	_, err = run(t, "decode", "--encoding", "rot13", "abc")
	assert.Error(t, err)
}
