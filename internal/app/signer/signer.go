package signer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"satch-client/internal/app/ledgererr"
	"satch-client/pkg/logger"
	"satch-client/pkg/utilities"

	"github.com/gagliardetto/solana-go"
)

const PayerKeypairEnvKey = "PAYER_KEYPAIR_PATH"

// Signer produces an ed25519 signature over a serialized transaction message.
// Wallet adapters, hardware keys and the local keypair all satisfy it.
type Signer interface {
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, message []byte) (solana.Signature, error)
}

// KeypairSigner signs with a private key held in memory.
type KeypairSigner struct {
	key solana.PrivateKey
}

func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

// LoadKeypairSigner reads a solana-keygen JSON file. An empty path falls back to
// PAYER_KEYPAIR_PATH and then to ~/.config/solana/id.json.
func LoadKeypairSigner(path string) (*KeypairSigner, error) {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = utilities.EnvOrDefault(PayerKeypairEnvKey, filepath.Join(homeDir, ".config", "solana", "id.json"))
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: reading keypair from %s: %v", ledgererr.ErrSigner, ledgererr.ErrSignerUnavailable, path, err)
	}

	logger.Default().Debugf("Loaded signer %s from %s", key.PublicKey(), path)
	return &KeypairSigner{key: key}, nil
}

func (ks *KeypairSigner) PublicKey() solana.PublicKey {
	return ks.key.PublicKey()
}

func (ks *KeypairSigner) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ledgererr.ErrSigner, err)
	}
	sig, err := ks.key.Sign(message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ledgererr.ErrSigner, err)
	}
	return sig, nil
}

// SignTransaction collects a signature from every signer the message requires.
// Each signer sees the same serialized message; signatures are placed by the
// signer's position among the message's account keys.
func SignTransaction(ctx context.Context, tx *solana.Transaction, signers ...Signer) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: serialize message: %v", ledgererr.ErrEncode, err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		tx.Signatures = make([]solana.Signature, required)
	}

	bySigner := make(map[solana.PublicKey]Signer, len(signers))
	for _, s := range signers {
		bySigner[s.PublicKey()] = s
	}

	for i := 0; i < required; i++ {
		key := tx.Message.AccountKeys[i]
		s, ok := bySigner[key]
		if !ok {
			return fmt.Errorf("%w: %w: no signer for required key %s", ledgererr.ErrSigner, ledgererr.ErrSignerUnavailable, key)
		}
		sig, err := s.SignMessage(ctx, message)
		if err != nil {
			return err
		}
		tx.Signatures[i] = sig
	}
	return nil
}
