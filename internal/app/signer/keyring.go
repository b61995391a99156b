package signer

import (
	"fmt"
	"path/filepath"
	"sync"

	"satch-client/internal/app/ledgererr"

	"github.com/gagliardetto/solana-go"
)

// Keyring serves keypairs stored as <dir>/<base58 public key>.json. Loaded
// signers are kept for the life of the keyring.
type Keyring struct {
	Dir string

	mu      sync.Mutex
	signers map[solana.PublicKey]Signer
}

func NewKeyring(dir string, preloaded ...Signer) *Keyring {
	kr := &Keyring{Dir: dir, signers: map[solana.PublicKey]Signer{}}
	for _, s := range preloaded {
		kr.signers[s.PublicKey()] = s
	}
	return kr
}

func (kr *Keyring) Signer(pub solana.PublicKey) (Signer, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if s, ok := kr.signers[pub]; ok {
		return s, nil
	}
	if kr.Dir == "" {
		return nil, fmt.Errorf("%w: %w: no keypair for %s", ledgererr.ErrSigner, ledgererr.ErrSignerUnavailable, pub)
	}

	s, err := LoadKeypairSigner(filepath.Join(kr.Dir, pub.String()+".json"))
	if err != nil {
		return nil, err
	}
	if !s.PublicKey().Equals(pub) {
		return nil, fmt.Errorf("%w: %w: keypair file for %s holds %s", ledgererr.ErrSigner, ledgererr.ErrSignerUnavailable, pub, s.PublicKey())
	}
	kr.signers[pub] = s
	return s, nil
}
