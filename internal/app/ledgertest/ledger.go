// Package ledgertest runs the satch program in memory behind the gateway interface.
// Transactions are checked and applied atomically under one lock, so concurrent
// submitters race the same way they do against a cluster.
package ledgertest

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"satch-client/internal/app/codec"
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Ledger implements gateway.Gateway.
type Ledger struct {
	ProgramID solana.PublicKey

	mu         sync.Mutex
	accounts   map[solana.PublicKey]*account
	landed     map[solana.Signature]bool
	blockhash  uint64
	submits    int
	fetches    int
	failNext   []error
	dropNext   int
	beforeSend func()
}

var _ gateway.Gateway = (*Ledger)(nil)

func New(programID solana.PublicKey) *Ledger {
	return &Ledger{
		ProgramID: programID,
		accounts:  map[solana.PublicKey]*account{},
		landed:    map[solana.Signature]bool{},
	}
}

// Put stores raw account bytes, bypassing the program.
func (l *Ledger) Put(addr solana.PublicKey, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[addr] = &account{raw: append([]byte{}, data...)}
}

// PutRecord stores a typed record as if the program had written it, so later
// instructions can act on it.
func (l *Ledger) PutRecord(addr solana.PublicKey, record interface{}) error {
	acc, err := fromRecord(record)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[addr] = acc
	return nil
}

// Delete removes an account, as a closed account would disappear.
func (l *Ledger) Delete(addr solana.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, addr)
}

// FailNextSubmit makes the next Submit return err without touching state.
func (l *Ledger) FailNextSubmit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = append(l.failNext, err)
}

// DropNextResponse applies the next transaction but reports ErrUnknownOutcome,
// the way a timed out RPC call looks to a client.
func (l *Ledger) DropNextResponse() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropNext++
}

// BeforeSubmit runs fn at the start of every Submit, outside the lock.
func (l *Ledger) BeforeSubmit(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beforeSend = fn
}

func (l *Ledger) Submits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submits
}

func (l *Ledger) Fetches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetches
}

func (l *Ledger) FetchRaw(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: get account %s: %v", ledgererr.ErrGateway, addr, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetches++

	acc, ok := l.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", ledgererr.ErrEntityNotFound, addr)
	}
	return acc.bytes()
}

func (l *Ledger) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := ctx.Err(); err != nil {
		return solana.Hash{}, fmt.Errorf("%w: latest blockhash: %v", ledgererr.ErrGateway, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blockhash++
	var h solana.Hash
	h[0] = byte(l.blockhash)
	h[1] = byte(l.blockhash >> 8)
	h[31] = 0x5a
	return h, nil
}

func (l *Ledger) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	l.mu.Lock()
	hook := l.beforeSend
	l.mu.Unlock()
	if hook != nil {
		hook()
	}

	if err := ctx.Err(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: send transaction: %v", ledgererr.ErrUnknownOutcome, err)
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, gateway.NewRemoteError("transaction has no signatures", nil, nil)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, gateway.NewRemoteError("Transaction signature verification failure: "+err.Error(), nil, nil)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.submits++
	sig := tx.Signatures[0]

	if len(l.failNext) > 0 {
		err := l.failNext[0]
		l.failNext = l.failNext[1:]
		return sig, err
	}
	if l.landed[sig] {
		return sig, gateway.NewRemoteError("Transaction simulation failed: This transaction has already been processed", nil, nil)
	}

	staged := make(map[solana.PublicKey]*account, len(l.accounts))
	for k, v := range l.accounts {
		staged[k] = v.clone()
	}
	for i, ix := range tx.Message.Instructions {
		if err := l.apply(tx, ix, staged); err != nil {
			return sig, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	l.accounts = staged
	l.landed[sig] = true

	if l.dropNext > 0 {
		l.dropNext--
		// A lost response carries no signature back to the caller.
		return solana.Signature{}, fmt.Errorf("%w: send transaction: response lost", ledgererr.ErrUnknownOutcome)
	}
	return sig, nil
}

// Confirm succeeds for every landed signature. Anything else never confirms.
func (l *Ledger) Confirm(ctx context.Context, sig solana.Signature) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.landed[sig] {
		return nil
	}
	return fmt.Errorf("%w: signature %s not found", ledgererr.ErrUnknownOutcome, sig)
}

func (l *Ledger) ListAccounts(ctx context.Context, disc [schema.DiscriminatorSize]byte, filters ...gateway.Filter) ([]gateway.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: get program accounts: %v", ledgererr.ErrGateway, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	all := append([]gateway.Filter{{Offset: 0, Bytes: disc[:]}}, filters...)
	var out []gateway.Account
	for addr, acc := range l.accounts {
		data, err := acc.bytes()
		if err != nil {
			return nil, err
		}
		if matches(data, all) {
			out = append(out, gateway.Account{Address: addr, Data: data})
		}
	}
	return out, nil
}

func matches(data []byte, filters []gateway.Filter) bool {
	for _, f := range filters {
		end := f.Offset + uint64(len(f.Bytes))
		if end > uint64(len(data)) || !bytes.Equal(data[f.Offset:end], f.Bytes) {
			return false
		}
	}
	return true
}

func (l *Ledger) apply(tx *solana.Transaction, ix solana.CompiledInstruction, state map[solana.PublicKey]*account) error {
	keys := tx.Message.AccountKeys
	if int(ix.ProgramIDIndex) >= len(keys) {
		return gateway.NewRemoteError("invalid program id index", nil, nil)
	}
	if !keys[ix.ProgramIDIndex].Equals(l.ProgramID) {
		return gateway.NewRemoteError("Attempt to load a program that does not exist", nil, nil)
	}

	rq, args, err := codec.Default.DecodeRequest(ix.Data)
	if err != nil {
		return programError(102, "InstructionDidNotDeserialize")
	}
	if len(ix.Accounts) < len(rq.Accounts) {
		return programError(3005, "AccountNotEnoughKeys")
	}

	named := make(map[string]solana.PublicKey, len(rq.Accounts))
	for i, meta := range rq.Accounts {
		idx := ix.Accounts[i]
		if int(idx) >= len(keys) {
			return gateway.NewRemoteError("invalid account index", nil, nil)
		}
		named[meta.Name] = keys[idx]
	}
	if !named[schema.AccountSystemProgram].Equals(solana.SystemProgramID) {
		return programError(3008, "InvalidProgramId")
	}

	return l.execute(&instructionContext{tx: tx, accounts: named, args: args, state: state}, rq.Name)
}
