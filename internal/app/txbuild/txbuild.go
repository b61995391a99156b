package txbuild

import (
	"context"
	"fmt"

	"satch-client/internal/app/gateway"
	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"

	"github.com/gagliardetto/solana-go"
)

// Instruction lays out the account list of a satch request in schema order.
// The system program slot is filled in when the caller leaves it out.
func Instruction(programID solana.PublicKey, request string, accounts map[string]solana.PublicKey, data []byte) (solana.Instruction, error) {
	rq, ok := schema.Satch.Request(request)
	if !ok {
		return nil, fmt.Errorf("%w: unknown request %q", ledgererr.ErrEncode, request)
	}

	metas := make([]*solana.AccountMeta, 0, len(rq.Accounts))
	for _, slot := range rq.Accounts {
		key, ok := accounts[slot.Name]
		if !ok && slot.Name == schema.AccountSystemProgram {
			key, ok = solana.SystemProgramID, true
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing account %q", ledgererr.ErrEncode, request, slot.Name)
		}
		metas = append(metas, solana.NewAccountMeta(key, slot.Writable, slot.Signer))
	}

	return solana.NewInstruction(programID, metas, data), nil
}

// Transaction wraps instructions in an unsigned transaction against the latest blockhash.
func Transaction(ctx context.Context, gw gateway.Gateway, payer solana.PublicKey, instructions ...solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := gw.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("%w: build transaction: %v", ledgererr.ErrEncode, err)
	}
	return tx, nil
}
