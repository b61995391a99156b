package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/schema"
	"satch-client/pkg/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaGateway talks to a Solana JSON-RPC node on behalf of one program.
type SolanaGateway struct {
	RpcClient    *rpc.Client
	ProgramID    solana.PublicKey
	Commitment   rpc.CommitmentType
	PollInterval time.Duration
}

func NewSolanaGateway(config SolanaConfig) (*SolanaGateway, error) {
	programID, err := config.ProgramPublicKey()
	if err != nil {
		return nil, err
	}

	logger.Default().Debugf("Ledger gateway for program %s via %s", programID, config.RpcUrl)
	return &SolanaGateway{
		RpcClient:    rpc.New(config.RpcUrl),
		ProgramID:    programID,
		Commitment:   config.Commitment,
		PollInterval: config.PollInterval,
	}, nil
}

// ValidateProgram checks that the configured program id is a deployed executable.
func (sg *SolanaGateway) ValidateProgram(ctx context.Context) error {
	acc, err := sg.RpcClient.GetAccountInfo(ctx, sg.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: GetAccountInfo(program) failed: %v", ledgererr.ErrGateway, err)
	}
	if acc == nil || acc.Value == nil || !acc.Value.Executable {
		return fmt.Errorf("%w: %s is not an executable account (this is NOT a program id)", ledgererr.ErrGateway, sg.ProgramID)
	}
	return nil
}

func (sg *SolanaGateway) FetchRaw(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	out, err := sg.RpcClient.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: sg.Commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, fmt.Errorf("%w: no account at %s", ledgererr.ErrEntityNotFound, addr)
	}
	if err != nil {
		return nil, sg.transportError(ctx, "fetch "+addr.String(), err)
	}

	if !out.Value.Owner.Equals(sg.ProgramID) {
		return nil, ledgererr.NewDecodeError("account", 0, "%s is owned by %s, not %s", addr, out.Value.Owner, sg.ProgramID)
	}
	return out.Value.Data.GetBinary(), nil
}

func (sg *SolanaGateway) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	latest, err := sg.RpcClient.GetLatestBlockhash(ctx, sg.Commitment)
	if err != nil {
		return solana.Hash{}, sg.transportError(ctx, "latest blockhash", err)
	}
	return latest.Value.Blockhash, nil
}

func (sg *SolanaGateway) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	submitLogger := logger.Default()

	sig, err := sg.RpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: sg.Commitment,
		},
	)
	if err == nil {
		submitLogger.Infof("Submitted transaction %s", sig)
		return sig, nil
	}

	// A preflight failure means the node simulated and refused the transaction.
	if remote, ok := remoteErrorFromRPC(err); ok {
		for _, l := range remote.Logs {
			submitLogger.Debug(l)
		}
		submitLogger.Warnf("Transaction rejected: %s", remote.Message)
		return solana.Signature{}, remote
	}

	// Anything else may have reached the leader before failing. The signature
	// is fixed by signing, so hand it back for later reconciliation.
	submitLogger.Errorf(err, "Submission outcome unknown")
	var pending solana.Signature
	if len(tx.Signatures) > 0 {
		pending = tx.Signatures[0]
	}
	return pending, fmt.Errorf("%w: %v", ledgererr.ErrUnknownOutcome, err)
}

func (sg *SolanaGateway) Confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(sg.PollInterval)
	defer ticker.Stop()

	for {
		out, err := sg.RpcClient.GetSignatureStatuses(ctx, true, sig)
		if err == nil && out != nil && len(out.Value) == 1 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return NewRemoteError("", status.Err, nil)
			}
			if reached(status.ConfirmationStatus, sg.Commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation of %s: %v", ledgererr.ErrUnknownOutcome, sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (sg *SolanaGateway) ListAccounts(ctx context.Context, disc [schema.DiscriminatorSize]byte, filters ...Filter) ([]Account, error) {
	rpcFilters := []rpc.RPCFilter{{
		Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(disc[:])},
	}}
	for _, f := range filters {
		rpcFilters = append(rpcFilters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{Offset: f.Offset, Bytes: solana.Base58(f.Bytes)},
		})
	}

	out, err := sg.RpcClient.GetProgramAccountsWithOpts(ctx, sg.ProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: sg.Commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    rpcFilters,
	})
	if err != nil {
		return nil, sg.transportError(ctx, "program account scan", err)
	}

	accounts := make([]Account, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		accounts = append(accounts, Account{Address: keyed.Pubkey, Data: keyed.Account.Data.GetBinary()})
	}
	return accounts, nil
}

func (sg *SolanaGateway) transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %w", ledgererr.ErrGateway, op, ctx.Err())
	}
	return fmt.Errorf("%w: %s: %v", ledgererr.ErrGateway, op, err)
}

var commitmentRank = map[rpc.CommitmentType]int{
	rpc.CommitmentProcessed: 0,
	rpc.CommitmentConfirmed: 1,
	rpc.CommitmentFinalized: 2,
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	got, ok := commitmentRank[rpc.CommitmentType(status)]
	if !ok {
		return false
	}
	return got >= commitmentRank[want]
}
