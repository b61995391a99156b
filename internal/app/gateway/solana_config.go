package gateway

import (
	"fmt"
	"time"

	"satch-client/pkg/utilities"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	ProgramIdEnvKey = "PROGRAM_ID"
	RpcUrlEnvKey    = "SOLANA_RPC_URL"

	DefaultProgramId    = "4D3Lfi2YVgFiqRaiN8SyBxJkob5cnbxHUo86xUtgqNoH"
	DefaultRpcUrl       = rpc.LocalNet_RPC
	defaultPollInterval = 500 * time.Millisecond
)

type SolanaConfigJson struct {
	RpcUrl         string `json:"rpc_url"`
	ProgramId      string `json:"program_id"`
	Commitment     string `json:"commitment"`
	PollIntervalMs int64  `json:"poll_interval_ms"`
}

type SolanaConfig struct {
	RpcUrl       string
	ProgramId    string
	Commitment   rpc.CommitmentType
	PollInterval time.Duration
}

// ConvertToDomain applies env overrides (SOLANA_RPC_URL, PROGRAM_ID) over the file values.
func (scj SolanaConfigJson) ConvertToDomain() SolanaConfig {
	commitment := rpc.CommitmentConfirmed
	if scj.Commitment != "" {
		commitment = rpc.CommitmentType(scj.Commitment)
	}
	poll := defaultPollInterval
	if scj.PollIntervalMs > 0 {
		poll = time.Duration(scj.PollIntervalMs) * time.Millisecond
	}

	return SolanaConfig{
		RpcUrl:       utilities.EnvOrDefault(RpcUrlEnvKey, utilities.Ternary(scj.RpcUrl != "", scj.RpcUrl, DefaultRpcUrl)),
		ProgramId:    utilities.EnvOrDefault(ProgramIdEnvKey, utilities.Ternary(scj.ProgramId != "", scj.ProgramId, DefaultProgramId)),
		Commitment:   commitment,
		PollInterval: poll,
	}
}

func (sc SolanaConfig) ProgramPublicKey() (solana.PublicKey, error) {
	programID, err := solana.PublicKeyFromBase58(sc.ProgramId)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id %q: %w", sc.ProgramId, err)
	}
	return programID, nil
}
