package config

import (
	"satch-client/internal/app/gateway"
	"satch-client/internal/app/journal"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/signer"
	"satch-client/pkg/logger"
	"satch-client/pkg/rabbitmq"
	"satch-client/pkg/utilities"
)

const (
	DefaultRestPort  uint16 = 9000
	KeyringDirEnvKey        = "SIGNER_KEYRING_DIR"
)

type SatchClientConfigJson struct {
	LoggerConf       logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf     rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	RestConf         RestConfigJson             `json:"rest"`
	SolanaConf       gateway.SolanaConfigJson   `json:"solana"`
	JournalConf      journal.JournalConfigJson  `json:"journal"`
	OrchestratorConf OrchestratorConfigJson     `json:"orchestrator"`
}

func (sccj SatchClientConfigJson) ConvertToDomain() SatchClientConfig {
	return SatchClientConfig{
		LoggerConf:       sccj.LoggerConf.ConvertToDomain(),
		RabbitmqConf:     sccj.RabbitmqConf.ConvertToDomain(),
		RestConf:         sccj.RestConf.ConvertToDomain(),
		SolanaConf:       sccj.SolanaConf.ConvertToDomain(),
		JournalConf:      sccj.JournalConf.ConvertToDomain(),
		OrchestratorConf: sccj.OrchestratorConf.ConvertToDomain(),
	}
}

type SatchClientConfig struct {
	LoggerConf       logger.LoggerConfig
	RabbitmqConf     rabbitmq.RabbitmqConfig
	RestConf         RestConfig
	SolanaConf       gateway.SolanaConfig
	JournalConf      journal.JournalConfig
	OrchestratorConf OrchestratorConfig
}

func (scc SatchClientConfig) GetLoggerConfig() logger.LoggerConfig {
	return scc.LoggerConf
}

func (scc SatchClientConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return scc.RabbitmqConf
}

func (scc SatchClientConfig) GetRestApiPort() uint16 {
	return scc.RestConf.Port
}

func (scc SatchClientConfig) GetSolanaConfig() gateway.SolanaConfig {
	return scc.SolanaConf
}

func (scc SatchClientConfig) GetJournalConfig() journal.JournalConfig {
	return scc.JournalConf
}

func (scc SatchClientConfig) GetOrchestratorConfig() OrchestratorConfig {
	return scc.OrchestratorConf
}

func (scc SatchClientConfig) GetRestConfig() RestConfig {
	return scc.RestConf
}

type RestConfigJson struct {
	Port    uint16 `json:"port"`
	BaseUrl string `json:"base_url"`
}

type RestConfig struct {
	Port uint16
	// BaseUrl is the public address encoded into review QR codes.
	BaseUrl string
}

func (rcj RestConfigJson) ConvertToDomain() RestConfig {
	port := utilities.Ternary(rcj.Port != 0, rcj.Port, DefaultRestPort)
	return RestConfig{
		Port:    port,
		BaseUrl: rcj.BaseUrl,
	}
}

type OrchestratorConfigJson struct {
	Confirm          *bool  `json:"confirm"`
	ConflictRetries  *int   `json:"conflict_retries"`
	PayerKeypairPath string `json:"payer_keypair_path"`
	KeyringDir       string `json:"keyring_dir"`
}

type OrchestratorConfig struct {
	Options          orchestrator.Options
	PayerKeypairPath string
	// KeyringDir holds co-signer keypairs for queued jobs, one <pubkey>.json per key.
	KeyringDir string
}

// ConvertToDomain confirms by default. PAYER_KEYPAIR_PATH and SIGNER_KEYRING_DIR override the file.
func (ocj OrchestratorConfigJson) ConvertToDomain() OrchestratorConfig {
	opts := orchestrator.Options{Confirm: true, ConflictRetries: orchestrator.DefaultConflictRetries}
	if ocj.Confirm != nil {
		opts.Confirm = *ocj.Confirm
	}
	if ocj.ConflictRetries != nil && *ocj.ConflictRetries >= 0 {
		opts.ConflictRetries = *ocj.ConflictRetries
	}
	return OrchestratorConfig{
		Options:          opts,
		PayerKeypairPath: utilities.EnvOrDefault(signer.PayerKeypairEnvKey, ocj.PayerKeypairPath),
		KeyringDir:       utilities.EnvOrDefault(KeyringDirEnvKey, ocj.KeyringDir),
	}
}
