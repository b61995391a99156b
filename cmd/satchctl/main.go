package main

import (
	"encoding/json"
	"fmt"
	"os"

	"satch-client/internal/app/gateway"
	"satch-client/internal/app/orchestrator"
	"satch-client/pkg/utilities"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

var (
	rpcFlag = &cli.StringFlag{
		Name:    "rpc",
		Usage:   "ledger RPC endpoint",
		EnvVars: []string{gateway.RpcUrlEnvKey},
		Value:   gateway.DefaultRpcUrl,
	}
	programFlag = &cli.StringFlag{
		Name:    "program",
		Usage:   "satch program id",
		EnvVars: []string{gateway.ProgramIdEnvKey},
		Value:   gateway.DefaultProgramId,
	}
	commitmentFlag = &cli.StringFlag{
		Name:  "commitment",
		Usage: "commitment level for reads and confirmation",
		Value: "confirmed",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "satchctl"
	app.Usage = "inspect and drive the satch driver review program"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{rpcFlag, programFlag, commitmentFlag}
	app.Before = func(ctx *cli.Context) error {
		return utilities.LoadEnvFiles(".env")
	}
	app.Commands = []*cli.Command{
		deriveCommand,
		discriminatorCommand,
		decodeCommand,
		fetchCommand,
		reviewCommand,
	}
	return app
}

func programID(ctx *cli.Context) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(ctx.String(programFlag.Name))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id: %w", err)
	}
	return key, nil
}

// newService connects to the ledger. The CLI runs without a journal.
func newService(ctx *cli.Context, opts orchestrator.Options) (*orchestrator.Service, error) {
	cfg := gateway.SolanaConfigJson{Commitment: ctx.String(commitmentFlag.Name)}.ConvertToDomain()
	// flags already fold in the environment and win over it
	cfg.RpcUrl = ctx.String(rpcFlag.Name)
	cfg.ProgramId = ctx.String(programFlag.Name)

	gw, err := gateway.NewSolanaGateway(cfg)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewService(gw, gw.ProgramID, opts), nil
}

func parseKey(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("missing %s", name)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return key, nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
