package main

import (
	"fmt"

	"satch-client/internal/app/ledgererr"
	"satch-client/internal/app/orchestrator"
	"satch-client/internal/app/signer"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

var (
	keypairFlag = &cli.StringFlag{
		Name:    "keypair",
		Usage:   "reviewer keypair file (also pays the fee)",
		EnvVars: []string{signer.PayerKeypairEnvKey},
	}
	driverFlag = &cli.StringFlag{
		Name:  "driver",
		Usage: "driver authority public key",
	}
	ratingFlag = &cli.UintFlag{
		Name:     "rating",
		Usage:    "rating from 1 to 5",
		Required: true,
	}
	messageHashFlag = &cli.StringFlag{
		Name:  "message-hash",
		Usage: "reference to the off-ledger review text",
	}
	noConfirmFlag = &cli.BoolFlag{
		Name:  "no-confirm",
		Usage: "return after submission without waiting for commitment",
	}
	retriesFlag = &cli.IntFlag{
		Name:  "retries",
		Usage: "re-allocations after losing the race for a review slot",
		Value: orchestrator.DefaultConflictRetries,
	}
)

var reviewCommand = &cli.Command{
	Name:   "review",
	Usage:  "leave a review for a driver, addressed by --driver or --plate",
	Flags:  []cli.Flag{keypairFlag, driverFlag, plateFlag, ratingFlag, messageHashFlag, noConfirmFlag, retriesFlag},
	Action: leaveReview,
}

type reviewOutput struct {
	*orchestrator.ReviewResult
	ReasonCode string `json:"reason_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

func leaveReview(ctx *cli.Context) error {
	rating := ctx.Uint(ratingFlag.Name)
	if rating > 255 {
		return fmt.Errorf("rating %d does not fit a byte", rating)
	}
	reviewer, err := signer.LoadKeypairSigner(ctx.String(keypairFlag.Name))
	if err != nil {
		return err
	}

	svc, err := newService(ctx, orchestrator.Options{
		Confirm:         !ctx.Bool(noConfirmFlag.Name),
		ConflictRetries: ctx.Int(retriesFlag.Name),
	})
	if err != nil {
		return err
	}

	var profile solana.PublicKey
	switch {
	case ctx.String(driverFlag.Name) != "":
		authority, err := parseKey("driver", ctx.String(driverFlag.Name))
		if err != nil {
			return err
		}
		if profile, _, err = svc.Deriver.Driver(authority); err != nil {
			return err
		}
	case ctx.String(plateFlag.Name) != "":
		entry, err := svc.LookupDriver(ctx.Context, ctx.String(plateFlag.Name))
		if err != nil {
			return err
		}
		profile = entry.Address
	default:
		return fmt.Errorf("one of --%s or --%s is required", driverFlag.Name, plateFlag.Name)
	}

	result, err := svc.LeaveReview(ctx.Context, reviewer, profile, uint8(rating), ctx.String(messageHashFlag.Name))
	if err != nil && result == nil {
		return err
	}
	out := reviewOutput{ReviewResult: result}
	if err != nil {
		code, _ := ledgererr.Classify(err)
		out.ReasonCode, out.Error = string(code), err.Error()
	}
	if printErr := printJSON(ctx, out); printErr != nil {
		return printErr
	}
	return err
}
