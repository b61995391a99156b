package main

import (
	"fmt"
	"strconv"

	"satch-client/internal/app/address"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

var deriveCommand = &cli.Command{
	Name:  "derive",
	Usage: "derive program addresses offline",
	Subcommands: []*cli.Command{
		{
			Name:      "platform",
			Usage:     "platform address of an authority",
			ArgsUsage: "<authority>",
			Action: func(ctx *cli.Context) error {
				return deriveKeyed(ctx, "authority", address.Deriver.Platform)
			},
		},
		{
			Name:      "driver",
			Usage:     "driver profile address of a driver authority",
			ArgsUsage: "<authority>",
			Action: func(ctx *cli.Context) error {
				return deriveKeyed(ctx, "authority", address.Deriver.Driver)
			},
		},
		{
			Name:      "plate",
			Usage:     "license plate mapping address",
			ArgsUsage: "<plate>",
			Action:    derivePlate,
		},
		{
			Name:      "review",
			Usage:     "review address for a driver profile and index",
			ArgsUsage: "<profile> <index>",
			Action:    deriveReview,
		},
	},
}

type derived struct {
	Address solana.PublicKey `json:"address"`
	Bump    uint8            `json:"bump"`
}

func printDerived(ctx *cli.Context, addr solana.PublicKey, bump uint8, err error) error {
	if err != nil {
		return err
	}
	return printJSON(ctx, derived{Address: addr, Bump: bump})
}

func deriver(ctx *cli.Context) (address.Deriver, error) {
	program, err := programID(ctx)
	if err != nil {
		return address.Deriver{}, err
	}
	return address.NewDeriver(program), nil
}

func deriveKeyed(ctx *cli.Context, argName string, fn func(address.Deriver, solana.PublicKey) (solana.PublicKey, uint8, error)) error {
	d, err := deriver(ctx)
	if err != nil {
		return err
	}
	key, err := parseKey(argName, ctx.Args().First())
	if err != nil {
		return err
	}
	addr, bump, err := fn(d, key)
	return printDerived(ctx, addr, bump, err)
}

func derivePlate(ctx *cli.Context) error {
	d, err := deriver(ctx)
	if err != nil {
		return err
	}
	plate := ctx.Args().First()
	if plate == "" {
		return fmt.Errorf("missing plate")
	}
	addr, bump, err := d.Plate(plate)
	return printDerived(ctx, addr, bump, err)
}

func deriveReview(ctx *cli.Context) error {
	d, err := deriver(ctx)
	if err != nil {
		return err
	}
	profile, err := parseKey("profile", ctx.Args().Get(0))
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(ctx.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", ctx.Args().Get(1), err)
	}
	addr, bump, err := d.Review(profile, index)
	return printDerived(ctx, addr, bump, err)
}
