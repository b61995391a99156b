package main

import (
	"fmt"

	"satch-client/internal/app/codec"
	"satch-client/internal/app/orchestrator"

	"github.com/urfave/cli/v2"
)

var (
	plateFlag = &cli.StringFlag{
		Name:  "plate",
		Usage: "resolve the driver registered under this license plate",
	}
	platformDriversFlag = &cli.StringFlag{
		Name:  "platform-drivers",
		Usage: "list the drivers of the platform at this address",
	}
)

var fetchCommand = &cli.Command{
	Name:      "fetch",
	Usage:     "read and decode an account from the ledger",
	ArgsUsage: "[address]",
	Flags:     []cli.Flag{plateFlag, platformDriversFlag},
	Action:    fetchAccount,
}

func fetchAccount(ctx *cli.Context) error {
	svc, err := newService(ctx, orchestrator.Options{})
	if err != nil {
		return err
	}

	switch {
	case ctx.String(plateFlag.Name) != "":
		entry, err := svc.LookupDriver(ctx.Context, ctx.String(plateFlag.Name))
		if err != nil {
			return err
		}
		return printJSON(ctx, entry)
	case ctx.String(platformDriversFlag.Name) != "":
		platform, err := parseKey("platform", ctx.String(platformDriversFlag.Name))
		if err != nil {
			return err
		}
		drivers, err := svc.PlatformDrivers(ctx.Context, platform)
		if err != nil {
			return err
		}
		return printJSON(ctx, drivers)
	}

	addr, err := parseKey("address", ctx.Args().First())
	if err != nil {
		return fmt.Errorf("%w (or pass --%s / --%s)", err, plateFlag.Name, platformDriversFlag.Name)
	}
	raw, err := svc.Gateway.FetchRaw(ctx.Context, addr)
	if err != nil {
		return err
	}
	rec, err := codec.Default.DecodeAnyAccount(raw)
	if err != nil {
		return err
	}
	return printJSON(ctx, decodedRecord{Kind: "record", Name: rec.Name(), Fields: rec.Values})
}
