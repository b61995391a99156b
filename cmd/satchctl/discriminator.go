package main

import (
	"encoding/hex"
	"fmt"

	"satch-client/internal/app/schema"

	"github.com/urfave/cli/v2"
)

var requestFlag = &cli.BoolFlag{
	Name:  "request",
	Usage: "treat the name as a request instead of a record",
}

var discriminatorCommand = &cli.Command{
	Name:      "discriminator",
	Usage:     "print 8-byte discriminators; lists every known one without a name",
	ArgsUsage: "[name]",
	Flags:     []cli.Flag{requestFlag},
	Action:    printDiscriminators,
}

type discriminatorEntry struct {
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"`
}

func printDiscriminators(ctx *cli.Context) error {
	if name := ctx.Args().First(); name != "" {
		kind, disc := "record", schema.AccountDiscriminator(name)
		if ctx.Bool(requestFlag.Name) {
			kind, disc = "request", schema.RequestDiscriminator(name)
		}
		return printJSON(ctx, discriminatorEntry{Kind: kind, Name: name, Discriminator: hex.EncodeToString(disc[:])})
	}

	var entries []discriminatorEntry
	for _, rs := range schema.Satch.Records() {
		disc := schema.AccountDiscriminator(rs.Name)
		entries = append(entries, discriminatorEntry{Kind: "record", Name: rs.Name, Discriminator: hex.EncodeToString(disc[:])})
	}
	for _, name := range []string{schema.RequestRegisterPlatform, schema.RequestRegisterDriver, schema.RequestLeaveReview} {
		if _, ok := schema.Satch.Request(name); !ok {
			return fmt.Errorf("request %s is not registered", name)
		}
		disc := schema.RequestDiscriminator(name)
		entries = append(entries, discriminatorEntry{Kind: "request", Name: name, Discriminator: hex.EncodeToString(disc[:])})
	}
	return printJSON(ctx, entries)
}
