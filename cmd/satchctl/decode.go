package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"satch-client/internal/app/codec"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli/v2"
)

var encodingFlag = &cli.StringFlag{
	Name:  "encoding",
	Usage: "input encoding: base58, base64 or hex",
	Value: "base58",
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "decode raw account data, or instruction data with --request",
	ArgsUsage: "<data>",
	Flags:     []cli.Flag{encodingFlag, requestFlag},
	Action:    decodeData,
}

type decodedRecord struct {
	Kind   string     `json:"kind"`
	Name   string     `json:"name"`
	Fields codec.Args `json:"fields"`
}

func decodeInput(encoding, data string) ([]byte, error) {
	switch encoding {
	case "base58":
		return base58.Decode(data)
	case "base64":
		return base64.StdEncoding.DecodeString(data)
	case "hex":
		return hex.DecodeString(data)
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func decodeData(ctx *cli.Context) error {
	input := ctx.Args().First()
	if input == "" {
		return fmt.Errorf("missing data")
	}
	raw, err := decodeInput(ctx.String(encodingFlag.Name), input)
	if err != nil {
		return fmt.Errorf("invalid %s input: %w", ctx.String(encodingFlag.Name), err)
	}

	if ctx.Bool(requestFlag.Name) {
		rq, args, err := codec.Default.DecodeRequest(raw)
		if err != nil {
			return err
		}
		return printJSON(ctx, decodedRecord{Kind: "request", Name: rq.Name, Fields: args})
	}

	rec, err := codec.Default.DecodeAnyAccount(raw)
	if err != nil {
		return err
	}
	return printJSON(ctx, decodedRecord{Kind: "record", Name: rec.Name(), Fields: rec.Values})
}
