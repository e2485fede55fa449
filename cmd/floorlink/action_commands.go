package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brojonat/floorlink/client"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func serverFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Value:   "http://localhost:8080",
		Usage:   "HTTP server URL",
		EnvVars: []string{"FLOORLINK_SERVER_URL"},
	}
}

func jqFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "jq",
		Usage: "jq expression applied to the JSON output (e.g. '.links.actions[].href')",
	}
}

func actionCommands() *cli.Command {
	return &cli.Command{
		Name:  "action",
		Usage: "Fetch actions and unsigned transactions from a running server",
		Subcommands: []*cli.Command{
			actionGetCommand(),
			actionBuyCommand(),
			actionBidCommand(),
		},
	}
}

func actionGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch the action metadata for a listed mint",
		ArgsUsage: "MINT_ADDRESS",
		Flags:     []cli.Flag{serverFlag(), jqFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}

			cl := client.NewClient(c.String("server"), nil, nil)
			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()

			meta, err := cl.GetAction(ctx, c.Args().Get(0))
			if err != nil {
				return err
			}
			return printJSON(meta, c.String("jq"))
		},
	}
}

func actionBuyCommand() *cli.Command {
	return &cli.Command{
		Name:      "buy",
		Usage:     "Fetch an unsigned purchase transaction for a listed mint",
		ArgsUsage: "MINT_ADDRESS",
		Flags: []cli.Flag{
			serverFlag(),
			jqFlag(),
			&cli.StringFlag{
				Name:     "account",
				Aliases:  []string{"a"},
				Usage:    "Buyer wallet address (pays and signs)",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}

			cl := client.NewClient(c.String("server"), nil, nil)
			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()

			result, err := cl.Buy(ctx, c.Args().Get(0), c.String("account"))
			if err != nil {
				return err
			}
			return printJSON(result, c.String("jq"))
		},
	}
}

func actionBidCommand() *cli.Command {
	return &cli.Command{
		Name:      "bid",
		Usage:     "Fetch an unsigned bid transaction for a listed mint",
		ArgsUsage: "MINT_ADDRESS",
		Flags: []cli.Flag{
			serverFlag(),
			jqFlag(),
			&cli.StringFlag{
				Name:     "account",
				Aliases:  []string{"a"},
				Usage:    "Bidder wallet address (funds the escrow)",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "amount",
				Usage:    "Offer amount in SOL (e.g. 1.5)",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}

			cl := client.NewClient(c.String("server"), nil, nil)
			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()

			result, err := cl.Bid(ctx, c.Args().Get(0), c.String("account"), c.Float64("amount"))
			if err != nil {
				return err
			}
			return printJSON(result, c.String("jq"))
		},
	}
}

// printJSON writes v as indented JSON to stdout, optionally filtered through a
// jq expression first.
func printJSON(v interface{}, jqExpr string) error {
	return fprintJSON(os.Stdout, v, jqExpr)
}

func fprintJSON(w io.Writer, v interface{}, jqExpr string) error {
	if jqExpr == "" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	query, err := gojq.Parse(jqExpr)
	if err != nil {
		return fmt.Errorf("failed to parse jq expression %q: %w", jqExpr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq expression %q: %w", jqExpr, err)
	}

	// Round-trip through JSON so gojq sees plain maps and slices.
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	iter := code.Run(generic)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return fmt.Errorf("jq evaluation failed: %w", err)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
