package main

import (
	"fmt"

	"github.com/brojonat/floorlink/service/pricing"
	"github.com/urfave/cli/v2"
)

// quoteCommand previews the pricing math locally, without a server. Useful for
// sanity-checking what a buyer will be asked to pay for a given listing.
func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Compute the total cost of a purchase from its listing terms",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "price",
				Usage:    "List price in lamports",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "royalty-bps",
				Usage: "Creator royalty rate in basis points",
			},
			&cli.BoolFlag{
				Name:  "royalties-enforced",
				Usage: "Whether the token standard enforces royalties",
			},
			jqFlag(),
		},
		Action: func(c *cli.Context) error {
			quote := pricing.ComputeQuote(
				c.Uint64("price"),
				c.Uint64("royalty-bps"),
				c.Bool("royalties-enforced"),
			)

			if jq := c.String("jq"); jq != "" {
				return printJSON(quote, jq)
			}

			fmt.Printf("base price:      %d lamports (%.9f SOL)\n", quote.BasePrice, pricing.SOL(quote.BasePrice))
			fmt.Printf("marketplace fee: %d lamports (%.9f SOL)\n", quote.MarketplaceFee, pricing.SOL(quote.MarketplaceFee))
			fmt.Printf("royalty fee:     %d lamports (%.9f SOL)\n", quote.RoyaltyFee, pricing.SOL(quote.RoyaltyFee))
			fmt.Printf("total:           %d lamports (%.9f SOL)\n", quote.Total, pricing.SOL(quote.Total))
			return nil
		},
	}
}
