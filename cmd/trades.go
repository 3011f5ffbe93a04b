package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/crux1s/mechanics"
	"github.com/crux1s/mechanics/renderer"
)

// tradesCmd holds the flags for the 'trades' subcommand.
type tradesCmd struct {
	statement
	latestOpen bool
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "display the closed-trade log" }
func (*tradesCmd) Usage() string {
	return `wheelmech trades [-f <statement>] [-latest-open]

  Displays every closed trade with its strategy, P&L, capture and
  annualized return. With -latest-open, a rolled trade is dated from its
  last roll instead of its first opening.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.BoolVar(&c.latestOpen, "latest-open", false, "Date rolled trades from their last roll.")
}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, cfg, asOf, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.latestOpen {
		cfg.OpenDatePolicy = mechanics.OpenDateLatest
	}

	a := mechanics.Compute(records, asOf, cfg)
	printMarkdown(renderer.TradesMarkdown(a))
	return subcommands.ExitSuccess
}
