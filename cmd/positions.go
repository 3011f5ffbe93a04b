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

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	statement
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display open option positions with expiry alerts" }
func (*positionsCmd) Usage() string {
	return `wheelmech positions [-f <statement>] [-d <date>]

  Displays the open option positions per underlying, the structure they
  form, and days-to-expiry alerts relative to the analysis date.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, cfg, asOf, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	a := mechanics.Compute(records, asOf, cfg)
	printMarkdown(renderer.PositionsMarkdown(a))
	return subcommands.ExitSuccess
}
