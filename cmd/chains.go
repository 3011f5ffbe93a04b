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

// chainsCmd holds the flags for the 'chains' subcommand.
type chainsCmd struct {
	statement
}

func (*chainsCmd) Name() string     { return "chains" }
func (*chainsCmd) Synopsis() string { return "display the option roll chains" }
func (*chainsCmd) Usage() string {
	return `wheelmech chains [-f <statement>]

  Displays every roll chain: a short position kept alive by rolling, with
  its leg history and net credit.
`
}

func (c *chainsCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *chainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, cfg, asOf, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	a := mechanics.Compute(records, asOf, cfg)
	printMarkdown(renderer.ChainsMarkdown(a))
	return subcommands.ExitSuccess
}
