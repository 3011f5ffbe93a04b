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

// campaignsCmd holds the flags for the 'campaigns' subcommand.
type campaignsCmd struct {
	statement
	lifetime bool
}

func (*campaignsCmd) Name() string     { return "campaigns" }
func (*campaignsCmd) Synopsis() string { return "display the wheel campaigns per ticker" }
func (*campaignsCmd) Usage() string {
	return `wheelmech campaigns [-f <statement>] [-lifetime]

  Displays every detected wheel campaign with its ledger and timeline.
  With -lifetime, each ticker's history is kept as one running campaign
  instead of closing at every return to flat.
`
}

func (c *campaignsCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.BoolVar(&c.lifetime, "lifetime", false, "One running campaign per ticker instead of per cycle.")
}

func (c *campaignsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, cfg, asOf, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg.Lifetime = c.lifetime

	a := mechanics.Compute(records, asOf, cfg)
	printMarkdown(renderer.CampaignsMarkdown(a))
	return subcommands.ExitSuccess
}
