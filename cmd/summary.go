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

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	statement
	window string
	daily  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the account summary and window scorecard" }
func (*summaryCmd) Usage() string {
	return `wheelmech summary [-f <statement>] [-w <window>] [-daily]

  Displays realized totals, the selected window's P&L breakdown and the
  trade scorecard. Windows: 30d, 90d, ytd, 1y, all, or from..to.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.window, "w", "90d", "Window to score: 30d, 90d, ytd, 1y, all or from..to.")
	f.StringVar(&c.window, "window", "90d", "Alias for -w.")
	f.BoolVar(&c.daily, "daily", false, "Include the per-day realized P&L series.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, cfg, asOf, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	win, err := parseWindow(c.window, asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a := mechanics.Compute(records, asOf, cfg)
	m, problems := mechanics.ComputeWindowMetrics(records, a.Trades, win, cfg)
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", p.Underlying, p.Err)
	}

	md := renderer.SummaryMarkdown(a, m)
	if c.daily {
		series, _ := mechanics.DailyRealized(records, win, cfg)
		md += renderer.DailyMarkdown(series)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
