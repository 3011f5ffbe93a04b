// Package cmd implements the CLI application to analyze a broker statement.
package cmd

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"

	"github.com/crux1s/mechanics"
	"github.com/crux1s/mechanics/date"
	"github.com/crux1s/mechanics/ingest"
)

// Commands lists the subcommands. A main package registers each of them on a
// Commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&summaryCmd{},
	&campaignsCmd{},
	&tradesCmd{},
	&chainsCmd{},
	&positionsCmd{},
}

// statement holds the flags every reporting command shares and loads the
// analysis inputs from them.
type statement struct {
	file       string
	configFile string
	asOf       string
}

func (s *statement) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.file, "f", "transactions.csv", "Broker statement to analyze (CSV export).")
	f.StringVar(&s.configFile, "config", "", "YAML file overriding the engine defaults.")
	f.StringVar(&s.asOf, "d", date.Today().String(), "Analysis date.")
}

// load parses the statement and resolves the config and analysis date.
// Ingest warnings go to the log so reports stay clean.
func (s *statement) load() (records []mechanics.TransactionRecord, cfg mechanics.Config, asOf date.Date, err error) {
	asOf, err = date.Parse(s.asOf)
	if err != nil {
		return nil, mechanics.Config{}, date.Date{}, err
	}

	cfg = mechanics.DefaultConfig()
	if s.configFile != "" {
		cfg, err = mechanics.LoadConfig(s.configFile)
		if err != nil {
			return nil, mechanics.Config{}, date.Date{}, fmt.Errorf("loading config %q: %w", s.configFile, err)
		}
	}

	res, err := ingest.ParseFile(s.file)
	if err != nil {
		return nil, mechanics.Config{}, date.Date{}, fmt.Errorf("reading statement %q: %w", s.file, err)
	}
	for _, w := range res.Warnings {
		log.Println("warning:", w)
	}
	return res.Records, cfg, asOf, nil
}
