package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/google/subcommands"
	"github.com/hmarr/realized"
	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct {
	write string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validates the trading history" }
func (*checkCmd) Usage() string {
	return `rpl check [-w <file>] [<file>...]

  Loads and validates the trading history: sequence numbers must be unique
  and increasing, quantities positive, and strategy legs must reference an
  earlier parent. Prints the open lot state per instrument. With -w the
  normalized history is written back out in the journal format, ready to be
  extended by later imports.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.write, "w", "", "Write the normalized history to this journal file.")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	// Load runs Validate; an invalid history fails here.
	trades, _, err := loadHistory(cfg, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	options, strategies := 0, 0
	for _, t := range trades {
		switch t.Asset {
		case realized.Option:
			options++
		case realized.OptionStrategy:
			strategies++
		}
	}
	fmt.Printf("%d trades ok (%d option legs, %d strategies)\n", len(trades), options, strategies)

	report := realized.ComputeReport(trades, date.Date{}, decimal.Zero, nil)
	keys := slices.Sorted(maps.Keys(report.Positions))
	for _, key := range keys {
		lots := report.Positions[key]
		fmt.Printf("  %s: %s %d at %s (%d %s)\n",
			key, lots[0].Side, lots.Quantity(), lots.AveragePrice().StringFixed(2), len(lots), plural(len(lots), "lot"))
	}

	if c.write == "" {
		return subcommands.ExitSuccess
	}
	out, err := os.Create(c.write)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.write, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := realized.EncodeTrades(out, trades); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.write, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %d trades to %s\n", len(trades), c.write)
	return subcommands.ExitSuccess
}
