package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hmarr/realized"
	"github.com/hmarr/realized/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	since string
	cash  string
	plain bool
	table bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "realized P&L ledger over the full trading history" }
func (*reportCmd) Usage() string {
	return `rpl report [-s <date>] [-cash <amount>] [-table] [<file>...]

  Replays the trading history through the FIFO matcher and prints one ledger
  row per trade: quantity closed, realized P&L, fees, and the running
  totals. Files may be broker exports (.csv, .json) or the journal format
  (.jsonl); without arguments the files listed in .realized.yml are used.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.since, "s", "", "Hide ledger rows before this date. Earlier trades still feed the matcher.")
	f.StringVar(&c.cash, "cash", "", "Initial cash amount seeding the cash and total columns.")
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown without terminal rendering.")
	f.BoolVar(&c.table, "table", false, "Print a plain text table instead of markdown.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	since, err := sinceDate(c.since, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing since date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cash, err := initialCash(c.cash, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	trades, fees, err := loadHistory(cfg, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	report := realized.ComputeReport(trades, since, cash, fees)
	if c.table {
		renderer.LedgerTable(os.Stdout, report)
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.LedgerMarkdown(report), c.plain || cfg.Plain)
	return subcommands.ExitSuccess
}
