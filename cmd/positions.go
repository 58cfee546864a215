package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hmarr/realized"
	"github.com/hmarr/realized/date"
	"github.com/hmarr/realized/renderer"
	"github.com/shopspring/decimal"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	plain bool
	table bool
}

func (*positionsCmd) Name() string { return "positions" }
func (*positionsCmd) Synopsis() string {
	return "open positions, with spreads grouped and roll-adjusted"
}
func (*positionsCmd) Usage() string {
	return `rpl positions [-table] [<file>...]

  Replays the trading history and prints what is still open. Option
  positions sharing a root are grouped into calendar, vertical or diagonal
  spreads, and the cost basis of rolled spreads is reduced by the credits
  banked on earlier closes of the same contract.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown without terminal rendering.")
	f.BoolVar(&c.table, "table", false, "Print a plain text table instead of markdown.")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	trades, fees, err := loadHistory(cfg, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	report := realized.ComputeReport(trades, date.Date{}, decimal.Zero, fees)
	rows := realized.BuildPositionRows(report.Positions, realized.FirstTradeIndex(trades), trades)
	if c.table {
		renderer.PositionsTable(os.Stdout, rows)
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PositionsMarkdown(rows), c.plain || cfg.Plain)
	return subcommands.ExitSuccess
}
