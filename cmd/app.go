// Package cmd implements the CLI application to report realized P&L and
// open positions from brokerage trading history.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/hmarr/realized"
	"github.com/hmarr/realized/broker"
	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Commands lists the subcommands of the application. A main package
// registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&reportCmd{},
	&positionsCmd{},
	&checkCmd{},
}

// configFile is the default per-directory configuration.
const configFile = ".realized.yml"

// Config is the per-directory configuration, read from .realized.yml when
// present. Flags override it.
type Config struct {
	// Files are the history files to load, in chronological order.
	Files []string `yaml:"files"`
	// FeeFiles are extra exports read for their commission columns only.
	FeeFiles []string `yaml:"fee_files"`
	// Cash seeds the running cash column.
	Cash string `yaml:"cash"`
	// Since hides ledger rows before this date.
	Since string `yaml:"since"`
	// Plain disables terminal markdown rendering.
	Plain bool `yaml:"plain"`
}

// LoadConfig reads the configuration file, returning an empty Config when
// none exists.
func LoadConfig() (*Config, error) {
	data, err := os.ReadFile(configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return cfg, nil
}

// loadHistory resolves the files to read (flag arguments win over the
// config) and loads them into one trade batch.
func loadHistory(cfg *Config, args []string) ([]realized.Trade, realized.FeeTable, error) {
	files := args
	if len(files) == 0 {
		files = cfg.Files
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no history files: pass them as arguments or list them in %s", configFile)
	}
	trades, fees, err := broker.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	for _, path := range cfg.FeeFiles {
		extra, err := broker.LoadFees(path)
		if err != nil {
			return nil, nil, err
		}
		for k, v := range extra {
			fees[k] = fees[k].Add(v)
		}
	}
	return trades, fees, nil
}

// initialCash resolves the seed cash amount: flag first, then config.
func initialCash(flagValue string, cfg *Config) (decimal.Decimal, error) {
	s := flagValue
	if s == "" {
		s = cfg.Cash
	}
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cash amount %q: %w", s, err)
	}
	return v, nil
}

// sinceDate resolves the ledger cutoff date: flag first, then config.
func sinceDate(flagValue string, cfg *Config) (date.Date, error) {
	s := flagValue
	if s == "" {
		s = cfg.Since
	}
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails or plain output is requested.
func printMarkdown(md string, plain bool) {
	if plain {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.WithError(err).Debug("markdown rendering failed")
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
