package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/hmarr/realized/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: the call returns immediately unless the shell is
	// asking for completions.
	historyFiles := predict.Files("*.csv")
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"report": {
				Flags: map[string]complete.Predictor{
					"s":     predict.Nothing,
					"cash":  predict.Nothing,
					"plain": predict.Nothing,
					"table": predict.Nothing,
				},
				Args: historyFiles,
			},
			"positions": {
				Flags: map[string]complete.Predictor{
					"plain": predict.Nothing,
					"table": predict.Nothing,
				},
				Args: historyFiles,
			},
			"check": {
				Flags: map[string]complete.Predictor{
					"w": predict.Files("*.jsonl"),
				},
				Args: historyFiles,
			},
		},
	}
	completion.Complete("rpl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
