// Command finagle tracks share trades and reports Australian capital gains tax.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/finagle/cmd"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	// exits when invoked by the shell for completion.
	complete.Complete("finagle", completion())

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// argPredictors completes the positional arguments of some commands.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*"),
}

// flagPredictors completes flag values, by command then flag name.
var flagPredictors = map[string]map[string]complete.Predictor{
	"export": {"format": predict.Set{"csv", "json", "jsonl"}, "o": predict.Files("*")},
	"tx":     {"a": predict.Set{"buy", "sell"}},
	"serve":  {"addr": predict.Something},
}

// completion describes the commands and flags to the shell completion.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(flag.CommandLine, nil),
	}
	for _, c := range cmd.Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{
			Flags: flags(fs, flagPredictors[c.Name()]),
			Args:  argPredictors[c.Name()],
		}
	}
	return root
}

func flags(fs *flag.FlagSet, predictors map[string]complete.Predictor) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch p, ok := predictors[f.Name]; {
		case ok:
			m[f.Name] = p
		case isBool(f):
			m[f.Name] = predict.Nothing
		default:
			m[f.Name] = predict.Something
		}
	})
	return m
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
