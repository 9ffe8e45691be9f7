package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commands registered in c and
// of the global flags.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flags(fs)}
	})
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	res := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) { res[f.Name] = predictor(f) })
	return res
}

// predictor predicts the values of a flag from its name.
func predictor(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "config":
		return predict.Files("*.yaml")
	case "trades", "rates", "prices", "securities", "dividends":
		return predict.Files("*.csv")
	case "snapshot", "resume":
		return predict.Files("*.jsonl")
	case "format":
		return predict.Set{"jsonl", "csv"}
	case "log-level":
		return predict.Set{"debug", "info", "warn", "error"}
	default:
		return predict.Something
	}
}
