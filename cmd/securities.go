package cmd

import (
	"context"
	"flag"
	"slices"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

// feesCmd holds the flags for the 'fees' subcommand.
type feesCmd struct {
	code     string
	warnings bool
}

func (*feesCmd) Name() string     { return "fees" }
func (*feesCmd) Synopsis() string { return "display the fee breakdown of every trade" }
func (*feesCmd) Usage() string {
	return `tbk fees [-code <code>] [-w]

  Displays every trade with the fees computed from the rates table.
`
}

func (c *feesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "only display the trades of this security")
	f.BoolVar(&c.warnings, "w", false, "also display the warnings raised while processing")
}

func (c *feesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app, s *tradebook.Session) error {
		trades := slices.DeleteFunc(slices.Clone(s.Trades()), func(t tradebook.Trade) bool {
			return c.code != "" && t.Code != c.code
		})
		printMarkdown(renderer.FeesMarkdown(trades, a.cfg.Currency))
		if c.warnings {
			printWarnings(s)
		}
		return nil
	})
}

type securitiesCmd struct{}

func (*securitiesCmd) Name() string     { return "securities" }
func (*securitiesCmd) Synopsis() string { return "display the security directory" }
func (*securitiesCmd) Usage() string {
	return `tbk securities

  Displays every security of the directory: the securities table when given,
  completed with the securities inferred from the trades.
`
}
func (*securitiesCmd) SetFlags(*flag.FlagSet) {}

func (*securitiesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(_ *app, s *tradebook.Session) error {
		held := make(map[string]bool)
		for _, p := range s.Positions() {
			held[p.Code] = p.Quantity.IsPositive()
		}
		printMarkdown(renderer.SecuritiesMarkdown(s.Directory().Securities(), held))
		return nil
	})
}
