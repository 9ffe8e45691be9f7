package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct{}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the securities currently held" }
func (*positionsCmd) Usage() string {
	return `tbk positions

  Displays every security with a positive quantity on its latest record,
  largest positions first.
`
}
func (*positionsCmd) SetFlags(*flag.FlagSet) {}

func (*positionsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app, s *tradebook.Session) error {
		printMarkdown(renderer.PositionsMarkdown(s.Reports().CurrentPositions(), a.cfg.Currency))
		return nil
	})
}

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the lifetime PnL of every traded security" }
func (*historyCmd) Usage() string {
	return `tbk history

  Displays the realized, unrealized and total PnL of every traded security,
  closed positions included, best total first.
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (*historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app, s *tradebook.Session) error {
		printMarkdown(renderer.HistoryMarkdown(s.Reports().StockHistoricalPnL(), a.cfg.Currency))
		return nil
	})
}

// dailyCmd holds the flags for the 'daily' subcommand.
type dailyCmd struct {
	date      string
	from, to  string
	code      string
	portfolio bool
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "display the daily PnL records" }
func (*dailyCmd) Usage() string {
	return `tbk daily [-d <date> | -from <date> -to <date>] [-code <code>] [-portfolio]

  Displays the daily records, one table per date. With -portfolio, displays
  the totals of the portfolio per date instead.
`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "only display this date, overrides -from and -to")
	f.StringVar(&c.from, "from", "", "first date to display")
	f.StringVar(&c.to, "to", "", "last date to display")
	f.StringVar(&c.code, "code", "", "only display this security")
	f.BoolVar(&c.portfolio, "portfolio", false, "display the portfolio totals per date")
}

func (c *dailyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to := c.from, c.to
	if c.date != "" {
		from, to = c.date, c.date
	}
	rng, err := date.ParseRange(from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(func(a *app, s *tradebook.Session) error {
		if c.portfolio {
			var days []tradebook.PortfolioDay
			for _, d := range s.Reports().PortfolioDaily() {
				if rng.Contains(d.Date) {
					days = append(days, d)
				}
			}
			printMarkdown(renderer.PortfolioMarkdown(days, a.cfg.Currency))
			return nil
		}
		var records []tradebook.DailyPnLRecord
		for _, r := range s.Records() {
			if rng.Contains(r.Date) && (c.code == "" || r.Code == c.code) {
				records = append(records, r)
			}
		}
		printMarkdown(renderer.DailyMarkdown(records, a.cfg.Currency))
		return nil
	})
}

// reviewCmd holds the flags for the 'review' subcommand.
type reviewCmd struct {
	date string
}

func (*reviewCmd) Name() string     { return "review" }
func (*reviewCmd) Synopsis() string { return "review the activity and results of a day" }
func (*reviewCmd) Usage() string {
	return `tbk review [-d <date>]

  Reviews a day: its trades, fees, realized and unrealized PnL, the best and
  worst securities and the dividends received. Defaults to the last processed
  date.
`
}

func (c *reviewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "date to review, as 2006-01-02, 2006/1/2 or 20060102")
}

func (c *reviewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(func(a *app, s *tradebook.Session) error {
		day := on
		if day.IsZero() {
			day = s.Ledger().LastDay()
		}
		if day.IsZero() {
			day = date.Today()
		}
		printMarkdown(renderer.ReviewMarkdown(s.Reports().DailyReview(day), a.cfg.Currency))
		return nil
	})
}

type rollupCmd struct{}

func (*rollupCmd) Name() string     { return "rollup" }
func (*rollupCmd) Synopsis() string { return "display the totals per exchange and product type" }
func (*rollupCmd) Usage() string {
	return `tbk rollup

  Sums the latest records of every security per exchange and product type.
`
}
func (*rollupCmd) SetFlags(*flag.FlagSet) {}

func (*rollupCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(func(a *app, s *tradebook.Session) error {
		printMarkdown(renderer.RollupMarkdown(s.Reports().ExchangeRollup(), a.cfg.Currency))
		return nil
	})
}
