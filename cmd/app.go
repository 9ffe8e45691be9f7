// Package cmd implements the tbk command line application.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/config"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/logging"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "processing")
	c.Register(&feesCmd{}, "processing")
	c.Register(&securitiesCmd{}, "processing")

	c.Register(&positionsCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&dailyCmd{}, "reports")
	c.Register(&reviewCmd{}, "reports")
	c.Register(&rollupCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile     = flag.String("config", config.DefaultFile, "Path to the yaml configuration file")
	tradesFile     = flag.String("trades", "", "Path to the trades table (csv), overrides the configuration")
	ratesFile      = flag.String("rates", "", "Path to the fee rates table (csv), overrides the configuration")
	pricesFile     = flag.String("prices", "", "Path to the close prices table (csv), overrides the configuration")
	securitiesFile = flag.String("securities", "", "Path to the optional securities table (csv)")
	dividendsFile  = flag.String("dividends", "", "Path to the optional dividends table (csv)")
	currency       = flag.String("currency", "", "Display currency of amounts, overrides the configuration")
	logLevel       = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides the configuration")
	raw            = flag.Bool("raw", false, "print markdown as is, without terminal rendering")
)

// app is the environment of a command: its configuration and logger.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

// newApp loads the configuration and applies the global flags.
func newApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{*tradesFile, &cfg.Inputs.Trades},
		{*ratesFile, &cfg.Inputs.Rates},
		{*pricesFile, &cfg.Inputs.Prices},
		{*securitiesFile, &cfg.Inputs.Securities},
		{*dividendsFile, &cfg.Inputs.Dividends},
		{*currency, &cfg.Currency},
		{*logLevel, &cfg.Log.Level},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

// session loads the input tables and processes them, starting from resume
// when not nil.
func (a *app) session(sc tradebook.SessionConfig, resume *tradebook.Snapshot) (*tradebook.Session, error) {
	in, closeAll, err := a.cfg.OpenInputs()
	if err != nil {
		return nil, err
	}
	defer closeAll()

	sc.Logger = a.log
	s := tradebook.NewSession(sc)
	if resume != nil {
		s.ResumeFrom(*resume)
	}
	if err := s.Load(in); err != nil {
		return nil, err
	}
	if err := s.Process(); err != nil {
		return nil, err
	}
	return s, nil
}

// processed returns a session processed with the configured policy.
func (a *app) processed() (*tradebook.Session, error) {
	return a.session(tradebook.SessionConfig{OverSell: a.cfg.Policy()}, nil)
}

// run is the common prologue of the report commands.
func run(report func(a *app, s *tradebook.Session) error) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()

	s, err := a.processed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing trades: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := report(a, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// parseDay parses an optional date flag.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

// printMarkdown prints md, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if *raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printWarnings prints the warnings of s, if any.
func printWarnings(s *tradebook.Session) {
	if md := renderer.WarningsMarkdown(s.Warnings()); md != "" {
		printMarkdown(md)
	}
}
