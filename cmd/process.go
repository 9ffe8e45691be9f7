package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// processCmd holds the flags for the 'process' subcommand.
type processCmd struct {
	format   string
	until    string
	snapshot string
	resume   string
	strict   bool
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute the daily PnL records and write them to the output directory" }
func (*processCmd) Usage() string {
	return `tbk process [-format jsonl|csv] [-until <date>] [-snapshot <file>] [-resume <file>] [-strict]

  Computes the fees of every trade, walks the trades and prices day by day and
  writes to the output directory:

    daily_pnl.jsonl (or .csv)  one record per security and day
    positions.csv              the securities currently held
    history.csv                the lifetime result of every traded security

  With -resume, the walk starts from a snapshot written by an earlier
  -snapshot and only records the following days.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "jsonl", "format of the daily records (jsonl, csv)")
	f.StringVar(&c.until, "until", "", "last date to process, defaults to the last date of the tables")
	f.StringVar(&c.snapshot, "snapshot", "", "write the positions at the end of the walk to this file")
	f.StringVar(&c.resume, "resume", "", "resume the walk from this snapshot file")
	f.BoolVar(&c.strict, "strict", false, "fail on a sell of more shares than held, overrides the configuration")
}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "jsonl" && c.format != "csv" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want jsonl or csv\n", c.format)
		return subcommands.ExitUsageError
	}
	until, err := parseDay(c.until)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -until: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()

	sc := tradebook.SessionConfig{OverSell: a.cfg.Policy(), Until: until}
	if c.strict {
		sc.OverSell = tradebook.Strict
	}
	var resumed *tradebook.Snapshot
	if c.resume != "" {
		snap, err := readSnapshot(c.resume)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
		resumed = &snap
	}

	s, err := a.session(sc, resumed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing trades: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.write(a, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		return subcommands.ExitFailure
	}

	printWarnings(s)
	printMarkdown(renderer.PositionsMarkdown(s.Reports().CurrentPositions(), a.cfg.Currency))
	return subcommands.ExitSuccess
}

// write writes every output file of s.
func (c *processCmd) write(a *app, s *tradebook.Session) error {
	dir := a.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	records := s.Records()
	outputs := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{"daily_pnl." + c.format, func(w io.Writer) error {
			if c.format == "csv" {
				return tradebook.EncodeRecordsCSV(w, records)
			}
			return tradebook.EncodeRecords(w, records)
		}},
		{"positions.csv", func(w io.Writer) error {
			return tradebook.EncodePositionsCSV(w, s.Reports().CurrentPositions())
		}},
		{"history.csv", func(w io.Writer) error {
			return tradebook.EncodeHistoryCSV(w, s.Reports().StockHistoricalPnL())
		}},
	}
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, o.encode); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		a.log.Info("output written", zap.String("path", path))
	}

	if c.snapshot != "" {
		snap := s.Snapshot()
		if err := writeFile(c.snapshot, func(w io.Writer) error { return tradebook.EncodeSnapshot(w, snap) }); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		a.log.Info("snapshot written", zap.String("path", c.snapshot), zap.Stringer("date", snap.Date))
	}
	return nil
}

// writeFile creates path and encodes into it.
func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readSnapshot(path string) (tradebook.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return tradebook.Snapshot{}, err
	}
	defer f.Close()
	return tradebook.DecodeSnapshot(f)
}
