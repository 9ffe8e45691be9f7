package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace writes a configuration and its tables in a temporary directory
// and points the global -config flag to it.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"trades.csv": "date,security_code,direction,price,quantity,security_name,broker\n" +
			"2024-01-02,600519,买入,10,100,贵州茅台,国泰君安\n" +
			"2024-01-03,600519,卖出,12,50,贵州茅台,国泰君安\n",
		"rates.csv":  "broker,market,product_type,commission_rate,regulatory_rate,stamp_tax_rate,min_commission\n国泰君安,上交所,股票,0.0003,0.00002,0.001,5\n",
		"prices.csv": "date,security_code,close_price\n2024-01-04,600519,11\n",
		"tradebook.yaml": "inputs:\n  trades: trades.csv\n  rates: rates.csv\n  prices: prices.csv\n" +
			"log:\n  level: error\noutput:\n  dir: " + filepath.Join(dir, "out") + "\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	old := *configFile
	*configFile = filepath.Join(dir, "tradebook.yaml")
	t.Cleanup(func() { *configFile = old })
	return dir
}

func TestProcessCmd(t *testing.T) {
	dir := workspace(t)
	snapshot := filepath.Join(dir, "snapshot.jsonl")

	c := &processCmd{format: "csv", snapshot: snapshot, until: "2024-01-03"}
	require.Equal(t, subcommands.ExitSuccess, c.Execute(context.Background(), flag.NewFlagSet("process", flag.ContinueOnError)))

	for _, name := range []string{"daily_pnl.csv", "positions.csv", "history.csv"} {
		b, err := os.ReadFile(filepath.Join(dir, "out", name))
		require.NoError(t, err, name)
		assert.Contains(t, string(b), "600519", name)
	}
	b, err := os.ReadFile(filepath.Join(dir, "out", "daily_pnl.csv"))
	require.NoError(t, err)
	// header and the two walked days
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(string(b)), "\n")))

	f, err := os.Open(snapshot)
	require.NoError(t, err)
	defer f.Close()
	snap, err := tradebook.DecodeSnapshot(f)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", snap.Date.String())
	assert.True(t, snap.Positions["600519"].Quantity.Equal(tradebook.Q(50)))

	// the resumed walk only records the last day
	c = &processCmd{format: "jsonl", resume: snapshot}
	require.Equal(t, subcommands.ExitSuccess, c.Execute(context.Background(), flag.NewFlagSet("process", flag.ContinueOnError)))
	r, err := os.Open(filepath.Join(dir, "out", "daily_pnl.jsonl"))
	require.NoError(t, err)
	defer r.Close()
	records, err := tradebook.DecodeRecords(r)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-04", records[0].Date.String())
	assert.True(t, records[0].RealizedPnL.Equal(tradebook.M(91.9)))
}

func TestProcessCmdErrors(t *testing.T) {
	dir := workspace(t)
	ctx := context.Background()
	fs := flag.NewFlagSet("process", flag.ContinueOnError)

	assert.Equal(t, subcommands.ExitUsageError, (&processCmd{format: "xlsx"}).Execute(ctx, fs))
	assert.Equal(t, subcommands.ExitUsageError, (&processCmd{format: "csv", until: "someday"}).Execute(ctx, fs))

	oversold := "date,security_code,direction,price,quantity\n2024-01-02,600519,卖出,12,50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.csv"), []byte(oversold), 0o644))
	assert.Equal(t, subcommands.ExitFailure, (&processCmd{format: "csv", strict: true}).Execute(ctx, fs))
	assert.Equal(t, subcommands.ExitSuccess, (&processCmd{format: "csv"}).Execute(ctx, fs))
}

func TestReportCmds(t *testing.T) {
	workspace(t)
	ctx := context.Background()
	for _, c := range []subcommands.Command{
		&positionsCmd{},
		&historyCmd{},
		&dailyCmd{date: "2024-01-03"},
		&dailyCmd{portfolio: true},
		&dailyCmd{from: "2024-01-03", code: "600519"},
		&reviewCmd{},
		&rollupCmd{},
		&feesCmd{code: "600519", warnings: true},
		&securitiesCmd{},
	} {
		t.Run(c.Name(), func(t *testing.T) {
			assert.Equal(t, subcommands.ExitSuccess, c.Execute(ctx, flag.NewFlagSet(c.Name(), flag.ContinueOnError)))
		})
	}
}

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("tbk", flag.ContinueOnError), "tbk")
	Register(commander)
	root := Completion(commander)

	process, ok := root.Sub["process"]
	require.True(t, ok, "missing process completion")
	assert.Contains(t, process.Flags, "format")
	assert.Contains(t, process.Flags, "strict")
	assert.Equal(t, []string{"jsonl", "csv"}, process.Flags["format"].Predict(""))
	assert.Contains(t, root.Flags, "config")
	assert.Contains(t, root.Sub, "review")
}
