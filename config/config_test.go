package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "lenient", c.OverSell)
	assert.Equal(t, "CNY", c.Currency)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, tradebook.Lenient, c.Policy())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, `
inputs:
  trades: data/trades.csv
  rates: /srv/rates.csv
  prices: data/prices.csv
oversell: strict
currency: HKD
log:
  level: debug
  format: json
output:
  dir: out
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "trades.csv"), c.Inputs.Trades)
	assert.Equal(t, "/srv/rates.csv", c.Inputs.Rates)
	assert.Empty(t, c.Inputs.Securities)
	assert.Equal(t, tradebook.Strict, c.Policy())
	assert.Equal(t, "HKD", c.Currency)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "out", c.Output.Dir)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, "oversell: strict\nlog:\n  level: debug\n")
	t.Setenv("TRADEBOOK_OVERSELL", "lenient")
	t.Setenv("TRADEBOOK_LOG_LEVEL", "warn")
	t.Setenv("TRADEBOOK_TRADES", "trades.csv")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tradebook.Lenient, c.Policy())
	assert.Equal(t, "warn", c.Log.Level)
	// environment paths are kept as is
	assert.Equal(t, "trades.csv", c.Inputs.Trades)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "bad.yaml", "inputs: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "invalid.yaml", "oversell: sometimes\ncurrency: XXXX\nlog:\n  format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oversell")
	assert.Contains(t, err.Error(), "XXXX")
	assert.Contains(t, err.Error(), "log.format")
}

func TestOpenInputs(t *testing.T) {
	dir := t.TempDir()
	c := Default()
	c.Inputs = Inputs{
		Trades: writeFile(t, dir, "trades.csv", "date,security_code,direction,price,quantity\n"),
		Rates:  writeFile(t, dir, "rates.csv", "broker,market,product_type\n"),
		Prices: writeFile(t, dir, "prices.csv", "date,security_code,close_price\n"),
	}

	in, closeAll, err := c.OpenInputs()
	require.NoError(t, err)
	defer closeAll()
	assert.Nil(t, in.Securities)
	assert.Nil(t, in.Dividends)
	b, err := io.ReadAll(in.Prices)
	require.NoError(t, err)
	assert.Equal(t, "date,security_code,close_price\n", string(b))

	c.Inputs.Dividends = filepath.Join(dir, "missing.csv")
	_, _, err = c.OpenInputs()
	assert.ErrorIs(t, err, os.ErrNotExist)

	c.Inputs = Inputs{}
	_, _, err = c.OpenInputs()
	assert.ErrorContains(t, err, "no trades table")
}
