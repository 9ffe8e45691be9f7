// Package config loads the tradebook configuration.
//
// Settings come from a yaml file, then from TRADEBOOK_* environment variables,
// which may be set in a .env file. Command line flags take precedence over
// both, they are applied by the commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/tradebook"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "tradebook.yaml"

// Inputs are the paths of the csv tables.
type Inputs struct {
	Trades     string `yaml:"trades"`
	Rates      string `yaml:"rates"`
	Prices     string `yaml:"prices"`
	Securities string `yaml:"securities"`
	Dividends  string `yaml:"dividends"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Output configures where files are written.
type Output struct {
	Dir string `yaml:"dir"`
}

// Config is the tradebook configuration.
type Config struct {
	Inputs   Inputs `yaml:"inputs"`
	OverSell string `yaml:"oversell"`
	Currency string `yaml:"currency"`
	Log      Log    `yaml:"log"`
	Output   Output `yaml:"output"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.OverSell == "" {
		c.OverSell = tradebook.Lenient.String()
	}
	if c.Currency == "" {
		c.Currency = money.CNY
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

// Load reads the configuration file at path, then the environment.
//
// A missing file is not an error: the defaults are used. Relative input paths
// of the file are relative to the file's directory.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	c := &Config{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		c.Inputs.relativeTo(filepath.Dir(path))
	}

	c.applyEnv(os.LookupEnv)
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (in *Inputs) relativeTo(dir string) {
	for _, p := range []*string{&in.Trades, &in.Rates, &in.Prices, &in.Securities, &in.Dividends} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// applyEnv overrides c with the TRADEBOOK_* variables that are set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for name, p := range map[string]*string{
		"TRADEBOOK_TRADES":     &c.Inputs.Trades,
		"TRADEBOOK_RATES":      &c.Inputs.Rates,
		"TRADEBOOK_PRICES":     &c.Inputs.Prices,
		"TRADEBOOK_SECURITIES": &c.Inputs.Securities,
		"TRADEBOOK_DIVIDENDS":  &c.Inputs.Dividends,
		"TRADEBOOK_OVERSELL":   &c.OverSell,
		"TRADEBOOK_CURRENCY":   &c.Currency,
		"TRADEBOOK_LOG_LEVEL":  &c.Log.Level,
		"TRADEBOOK_LOG_FORMAT": &c.Log.Format,
		"TRADEBOOK_OUTPUT_DIR": &c.Output.Dir,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*p = v
		}
	}
}

// Validate checks every setting and reports all the invalid ones.
func (c *Config) Validate() error {
	var errs []error
	if _, err := tradebook.ParseOverSellPolicy(c.OverSell); err != nil {
		errs = append(errs, err)
	}
	if money.GetCurrency(strings.ToUpper(c.Currency)) == nil {
		errs = append(errs, fmt.Errorf("unknown currency %q", c.Currency))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be 'json' or 'console', got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Policy returns the over-sell policy. It is lenient unless set to strict.
func (c *Config) Policy() tradebook.OverSellPolicy {
	p, _ := tradebook.ParseOverSellPolicy(c.OverSell)
	return p
}

// OpenInputs opens the configured tables. Optional tables that are not
// configured are left nil. The returned function closes every opened file.
func (c *Config) OpenInputs() (tradebook.Inputs, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}
	open := func(table, path string, required bool) (io.Reader, error) {
		if path == "" {
			if required {
				return nil, fmt.Errorf("no %s table configured", table)
			}
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s table: %w", table, err)
		}
		files = append(files, f)
		return f, nil
	}

	var in tradebook.Inputs
	var err error
	if in.Trades, err = open(tradebook.TradesTable, c.Inputs.Trades, true); err != nil {
		closeAll()
		return tradebook.Inputs{}, nil, err
	}
	if in.Rates, err = open(tradebook.RatesTable, c.Inputs.Rates, true); err != nil {
		closeAll()
		return tradebook.Inputs{}, nil, err
	}
	if in.Prices, err = open(tradebook.PricesTable, c.Inputs.Prices, true); err != nil {
		closeAll()
		return tradebook.Inputs{}, nil, err
	}
	if in.Securities, err = open(tradebook.SecuritiesTable, c.Inputs.Securities, false); err != nil {
		closeAll()
		return tradebook.Inputs{}, nil, err
	}
	if in.Dividends, err = open(tradebook.DividendsTable, c.Inputs.Dividends, false); err != nil {
		closeAll()
		return tradebook.Inputs{}, nil, err
	}
	return in, closeAll, nil
}
