package tradebook

import (
	"errors"
	"fmt"
	"io"

	"github.com/etnz/tradebook/date"
	"go.uber.org/zap"
)

// Inputs are the csv tables of a session. Securities and Dividends are
// optional and nil when not supplied.
type Inputs struct {
	Trades     io.Reader
	Rates      io.Reader
	Prices     io.Reader
	Securities io.Reader
	Dividends  io.Reader
}

// Tables are the decoded input tables.
type Tables struct {
	Trades     []Trade
	Rates      []FeeRateRecord
	Prices     []ClosePrice
	Securities []SecurityInfo // nil when no securities table was supplied
	Dividends  []Dividend
}

// DecodeTables decodes every table of in. It fails on the first invalid table.
func DecodeTables(in Inputs) (Tables, error) {
	var t Tables
	var err error
	if in.Trades == nil || in.Rates == nil || in.Prices == nil {
		return t, errors.New("trades, rates and prices tables are required")
	}
	if t.Trades, err = DecodeTrades(in.Trades); err != nil {
		return Tables{}, err
	}
	if t.Rates, err = DecodeFeeRates(in.Rates); err != nil {
		return Tables{}, err
	}
	if t.Prices, err = DecodePrices(in.Prices); err != nil {
		return Tables{}, err
	}
	if in.Securities != nil {
		if t.Securities, err = DecodeSecurities(in.Securities); err != nil {
			return Tables{}, err
		}
		if t.Securities == nil {
			t.Securities = []SecurityInfo{}
		}
	}
	if in.Dividends != nil {
		if t.Dividends, err = DecodeDividends(in.Dividends); err != nil {
			return Tables{}, err
		}
	}
	return t, nil
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Logger   *zap.Logger // defaults to a no-op logger
	OverSell OverSellPolicy
	Until    date.Date // last day to walk, zero for all
}

// Session owns the tables and the ledger of one processing request.
//
// Results are published only when Process succeeds: after a failed Load or
// Process the session exposes no records, positions or reports.
type Session struct {
	cfg    SessionConfig
	log    *zap.Logger
	tables *Tables
	resume *Snapshot

	trades   []Trade
	dir      *SecurityDirectory
	ledger   *Ledger
	reports  *Reports
	warnings []Warning
}

// NewSession returns an empty session.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{cfg: cfg, log: log}
}

// Load decodes the input tables. It replaces any previously loaded tables and
// clears the published results.
func (s *Session) Load(in Inputs) error {
	t, err := DecodeTables(in)
	s.reset()
	s.tables = nil
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}
	s.LoadTables(t)
	return nil
}

// LoadTables loads already decoded tables.
func (s *Session) LoadTables(t Tables) {
	s.reset()
	s.tables = &t
	s.log.Info("tables loaded",
		zap.Int("trades", len(t.Trades)),
		zap.Int("rates", len(t.Rates)),
		zap.Int("prices", len(t.Prices)),
		zap.Bool("securities", t.Securities != nil),
		zap.Int("dividends", len(t.Dividends)))
}

// ResumeFrom makes the next Process start from snap instead of an empty
// portfolio, walking only the days after snap.Date.
func (s *Session) ResumeFrom(snap Snapshot) { s.resume = &snap }

func (s *Session) reset() {
	s.trades, s.dir, s.ledger, s.reports, s.warnings = nil, nil, nil, nil, nil
}

// Process runs the pipeline on the loaded tables: security directory, trade
// enrichment, fees, then the ledger walk.
func (s *Session) Process() error {
	s.reset()
	if s.tables == nil {
		return errors.New("no tables loaded")
	}
	t := s.tables

	dir, warnings := NewSecurityDirectory(t.Securities, t.Trades)
	trades := make([]Trade, len(t.Trades))
	for i, tr := range t.Trades {
		trades[i] = dir.Enrich(tr)
	}
	schedule := NewFeeSchedule(t.Rates)
	trades, feeWarnings := schedule.ApplyFees(trades)
	warnings = append(warnings, feeWarnings...)
	for _, w := range warnings {
		logWarning(s.log, w)
	}

	ledger := NewLedger(NewJournal(trades, t.Prices), dir,
		WithLogger(s.log), WithOverSellPolicy(s.cfg.OverSell))
	if s.resume != nil {
		if err := ledger.Resume(*s.resume); err != nil {
			return err
		}
	}
	if err := ledger.RunUntil(s.cfg.Until); err != nil {
		return fmt.Errorf("processing: %w", err)
	}

	s.trades = trades
	s.dir = dir
	s.ledger = ledger
	s.reports = NewReports(ledger, t.Dividends)
	s.warnings = append(warnings, ledger.Warnings()...)
	s.log.Info("ledger walked",
		zap.Int("securities", dir.Len()),
		zap.Int("records", len(ledger.Records())),
		zap.Int("warnings", len(s.warnings)),
		zap.Stringer("last_day", ledger.LastDay()))
	return nil
}

// Trades returns the enriched trades with their fees.
func (s *Session) Trades() []Trade { return s.trades }

// Directory returns the security directory, nil before Process.
func (s *Session) Directory() *SecurityDirectory { return s.dir }


// Ledger returns the walked ledger, nil before Process.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Reports returns the report projections. They are empty before Process.
func (s *Session) Reports() *Reports {
	if s.reports == nil {
		return NewReports(nil, nil)
	}
	return s.reports
}

// Records returns the daily records.
func (s *Session) Records() []DailyPnLRecord {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Records()
}

// Positions returns every position, sorted by code.
func (s *Session) Positions() []Position {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Positions()
}

// Snapshot returns the state of the portfolio at the end of the walk.
func (s *Session) Snapshot() Snapshot {
	if s.ledger == nil {
		return Snapshot{}
	}
	return s.ledger.Snapshot()
}

// Dividends returns the loaded dividends.
func (s *Session) Dividends() []Dividend {
	if s.tables == nil {
		return nil
	}
	return s.tables.Dividends
}

// Warnings returns every warning of the last Process.
func (s *Session) Warnings() []Warning { return s.warnings }
