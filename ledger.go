package tradebook

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Position is the weighted average cost holding of a security.
//
// CostBasis is Quantity × AverageCost while Quantity is positive, both are zero
// when the position is closed.
type Position struct {
	Code        string
	Name        string
	Quantity    Quantity
	AverageCost Money
	CostBasis   Money
	RealizedPnL Money // cumulative
}

// buy capitalizes the trade amount and its fees into the cost basis.
func (p Position) buy(t Trade) Position {
	p.CostBasis = p.CostBasis.Add(t.Amount()).Add(t.TotalFee())
	p.Quantity = p.Quantity.Add(t.Quantity)
	p.AverageCost = p.CostBasis.Div(p.Quantity)
	return p
}

// sell removes the sold share of the cost basis and returns the realized gain.
// The average cost of the remaining shares is left unchanged.
func (p Position) sell(t Trade) (Position, Money) {
	ratio := decimal.Min(t.Quantity.Ratio(p.Quantity), decimal.NewFromInt(1))
	soldCost := p.CostBasis.Scale(ratio)
	proceeds := t.Amount().Sub(t.TotalFee())
	realized := proceeds.Sub(soldCost)

	p.Quantity = p.Quantity.Sub(t.Quantity)
	if p.Quantity.IsPositive() {
		p.CostBasis = p.CostBasis.Sub(soldCost)
	} else {
		p.Quantity = Quantity{}
		p.CostBasis = Money{}
		p.AverageCost = Money{}
	}
	return p, realized
}

// DailyPnLRecord is the state of a security at the end of a day.
//
// Prices are rounded to 4 decimal places, amounts to cents.
type DailyPnLRecord struct {
	Date          date.Date
	Code          string
	Name          string
	Exchange      Exchange
	Quantity      Quantity
	AverageCost   Money
	CostBasis     Money
	ClosePrice    Money
	MarketValue   Money
	RealizedToday Money
	RealizedPnL   Money // cumulative
	UnrealizedPnL Money
	UnrealizedPct Percent
	TotalPnL      Money
}

// OverSellPolicy decides what happens to a sell of more shares than held.
type OverSellPolicy int

const (
	// Lenient clamps the sell to the held quantity and warns.
	Lenient OverSellPolicy = iota
	// Strict stops the walk with a *PositionIntegrityError.
	Strict
)

func (p OverSellPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseOverSellPolicy parses "lenient" or "strict", the empty string being lenient.
func ParseOverSellPolicy(s string) (OverSellPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown oversell policy %q, want lenient or strict", s)
	}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger warnings are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithOverSellPolicy sets how sells exceeding the held quantity are handled.
func WithOverSellPolicy(p OverSellPolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// Snapshot is the state of every position at the end of a day.
type Snapshot struct {
	Date      date.Date
	Positions map[string]Position
}

// Ledger walks a journal day by day and maintains a weighted average cost
// position per traded security.
type Ledger struct {
	journal *Journal
	dir     *SecurityDirectory
	policy  OverSellPolicy
	log     *zap.Logger

	last      date.Date // last walked day
	positions map[string]Position
	history   map[string]*date.History[Position]
	records   []DailyPnLRecord
	warnings  []Warning
}

// NewLedger returns a ledger ready to walk j.
func NewLedger(j *Journal, dir *SecurityDirectory, opts ...Option) *Ledger {
	l := &Ledger{
		journal:   j,
		dir:       dir,
		log:       zap.NewNop(),
		positions: make(map[string]Position),
		history:   make(map[string]*date.History[Position]),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run walks every remaining day of the journal.
func (l *Ledger) Run() error { return l.RunUntil(date.Date{}) }

// RunUntil walks the remaining days of the journal up to and including until.
// A zero until walks them all.
//
// In Strict mode the walk stops at the first over-sell and the failing day is
// not recorded.
func (l *Ledger) RunUntil(until date.Date) error {
	for day := range l.journal.Days() {
		if !l.last.IsZero() && !day.After(l.last) {
			continue
		}
		if !until.IsZero() && day.After(until) {
			break
		}
		if err := l.step(day); err != nil {
			return err
		}
	}
	return nil
}

// step walks a single day for every traded code and commits the result only
// if all codes succeeded.
func (l *Ledger) step(day date.Date) error {
	next := make(map[string]Position, len(l.journal.Codes()))
	var records []DailyPnLRecord
	var warnings []Warning

	for _, code := range l.journal.Codes() {
		pos, ok := l.positions[code]
		if !ok {
			pos = Position{Code: code}
		}
		trades := l.journal.TradesOn(day, code)

		var realizedToday Money
		for _, t := range trades {
			if t.Name != "" {
				pos.Name = t.Name
			}
			if !t.IsSell() {
				pos = pos.buy(t)
				continue
			}
			if !pos.Quantity.IsPositive() {
				if l.policy == Strict {
					return &PositionIntegrityError{Code: code, Date: day, Held: pos.Quantity, Sold: t.Quantity}
				}
				warnings = append(warnings, Warning{Kind: SellWithoutPosition, Code: code, Date: day,
					Message: fmt.Sprintf("sell of %s ignored, nothing held", t.Quantity)})
				continue
			}
			if t.Quantity.GreaterThan(pos.Quantity) {
				if l.policy == Strict {
					return &PositionIntegrityError{Code: code, Date: day, Held: pos.Quantity, Sold: t.Quantity}
				}
				warnings = append(warnings, Warning{Kind: OverSellClamped, Code: code, Date: day,
					Message: fmt.Sprintf("sell of %s clamped to the %s held", t.Quantity, pos.Quantity)})
			}
			var realized Money
			pos, realized = pos.sell(t)
			realizedToday = realizedToday.Add(realized)
		}
		pos.RealizedPnL = pos.RealizedPnL.Add(realizedToday)
		next[code] = pos

		if !pos.Quantity.IsPositive() && realizedToday.IsZero() {
			continue
		}

		closePrice, ok := l.journal.Close(code, day)
		if !ok && len(trades) > 0 {
			closePrice = trades[len(trades)-1].Price
		}
		if !closePrice.IsPositive() && pos.Quantity.IsPositive() {
			warnings = append(warnings, Warning{Kind: MissingClosePrice, Code: code, Date: day,
				Message: "no close price, position not valued"})
		}
		records = append(records, l.newRecord(day, pos, closePrice, realizedToday))
	}

	for code, pos := range next {
		l.positions[code] = pos
		h, ok := l.history[code]
		if !ok {
			h = new(date.History[Position])
			l.history[code] = h
		}
		h.Append(day, pos)
	}
	l.records = append(l.records, records...)
	for _, w := range warnings {
		l.warn(w)
	}
	l.last = day
	return nil
}

func (l *Ledger) newRecord(day date.Date, pos Position, closePrice, realizedToday Money) DailyPnLRecord {
	var unrealized, marketValue Money
	if pos.Quantity.IsPositive() && closePrice.IsPositive() {
		marketValue = closePrice.Mul(pos.Quantity)
		unrealized = closePrice.Sub(pos.AverageCost).Mul(pos.Quantity)
	}
	info := l.dir.Resolve(pos.Code)
	name := pos.Name
	if name == "" {
		name = info.Name
	}
	r := DailyPnLRecord{
		Date:          day,
		Code:          pos.Code,
		Name:          name,
		Exchange:      info.Exchange,
		Quantity:      pos.Quantity,
		AverageCost:   pos.AverageCost.RoundPrice(),
		CostBasis:     pos.CostBasis.Cents(),
		ClosePrice:    closePrice.RoundPrice(),
		MarketValue:   marketValue.Cents(),
		RealizedToday: realizedToday.Cents(),
		RealizedPnL:   pos.RealizedPnL.Cents(),
		UnrealizedPnL: unrealized.Cents(),
		UnrealizedPct: unrealized.Percent(pos.CostBasis).Round(),
	}
	// sum of the rounded parts, so that the record adds up exactly
	r.TotalPnL = r.RealizedPnL.Add(r.UnrealizedPnL)
	return r
}

func (l *Ledger) warn(w Warning) {
	l.warnings = append(l.warnings, w)
	logWarning(l.log, w)
}

// Snapshot returns the positions at the end of the last walked day.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Date: l.last, Positions: maps.Clone(l.positions)}
}

// Resume starts a fresh ledger from s: the next walk covers only the days after
// s.Date.
func (l *Ledger) Resume(s Snapshot) error {
	if !l.last.IsZero() || len(l.records) > 0 {
		return fmt.Errorf("cannot resume a ledger that already walked up to %s", l.last)
	}
	l.last = s.Date
	l.positions = maps.Clone(s.Positions)
	if l.positions == nil {
		l.positions = make(map[string]Position)
	}
	for code, pos := range l.positions {
		h := new(date.History[Position])
		h.Append(s.Date, pos)
		l.history[code] = h
	}
	return nil
}

// LastDay returns the last walked day, zero if none.
func (l *Ledger) LastDay() date.Date { return l.last }

// Records returns the daily records in walk order: by day, then by code.
func (l *Ledger) Records() []DailyPnLRecord { return l.records }

// Warnings returns the warnings raised by the walk so far.
func (l *Ledger) Warnings() []Warning { return l.warnings }

// Positions returns every position, open or closed, sorted by code.
func (l *Ledger) Positions() []Position {
	codes := slices.Sorted(maps.Keys(l.positions))
	res := make([]Position, 0, len(codes))
	for _, c := range codes {
		res = append(res, l.positions[c])
	}
	return res
}

// Position returns the current position of code.
func (l *Ledger) Position(code string) (Position, bool) {
	p, ok := l.positions[code]
	return p, ok
}

// PositionAsOf returns the position of code at the end of day, or of the last
// walked day before it.
func (l *Ledger) PositionAsOf(code string, day date.Date) (Position, bool) {
	h, ok := l.history[code]
	if !ok {
		return Position{}, false
	}
	return h.ValueAsOf(day)
}
