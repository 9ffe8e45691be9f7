package tradebook

import (
	"cmp"
	"slices"

	"github.com/etnz/tradebook/date"
)

// TradeStats aggregates the trades of a security.
type TradeStats struct {
	BuyQuantity      Quantity
	BuyAmount        Money
	AverageBuyPrice  Money
	SellQuantity     Quantity
	SellAmount       Money
	AverageSellPrice Money
	BuyFees          Money
	SellFees         Money
	TotalFees        Money
	TradeCount       int
	FirstTrade       date.Date
	LastTrade        date.Date
	HoldingDays      int // LastTrade - FirstTrade + 1, 0 without trades
}

// NewTradeStats computes the statistics of trades.
func NewTradeStats(trades []Trade) TradeStats {
	var s TradeStats
	for _, t := range trades {
		if t.IsSell() {
			s.SellQuantity = s.SellQuantity.Add(t.Quantity)
			s.SellAmount = s.SellAmount.Add(t.Amount())
			s.SellFees = s.SellFees.Add(t.TotalFee())
		} else {
			s.BuyQuantity = s.BuyQuantity.Add(t.Quantity)
			s.BuyAmount = s.BuyAmount.Add(t.Amount())
			s.BuyFees = s.BuyFees.Add(t.TotalFee())
		}
		if s.FirstTrade.IsZero() || t.Date.Before(s.FirstTrade) {
			s.FirstTrade = t.Date
		}
		if t.Date.After(s.LastTrade) {
			s.LastTrade = t.Date
		}
		s.TradeCount++
	}
	s.AverageBuyPrice = s.BuyAmount.Div(s.BuyQuantity).RoundPrice()
	s.AverageSellPrice = s.SellAmount.Div(s.SellQuantity).RoundPrice()
	s.BuyAmount = s.BuyAmount.Cents()
	s.SellAmount = s.SellAmount.Cents()
	s.TotalFees = s.BuyFees.Add(s.SellFees).Cents()
	s.BuyFees = s.BuyFees.Cents()
	s.SellFees = s.SellFees.Cents()
	if s.TradeCount > 0 {
		s.HoldingDays = s.LastTrade.DaysSince(s.FirstTrade) + 1
	}
	return s
}

// PositionRow is a currently held security.
type PositionRow struct {
	DailyPnLRecord
	TradeStats
}

// HistoryRow is the lifetime result of a security, held or closed.
type HistoryRow struct {
	DailyPnLRecord
	TradeStats
	PnLPct Percent // TotalPnL over the current cost basis
}

// ExchangeRow sums the latest records of the securities of an exchange and
// product type.
type ExchangeRow struct {
	Exchange      Exchange
	ProductType   ProductType
	Securities    int
	Open          int // securities still held
	MarketValue   Money
	CostBasis     Money
	RealizedPnL   Money
	UnrealizedPnL Money
	TotalPnL      Money
}

// PortfolioDay sums the records of a day over all securities.
type PortfolioDay struct {
	Date          date.Date
	Securities    int
	MarketValue   Money
	CostBasis     Money
	RealizedToday Money
	RealizedPnL   Money // cumulative over all securities
	UnrealizedPnL Money
	TotalPnL      Money
}

// Mover is a security whose result of the day is not flat.
type Mover struct {
	DailyPnLRecord
	DayPnL Money // RealizedToday + UnrealizedPnL
}

// DailyReview summarizes the activity of a day.
type DailyReview struct {
	Date          date.Date
	Trades        []Trade
	BuyCount      int
	SellCount     int
	BuyAmount     Money
	SellAmount    Money
	TotalAmount   Money
	Fees          Money
	RealizedPnL   Money
	UnrealizedPnL Money
	DayPnL        Money
	Gainers       []Mover // best first
	Losers        []Mover // worst first
	Dividends     []Dividend
	DividendTotal Money // net
}

// Reports projects the output of a ledger. It never recomputes cost basis.
type Reports struct {
	records   []DailyPnLRecord
	journal   *Journal
	dir       *SecurityDirectory
	dividends []Dividend
}

// NewReports returns the reports of a walked ledger. A nil ledger has empty
// reports.
func NewReports(l *Ledger, dividends []Dividend) *Reports {
	r := &Reports{dividends: dividends}
	if l != nil {
		r.records = l.Records()
		r.journal = l.journal
		r.dir = l.dir
	}
	return r
}

// latest returns the latest record of each security, in code order.
func (r *Reports) latest() []DailyPnLRecord {
	byCode := make(map[string]int)
	var res []DailyPnLRecord
	for _, rec := range r.records {
		if i, ok := byCode[rec.Code]; ok {
			if !rec.Date.Before(res[i].Date) {
				res[i] = rec
			}
			continue
		}
		byCode[rec.Code] = len(res)
		res = append(res, rec)
	}
	slices.SortFunc(res, func(a, b DailyPnLRecord) int { return cmp.Compare(a.Code, b.Code) })
	return res
}

func (r *Reports) stats(code string) TradeStats {
	if r.journal == nil {
		return TradeStats{}
	}
	return NewTradeStats(r.journal.TradesOf(code))
}

func (r *Reports) productType(code string) ProductType {
	if r.dir == nil {
		_, p := Classify(code)
		return p
	}
	return r.dir.Resolve(code).ProductType
}

// CurrentPositions returns the latest record of every held security, largest
// quantity first.
func (r *Reports) CurrentPositions() []PositionRow {
	res := []PositionRow{}
	for _, rec := range r.latest() {
		if !rec.Quantity.IsPositive() {
			continue
		}
		res = append(res, PositionRow{DailyPnLRecord: rec, TradeStats: r.stats(rec.Code)})
	}
	slices.SortStableFunc(res, func(a, b PositionRow) int {
		return b.Quantity.Decimal().Cmp(a.Quantity.Decimal())
	})
	return res
}

// StockHistoricalPnL returns the latest record of every security ever traded,
// closed ones included, best total PnL first.
func (r *Reports) StockHistoricalPnL() []HistoryRow {
	res := []HistoryRow{}
	for _, rec := range r.latest() {
		res = append(res, HistoryRow{
			DailyPnLRecord: rec,
			TradeStats:     r.stats(rec.Code),
			PnLPct:         rec.TotalPnL.Percent(rec.CostBasis).Round(),
		})
	}
	slices.SortStableFunc(res, func(a, b HistoryRow) int {
		return b.TotalPnL.Decimal().Cmp(a.TotalPnL.Decimal())
	})
	return res
}

// ExchangeRollup sums the latest records by exchange and product type.
func (r *Reports) ExchangeRollup() []ExchangeRow {
	type key struct {
		e Exchange
		p ProductType
	}
	rows := make(map[key]*ExchangeRow)
	for _, rec := range r.latest() {
		k := key{rec.Exchange, r.productType(rec.Code)}
		row, ok := rows[k]
		if !ok {
			row = &ExchangeRow{Exchange: k.e, ProductType: k.p}
			rows[k] = row
		}
		row.Securities++
		if rec.Quantity.IsPositive() {
			row.Open++
		}
		row.MarketValue = row.MarketValue.Add(rec.MarketValue)
		row.CostBasis = row.CostBasis.Add(rec.CostBasis)
		row.RealizedPnL = row.RealizedPnL.Add(rec.RealizedPnL)
		row.UnrealizedPnL = row.UnrealizedPnL.Add(rec.UnrealizedPnL)
		row.TotalPnL = row.TotalPnL.Add(rec.TotalPnL)
	}
	res := make([]ExchangeRow, 0, len(rows))
	for _, row := range rows {
		res = append(res, *row)
	}
	slices.SortFunc(res, func(a, b ExchangeRow) int {
		return cmp.Or(cmp.Compare(a.Exchange, b.Exchange), cmp.Compare(a.ProductType, b.ProductType))
	})
	return res
}

// PortfolioDaily sums the records of each day. Closed securities keep
// contributing their realized PnL to the cumulative figures.
func (r *Reports) PortfolioDaily() []PortfolioDay {
	res := []PortfolioDay{}
	var cumulative Money
	for _, rec := range r.records {
		if len(res) == 0 || res[len(res)-1].Date != rec.Date {
			res = append(res, PortfolioDay{Date: rec.Date, RealizedPnL: cumulative})
		}
		d := &res[len(res)-1]
		d.Securities++
		d.MarketValue = d.MarketValue.Add(rec.MarketValue)
		d.CostBasis = d.CostBasis.Add(rec.CostBasis)
		d.RealizedToday = d.RealizedToday.Add(rec.RealizedToday)
		d.UnrealizedPnL = d.UnrealizedPnL.Add(rec.UnrealizedPnL)
		cumulative = cumulative.Add(rec.RealizedToday)
		d.RealizedPnL = cumulative
		d.TotalPnL = d.RealizedPnL.Add(d.UnrealizedPnL)
	}
	return res
}

// DailyReview summarizes trades, results and dividends of day.
func (r *Reports) DailyReview(day date.Date) DailyReview {
	rev := DailyReview{Date: day, Dividends: DividendsOn(r.dividends, day)}
	if r.journal != nil {
		for _, t := range r.journal.Trades() {
			if t.Date != day {
				continue
			}
			rev.Trades = append(rev.Trades, t)
			if t.IsSell() {
				rev.SellCount++
				rev.SellAmount = rev.SellAmount.Add(t.Amount())
			} else {
				rev.BuyCount++
				rev.BuyAmount = rev.BuyAmount.Add(t.Amount())
			}
			rev.Fees = rev.Fees.Add(t.TotalFee())
		}
	}
	rev.TotalAmount = rev.BuyAmount.Add(rev.SellAmount)

	for _, rec := range r.records {
		if rec.Date != day {
			continue
		}
		rev.RealizedPnL = rev.RealizedPnL.Add(rec.RealizedToday)
		rev.UnrealizedPnL = rev.UnrealizedPnL.Add(rec.UnrealizedPnL)
		m := Mover{DailyPnLRecord: rec, DayPnL: rec.RealizedToday.Add(rec.UnrealizedPnL)}
		switch {
		case m.DayPnL.IsPositive():
			rev.Gainers = append(rev.Gainers, m)
		case m.DayPnL.IsNegative():
			rev.Losers = append(rev.Losers, m)
		}
	}
	rev.DayPnL = rev.RealizedPnL.Add(rev.UnrealizedPnL)
	slices.SortStableFunc(rev.Gainers, func(a, b Mover) int { return b.DayPnL.Decimal().Cmp(a.DayPnL.Decimal()) })
	slices.SortStableFunc(rev.Losers, func(a, b Mover) int { return a.DayPnL.Decimal().Cmp(b.DayPnL.Decimal()) })

	for _, d := range rev.Dividends {
		rev.DividendTotal = rev.DividendTotal.Add(d.Net)
	}
	return rev
}
