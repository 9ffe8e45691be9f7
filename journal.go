package tradebook

import (
	"iter"
	"slices"

	"github.com/etnz/tradebook/date"
)

// ClosePrice is a row of the prices table.
type ClosePrice struct {
	Date  date.Date
	Code  string
	Price Money // zero when the table had no usable value
}

// Journal indexes trades and close prices by day for the ledger walk.
//
// Trades of a day keep the order of the trades table.
type Journal struct {
	trades []Trade
	byDay  map[date.Date][]int
	closes map[string]*date.History[Money]

	tradeDays []date.Date
	priceDays []date.Date
	codes     []string // traded codes, sorted
}

// NewJournal indexes trades and prices. Only codes that appear in trades are
// tracked; prices of other codes are kept but never walked.
func NewJournal(trades []Trade, prices []ClosePrice) *Journal {
	j := &Journal{
		trades: trades,
		byDay:  make(map[date.Date][]int),
		closes: make(map[string]*date.History[Money]),
	}
	seen := make(map[string]bool)
	for i, t := range trades {
		if _, exists := j.byDay[t.Date]; !exists {
			j.tradeDays = append(j.tradeDays, t.Date)
		}
		j.byDay[t.Date] = append(j.byDay[t.Date], i)
		if !seen[t.Code] {
			seen[t.Code] = true
			j.codes = append(j.codes, t.Code)
		}
	}
	for _, p := range prices {
		h, ok := j.closes[p.Code]
		if !ok {
			h = new(date.History[Money])
			j.closes[p.Code] = h
		}
		// first row of a day wins
		if _, dup := h.Get(p.Date); !dup {
			h.Append(p.Date, p.Price)
		}
		j.priceDays = append(j.priceDays, p.Date)
	}
	date.Sort(j.tradeDays)
	date.Sort(j.priceDays)
	slices.Sort(j.codes)
	return j
}

// Trades returns every trade in table order.
func (j *Journal) Trades() []Trade { return j.trades }

// Codes returns the traded security codes, sorted.
func (j *Journal) Codes() []string { return j.codes }

// Days iterates over the union of trade and price days in ascending order.
func (j *Journal) Days() iter.Seq[date.Date] {
	return date.Iterate(j.tradeDays, j.priceDays)
}

// TradesOn returns the trades of code on day, in table order.
func (j *Journal) TradesOn(day date.Date, code string) []Trade {
	var res []Trade
	for _, i := range j.byDay[day] {
		if j.trades[i].Code == code {
			res = append(res, j.trades[i])
		}
	}
	return res
}

// Close returns the close price of code on day, if the prices table has a
// positive one.
func (j *Journal) Close(code string, day date.Date) (Money, bool) {
	h, ok := j.closes[code]
	if !ok {
		return Money{}, false
	}
	p, ok := h.Get(day)
	if !ok || !p.IsPositive() {
		return Money{}, false
	}
	return p, true
}

// TradesOf returns every trade of code in table order.
func (j *Journal) TradesOf(code string) []Trade {
	var res []Trade
	for _, t := range j.trades {
		if t.Code == code {
			res = append(res, t)
		}
	}
	return res
}
