package tradebook

import (
	"slices"

	"github.com/etnz/tradebook/date"
)

// Dividend is a cash distribution received on a security.
// Dividends are reported but do not change cost basis or PnL.
type Dividend struct {
	Date     date.Date
	Code     string
	Name     string
	Quantity Quantity // shares held
	PerShare Money
	Gross    Money
	Tax      Money
	Net      Money
}

// SortDividends sorts dividends by date, keeping the table order within a day.
func SortDividends(dividends []Dividend) {
	slices.SortStableFunc(dividends, func(a, b Dividend) int { return a.Date.Compare(b.Date) })
}

// DividendsOn returns the dividends paid on day.
func DividendsOn(dividends []Dividend, day date.Date) []Dividend {
	var res []Dividend
	for _, d := range dividends {
		if d.Date == day {
			res = append(res, d)
		}
	}
	return res
}
