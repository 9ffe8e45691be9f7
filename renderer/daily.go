package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
)

// DailyMarkdown renders daily records, one table per date. Records must be
// ordered by date.
func DailyMarkdown(records []tradebook.DailyPnLRecord, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Daily PnL\n\n")
	if len(records) == 0 {
		fmt.Fprint(&b, "No record.\n")
		return b.String()
	}

	for i := 0; i < len(records); {
		day := records[i].Date
		j := i
		for j < len(records) && records[j].Date == day {
			j++
		}
		dayTable(&b, day, records[i:j], currency)
		i = j
	}
	return b.String()
}

func dayTable(w io.Writer, day date.Date, records []tradebook.DailyPnLRecord, currency string) {
	fmt.Fprintf(w, "## %s\n\n", day)
	tableHeader(w, "Code", "Name", ">Quantity", ">Avg. Cost", ">Close", ">Market Value",
		">Realized Today", ">Realized", ">Unrealized", ">%", ">Total")
	for _, r := range records {
		tableRow(w,
			r.Code,
			r.Name,
			r.Quantity.String(),
			price(r.AverageCost),
			price(r.ClosePrice),
			r.MarketValue.Format(currency),
			signed(r.RealizedToday, currency),
			signed(r.RealizedPnL, currency),
			signed(r.UnrealizedPnL, currency),
			r.UnrealizedPct.SignedString(),
			signed(r.TotalPnL, currency),
		)
	}
	fmt.Fprintln(w)
}

// PortfolioMarkdown renders the portfolio totals of every walked date.
func PortfolioMarkdown(days []tradebook.PortfolioDay, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Portfolio per Day\n\n")
	if len(days) == 0 {
		fmt.Fprint(&b, "No record.\n")
		return b.String()
	}
	tableHeader(&b, "Date", ">Securities", ">Market Value", ">Cost Basis",
		">Realized Today", ">Realized", ">Unrealized", ">Total")
	for _, d := range days {
		tableRow(&b,
			d.Date.String(),
			fmt.Sprint(d.Securities),
			d.MarketValue.Format(currency),
			d.CostBasis.Format(currency),
			signed(d.RealizedToday, currency),
			signed(d.RealizedPnL, currency),
			signed(d.UnrealizedPnL, currency),
			signed(d.TotalPnL, currency),
		)
	}
	return b.String()
}
