package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
)

// ReviewMarkdown renders the review of a day.
func ReviewMarkdown(r tradebook.DailyReview, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Review %s\n\n", r.Date)

	tableHeader(&b, bold("Day's PnL"), ">"+bold(signed(r.DayPnL, currency)))
	tableRow(&b, "Realized", signed(r.RealizedPnL, currency))
	tableRow(&b, "Unrealized", signed(r.UnrealizedPnL, currency))
	tableRow(&b, "Trades", fmt.Sprintf("%d (%d buys, %d sells)", len(r.Trades), r.BuyCount, r.SellCount))
	tableRow(&b, "Bought", r.BuyAmount.Format(currency))
	tableRow(&b, "Sold", r.SellAmount.Format(currency))
	tableRow(&b, "Fees", r.Fees.Format(currency))
	if len(r.Dividends) > 0 {
		tableRow(&b, "Dividends", r.DividendTotal.Format(currency))
	}
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Trades\n\n")
		tableHeader(w, "Code", "Name", "Direction", ">Price", ">Quantity", ">Amount", ">Fees", "Broker")
		for _, t := range r.Trades {
			tableRow(w,
				t.Code,
				t.Name,
				t.Direction.String(),
				price(t.Price),
				t.Quantity.String(),
				t.Amount().Format(currency),
				t.TotalFee().Format(currency),
				t.Broker,
			)
		}
		fmt.Fprintln(w)
		return len(r.Trades) > 0
	})

	movers(&b, "Gainers", r.Gainers, currency)
	movers(&b, "Losers", r.Losers, currency)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Dividends\n\n")
		tableHeader(w, "Code", "Name", ">Quantity", ">Per Share", ">Gross", ">Tax", ">Net")
		for _, d := range r.Dividends {
			tableRow(w,
				d.Code,
				d.Name,
				d.Quantity.String(),
				price(d.PerShare),
				d.Gross.Format(currency),
				d.Tax.Format(currency),
				d.Net.Format(currency),
			)
		}
		fmt.Fprintln(w)
		return len(r.Dividends) > 0
	})
	return b.String()
}

func movers(w io.Writer, title string, ms []tradebook.Mover, currency string) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprintf(w, "## %s\n\n", title)
		tableHeader(w, "Code", "Name", ">Close", ">Realized Today", ">Unrealized", ">Day's PnL")
		for _, m := range ms {
			tableRow(w,
				m.Code,
				m.Name,
				price(m.ClosePrice),
				signed(m.RealizedToday, currency),
				signed(m.UnrealizedPnL, currency),
				signed(m.DayPnL, currency),
			)
		}
		fmt.Fprintln(w)
		return len(ms) > 0
	})
}
