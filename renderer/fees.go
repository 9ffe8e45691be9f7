package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// FeesMarkdown renders the fee breakdown of every trade.
// Columns whose items are all zero are still rendered so tables line up.
func FeesMarkdown(trades []tradebook.Trade, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Trades and Fees\n\n")
	if len(trades) == 0 {
		fmt.Fprint(&b, "No trade.\n")
		return b.String()
	}

	tableHeader(&b, "Date", "Code", "Direction", "Broker", "Market", "Product", ">Amount",
		">Commission", ">Regulatory", ">Stamp Tax", ">Transfer", ">Platform",
		">Settlement", ">FX", ">Supervision", ">Total")
	var sum tradebook.FeeBreakdown
	for _, t := range trades {
		f := t.Fees
		tableRow(&b,
			t.Date.String(),
			t.Code,
			t.Direction.String(),
			t.Broker,
			string(t.Market),
			string(t.ProductType),
			t.Amount().Format(currency),
			f.Commission.Format(currency),
			f.Regulatory.Format(currency),
			f.StampTax.Format(currency),
			f.Transfer.Format(currency),
			f.Platform.Format(currency),
			f.Settlement.Format(currency),
			f.FX.Format(currency),
			f.Supervision.Format(currency),
			f.Total.Format(currency),
		)
		sum.Commission = sum.Commission.Add(f.Commission)
		sum.Regulatory = sum.Regulatory.Add(f.Regulatory)
		sum.StampTax = sum.StampTax.Add(f.StampTax)
		sum.Transfer = sum.Transfer.Add(f.Transfer)
		sum.Platform = sum.Platform.Add(f.Platform)
		sum.Settlement = sum.Settlement.Add(f.Settlement)
		sum.FX = sum.FX.Add(f.FX)
		sum.Supervision = sum.Supervision.Add(f.Supervision)
		sum.Total = sum.Total.Add(f.Total)
	}
	tableRow(&b, bold("Total"), "", "", "", "", "", "",
		bold(sum.Commission.Format(currency)),
		bold(sum.Regulatory.Format(currency)),
		bold(sum.StampTax.Format(currency)),
		bold(sum.Transfer.Format(currency)),
		bold(sum.Platform.Format(currency)),
		bold(sum.Settlement.Format(currency)),
		bold(sum.FX.Format(currency)),
		bold(sum.Supervision.Format(currency)),
		bold(sum.Total.Format(currency)),
	)
	return b.String()
}
