package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// RollupMarkdown renders the totals per exchange and product type.
func RollupMarkdown(rows []tradebook.ExchangeRow, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Exchanges\n\n")
	if len(rows) == 0 {
		fmt.Fprint(&b, "No record.\n")
		return b.String()
	}

	tableHeader(&b, "Exchange", "Product", ">Securities", ">Open", ">Market Value",
		">Cost Basis", ">Realized", ">Unrealized", ">Total")
	var total tradebook.ExchangeRow
	for _, r := range rows {
		tableRow(&b,
			string(r.Exchange),
			string(r.ProductType),
			fmt.Sprint(r.Securities),
			fmt.Sprint(r.Open),
			r.MarketValue.Format(currency),
			r.CostBasis.Format(currency),
			signed(r.RealizedPnL, currency),
			signed(r.UnrealizedPnL, currency),
			signed(r.TotalPnL, currency),
		)
		total.Securities += r.Securities
		total.Open += r.Open
		total.MarketValue = total.MarketValue.Add(r.MarketValue)
		total.CostBasis = total.CostBasis.Add(r.CostBasis)
		total.RealizedPnL = total.RealizedPnL.Add(r.RealizedPnL)
		total.UnrealizedPnL = total.UnrealizedPnL.Add(r.UnrealizedPnL)
		total.TotalPnL = total.TotalPnL.Add(r.TotalPnL)
	}
	tableRow(&b, bold("Total"), "",
		bold(fmt.Sprint(total.Securities)),
		bold(fmt.Sprint(total.Open)),
		bold(total.MarketValue.Format(currency)),
		bold(total.CostBasis.Format(currency)),
		bold(signed(total.RealizedPnL, currency)),
		bold(signed(total.UnrealizedPnL, currency)),
		bold(signed(total.TotalPnL, currency)),
	)
	return b.String()
}
