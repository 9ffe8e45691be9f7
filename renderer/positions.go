package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// PositionsMarkdown renders the securities currently held.
func PositionsMarkdown(rows []tradebook.PositionRow, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Current Positions\n\n")
	if len(rows) == 0 {
		fmt.Fprint(&b, "No open position.\n")
		return b.String()
	}

	tableHeader(&b, "Code", "Name", "Exchange", ">Quantity", ">Avg. Cost", ">Close",
		">Market Value", ">Cost Basis", ">Unrealized", ">%", ">Realized", ">Fees", "Last Trade")
	var value, cost, unrealized, realized, fees tradebook.Money
	for _, r := range rows {
		tableRow(&b,
			r.Code,
			r.Name,
			string(r.Exchange),
			r.Quantity.String(),
			price(r.AverageCost),
			price(r.ClosePrice),
			r.MarketValue.Format(currency),
			r.CostBasis.Format(currency),
			signed(r.UnrealizedPnL, currency),
			r.UnrealizedPct.SignedString(),
			signed(r.RealizedPnL, currency),
			r.TotalFees.Format(currency),
			r.LastTrade.String(),
		)
		value = value.Add(r.MarketValue)
		cost = cost.Add(r.CostBasis)
		unrealized = unrealized.Add(r.UnrealizedPnL)
		realized = realized.Add(r.RealizedPnL)
		fees = fees.Add(r.TotalFees)
	}
	tableRow(&b, bold("Total"), "", "", "", "", "",
		bold(value.Format(currency)),
		bold(cost.Format(currency)),
		bold(signed(unrealized, currency)),
		bold(unrealized.Percent(cost).SignedString()),
		bold(signed(realized, currency)),
		bold(fees.Format(currency)),
		"",
	)
	return b.String()
}

// HistoryMarkdown renders the lifetime result of every traded security.
func HistoryMarkdown(rows []tradebook.HistoryRow, currency string) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Historical PnL per Security\n\n")
	if len(rows) == 0 {
		fmt.Fprint(&b, "No trade.\n")
		return b.String()
	}

	tableHeader(&b, "Code", "Name", ">Quantity", ">Bought", ">Sold", ">Fees",
		">Realized", ">Unrealized", ">Total", ">%", "First Trade", "Last Trade", ">Days")
	var realized, unrealized, total tradebook.Money
	for _, r := range rows {
		tableRow(&b,
			r.Code,
			r.Name,
			r.Quantity.String(),
			r.BuyAmount.Format(currency),
			r.SellAmount.Format(currency),
			r.TotalFees.Format(currency),
			signed(r.RealizedPnL, currency),
			signed(r.UnrealizedPnL, currency),
			signed(r.TotalPnL, currency),
			r.PnLPct.SignedString(),
			r.FirstTrade.String(),
			r.LastTrade.String(),
			fmt.Sprint(r.HoldingDays),
		)
		realized = realized.Add(r.RealizedPnL)
		unrealized = unrealized.Add(r.UnrealizedPnL)
		total = total.Add(r.TotalPnL)
	}
	tableRow(&b, bold("Total"), "", "", "", "", "",
		bold(signed(realized, currency)),
		bold(signed(unrealized, currency)),
		bold(signed(total, currency)),
		"", "", "", "",
	)
	return b.String()
}
