package tradebook

import (
	"strings"

	"github.com/etnz/tradebook/date"
)

// DefaultBroker is used for trades that do not name their broker.
const DefaultBroker = "默认券商"

// Trade is a single execution parsed from the trades table.
//
// Fees are zero until the trade went through ComputeFees; after that the
// trade is not modified anymore.
type Trade struct {
	Date        date.Date
	Code        string
	Name        string
	Direction   Direction
	Price       Money
	Quantity    Quantity
	Broker      string
	Market      Exchange
	ProductType ProductType
	Fees        FeeBreakdown
}

// Amount returns the traded amount (price × quantity).
func (t Trade) Amount() Money { return t.Price.Mul(t.Quantity) }

// TotalFee returns the total transaction cost of the trade.
func (t Trade) TotalFee() Money { return t.Fees.Total }

// IsSell reports whether the trade is a sell.
func (t Trade) IsSell() bool { return t.Direction == Sell }

// normalizeMarket maps a market name to its canonical exchange spelling, unknown
// names are kept as is.
func normalizeMarket(market string) Exchange {
	if e, ok := ParseExchange(market); ok {
		return e
	}
	return Exchange(strings.TrimSpace(market))
}
