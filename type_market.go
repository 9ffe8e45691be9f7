package tradebook

import (
	"fmt"
	"strings"
	"unicode"
)

// Direction is the side of a trade.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseDirection parses the direction column of the trades table.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "买入", "买", "BUY", "B":
		return Buy, nil
	case "卖出", "卖", "SELL", "S":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("unknown trade direction %q", s)
	}
}

func (d Direction) MarshalCSV() (string, error) { return d.String(), nil }

// Exchange is the place a security is listed on. Values match the market
// column of the input tables, so that fee rates can be keyed by it.
type Exchange string

const (
	Shanghai        Exchange = "上交所"
	Shenzhen        Exchange = "深交所"
	HongKong        Exchange = "港交所"
	USMarket        Exchange = "美股"
	UnknownExchange Exchange = "未知市场"
)

// exchangeAliases maps every known market spelling to its exchange.
var exchangeAliases = map[string]Exchange{
	"上交所": Shanghai, "上海": Shanghai, "上海证券交易所": Shanghai, "SSE": Shanghai,
	"深交所": Shenzhen, "深圳": Shenzhen, "深圳证券交易所": Shenzhen, "SZSE": Shenzhen,
	"港交所": HongKong, "香港": HongKong, "香港交易所": HongKong, "HKEX": HongKong,
	"美股": USMarket, "美国": USMarket, "NASDAQ": USMarket, "NYSE": USMarket,
}

// ParseExchange resolves a market name to an exchange.
func ParseExchange(market string) (Exchange, bool) {
	e, ok := exchangeAliases[strings.ToUpper(strings.TrimSpace(market))]
	return e, ok
}

// Foreign reports whether trades on this exchange pay the currency exchange fee.
func (e Exchange) Foreign() bool { return e == HongKong || e == USMarket }

// ProductType is the kind of security, the third key of the fee schedule.
type ProductType string

const (
	Stock   ProductType = "股票"
	ETF     ProductType = "ETF"
	Fund    ProductType = "基金"
	HKStock ProductType = "港股"
	USStock ProductType = "美股"
)

var (
	shanghaiStocks = []string{"600", "601", "603", "688", "689"}
	shanghaiETFs   = []string{"510", "511", "512", "513", "515", "516", "518"}
	shenzhenStocks = []string{"000", "001", "002", "003", "300"}
	shenzhenETFs   = []string{"159"}
	shenzhenFunds  = []string{"160", "161", "162", "163", "164", "165", "166", "167", "168", "169"}
)

func hasPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func hasLetter(s string) bool { return strings.IndexFunc(s, unicode.IsLetter) >= 0 }

// Classify infers the exchange and the product type of a security from its code.
func Classify(code string) (Exchange, ProductType) {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case hasPrefix(code, shanghaiETFs):
		return Shanghai, ETF
	case hasPrefix(code, shanghaiStocks):
		return Shanghai, Stock
	case hasPrefix(code, shenzhenETFs):
		return Shenzhen, ETF
	case hasPrefix(code, shenzhenFunds):
		return Shenzhen, Fund
	case hasPrefix(code, shenzhenStocks):
		return Shenzhen, Stock
	case len(code) == 5 && isDigits(code):
		return HongKong, HKStock
	case hasLetter(code):
		return USMarket, USStock
	default:
		return UnknownExchange, Stock
	}
}
