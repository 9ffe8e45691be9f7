package tradebook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Table names, as used in errors.
const (
	TradesTable     = "trades"
	RatesTable      = "rates"
	PricesTable     = "prices"
	SecuritiesTable = "securities"
	DividendsTable  = "dividends"
)

var bom = []byte("\ufeff")

// readTable decodes a csv table into out, a pointer to a slice of row structs,
// after checking that the header has every required column.
func readTable(r io.Reader, table string, required []string, out any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading table %q: %w", table, err)
	}
	b = bytes.TrimPrefix(b, bom)

	header, err := csv.NewReader(bytes.NewReader(b)).Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading table %q header: %w", table, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return &MissingColumnError{Table: table, Column: col}
		}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := gocsv.UnmarshalBytes(b, out); err != nil {
		return fmt.Errorf("decoding table %q: %w", table, err)
	}
	return nil
}

// cells parses the cells of a row, keeping the first error.
type cells struct {
	table string
	line  int
	err   error
}

func (c *cells) fail(column, value string, err error) {
	if c.err == nil {
		c.err = &ParseError{Table: c.table, Line: c.line, Column: column, Value: value, Err: err}
	}
}

func (c *cells) date(column, value string) date.Date {
	d, err := date.Parse(strings.TrimSpace(value))
	if err != nil {
		c.fail(column, value, err)
	}
	return d
}

// decimal parses a number; an empty cell is an error only when required.
func (c *cells) decimal(column, value string, required bool) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			c.fail(column, value, errors.New("empty value"))
		}
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		c.fail(column, value, err)
	}
	return d
}

func (c *cells) text(column, value string, required bool) string {
	value = strings.TrimSpace(value)
	if value == "" && required {
		c.fail(column, value, errors.New("empty value"))
	}
	return value
}

type tradeRow struct {
	Date        string `csv:"date"`
	Code        string `csv:"security_code"`
	Direction   string `csv:"direction"`
	Price       string `csv:"price"`
	Quantity    string `csv:"quantity"`
	Name        string `csv:"security_name"`
	Broker      string `csv:"broker"`
	Market      string `csv:"market"`
	ProductType string `csv:"product_type"`
}

// DecodeTrades reads the trades table. Optional columns left empty are filled
// later by SecurityDirectory.Enrich.
func DecodeTrades(r io.Reader) ([]Trade, error) {
	var rows []tradeRow
	if err := readTable(r, TradesTable, []string{"date", "security_code", "direction", "price", "quantity"}, &rows); err != nil {
		return nil, err
	}
	trades := make([]Trade, 0, len(rows))
	for i, row := range rows {
		c := cells{table: TradesTable, line: i + 2}
		t := Trade{
			Date:        c.date("date", row.Date),
			Code:        c.text("security_code", row.Code, true),
			Price:       M(c.decimal("price", row.Price, true)),
			Quantity:    Q(c.decimal("quantity", row.Quantity, true)),
			Name:        strings.TrimSpace(row.Name),
			Broker:      strings.TrimSpace(row.Broker),
			ProductType: ProductType(strings.TrimSpace(row.ProductType)),
		}
		if m := strings.TrimSpace(row.Market); m != "" {
			t.Market = normalizeMarket(m)
		}
		dir, err := ParseDirection(row.Direction)
		if err != nil {
			c.fail("direction", row.Direction, err)
		}
		t.Direction = dir
		if c.err == nil && !t.Price.IsPositive() {
			c.fail("price", row.Price, errors.New("price must be positive"))
		}
		if c.err == nil && !t.Quantity.IsPositive() {
			c.fail("quantity", row.Quantity, errors.New("quantity must be positive"))
		}
		if c.err != nil {
			return nil, c.err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

type rateRow struct {
	Broker          string `csv:"broker"`
	Market          string `csv:"market"`
	ProductType     string `csv:"product_type"`
	CommissionRate  string `csv:"commission_rate"`
	RegulatoryRate  string `csv:"regulatory_rate"`
	StampTaxRate    string `csv:"stamp_tax_rate"`
	TransferRate    string `csv:"transfer_rate"`
	MinCommission   string `csv:"min_commission"`
	PlatformFee     string `csv:"platform_fee"`
	SettlementRate  string `csv:"settlement_rate"`
	FXRate          string `csv:"fx_rate"`
	SupervisionRate string `csv:"supervision_rate"`
}

// DecodeFeeRates reads the rates table. Empty rates are zero.
func DecodeFeeRates(r io.Reader) ([]FeeRateRecord, error) {
	var rows []rateRow
	if err := readTable(r, RatesTable, []string{"broker", "market", "product_type"}, &rows); err != nil {
		return nil, err
	}
	rates := make([]FeeRateRecord, 0, len(rows))
	for i, row := range rows {
		c := cells{table: RatesTable, line: i + 2}
		rate := FeeRateRecord{
			FeeKey: FeeKey{
				Broker:      c.text("broker", row.Broker, true),
				Market:      normalizeMarket(c.text("market", row.Market, true)),
				ProductType: ProductType(c.text("product_type", row.ProductType, true)),
			},
			CommissionRate:  c.decimal("commission_rate", row.CommissionRate, false),
			RegulatoryRate:  c.decimal("regulatory_rate", row.RegulatoryRate, false),
			StampTaxRate:    c.decimal("stamp_tax_rate", row.StampTaxRate, false),
			TransferRate:    c.decimal("transfer_rate", row.TransferRate, false),
			MinCommission:   M(c.decimal("min_commission", row.MinCommission, false)),
			PlatformFee:     M(c.decimal("platform_fee", row.PlatformFee, false)),
			SettlementRate:  c.decimal("settlement_rate", row.SettlementRate, false),
			FXRate:          c.decimal("fx_rate", row.FXRate, false),
			SupervisionRate: c.decimal("supervision_rate", row.SupervisionRate, false),
		}
		if c.err != nil {
			return nil, c.err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

type priceRow struct {
	Date  string `csv:"date"`
	Code  string `csv:"security_code"`
	Close string `csv:"close_price"`
}

// DecodePrices reads the prices table. An empty close is zero.
func DecodePrices(r io.Reader) ([]ClosePrice, error) {
	var rows []priceRow
	if err := readTable(r, PricesTable, []string{"date", "security_code", "close_price"}, &rows); err != nil {
		return nil, err
	}
	prices := make([]ClosePrice, 0, len(rows))
	for i, row := range rows {
		c := cells{table: PricesTable, line: i + 2}
		p := ClosePrice{
			Date:  c.date("date", row.Date),
			Code:  c.text("security_code", row.Code, true),
			Price: M(c.decimal("close_price", row.Close, false)),
		}
		if c.err != nil {
			return nil, c.err
		}
		prices = append(prices, p)
	}
	return prices, nil
}

type securityRow struct {
	Code     string `csv:"security_code"`
	Name     string `csv:"security_name"`
	Exchange string `csv:"exchange"`
}

// DecodeSecurities reads the securities table. Duplicates are kept, the
// directory drops them.
func DecodeSecurities(r io.Reader) ([]SecurityInfo, error) {
	var rows []securityRow
	if err := readTable(r, SecuritiesTable, []string{"security_code", "security_name", "exchange"}, &rows); err != nil {
		return nil, err
	}
	securities := make([]SecurityInfo, 0, len(rows))
	for i, row := range rows {
		c := cells{table: SecuritiesTable, line: i + 2}
		code := c.text("security_code", row.Code, true)
		if c.err != nil {
			return nil, c.err
		}
		securities = append(securities, NewSecurityInfo(code, strings.TrimSpace(row.Name), row.Exchange))
	}
	return securities, nil
}

type dividendRow struct {
	Date     string `csv:"date"`
	Code     string `csv:"security_code"`
	Name     string `csv:"security_name"`
	Quantity string `csv:"quantity"`
	PerShare string `csv:"dividend_per_share"`
	Gross    string `csv:"gross_amount"`
	Tax      string `csv:"tax"`
	Net      string `csv:"net_amount"`
}

// DecodeDividends reads the dividends table, sorted by date.
func DecodeDividends(r io.Reader) ([]Dividend, error) {
	var rows []dividendRow
	if err := readTable(r, DividendsTable, []string{"date", "security_code"}, &rows); err != nil {
		return nil, err
	}
	dividends := make([]Dividend, 0, len(rows))
	for i, row := range rows {
		c := cells{table: DividendsTable, line: i + 2}
		d := Dividend{
			Date:     c.date("date", row.Date),
			Code:     c.text("security_code", row.Code, true),
			Name:     strings.TrimSpace(row.Name),
			Quantity: Q(c.decimal("quantity", row.Quantity, false)),
			PerShare: M(c.decimal("dividend_per_share", row.PerShare, false)),
			Gross:    M(c.decimal("gross_amount", row.Gross, false)),
			Tax:      M(c.decimal("tax", row.Tax, false)),
			Net:      M(c.decimal("net_amount", row.Net, false)),
		}
		if c.err != nil {
			return nil, c.err
		}
		dividends = append(dividends, d)
	}
	SortDividends(dividends)
	return dividends, nil
}

type recordRow struct {
	Date          date.Date `csv:"date"`
	Code          string    `csv:"security_code"`
	Name          string    `csv:"security_name"`
	Exchange      string    `csv:"exchange"`
	Quantity      Quantity  `csv:"quantity"`
	AverageCost   Money     `csv:"avg_cost_price"`
	CostBasis     Money     `csv:"cost_basis_total"`
	ClosePrice    Money     `csv:"close_price"`
	MarketValue   Money     `csv:"market_value"`
	RealizedToday Money     `csv:"realized_pnl_today"`
	RealizedPnL   Money     `csv:"cumulative_realized_pnl"`
	UnrealizedPnL Money     `csv:"unrealized_pnl"`
	UnrealizedPct Percent   `csv:"unrealized_pnl_pct"`
	TotalPnL      Money     `csv:"total_pnl"`
}

func newRecordRow(r DailyPnLRecord) recordRow {
	return recordRow{
		Date:          r.Date,
		Code:          r.Code,
		Name:          r.Name,
		Exchange:      string(r.Exchange),
		Quantity:      r.Quantity,
		AverageCost:   r.AverageCost,
		CostBasis:     r.CostBasis,
		ClosePrice:    r.ClosePrice,
		MarketValue:   r.MarketValue,
		RealizedToday: r.RealizedToday,
		RealizedPnL:   r.RealizedPnL,
		UnrealizedPnL: r.UnrealizedPnL,
		UnrealizedPct: r.UnrealizedPct,
		TotalPnL:      r.TotalPnL,
	}
}

// EncodeRecordsCSV writes daily records as a csv table.
func EncodeRecordsCSV(w io.Writer, records []DailyPnLRecord) error {
	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, newRecordRow(r))
	}
	return gocsv.Marshal(rows, w)
}

// statsRow is a record with the trade statistics of its security.
type statsRow struct {
	Date             date.Date `csv:"date"`
	Code             string    `csv:"security_code"`
	Name             string    `csv:"security_name"`
	Exchange         string    `csv:"exchange"`
	Quantity         Quantity  `csv:"quantity"`
	AverageCost      Money     `csv:"avg_cost_price"`
	CostBasis        Money     `csv:"cost_basis_total"`
	ClosePrice       Money     `csv:"close_price"`
	MarketValue      Money     `csv:"market_value"`
	RealizedPnL      Money     `csv:"cumulative_realized_pnl"`
	UnrealizedPnL    Money     `csv:"unrealized_pnl"`
	TotalPnL         Money     `csv:"total_pnl"`
	PnLPct           Percent   `csv:"pnl_pct"`
	BuyQuantity      Quantity  `csv:"buy_quantity"`
	BuyAmount        Money     `csv:"buy_amount"`
	AverageBuyPrice  Money     `csv:"avg_buy_price"`
	SellQuantity     Quantity  `csv:"sell_quantity"`
	SellAmount       Money     `csv:"sell_amount"`
	AverageSellPrice Money     `csv:"avg_sell_price"`
	BuyFees          Money     `csv:"buy_fees"`
	SellFees         Money     `csv:"sell_fees"`
	TotalFees        Money     `csv:"total_fees"`
	TradeCount       int       `csv:"trade_count"`
	FirstTrade       date.Date `csv:"first_trade_date"`
	LastTrade        date.Date `csv:"last_trade_date"`
	HoldingDays      int       `csv:"holding_days"`
}

func newStatsRow(r DailyPnLRecord, s TradeStats) statsRow {
	return statsRow{
		Date:             r.Date,
		Code:             r.Code,
		Name:             r.Name,
		Exchange:         string(r.Exchange),
		Quantity:         r.Quantity,
		AverageCost:      r.AverageCost,
		CostBasis:        r.CostBasis,
		ClosePrice:       r.ClosePrice,
		MarketValue:      r.MarketValue,
		RealizedPnL:      r.RealizedPnL,
		UnrealizedPnL:    r.UnrealizedPnL,
		TotalPnL:         r.TotalPnL,
		PnLPct:           r.TotalPnL.Percent(r.CostBasis).Round(),
		BuyQuantity:      s.BuyQuantity,
		BuyAmount:        s.BuyAmount,
		AverageBuyPrice:  s.AverageBuyPrice,
		SellQuantity:     s.SellQuantity,
		SellAmount:       s.SellAmount,
		AverageSellPrice: s.AverageSellPrice,
		BuyFees:          s.BuyFees,
		SellFees:         s.SellFees,
		TotalFees:        s.TotalFees,
		TradeCount:       s.TradeCount,
		FirstTrade:       s.FirstTrade,
		LastTrade:        s.LastTrade,
		HoldingDays:      s.HoldingDays,
	}
}

// EncodePositionsCSV writes current positions as a csv table.
func EncodePositionsCSV(w io.Writer, positions []PositionRow) error {
	rows := make([]statsRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, newStatsRow(p.DailyPnLRecord, p.TradeStats))
	}
	return gocsv.Marshal(rows, w)
}

// EncodeHistoryCSV writes per security history as a csv table.
func EncodeHistoryCSV(w io.Writer, history []HistoryRow) error {
	rows := make([]statsRow, 0, len(history))
	for _, h := range history {
		rows = append(rows, newStatsRow(h.DailyPnLRecord, h.TradeStats))
	}
	return gocsv.Marshal(rows, w)
}
