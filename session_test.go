package tradebook

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/tradebook/date"
)

const (
	tradesCSV = `date,security_code,direction,price,quantity,security_name,broker
2024-01-02,600519,买入,10,100,贵州茅台,国泰君安
2024-01-03,600519,卖出,12,50,贵州茅台,国泰君安
2024-01-03,510300,买入,4,1000,,
`
	ratesCSV = `broker,market,product_type,commission_rate,regulatory_rate,stamp_tax_rate,min_commission
国泰君安,上交所,股票,0.0003,0.00002,0.001,5
`
	pricesCSV = `date,security_code,close_price
2024-01-04,600519,11
2024-01-04,510300,4.1
`
)

func inputs(trades, rates, prices string) Inputs {
	return Inputs{
		Trades: strings.NewReader(trades),
		Rates:  strings.NewReader(rates),
		Prices: strings.NewReader(prices),
	}
}

func TestSessionProcess(t *testing.T) {
	s := NewSession(SessionConfig{})
	if err := s.Load(inputs(tradesCSV, ratesCSV, pricesCSV)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := s.Process(); err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}

	trades := s.Trades()
	if len(trades) != 3 {
		t.Fatalf("len(Trades()) = %d, want 3", len(trades))
	}
	// the netted minimum applies: 5 - 0.02 commission, plus 0.02 regulatory
	if got, want := trades[0].Fees.Commission, M(4.98); !got.Equal(want) {
		t.Errorf("buy commission = %v, want %v", got, want)
	}
	if got, want := trades[0].TotalFee(), M(5); !got.Equal(want) {
		t.Errorf("buy TotalFee() = %v, want %v", got, want)
	}
	// sell: 0.6 stamp tax on top
	if got, want := trades[1].TotalFee(), M(5.6); !got.Equal(want) {
		t.Errorf("sell TotalFee() = %v, want %v", got, want)
	}
	etf := trades[2]
	if etf.Broker != DefaultBroker || etf.Market != Shanghai || etf.ProductType != ETF || etf.Name != "510300" {
		t.Errorf("enriched ETF trade = %+v", etf)
	}

	kinds := map[WarningKind]int{}
	for _, w := range s.Warnings() {
		kinds[w.Kind]++
	}
	if got, want := kinds[FeeRateNotFound], 1; got != want {
		t.Errorf("FeeRateNotFound warnings = %d, want %d", got, want)
	}

	// cost 1005, half sold for 600 - 5.6
	r := s.Records()[len(s.Records())-1]
	if r.Code != "600519" || r.Date != date.MustParse("2024-01-04") {
		t.Fatalf("last record = %s %s, want 600519 on 2024-01-04", r.Code, r.Date)
	}
	if got, want := r.RealizedPnL, M(91.9); !got.Equal(want) {
		t.Errorf("RealizedPnL = %v, want %v", got, want)
	}
	if got, want := r.AverageCost, M(10.05); !got.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got, want)
	}
	if got, want := len(s.Reports().CurrentPositions()), 2; got != want {
		t.Errorf("len(CurrentPositions()) = %d, want %d", got, want)
	}
	if got, want := len(s.Positions()), 2; got != want {
		t.Errorf("len(Positions()) = %d, want %d", got, want)
	}
}

func TestSessionWithSecuritiesTable(t *testing.T) {
	in := inputs(tradesCSV, ratesCSV, pricesCSV)
	in.Securities = strings.NewReader("security_code,security_name,exchange\n600519,贵州茅台,上交所\n600519,茅台,上交所\n")
	s := NewSession(SessionConfig{})
	if err := s.Load(in); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := s.Process(); err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	kinds := map[WarningKind]int{}
	for _, w := range s.Warnings() {
		kinds[w.Kind]++
	}
	if kinds[SecurityDuplicate] != 1 || kinds[SecurityAutoCreated] != 1 {
		t.Errorf("warnings = %v, want one duplicate and one auto-created security", s.Warnings())
	}
	if got := s.Directory().Len(); got != 2 {
		t.Errorf("Directory().Len() = %d, want 2", got)
	}
}

func TestSessionLoadFailure(t *testing.T) {
	s := NewSession(SessionConfig{})
	err := s.Load(inputs("date,security_code,direction,price\n", ratesCSV, pricesCSV))
	var mcerr *MissingColumnError
	if !errors.As(err, &mcerr) || mcerr.Column != "quantity" {
		t.Fatalf("Load() error = %v, want a missing quantity column", err)
	}
	if err := s.Process(); err == nil {
		t.Error("Process() after a failed Load succeeded, want an error")
	}
	if s.Records() != nil || s.Trades() != nil {
		t.Error("failed Load published results")
	}
	if got := s.Reports().StockHistoricalPnL(); len(got) != 0 {
		t.Errorf("StockHistoricalPnL() = %v, want an empty result", got)
	}
}

func TestSessionStrictFailure(t *testing.T) {
	oversold := tradesCSV + "2024-01-04,600519,卖出,12,500,贵州茅台,国泰君安\n"

	s := NewSession(SessionConfig{OverSell: Strict})
	if err := s.Load(inputs(oversold, ratesCSV, pricesCSV)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	err := s.Process()
	var perr *PositionIntegrityError
	if !errors.As(err, &perr) {
		t.Fatalf("Process() error = %v, want a *PositionIntegrityError", err)
	}
	if s.Records() != nil || s.Positions() != nil || s.Ledger() != nil {
		t.Error("failed Process published results")
	}

	lenient := NewSession(SessionConfig{})
	if err := lenient.Load(inputs(oversold, ratesCSV, pricesCSV)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := lenient.Process(); err != nil {
		t.Fatalf("lenient Process() unexpected error: %v", err)
	}
	p, _ := lenient.Ledger().Position("600519")
	if !p.Quantity.IsZero() {
		t.Errorf("lenient over-sell left %v shares, want 0", p.Quantity)
	}
}

func TestSessionResume(t *testing.T) {
	full := NewSession(SessionConfig{})
	if err := full.Load(inputs(tradesCSV, ratesCSV, pricesCSV)); err != nil {
		t.Fatal(err)
	}
	if err := full.Process(); err != nil {
		t.Fatal(err)
	}

	head := NewSession(SessionConfig{Until: date.MustParse("2024-01-03")})
	if err := head.Load(inputs(tradesCSV, ratesCSV, pricesCSV)); err != nil {
		t.Fatal(err)
	}
	if err := head.Process(); err != nil {
		t.Fatal(err)
	}

	tail := NewSession(SessionConfig{})
	tail.ResumeFrom(head.Snapshot())
	if err := tail.Load(inputs(tradesCSV, ratesCSV, pricesCSV)); err != nil {
		t.Fatal(err)
	}
	if err := tail.Process(); err != nil {
		t.Fatal(err)
	}
	got := append(append([]DailyPnLRecord{}, head.Records()...), tail.Records()...)
	if !sameRecords(got, full.Records()) {
		t.Errorf("resumed session differs from the full one:\ngot  %v\nwant %v", got, full.Records())
	}
}
