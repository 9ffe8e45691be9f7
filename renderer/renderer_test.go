package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const currency = "CNY"

func session(t *testing.T) *tradebook.Session {
	t.Helper()
	trades := `date,security_code,direction,price,quantity,security_name,broker
2024-01-02,600519,买入,10,100,贵州茅台,国泰君安
2024-01-02,000001,买入,10,100,平安|银行,
2024-01-03,600519,卖出,12,50,贵州茅台,国泰君安
2024-01-03,000001,卖出,9,100,平安|银行,
`
	rates := `broker,market,product_type,commission_rate,regulatory_rate,stamp_tax_rate,min_commission
国泰君安,上交所,股票,0.0003,0.00002,0.001,5
`
	prices := `date,security_code,close_price
2024-01-03,600519,11
`
	dividends := `date,security_code,security_name,quantity,dividend_per_share,gross_amount,tax,net_amount
2024-01-03,600519,贵州茅台,50,1,50,5,45
`
	s := tradebook.NewSession(tradebook.SessionConfig{})
	err := s.Load(tradebook.Inputs{
		Trades:    strings.NewReader(trades),
		Rates:     strings.NewReader(rates),
		Prices:    strings.NewReader(prices),
		Dividends: strings.NewReader(dividends),
	})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if err := s.Process(); err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	return s
}

// tables parses md and returns the number of columns and body rows of each
// table it contains.
func tables(t *testing.T, md string) (columns, rows []int) {
	t.Helper()
	src := []byte(md)
	parser := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := parser.Parse(text.NewReader(src))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if tbl, ok := n.(*east.Table); ok {
			columns = append(columns, len(tbl.Alignments))
			rows = append(rows, tbl.ChildCount()-1)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return columns, rows
}

func TestPositionsMarkdown(t *testing.T) {
	s := session(t)
	md := PositionsMarkdown(s.Reports().CurrentPositions(), currency)

	columns, rows := tables(t, md)
	if len(columns) != 1 || columns[0] != 13 {
		t.Fatalf("tables columns = %v, want one table of 13 columns:\n%s", columns, md)
	}
	// 600519 and the total
	if rows[0] != 2 {
		t.Errorf("table rows = %d, want 2:\n%s", rows[0], md)
	}
	if !strings.Contains(md, "| 600519 | 贵州茅台 | 上交所 | 50 | 10.0500 | 11.0000 |") {
		t.Errorf("missing 600519 row:\n%s", md)
	}
	if want := tradebook.M(550).Format(currency); !strings.Contains(md, want) {
		t.Errorf("missing market value %q:\n%s", want, md)
	}

	if got := PositionsMarkdown(nil, currency); !strings.Contains(got, "No open position.") {
		t.Errorf("PositionsMarkdown(nil) = %q", got)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	s := session(t)
	md := HistoryMarkdown(s.Reports().StockHistoricalPnL(), currency)

	columns, rows := tables(t, md)
	if len(columns) != 1 || columns[0] != 13 || rows[0] != 3 {
		t.Fatalf("tables = %v columns, %v rows, want one table of 13 columns and 3 rows:\n%s", columns, rows, md)
	}
	// pipes in names are escaped and do not split the cell
	if !strings.Contains(md, `平安\|银行`) {
		t.Errorf("name not escaped:\n%s", md)
	}
	// the closed position is still listed
	if !strings.Contains(md, "| 000001 |") {
		t.Errorf("missing closed position 000001:\n%s", md)
	}
}

func TestDailyMarkdown(t *testing.T) {
	s := session(t)
	md := DailyMarkdown(s.Records(), currency)

	columns, rows := tables(t, md)
	if len(columns) != 2 {
		t.Fatalf("found %d tables, want one per day:\n%s", len(columns), md)
	}
	if rows[0] != 2 || rows[1] != 2 {
		t.Errorf("rows per day = %v, want [2 2]:\n%s", rows, md)
	}
	for _, h := range []string{"## 2024-01-02", "## 2024-01-03"} {
		if !strings.Contains(md, h) {
			t.Errorf("missing section %q:\n%s", h, md)
		}
	}

	md = PortfolioMarkdown(s.Reports().PortfolioDaily(), currency)
	if _, rows := tables(t, md); len(rows) != 1 || rows[0] != 2 {
		t.Errorf("PortfolioMarkdown rows = %v, want one table of 2 rows:\n%s", rows, md)
	}
}

func TestRollupMarkdown(t *testing.T) {
	s := session(t)
	md := RollupMarkdown(s.Reports().ExchangeRollup(), currency)
	columns, rows := tables(t, md)
	// Shanghai and Shenzhen stocks plus the total
	if len(columns) != 1 || columns[0] != 9 || rows[0] != 3 {
		t.Errorf("tables = %v columns, %v rows, want 9 columns and 3 rows:\n%s", columns, rows, md)
	}
	if !strings.Contains(md, "| 深交所 | 股票 | 1 | 0 |") {
		t.Errorf("missing Shenzhen row:\n%s", md)
	}
}

func TestReviewMarkdown(t *testing.T) {
	s := session(t)
	md := ReviewMarkdown(s.Reports().DailyReview(date.MustParse("2024-01-03")), currency)

	for _, section := range []string{"# Daily Review 2024-01-03", "## Trades", "## Gainers", "## Losers", "## Dividends"} {
		if !strings.Contains(md, section) {
			t.Errorf("missing %q:\n%s", section, md)
		}
	}
	if _, rows := tables(t, md); len(rows) != 5 {
		t.Errorf("found %d tables, want 5:\n%s", len(rows), md)
	}

	// a quiet day only has the summary
	md = ReviewMarkdown(s.Reports().DailyReview(date.MustParse("2024-02-01")), currency)
	if strings.Contains(md, "## Trades") || strings.Contains(md, "## Dividends") {
		t.Errorf("empty sections rendered:\n%s", md)
	}
	if _, rows := tables(t, md); len(rows) != 1 {
		t.Errorf("found %d tables, want 1:\n%s", len(rows), md)
	}
}

func TestFeesMarkdown(t *testing.T) {
	s := session(t)
	md := FeesMarkdown(s.Trades(), currency)
	columns, rows := tables(t, md)
	if len(columns) != 1 || columns[0] != 16 || rows[0] != 5 {
		t.Fatalf("tables = %v columns, %v rows, want 16 columns and 5 rows:\n%s", columns, rows, md)
	}
	if want := tradebook.M(4.98).Format(currency); !strings.Contains(md, want) {
		t.Errorf("missing netted commission %q:\n%s", want, md)
	}
}

func TestSecuritiesMarkdown(t *testing.T) {
	s := session(t)
	held := map[string]bool{}
	for _, p := range s.Positions() {
		held[p.Code] = p.Quantity.IsPositive()
	}
	md := SecuritiesMarkdown(s.Directory().Securities(), held)
	if !strings.Contains(md, "| 600519 | X | 贵州茅台 | 上交所 | 股票 |") {
		t.Errorf("missing held 600519:\n%s", md)
	}
	if !strings.Contains(md, "| 000001 |   |") {
		t.Errorf("000001 should not be held:\n%s", md)
	}

	if got := WarningsMarkdown(nil); got != "" {
		t.Errorf("WarningsMarkdown(nil) = %q, want empty", got)
	}
	md = WarningsMarkdown(s.Warnings())
	if _, rows := tables(t, md); len(rows) != 1 || rows[0] != len(s.Warnings()) {
		t.Errorf("WarningsMarkdown rows = %v, want %d:\n%s", rows, len(s.Warnings()), md)
	}
}
