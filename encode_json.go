package tradebook

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/etnz/tradebook/date"
)

// Schemas of the JSON Lines streams. The first line of a stream is a header
// naming its schema.
const (
	RecordSchema   = "tradebook.daily_pnl/v1"
	SnapshotSchema = "tradebook.snapshot/v1"
)

// ErrSchemaMismatch is returned when decoding a stream of another schema.
var ErrSchemaMismatch = errors.New("schema mismatch")

type schemaHeader struct {
	Schema string `json:"schema"`
}

// MarshalJSON writes the record with fixed snake_case field names.
func (r DailyPnLRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("security_code", r.Code)
	w.Optional("security_name", r.Name)
	w.Optional("exchange", r.Exchange)
	w.Append("quantity", r.Quantity)
	w.Append("avg_cost_price", r.AverageCost)
	w.Append("cost_basis_total", r.CostBasis)
	w.Append("close_price", r.ClosePrice)
	w.Append("market_value", r.MarketValue)
	w.Append("realized_pnl_today", r.RealizedToday)
	w.Append("cumulative_realized_pnl", r.RealizedPnL)
	w.Append("unrealized_pnl", r.UnrealizedPnL)
	w.Append("unrealized_pnl_pct", r.UnrealizedPct)
	w.Append("total_pnl", r.TotalPnL)
	return w.MarshalJSON()
}

func (r *DailyPnLRecord) UnmarshalJSON(b []byte) error {
	var aux struct {
		Date          date.Date `json:"date"`
		Code          string    `json:"security_code"`
		Name          string    `json:"security_name"`
		Exchange      Exchange  `json:"exchange"`
		Quantity      Quantity  `json:"quantity"`
		AverageCost   Money     `json:"avg_cost_price"`
		CostBasis     Money     `json:"cost_basis_total"`
		ClosePrice    Money     `json:"close_price"`
		MarketValue   Money     `json:"market_value"`
		RealizedToday Money     `json:"realized_pnl_today"`
		RealizedPnL   Money     `json:"cumulative_realized_pnl"`
		UnrealizedPnL Money     `json:"unrealized_pnl"`
		UnrealizedPct Percent   `json:"unrealized_pnl_pct"`
		TotalPnL      Money     `json:"total_pnl"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Code == "" {
		return errors.New("record without security_code")
	}
	*r = DailyPnLRecord(aux)
	return nil
}

// MarshalJSON writes the position with fixed snake_case field names.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security_code", p.Code)
	w.Optional("security_name", p.Name)
	w.Append("quantity", p.Quantity)
	w.Append("avg_cost_price", p.AverageCost)
	w.Append("cost_basis_total", p.CostBasis)
	w.Append("cumulative_realized_pnl", p.RealizedPnL)
	return w.MarshalJSON()
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var aux struct {
		Code        string   `json:"security_code"`
		Name        string   `json:"security_name"`
		Quantity    Quantity `json:"quantity"`
		AverageCost Money    `json:"avg_cost_price"`
		CostBasis   Money    `json:"cost_basis_total"`
		RealizedPnL Money    `json:"cumulative_realized_pnl"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Position(aux)
	return nil
}

// jsonLines writes a schema header then one value per line.
func jsonLines[T any](w io.Writer, schema string, values []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(schemaHeader{Schema: schema}); err != nil {
		return err
	}
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding line %d: %w", i+2, err)
		}
	}
	return bw.Flush()
}

// readJSONLines checks the schema header and decodes the values that follow.
func readJSONLines[T any](r io.Reader, schema string) ([]T, error) {
	dec := json.NewDecoder(r)
	var h schemaHeader
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("reading schema header: %w", err)
	}
	if h.Schema != schema {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrSchemaMismatch, h.Schema, schema)
	}
	var res []T
	for line := 2; ; line++ {
		var v T
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		res = append(res, v)
	}
}

// EncodeRecords writes records as JSON Lines.
func EncodeRecords(w io.Writer, records []DailyPnLRecord) error {
	return jsonLines(w, RecordSchema, records)
}

// DecodeRecords reads records written by EncodeRecords.
func DecodeRecords(r io.Reader) ([]DailyPnLRecord, error) {
	return readJSONLines[DailyPnLRecord](r, RecordSchema)
}

type snapshotLine struct {
	Date      date.Date  `json:"date"`
	Positions []Position `json:"positions"`
}

// EncodeSnapshot writes s as a single JSON Lines value, positions sorted by code.
func EncodeSnapshot(w io.Writer, s Snapshot) error {
	line := snapshotLine{Date: s.Date, Positions: []Position{}}
	for _, code := range slices.Sorted(maps.Keys(s.Positions)) {
		line.Positions = append(line.Positions, s.Positions[code])
	}
	return jsonLines(w, SnapshotSchema, []snapshotLine{line})
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	lines, err := readJSONLines[snapshotLine](r, SnapshotSchema)
	if err != nil {
		return Snapshot{}, err
	}
	if len(lines) != 1 {
		return Snapshot{}, fmt.Errorf("snapshot stream has %d values, want 1", len(lines))
	}
	s := Snapshot{Date: lines[0].Date, Positions: make(map[string]Position)}
	for _, p := range lines[0].Positions {
		s.Positions[p.Code] = p
	}
	return s, nil
}
