package tradebook

import (
	"errors"
	"fmt"

	"github.com/etnz/tradebook/date"
	"go.uber.org/zap"
)

// ErrFeeRateNotFound is the cause of FeeRateNotFound warnings.
var ErrFeeRateNotFound = errors.New("fee rate not found")

// MissingColumnError reports a required column absent from an input table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %q: missing required column %q", e.Table, e.Column)
}

// ParseError reports a cell that could not be parsed.
type ParseError struct {
	Table  string
	Line   int // 1-based, the header being line 1
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table %q line %d column %q: invalid value %q: %v", e.Table, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PositionIntegrityError reports a sell of more shares than the position holds.
type PositionIntegrityError struct {
	Code string
	Date date.Date
	Held Quantity
	Sold Quantity
}

func (e *PositionIntegrityError) Error() string {
	return fmt.Sprintf("%s: sell of %s %s exceeds the %s held", e.Date, e.Sold, e.Code, e.Held)
}

// WarningKind classifies the recoverable conditions met while processing.
type WarningKind int

const (
	FeeRateNotFound WarningKind = iota
	SecurityAutoCreated
	SecurityDuplicate
	OverSellClamped
	SellWithoutPosition
	MissingClosePrice
)

func (k WarningKind) String() string {
	switch k {
	case FeeRateNotFound:
		return "fee-rate-not-found"
	case SecurityAutoCreated:
		return "security-auto-created"
	case SecurityDuplicate:
		return "security-duplicate"
	case OverSellClamped:
		return "oversell-clamped"
	case SellWithoutPosition:
		return "sell-without-position"
	case MissingClosePrice:
		return "missing-close-price"
	default:
		return "unknown"
	}
}

// Warning is a recoverable condition: processing went on with a documented fallback.
type Warning struct {
	Kind    WarningKind
	Code    string    // security code, if any
	Date    date.Date // zero if not tied to a day
	Message string
	Fee     *FeeKey // set on FeeRateNotFound
}

func (w Warning) String() string {
	if w.Date.IsZero() {
		return fmt.Sprintf("%s %s: %s", w.Kind, w.Code, w.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", w.Date, w.Kind, w.Code, w.Message)
}

// logWarning reports w at Warn level with structured fields.
func logWarning(log *zap.Logger, w Warning) {
	fields := []zap.Field{zap.Stringer("kind", w.Kind)}
	if w.Code != "" {
		fields = append(fields, zap.String("code", w.Code))
	}
	if !w.Date.IsZero() {
		fields = append(fields, zap.Stringer("date", w.Date))
	}
	if w.Fee != nil {
		fields = append(fields,
			zap.String("broker", w.Fee.Broker),
			zap.String("market", string(w.Fee.Market)),
			zap.String("product_type", string(w.Fee.ProductType)))
	}
	log.Warn(w.Message, fields...)
}
