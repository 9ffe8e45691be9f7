package tradebook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NettedMinimumBroker bundles commission and regulatory fee under its minimum
// commission: when the commission is below the minimum, the commission is the
// minimum minus the regulatory fee.
const NettedMinimumBroker = "国泰君安"

// FeeKey identifies an entry of the fee schedule.
type FeeKey struct {
	Broker      string
	Market      Exchange
	ProductType ProductType
}

// FeeRateRecord holds the rates applied to the trades of a broker, market and
// product type.
type FeeRateRecord struct {
	FeeKey
	CommissionRate  decimal.Decimal
	RegulatoryRate  decimal.Decimal
	StampTaxRate    decimal.Decimal // sells only
	TransferRate    decimal.Decimal
	MinCommission   Money
	PlatformFee     Money // flat, per trade
	SettlementRate  decimal.Decimal
	FXRate          decimal.Decimal // foreign markets only
	SupervisionRate decimal.Decimal
}

// DefaultFeeRate returns the rates used when the schedule has no entry for key:
// 0.03% commission with a minimum of 5, and 0.1% stamp tax for stocks.
func DefaultFeeRate(key FeeKey) FeeRateRecord {
	r := FeeRateRecord{
		FeeKey:         key,
		CommissionRate: decimal.RequireFromString("0.0003"),
		MinCommission:  M(5),
	}
	if key.ProductType == Stock {
		r.StampTaxRate = decimal.RequireFromString("0.001")
	}
	return r
}

// FeeSchedule indexes fee rates by broker, market and product type.
// It is read-only once built.
type FeeSchedule struct {
	rates map[FeeKey]FeeRateRecord
}

// NewFeeSchedule indexes records. A later record replaces an earlier one with
// the same key.
func NewFeeSchedule(records []FeeRateRecord) *FeeSchedule {
	s := &FeeSchedule{rates: make(map[FeeKey]FeeRateRecord, len(records))}
	for _, r := range records {
		s.rates[r.FeeKey] = r
	}
	return s
}

// Len returns the number of entries in the schedule.
func (s *FeeSchedule) Len() int { return len(s.rates) }

// Lookup returns the rates for an exact match on all three keys. On a miss it
// returns DefaultFeeRate and false.
func (s *FeeSchedule) Lookup(broker string, market Exchange, product ProductType) (FeeRateRecord, bool) {
	key := FeeKey{Broker: broker, Market: market, ProductType: product}
	if r, ok := s.rates[key]; ok {
		return r, true
	}
	return DefaultFeeRate(key), false
}

// FeeBreakdown is the transaction cost of a trade, each item rounded to cents.
type FeeBreakdown struct {
	Commission  Money
	Regulatory  Money
	StampTax    Money
	Transfer    Money
	Platform    Money
	Settlement  Money
	FX          Money
	Supervision Money
	Total       Money
}

// ComputeFees computes the transaction cost of t with the given rates.
//
// Every item is rounded to cents when assigned, the total is the rounded sum of
// the unrounded items.
func ComputeFees(t Trade, rate FeeRateRecord) FeeBreakdown {
	amount := t.Amount()

	regulatory := amount.Scale(rate.RegulatoryRate)
	commission := amount.Scale(rate.CommissionRate)
	if t.Broker == NettedMinimumBroker {
		if commission.LessThan(rate.MinCommission) {
			commission = rate.MinCommission.Sub(regulatory)
		}
	} else {
		commission = commission.Max(rate.MinCommission)
	}

	var stamp Money
	if t.IsSell() {
		stamp = amount.Scale(rate.StampTaxRate)
	}
	transfer := amount.Scale(rate.TransferRate)
	platform := rate.PlatformFee
	settlement := amount.Scale(rate.SettlementRate)
	var fx Money
	if t.Market.Foreign() {
		fx = amount.Scale(rate.FXRate)
	}
	supervision := amount.Scale(rate.SupervisionRate)

	total := commission.Add(regulatory).Add(stamp).Add(transfer).Add(platform).
		Add(settlement).Add(fx).Add(supervision)

	return FeeBreakdown{
		Commission:  commission.Cents(),
		Regulatory:  regulatory.Cents(),
		StampTax:    stamp.Cents(),
		Transfer:    transfer.Cents(),
		Platform:    platform.Cents(),
		Settlement:  settlement.Cents(),
		FX:          fx.Cents(),
		Supervision: supervision.Cents(),
		Total:       total.Cents(),
	}
}

// ApplyFees returns trades with their fees computed from the schedule. A key
// missing from the schedule raises one FeeRateNotFound warning, its trades use
// DefaultFeeRate.
func (s *FeeSchedule) ApplyFees(trades []Trade) ([]Trade, []Warning) {
	res := make([]Trade, len(trades))
	var warnings []Warning
	missing := make(map[FeeKey]bool)
	for i, t := range trades {
		rate, ok := s.Lookup(t.Broker, t.Market, t.ProductType)
		if !ok && !missing[rate.FeeKey] {
			missing[rate.FeeKey] = true
			key := rate.FeeKey
			warnings = append(warnings, Warning{
				Kind:    FeeRateNotFound,
				Code:    t.Code,
				Date:    t.Date,
				Message: fmt.Sprintf("%v for %s/%s/%s, using defaults", ErrFeeRateNotFound, key.Broker, key.Market, key.ProductType),
				Fee:     &key,
			})
		}
		t.Fees = ComputeFees(t, rate)
		res[i] = t
	}
	return res, warnings
}
