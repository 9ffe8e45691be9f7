package tradebook

import (
	"fmt"
	"slices"
	"strings"
)

// SecurityInfo describes a listed security.
type SecurityInfo struct {
	Code        string
	Name        string
	Exchange    Exchange
	ProductType ProductType // always inferred from the code
}

// NewSecurityInfo returns the SecurityInfo of code as listed by a securities table.
func NewSecurityInfo(code, name, exchange string) SecurityInfo {
	_, product := Classify(code)
	return SecurityInfo{
		Code:        code,
		Name:        name,
		Exchange:    normalizeMarket(exchange),
		ProductType: product,
	}
}

// inferSecurity synthesizes the SecurityInfo of a traded security that is not
// listed anywhere: the exchange comes from the market name when it is a known
// one, and from the code otherwise.
func inferSecurity(t Trade) SecurityInfo {
	exchange, product := Classify(t.Code)
	if e, ok := ParseExchange(string(t.Market)); ok {
		exchange = e
	}
	name := t.Name
	if name == "" {
		name = t.Code
	}
	return SecurityInfo{Code: t.Code, Name: name, Exchange: exchange, ProductType: product}
}

// SecurityDirectory maps security codes to their SecurityInfo. Codes are unique.
type SecurityDirectory struct {
	byCode map[string]SecurityInfo
	codes  []string // sorted
}

// NewSecurityDirectory builds the directory of the securities referenced by trades.
//
// When listed is nil, no securities table was supplied and the directory is
// derived from trades alone. Otherwise listed entries come first and every
// traded code missing from it is synthesized from the first trade that
// references it, with a SecurityAutoCreated warning. In both cases the first
// occurrence of a code wins.
func NewSecurityDirectory(listed []SecurityInfo, trades []Trade) (*SecurityDirectory, []Warning) {
	d := &SecurityDirectory{byCode: make(map[string]SecurityInfo)}
	var warnings []Warning

	duplicates := 0
	for _, s := range listed {
		if _, exists := d.byCode[s.Code]; exists {
			duplicates++
			continue
		}
		d.add(s)
	}
	if duplicates > 0 {
		warnings = append(warnings, Warning{
			Kind:    SecurityDuplicate,
			Message: fmt.Sprintf("dropped %d duplicate securities", duplicates),
		})
	}

	for _, t := range trades {
		if _, exists := d.byCode[t.Code]; exists {
			continue
		}
		s := inferSecurity(t)
		d.add(s)
		if listed != nil {
			warnings = append(warnings, Warning{
				Kind:    SecurityAutoCreated,
				Code:    s.Code,
				Message: fmt.Sprintf("not in the securities table, created as %s on %s", s.Name, s.Exchange),
			})
		}
	}
	slices.Sort(d.codes)
	return d, warnings
}

func (d *SecurityDirectory) add(s SecurityInfo) {
	d.byCode[s.Code] = s
	d.codes = append(d.codes, s.Code)
}

// Len returns the number of securities.
func (d *SecurityDirectory) Len() int { return len(d.codes) }

// Lookup returns the SecurityInfo of code, if any.
func (d *SecurityDirectory) Lookup(code string) (SecurityInfo, bool) {
	s, ok := d.byCode[code]
	return s, ok
}

// Resolve returns the SecurityInfo of code. Unknown codes are classified from
// their prefix and named after their code.
func (d *SecurityDirectory) Resolve(code string) SecurityInfo {
	if s, ok := d.byCode[code]; ok {
		return s
	}
	exchange, product := Classify(code)
	return SecurityInfo{Code: code, Name: code, Exchange: exchange, ProductType: product}
}

// Securities returns all securities sorted by code.
func (d *SecurityDirectory) Securities() []SecurityInfo {
	res := make([]SecurityInfo, 0, len(d.codes))
	for _, c := range d.codes {
		res = append(res, d.byCode[c])
	}
	return res
}

// Enrich fills in the attributes a trade row left empty: the name and market
// from the directory, the product type from the code, and DefaultBroker.
func (d *SecurityDirectory) Enrich(t Trade) Trade {
	s := d.Resolve(t.Code)
	if strings.TrimSpace(t.Name) == "" {
		t.Name = s.Name
	}
	if t.Market == "" {
		t.Market = s.Exchange
	}
	if t.ProductType == "" {
		t.ProductType = s.ProductType
	}
	if strings.TrimSpace(t.Broker) == "" {
		t.Broker = DefaultBroker
	}
	return t
}
