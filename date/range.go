package date

import "fmt"

// Range represents a range of days, boundaries included.
// A zero From or To leaves that side open.
type Range struct{ From, To Date }

// Contains returns true if day is included in the range.
func (r Range) Contains(day Date) bool {
	if !r.From.IsZero() && day.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && day.After(r.To) {
		return false
	}
	return true
}

// ParseRange parses optional from/to boundaries. Empty strings leave the side open.
func ParseRange(from, to string) (Range, error) {
	var r Range
	var err error
	if from != "" {
		if r.From, err = Parse(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = Parse(to); err != nil {
			return r, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("invalid range: %s is before %s", r.To, r.From)
	}
	return r, nil
}

// String formats the range for report titles.
func (r Range) String() string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "all dates"
	case r.From.IsZero():
		return "until " + r.To.String()
	case r.To.IsZero():
		return "since " + r.From.String()
	default:
		return r.From.String() + " to " + r.To.String()
	}
}
