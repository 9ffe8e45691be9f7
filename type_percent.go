package tradebook

import (
	"fmt"
	"math"
)

// Percent is a percentage (5 means 5%).
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

// Round returns p rounded to 2 decimal places.
func (p Percent) Round() Percent { return Percent(math.Round(float64(p)*100) / 100) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}

// MarshalCSV writes the percentage as a plain number with 2 decimal places.
func (p Percent) MarshalCSV() (string, error) { return fmt.Sprintf("%.2f", p), nil }
