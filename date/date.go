// Package date provides a day-granular date type and chronological series keyed by it.
package date

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"time"
)

// Format is the format used to write dates (ISO-8601).
const Format = "2006-01-02"

// readFormats are tried in order when parsing. Spreadsheet exports often carry a
// midnight time component or slashes.
var readFormats = []string{
	"2006-1-2",
	"2006/1/2",
	"20060102",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	time.RFC3339,
}

// Date represents a calendar day with no time component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// time returns the canonical instant of that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }


// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns d shifted by i days.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// DaysSince returns the number of days from x to d.
func (d Date) DaysSince(x Date) int { return int(d.time().Sub(x.time()).Hours() / 24) }

// String formats the date as 2006-01-02.
func (d Date) String() string { return d.time().Format(Format) }

// Today returns the current local date.
func Today() Date { return New(time.Now().Date()) }

// Parse parses a Date from a string. It is lenient: "2025-7-1", "2025/07/01",
// "20250701" and "2025-07-01 00:00:00" are all accepted.
func Parse(str string) (Date, error) {
	for _, layout := range readFormats {
		if on, err := time.Parse(layout, str); err == nil {
			return New(on.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q", str, Format)
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON reads a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	on, err := Parse(str)
	if err != nil {
		return err
	}
	*d = on
	return nil
}

// MarshalJSON writes the date as a json string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// MarshalCSV and UnmarshalCSV let csv encoders handle dates as plain strings.
func (d Date) MarshalCSV() (string, error) { return d.String(), nil }

func (d *Date) UnmarshalCSV(s string) error {
	on, err := Parse(s)
	if err != nil {
		return err
	}
	*d = on
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// Sort sorts dates chronologically in place.
func Sort(days []Date) { slices.SortFunc(days, Date.Compare) }

// Iterate returns an iterator over the union of several sorted series, in
// chronological order, each day yielded once.
func Iterate(series ...[]Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(series))
		for {
			var m Date
			found := false
			for i, index := range indexes {
				if index >= len(series[i]) {
					continue
				}
				if on := series[i][index]; !found || on.Before(m) {
					m, found = on, true
				}
			}
			if !found {
				return
			}
			// consume every head equal to the min
			for i, index := range indexes {
				for index < len(series[i]) && series[i][index] == m {
					index++
				}
				indexes[i] = index
			}
			if !yield(m) {
				return
			}
		}
	}
}
