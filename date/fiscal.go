package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FinancialYear is an Australian financial year, running from 1 July to 30 June.
// It is labelled by its start and end years, e.g. "2023-24".
type FinancialYear struct {
	start int // calendar year of the 1st of July
}

// NewFinancialYear returns the financial year that starts on the 1st of July of year.
func NewFinancialYear(year int) FinancialYear { return FinancialYear{start: year} }

// FinancialYearOf returns the financial year that contains d.
func FinancialYearOf(d Date) FinancialYear {
	if d.Month() >= time.July {
		return FinancialYear{start: d.Year()}
	}
	return FinancialYear{start: d.Year() - 1}
}

// Start returns the calendar year in which fy begins.
func (fy FinancialYear) Start() int { return fy.start }

// Range returns the first and last days of fy, both included.
func (fy FinancialYear) Range() Range {
	return Range{
		From: New(fy.start, time.July, 1),
		To:   New(fy.start+1, time.June, 30),
	}
}

// Contains reports whether d falls in fy.
func (fy FinancialYear) Contains(d Date) bool { return FinancialYearOf(d) == fy }

// Before reports whether fy precedes x.
func (fy FinancialYear) Before(x FinancialYear) bool { return fy.start < x.start }

// String returns the "YYYY-YY" label.
func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%02d", fy.start, (fy.start+1)%100)
}

// ParseFinancialYear parses a "YYYY-YY" label.
func ParseFinancialYear(label string) (FinancialYear, error) {
	first, second, ok := strings.Cut(strings.TrimSpace(label), "-")
	if !ok || len(first) != 4 || len(second) != 2 {
		return FinancialYear{}, fmt.Errorf("invalid financial year %q want format \"YYYY-YY\"", label)
	}
	start, err := strconv.Atoi(first)
	if err != nil {
		return FinancialYear{}, fmt.Errorf("invalid financial year %q: %w", label, err)
	}
	end, err := strconv.Atoi(second)
	if err != nil {
		return FinancialYear{}, fmt.Errorf("invalid financial year %q: %w", label, err)
	}
	if end != (start+1)%100 {
		return FinancialYear{}, fmt.Errorf("invalid financial year %q: %02d does not follow %d", label, end, start)
	}
	return FinancialYear{start: start}, nil
}

// MustParseFinancialYear is like ParseFinancialYear but panics on error.
func MustParseFinancialYear(label string) FinancialYear {
	fy, err := ParseFinancialYear(label)
	if err != nil {
		panic(err.Error())
	}
	return fy
}

func (fy FinancialYear) MarshalJSON() ([]byte, error) { return json.Marshal(fy.String()) }

func (fy *FinancialYear) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	v, err := ParseFinancialYear(str)
	if err != nil {
		return err
	}
	*fy = v
	return nil
}

// MarshalText lets a FinancialYear be used as a JSON object key.
func (fy FinancialYear) MarshalText() ([]byte, error) { return []byte(fy.String()), nil }

func (fy *FinancialYear) UnmarshalText(text []byte) error {
	v, err := ParseFinancialYear(string(text))
	if err != nil {
		return err
	}
	*fy = v
	return nil
}
