package finagle

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Cents is the number of decimal places every reported amount carries.
const Cents = 2

// ReportingCurrency is the currency amounts are displayed in.
const ReportingCurrency = money.AUD

// Money is a reported monetary amount, always rounded to the cent.
//
// Amounts are rounded half to even (banker's rounding) when a Money is built
// from an unrounded decimal, never before.
type Money struct {
	value decimal.Decimal
}

// NewMoney rounds value to the cent.
func NewMoney(value decimal.Decimal) Money {
	return Money{value: value.RoundBank(Cents)}
}

// ParseMoney parses a decimal string into a Money.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustParseMoney is like ParseMoney but panics on error.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Decimal returns the amount as a decimal.
func (m Money) Decimal() decimal.Decimal { return m.value }

// String returns the amount with exactly two decimal places, e.g. "4010.00".
func (m Money) String() string { return m.value.StringFixed(Cents) }

// displayFormatter formats cents of the reporting currency. Reports show a
// plain "$" where go-money shows AUD as "A$".
var displayFormatter = func() *money.Formatter {
	c := money.GetCurrency(ReportingCurrency)
	return money.NewFormatter(Cents, c.Decimal, c.Thousand, "$", c.Template)
}()

// Format returns the amount formatted in the reporting currency, e.g. "$4,010.00".
func (m Money) Format() string {
	return displayFormatter.Format(m.value.Shift(Cents).IntPart())
}

// SignedString returns the formatted amount with a sign. 0 is represented as a "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.Format()
	}
	return m.Format()
}

func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }

// MarshalJSON writes the amount as a string with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// UnmarshalJSON accepts both a JSON string and a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
