package finagle

import (
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// dec is a helper for test to create decimals from const
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// buy is a helper for test to create a buy transaction at 10:00.
func buy(on, ticker string, quantity int64, price, fee string) Transaction {
	tx := NewBuy(date.MustParse(on), ticker, quantity, dec(price), dec(fee))
	tx.Time = date.NewClock(10, 0, 0)
	return tx
}

// sell is a helper for test to create a sell transaction at 10:00.
func sell(on, ticker string, quantity int64, price, fee string) Transaction {
	tx := NewSell(date.MustParse(on), ticker, quantity, dec(price), dec(fee))
	tx.Time = date.NewClock(10, 0, 0)
	return tx
}

// fy is a helper for test to create financial years from const
func fy(label string) date.FinancialYear { return date.MustParseFinancialYear(label) }
