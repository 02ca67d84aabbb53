package finagle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// Action is a typed string for identifying the side of a trade.
type Action string

// Actions a trade can take.
const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

func (a Action) String() string { return string(a) }

// ParseAction parses an action, ignoring case and surrounding spaces.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("action must be 'buy' or 'sell', got %q", s)
	}
}

// Transaction is a single trade of a quantity of shares of one ticker.
type Transaction struct {
	ID           int64           `json:"id,omitempty"`      // ID is assigned by the store.
	UserID       int64           `json:"user_id,omitempty"` // UserID owns the transaction.
	Date         date.Date       `json:"date"`
	Time         date.Clock      `json:"time"` // Time only orders trades of the same day.
	Action       Action          `json:"action"`
	Ticker       string          `json:"ticker"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"` // Price is per unit.
	Value        decimal.Decimal `json:"value"` // Value is informational, the engine recomputes it.
	Fee          decimal.Decimal `json:"fee"`   // Fee is the total fee of the trade, not per unit.
	ContractNote string          `json:"contract_note,omitempty"`
}

// NewBuy creates a new buy transaction. Value is price times quantity.
func NewBuy(on date.Date, ticker string, quantity int64, price, fee decimal.Decimal) Transaction {
	return newTrade(Buy, on, ticker, quantity, price, fee)
}

// NewSell creates a new sell transaction. Value is price times quantity.
func NewSell(on date.Date, ticker string, quantity int64, price, fee decimal.Decimal) Transaction {
	return newTrade(Sell, on, ticker, quantity, price, fee)
}

func newTrade(action Action, on date.Date, ticker string, quantity int64, price, fee decimal.Decimal) Transaction {
	return Transaction{
		Date:     on,
		Action:   action,
		Ticker:   NormalizeTicker(ticker),
		Quantity: quantity,
		Price:    price,
		Value:    price.Mul(decimal.NewFromInt(quantity)),
		Fee:      fee,
	}
}

// NormalizeTicker returns the canonical, upper case, form of a ticker.
func NormalizeTicker(ticker string) string { return strings.ToUpper(strings.TrimSpace(ticker)) }

// Validate checks the transaction fields. It normalizes the ticker and returns
// the first problem found.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date is missing")
	}
	action, err := ParseAction(string(t.Action))
	if err != nil {
		return err
	}
	t.Action = action
	t.Ticker = NormalizeTicker(t.Ticker)
	if t.Ticker == "" {
		return errors.New("ticker is required")
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", t.Quantity)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("price must not be negative, got %s", t.Price)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("fee must not be negative, got %s", t.Fee)
	}
	return nil
}

// Equal reports whether t and o describe the same trade, ignoring store identifiers.
func (t Transaction) Equal(o Transaction) bool {
	return t.Date == o.Date && t.Time == o.Time && t.Action == o.Action &&
		t.Ticker == o.Ticker && t.Quantity == o.Quantity &&
		t.Price.Equal(o.Price) && t.Value.Equal(o.Value) && t.Fee.Equal(o.Fee) &&
		t.ContractNote == o.ContractNote
}

// compareTransactions orders transactions by date, then time of day.
func compareTransactions(a, b Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return a.Time.Compare(b.Time)
}

// SortTransactions sorts the transactions by date then time. The sort is
// stable, trades at the same instant keep their original order.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, compareTransactions)
}

// IsSorted reports whether txs are in the order SortTransactions produces.
func IsSorted(txs []Transaction) bool {
	return slices.IsSortedFunc(txs, compareTransactions)
}
