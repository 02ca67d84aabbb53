package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

var pearlerHeader = []string{"Symbol", "Exchange", "Trade Date", "Trade Type", "Quantity", "Price", "Brokerage Fee"}

// Pearler reads the trades CSV exported by the Pearler broker.
//
// Quantities are signed in Pearler exports, only their absolute value is kept.
// The value is recomputed as price times quantity.
type Pearler struct{}

func (Pearler) Name() string { return "pearler" }

func (Pearler) CanHandle(filename string, content []byte) bool {
	if !hasExt(filename, ".csv") {
		return false
	}
	txt, ok := text(content)
	if !ok {
		return false
	}
	header, err := csv.NewReader(strings.NewReader(txt)).Read()
	if err != nil || len(header) < len(pearlerHeader) {
		return false
	}
	first := make([]string, len(pearlerHeader))
	for i := range first {
		first[i] = strings.TrimSpace(header[i])
	}
	return slices.Equal(first, pearlerHeader)
}

func (Pearler) Parse(filename string, content []byte) ([]finagle.Transaction, []error) {
	txt, ok := text(content)
	if !ok {
		return nil, []error{errors.New("file is not UTF-8 text")}
	}
	r := csv.NewReader(strings.NewReader(txt))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, []error{errors.New("empty or invalid CSV file")}
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	var txs []finagle.Transaction
	var errs []error
	for row := 2; ; row++ {
		record, err := r.Read()
		if isEOF(err) {
			break
		}
		if err != nil {
			// a malformed row does not hide the errors of the rows after it.
			errs = append(errs, &RowError{Row: row, Err: err})
			continue
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		tx, err := parsePearlerRow(get)
		if err != nil {
			errs = append(errs, &RowError{Row: row, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, errs
}

func parsePearlerRow(get func(string) string) (finagle.Transaction, error) {
	var tx finagle.Transaction

	// Trade Date is either a date or a date and time joined by a "T".
	raw := get("Trade Date")
	day, clock, found := strings.Cut(raw, "T")
	var err error
	if tx.Date, err = date.Parse(day); err != nil {
		return tx, err
	}
	if found {
		if tx.Time, err = date.ParseClock(clock); err != nil {
			// the time may carry a UTC offset.
			t, rfcErr := time.Parse(time.RFC3339, raw)
			if rfcErr != nil {
				return tx, err
			}
			tx.Time = date.NewClock(t.Clock())
		}
	}

	qty, err := decimal.NewFromString(get("Quantity"))
	if err != nil {
		return tx, fmt.Errorf("invalid quantity %q", get("Quantity"))
	}
	tx.Quantity = qty.Abs().IntPart()

	if tx.Price, err = decimal.NewFromString(get("Price")); err != nil {
		return tx, fmt.Errorf("invalid price %q", get("Price"))
	}
	if tx.Fee, err = decimal.NewFromString(get("Brokerage Fee")); err != nil {
		return tx, fmt.Errorf("invalid brokerage fee %q", get("Brokerage Fee"))
	}
	tx.Value = tx.Price.Mul(decimal.NewFromInt(tx.Quantity))
	tx.Action = finagle.Action(get("Trade Type"))
	tx.Ticker = get("Symbol")
	tx.ContractNote = get("Reference")

	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}
