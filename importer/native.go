package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// nativeRequired lists the columns a native file must have. contract_note is optional.
var nativeRequired = []string{"date", "time", "action", "ticker", "quantity", "price", "value", "fee"}

// Native reads the CSV format finagle exports, see finagle.CSVHeader.
// Column names are case insensitive and may come in any order.
type Native struct{}

func (Native) Name() string { return "native" }

func (Native) CanHandle(filename string, content []byte) bool {
	txt, ok := text(content)
	if !ok {
		return false
	}
	header, err := csv.NewReader(strings.NewReader(txt)).Read()
	if err != nil {
		return false
	}
	return len(missingColumns(header)) == 0
}

func (Native) Parse(filename string, content []byte) ([]finagle.Transaction, []error) {
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
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, []error{fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	col := make(map[string]int)
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
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
		tx, rowErrs := parseNativeRow(get)
		for _, err := range rowErrs {
			errs = append(errs, &RowError{Row: row, Err: err})
		}
		if len(rowErrs) == 0 {
			txs = append(txs, tx)
		}
	}
	return txs, errs
}

// parseNativeRow reads every field of a row and reports every invalid one.
func parseNativeRow(get func(string) string) (finagle.Transaction, []error) {
	var tx finagle.Transaction
	var errs []error
	var err error

	if tx.Date, err = date.Parse(get("date")); err != nil {
		errs = append(errs, fmt.Errorf("invalid date %q", get("date")))
	}
	if tx.Time, err = date.ParseClock(get("time")); err != nil {
		errs = append(errs, fmt.Errorf("invalid time %q", get("time")))
	}
	if tx.Action, err = finagle.ParseAction(get("action")); err != nil {
		errs = append(errs, err)
	}
	if tx.Ticker = finagle.NormalizeTicker(get("ticker")); tx.Ticker == "" {
		errs = append(errs, errors.New("ticker is required"))
	}
	if tx.Quantity, err = strconv.ParseInt(get("quantity"), 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("invalid quantity %q", get("quantity")))
	} else if tx.Quantity <= 0 {
		errs = append(errs, errors.New("quantity must be positive"))
	}
	for _, field := range []struct {
		name string
		dst  *decimal.Decimal
	}{{"price", &tx.Price}, {"value", &tx.Value}, {"fee", &tx.Fee}} {
		if *field.dst, err = decimal.NewFromString(get(field.name)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q", field.name, get(field.name)))
		}
	}
	tx.ContractNote = get("contract_note")

	if len(errs) > 0 {
		return tx, errs
	}
	if err := tx.Validate(); err != nil {
		return tx, []error{err}
	}
	return tx, nil
}

// missingColumns returns the required columns absent from header, sorted.
func missingColumns(header []string) []string {
	present := make(map[string]bool)
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, name := range nativeRequired {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
