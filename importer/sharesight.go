package importer

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sharesightTitle = "All Trades Report"

var sharesightHeader = []string{"Code", "Market Code", "Name", "Date", "Type", "Qty"}

// Sharesight reads the "All Trades Report" XLSX workbook exported by Sharesight.
//
// The first sheet has a title row, a blank row, the header row, then one row
// per trade and a final "Total" row. Trades have no time of day.
type Sharesight struct{}

func (Sharesight) Name() string { return "sharesight" }

func (Sharesight) CanHandle(filename string, content []byte) bool {
	if !hasExt(filename, ".xlsx") {
		return false
	}
	rows, err := firstSheetRows(content)
	if err != nil || len(rows) == 0 {
		return false
	}
	if len(rows[0]) > 0 && strings.Contains(rows[0][0], sharesightTitle) {
		return true
	}
	if len(rows) > 2 && len(rows[2]) >= len(sharesightHeader) {
		header := make([]string, len(sharesightHeader))
		for i := range header {
			header[i] = strings.TrimSpace(rows[2][i])
		}
		return slices.Equal(header, sharesightHeader)
	}
	return false
}

func (Sharesight) Parse(filename string, content []byte) ([]finagle.Transaction, []error) {
	rows, err := firstSheetRows(content)
	if err != nil {
		return nil, []error{err}
	}
	if len(rows) < 4 {
		return nil, []error{errors.New("Sharesight file has no data rows")}
	}
	col := make(map[string]int)
	for i, h := range rows[2] {
		col[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, name := range []string{"Code", "Date", "Type", "Qty", "Price", "Value", "Brokerage"} {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, []error{fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	var txs []finagle.Transaction
	var errs []error
	for i, record := range rows[3:] {
		row := i + 4
		get := func(name string) string {
			if c := col[name]; c < len(record) {
				return strings.TrimSpace(record[c])
			}
			return ""
		}
		first := ""
		if len(record) > 0 {
			first = strings.TrimSpace(record[0])
		}
		if strings.EqualFold(first, "total") || isBlank(record) {
			continue
		}
		tx, err := parseSharesightRow(get)
		if err != nil {
			errs = append(errs, &RowError{Row: row, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, errs
}

func parseSharesightRow(get func(string) string) (finagle.Transaction, error) {
	var tx finagle.Transaction
	var err error
	if tx.Date, err = parseCellDate(get("Date")); err != nil {
		return tx, err
	}
	qty, err := decimal.NewFromString(get("Qty"))
	if err != nil {
		return tx, fmt.Errorf("invalid quantity %q", get("Qty"))
	}
	tx.Quantity = qty.Abs().IntPart()
	if tx.Price, err = decimal.NewFromString(get("Price")); err != nil {
		return tx, fmt.Errorf("invalid price %q", get("Price"))
	}
	value, err := decimal.NewFromString(get("Value"))
	if err != nil {
		return tx, fmt.Errorf("invalid value %q", get("Value"))
	}
	tx.Value = value.Abs()
	if tx.Fee, err = decimal.NewFromString(get("Brokerage")); err != nil {
		return tx, fmt.Errorf("invalid brokerage %q", get("Brokerage"))
	}
	tx.Action = finagle.Action(get("Type"))
	tx.Ticker = get("Code")

	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}

// firstSheetRows returns the raw cell values of the first sheet of a workbook.
// Dates are then Excel serial numbers unless the cell holds text.
func firstSheetRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// parseCellDate parses a date written as text or as an Excel serial number.
func parseCellDate(s string) (date.Date, error) {
	if d, err := date.Parse(s); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q", s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return date.New(t.Date()), nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
