package importer

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx file whose first sheet holds rows, starting at A1.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var sharesightColumns = []any{"Code", "Market Code", "Name", "Date", "Type", "Qty", "Price", "Brokerage", "Currency", "Value"}

func TestSharesight_Parse(t *testing.T) {
	content := workbook(t,
		[]any{"All Trades Report"},
		[]any{},
		sharesightColumns,
		[]any{"bhp", "ASX", "BHP Group", "2024-01-10", "Buy", 100, 40.25, 9.95, "AUD", 4025},
		[]any{"BHP", "ASX", "BHP Group", 45458, "Sell", -40, 50, 9.95, "AUD", -2000},
		[]any{"Total", "", "", "", "", "", "", 19.9, "", 2025},
	)

	if !(Sharesight{}).CanHandle("trades.xlsx", content) {
		t.Fatalf("CanHandle() = false")
	}
	txs, errs := Sharesight{}.Parse("trades.xlsx", content)
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}
	if len(txs) != 2 {
		t.Fatalf("Parse() = %d transactions, want 2", len(txs))
	}
	first := txs[0]
	if first.Ticker != "BHP" || first.Action != "buy" || first.Date.String() != "2024-01-10" ||
		first.Quantity != 100 || first.Price.String() != "40.25" || first.Fee.String() != "9.95" ||
		first.Value.String() != "4025" || first.Time.String() != "00:00:00" {
		t.Errorf("Parse()[0] = %+v", first)
	}
	second := txs[1]
	// 45458 is the Excel serial number of 2024-06-15.
	if second.Date.String() != "2024-06-15" || second.Action != "sell" || second.Quantity != 40 || second.Value.String() != "2000" {
		t.Errorf("Parse()[1] = %+v", second)
	}
}

func TestSharesight_CanHandleByHeader(t *testing.T) {
	content := workbook(t,
		[]any{"Trades"},
		[]any{},
		sharesightColumns,
	)
	if !(Sharesight{}).CanHandle("report.XLSX", content) {
		t.Errorf("CanHandle() = false, want true from the header row")
	}
	if (Sharesight{}).CanHandle("report.csv", content) {
		t.Errorf("CanHandle(.csv) = true, want false")
	}
	if _, errs := (Sharesight{}).Parse("report.xlsx", content); len(errs) != 1 {
		t.Errorf("Parse() errors = %v, want a single no data rows error", errs)
	}
}

func TestSharesight_RowErrors(t *testing.T) {
	content := workbook(t,
		[]any{"All Trades Report"},
		[]any{},
		sharesightColumns,
		[]any{"BHP", "ASX", "BHP Group", "2024-01-10", "Split", 100, 40.25, 9.95, "AUD", 4025},
		[]any{"BHP", "ASX", "BHP Group", "someday", "Buy", 100, 40.25, 9.95, "AUD", 4025},
	)
	txs, errs := Sharesight{}.Parse("t.xlsx", content)
	if len(txs) != 0 || len(errs) != 2 {
		t.Fatalf("Parse() = %d transactions, %v, want 2 errors", len(txs), errs)
	}
	if row := errs[1].(*RowError).Row; row != 5 {
		t.Errorf("errs[1].Row = %d, want 5", row)
	}
}

func TestRegistry_Sharesight(t *testing.T) {
	content := workbook(t, []any{"All Trades Report"}, []any{}, sharesightColumns,
		[]any{"CBA", "ASX", "CBA", "2024-01-10", "Buy", 1, 100, 0, "AUD", 100})
	res, err := DefaultRegistry().Parse("all.xlsx", content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Format != "sharesight" || len(res.Transactions) != 1 {
		t.Errorf("Parse() = %+v, want one sharesight transaction", res)
	}
}
