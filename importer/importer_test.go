package importer

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRegistry_Find(t *testing.T) {
	r := DefaultRegistry()
	if got, want := r.Names(), []string{"native", "jsonl", "sharesight", "pearler"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	tests := []struct {
		filename string
		content  string
		want     string
	}{
		{"trades.csv", "date,time,action,ticker,quantity,price,value,fee\n", "native"},
		{"anything.txt", "\xef\xbb\xbfDate,Time,Action,Ticker,Quantity,Price,Value,Fee,Contract_Note\n", "native"},
		{"pearler.csv", "Symbol,Exchange,Trade Date,Trade Type,Quantity,Price,Brokerage Fee,Reference\n", "pearler"},
		{"archive.jsonl", "", "jsonl"},
	}
	for _, tt := range tests {
		p, err := r.Find(tt.filename, []byte(tt.content))
		if err != nil {
			t.Errorf("Find(%q) error = %v", tt.filename, err)
			continue
		}
		if p.Name() != tt.want {
			t.Errorf("Find(%q) = %s, want %s", tt.filename, p.Name(), tt.want)
		}
	}
}

func TestRegistry_Unrecognised(t *testing.T) {
	tests := []struct{ filename, content string }{
		{"notes.csv", "a,b,c\n1,2,3\n"},
		{"pearler.txt", "Symbol,Exchange,Trade Date,Trade Type,Quantity,Price,Brokerage Fee\n"},
		{"binary.csv", "\xff\xfe\x00"},
		{"book.xlsx", "not a zip file"},
	}
	for _, tt := range tests {
		_, err := DefaultRegistry().Parse(tt.filename, []byte(tt.content))
		if !errors.Is(err, ErrUnrecognised) {
			t.Errorf("Parse(%q) error = %v, want ErrUnrecognised", tt.filename, err)
		}
	}
}

func TestTemplate(t *testing.T) {
	tpl := string(Template())
	if !strings.HasPrefix(tpl, "date,time,action,ticker,quantity,price,value,fee,contract_note") {
		t.Errorf("Template() = %q, want the native header", tpl)
	}
	res, err := DefaultRegistry().Parse("stock_transactions.csv", Template())
	if err != nil {
		t.Fatalf("Parse(Template()) error = %v", err)
	}
	if res.Format != "native" || len(res.Transactions) != 0 || res.Err() != nil {
		t.Errorf("Parse(Template()) = %+v, want an empty native result", res)
	}
}

func TestRowError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&RowError{Row: 3, Err: inner})
	if err.Error() != "Row 3: boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "Row 3: boom")
	}
	if !errors.Is(err, inner) {
		t.Errorf("errors.Is(RowError, inner) = false")
	}
}
