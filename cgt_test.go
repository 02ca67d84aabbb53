package finagle

import (
	"encoding/json"
	"testing"

	"github.com/etnz/finagle/date"
)

func TestLongTerm(t *testing.T) {
	testCases := []struct {
		name         string
		bought, sold string
		want         bool
	}{
		{name: "same day", bought: "2024-01-10", sold: "2024-01-10", want: false},
		{name: "365 days", bought: "2023-01-10", sold: "2024-01-10", want: false},
		{name: "366 days", bought: "2023-01-10", sold: "2024-01-11", want: true},
		{name: "365 days over a leap day", bought: "2023-06-01", sold: "2024-05-31", want: false},
		{name: "366 days over a leap day", bought: "2023-06-01", sold: "2024-06-01", want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := LongTerm(date.MustParse(tc.bought), date.MustParse(tc.sold))
			if got != tc.want {
				t.Errorf("LongTerm(%s, %s) = %v, want %v", tc.bought, tc.sold, got, tc.want)
			}
		})
	}
}

// wantMatch lists the expected fields of a LotMatch as strings.
type wantMatch struct {
	quantity int64
	long     bool

	costBase, proceeds, rawGain, discount, net string
}

func checkMatch(t *testing.T, i int, got LotMatch, want wantMatch) {
	t.Helper()
	if got.Quantity != want.quantity {
		t.Errorf("match[%d].Quantity = %d, want %d", i, got.Quantity, want.quantity)
	}
	fields := []struct {
		name      string
		got       Money
		wantValue string
	}{
		{"CostBase", got.CostBase, want.costBase},
		{"Proceeds", got.Proceeds, want.proceeds},
		{"RawGain", got.RawGain, want.rawGain},
		{"Discount", got.Discount, want.discount},
		{"NetGain", got.NetGain, want.net},
	}
	for _, f := range fields {
		if f.wantValue != "" && f.got.String() != f.wantValue {
			t.Errorf("match[%d].%s = %s, want %s", i, f.name, f.got, f.wantValue)
		}
	}
	if got.LongTerm != want.long {
		t.Errorf("match[%d].LongTerm = %v, want %v", i, got.LongTerm, want.long)
	}
}

func TestComputeLotMatches(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		year string
		want []wantMatch
	}{
		{
			name: "simple gain no discount",
			txs: []Transaction{
				buy("2024-01-10", "BHP", 100, "40.00", "10.00"),
				sell("2024-06-15", "BHP", 100, "50.00", "10.00"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 100, costBase: "4010.00", proceeds: "4990.00", rawGain: "980.00", discount: "0.00", net: "980.00"},
			},
		},
		{
			name: "discounted gain",
			txs: []Transaction{
				buy("2023-01-10", "BHP", 100, "40.00", "10.00"),
				sell("2024-02-15", "BHP", 100, "50.00", "10.00"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 100, costBase: "4010.00", proceeds: "4990.00", rawGain: "980.00", discount: "490.00", net: "490.00", long: true},
			},
		},
		{
			name: "fifo partial lot",
			txs: []Transaction{
				buy("2024-01-10", "BHP", 100, "40.00", "0.00"),
				buy("2024-02-10", "BHP", 100, "50.00", "0.00"),
				sell("2024-03-10", "BHP", 150, "55.00", "0.00"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 100, rawGain: "1500.00"},
				{quantity: 50, rawGain: "250.00"},
			},
		},
		{
			name: "long term loss is not discounted",
			txs: []Transaction{
				buy("2022-01-01", "CBA", 100, "50", "0"),
				sell("2024-01-01", "CBA", 100, "30", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 100, costBase: "5000.00", proceeds: "3000.00", rawGain: "-2000.00", discount: "0.00", net: "-2000.00", long: true},
			},
		},
		{
			name: "exactly 365 days is short term",
			txs: []Transaction{
				buy("2023-01-10", "BHP", 10, "10", "0"),
				sell("2024-01-10", "BHP", 10, "20", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 10, rawGain: "100.00", discount: "0.00", net: "100.00"},
			},
		},
		{
			name: "366 days is long term",
			txs: []Transaction{
				buy("2023-01-10", "BHP", 10, "10", "0"),
				sell("2024-01-11", "BHP", 10, "20", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 10, rawGain: "100.00", discount: "50.00", net: "50.00", long: true},
			},
		},
		{
			name: "sell fee spread over every lot",
			txs: []Transaction{
				buy("2024-01-10", "WES", 100, "10", "0"),
				buy("2024-01-11", "WES", 100, "10", "0"),
				sell("2024-03-10", "WES", 150, "20", "15"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 100, costBase: "1000.00", proceeds: "1990.00", rawGain: "990.00"},
				{quantity: 50, costBase: "500.00", proceeds: "995.00", rawGain: "495.00"},
			},
		},
		{
			name: "buy fee per unit is not rounded",
			txs: []Transaction{
				buy("2024-01-10", "NAB", 3, "10", "10"),
				sell("2024-02-10", "NAB", 1, "20", "0"),
				sell("2024-03-10", "NAB", 2, "20", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 1, costBase: "13.33", proceeds: "20.00", rawGain: "6.67"},
				{quantity: 2, costBase: "26.67", proceeds: "40.00", rawGain: "13.33"},
			},
		},
		{
			name: "half cents round to even",
			txs: []Transaction{
				buy("2024-01-10", "PEN", 1, "0.125", "0"),
				sell("2024-01-11", "PEN", 1, "0", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 1, costBase: "0.12", proceeds: "0.00", rawGain: "-0.12"},
			},
		},
		{
			name: "tickers are case insensitive",
			txs: []Transaction{
				buy("2024-01-10", "bhp", 10, "10", "0"),
				sell("2024-02-10", "BHP", 10, "12", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 10, rawGain: "20.00"},
			},
		},
		{
			name: "financial year of the sell date",
			txs: []Transaction{
				buy("2024-05-01", "BHP", 10, "10", "0"),
				sell("2024-07-02", "BHP", 10, "12", "0"),
			},
			year: "2024-25",
			want: []wantMatch{
				{quantity: 10, rawGain: "20.00"},
			},
		},
		{
			name: "excess sell is dropped",
			txs: []Transaction{
				buy("2024-01-10", "BHP", 50, "10", "0"),
				sell("2024-02-10", "BHP", 100, "12", "0"),
			},
			year: "2023-24",
			want: []wantMatch{
				{quantity: 50, rawGain: "100.00"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches := ComputeLotMatches(tc.txs)
			if len(matches) != 1 {
				t.Fatalf("ComputeLotMatches() returned %d financial years, want 1: %v", len(matches), matches.Years())
			}
			got := matches[fy(tc.year)]
			if len(got) != len(tc.want) {
				t.Fatalf("ComputeLotMatches()[%s] has %d matches, want %d", tc.year, len(got), len(tc.want))
			}
			for i, want := range tc.want {
				checkMatch(t, i, got[i], want)
			}
		})
	}
}

func TestComputeLotMatches_FIFOOrder(t *testing.T) {
	matches := ComputeLotMatches([]Transaction{
		buy("2024-01-10", "BHP", 100, "40", "0"),
		buy("2024-02-10", "BHP", 100, "50", "0"),
		sell("2024-03-10", "BHP", 150, "55", "0"),
		sell("2024-04-10", "BHP", 50, "60", "0"),
	})[fy("2023-24")]

	wantBuyDates := []string{"2024-01-10", "2024-02-10", "2024-02-10"}
	wantQuantities := []int64{100, 50, 50}
	if len(matches) != len(wantBuyDates) {
		t.Fatalf("got %d matches, want %d", len(matches), len(wantBuyDates))
	}
	for i, m := range matches {
		if m.BuyDate.String() != wantBuyDates[i] || m.Quantity != wantQuantities[i] {
			t.Errorf("match[%d] = %d from %s, want %d from %s", i, m.Quantity, m.BuyDate, wantQuantities[i], wantBuyDates[i])
		}
	}
}

func TestMatcher_UnmatchedAndPosition(t *testing.T) {
	m := NewMatcher()
	for _, tx := range []Transaction{
		buy("2024-01-10", "BHP", 50, "10", "0"),
		buy("2024-01-10", "CBA", 20, "10", "0"),
		sell("2024-02-10", "BHP", 80, "12", "0"),
		sell("2024-02-11", "XYZ", 5, "12", "0"),
		sell("2024-02-12", "CBA", 5, "12", "0"),
	} {
		m.Process(tx)
	}

	unmatched := m.Unmatched()
	if unmatched["BHP"] != 30 || unmatched["XYZ"] != 5 || len(unmatched) != 2 {
		t.Errorf("Unmatched() = %v, want map[BHP:30 XYZ:5]", unmatched)
	}
	if got := m.Position("cba"); got != 15 {
		t.Errorf("Position(cba) = %d, want 15", got)
	}
	if got := m.Position("BHP"); got != 0 {
		t.Errorf("Position(BHP) = %d, want 0", got)
	}

	// A later buy must not be matched against the dropped quantity.
	m.Process(buy("2024-03-01", "BHP", 10, "10", "0"))
	if got := m.Position("BHP"); got != 10 {
		t.Errorf("Position(BHP) after rebuy = %d, want 10", got)
	}
}

func TestComputeLotMatches_MultipleYears(t *testing.T) {
	matches := ComputeLotMatches([]Transaction{
		buy("2023-01-10", "BHP", 100, "40", "0"),
		sell("2023-06-30", "BHP", 40, "45", "0"),
		sell("2023-07-01", "BHP", 60, "50", "0"),
	})
	years := matches.Years()
	if len(years) != 2 || years[0] != fy("2022-23") || years[1] != fy("2023-24") {
		t.Fatalf("Years() = %v, want [2022-23 2023-24]", years)
	}
	if got := matches[fy("2022-23")][0].Quantity; got != 40 {
		t.Errorf("2022-23 quantity = %d, want 40", got)
	}
	if got := matches[fy("2023-24")][0].Quantity; got != 60 {
		t.Errorf("2023-24 quantity = %d, want 60", got)
	}
}

func TestComputeLotMatches_Deterministic(t *testing.T) {
	txs := []Transaction{
		buy("2022-01-10", "BHP", 100, "40.1234", "9.95"),
		buy("2022-03-10", "CBA", 33, "101.5", "9.95"),
		buy("2023-02-10", "BHP", 70, "41.5", "9.95"),
		sell("2023-03-10", "BHP", 150, "45.01", "19.95"),
		sell("2023-08-10", "CBA", 33, "99.99", "9.95"),
	}
	first, err := json.Marshal(BuildSummaries(ComputeLotMatches(txs), nil))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	second, err := json.Marshal(BuildSummaries(ComputeLotMatches(txs), nil))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("two runs differ:\n%s\n%s", first, second)
	}
}
