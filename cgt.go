package finagle

import (
	"maps"
	"slices"

	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// LongTermDays is the holding period a lot must exceed to be discount eligible.
const LongTermDays = 365

var half = decimal.New(5, -1)

// LongTerm reports whether shares bought and sold on the given dates were held
// for more than LongTermDays days. Exactly 365 days is not long term, whatever
// the leap years in between.
func LongTerm(bought, sold date.Date) bool {
	return sold.DaysSince(bought) > LongTermDays
}

// LotMatch is the part of a sell that consumed (part of) one buy lot.
type LotMatch struct {
	Ticker   string    `json:"ticker"`
	BuyDate  date.Date `json:"buy_date"`
	SellDate date.Date `json:"sell_date"`
	Quantity int64     `json:"quantity"`
	CostBase Money     `json:"cost_base"`
	Proceeds Money     `json:"proceeds"`
	RawGain  Money     `json:"raw_gain"`
	LongTerm bool      `json:"held_over_12_months"`
	Discount Money     `json:"discount"`
	NetGain  Money     `json:"net_gain"`
}

// LotMatches groups lot matches by the financial year of their sell date.
type LotMatches map[date.FinancialYear][]LotMatch

// Years returns the financial years present, in chronological order.
func (m LotMatches) Years() []date.FinancialYear {
	return slices.SortedFunc(maps.Keys(m), func(a, b date.FinancialYear) int {
		return a.Start() - b.Start()
	})
}

// Matcher matches sells against buys in first-in first-out order.
//
// A Matcher holds the open lots of every ticker it has seen. It is not safe
// for concurrent use, but distinct Matchers share nothing.
type Matcher struct {
	open      map[string]*lots
	matches   LotMatches
	unmatched map[string]int64
}

// NewMatcher returns a Matcher with no open lots.
func NewMatcher() *Matcher {
	return &Matcher{
		open:      make(map[string]*lots),
		matches:   make(LotMatches),
		unmatched: make(map[string]int64),
	}
}

// ComputeLotMatches runs the transactions, sorted by date and time, through a
// new Matcher and returns its lot matches.
func ComputeLotMatches(txs []Transaction) LotMatches {
	m := NewMatcher()
	for _, tx := range txs {
		m.Process(tx)
	}
	return m.Matches()
}

// Process applies one transaction. Transactions must be processed in
// chronological order.
func (m *Matcher) Process(tx Transaction) {
	ticker := NormalizeTicker(tx.Ticker)
	queue, ok := m.open[ticker]
	if !ok {
		queue = new(lots)
		m.open[ticker] = queue
	}

	switch tx.Action {
	case Buy:
		queue.buy(tx.Date, tx.Quantity, tx.Price, tx.Fee)
	case Sell:
		m.sell(ticker, queue, tx)
	}
}

func (m *Matcher) sell(ticker string, queue *lots, tx Transaction) {
	// The sell fee is spread evenly over the whole quantity sold,
	// whatever the number of lots it consumes.
	feePerUnit := tx.Fee.Div(decimal.NewFromInt(tx.Quantity))
	netPrice := tx.Price.Sub(feePerUnit)
	fy := date.FinancialYearOf(tx.Date)

	remaining := tx.Quantity
	for remaining > 0 && !queue.empty() {
		bought := *queue.oldest()
		matched := queue.consume(remaining)
		remaining -= matched

		q := decimal.NewFromInt(matched)
		costBase := q.Mul(bought.CostPerUnit.Add(bought.FeePerUnit))
		proceeds := q.Mul(netPrice)
		rawGain := proceeds.Sub(costBase)
		long := LongTerm(bought.Date, tx.Date)

		// Losses and short term gains are never discounted.
		discount := decimal.Zero
		if long && rawGain.IsPositive() {
			discount = rawGain.Mul(half)
		}

		m.matches[fy] = append(m.matches[fy], LotMatch{
			Ticker:   ticker,
			BuyDate:  bought.Date,
			SellDate: tx.Date,
			Quantity: matched,
			CostBase: NewMoney(costBase),
			Proceeds: NewMoney(proceeds),
			RawGain:  NewMoney(rawGain),
			LongTerm: long,
			Discount: NewMoney(discount),
			NetGain:  NewMoney(rawGain.Sub(discount)),
		})
	}
	// Selling more than was ever bought: the excess is dropped.
	if remaining > 0 {
		m.unmatched[ticker] += remaining
	}
}

// Matches returns the lot matches produced so far.
func (m *Matcher) Matches() LotMatches {
	out := make(LotMatches, len(m.matches))
	for fy, list := range m.matches {
		out[fy] = slices.Clone(list)
	}
	return out
}

// Unmatched returns, per ticker, the quantity sold that no recorded buy could cover.
// Such quantities produce no lot match.
func (m *Matcher) Unmatched() map[string]int64 { return maps.Clone(m.unmatched) }

// Position returns the number of shares of ticker still held in open lots.
func (m *Matcher) Position(ticker string) int64 {
	queue, ok := m.open[NormalizeTicker(ticker)]
	if !ok {
		return 0
	}
	return queue.position()
}
