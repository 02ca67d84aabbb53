package finagle

import (
	"slices"

	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// FinancialYearSummary is the capital gains position of one financial year.
type FinancialYearSummary struct {
	FinancialYear    date.FinancialYear `json:"financial_year"`
	TotalGains       Money              `json:"total_gains"`        // sum of positive raw gains
	TotalLosses      Money              `json:"total_losses"`       // sum of negative raw gains, never positive
	DiscountGains    Money              `json:"discount_gains"`     // positive raw gains held long term
	NonDiscountGains Money              `json:"non_discount_gains"` // positive raw gains held short term
	DiscountAmount   Money              `json:"discount_amount"`
	NetCapitalGain   Money              `json:"net_capital_gain"` // never negative
	LotMatches       []LotMatch         `json:"lot_matches"`
}

// Report contains the capital gains summaries of a user, one per financial year.
type Report struct {
	FinancialYears []FinancialYearSummary `json:"financial_years"`
	// Unmatched is the quantity sold per ticker with no recorded buy to match.
	Unmatched map[string]int64 `json:"-"`
}

// Compute sorts a copy of the transactions and computes their capital gains
// report. If filter is not nil only that financial year is reported.
func Compute(txs []Transaction, filter *date.FinancialYear) *Report {
	sorted := slices.Clone(txs)
	SortTransactions(sorted)

	m := NewMatcher()
	for _, tx := range sorted {
		m.Process(tx)
	}
	return &Report{
		FinancialYears: BuildSummaries(m.Matches(), filter),
		Unmatched:      m.Unmatched(),
	}
}

// Year returns the summary of the financial year fy, if any.
func (r *Report) Year(fy date.FinancialYear) (FinancialYearSummary, bool) {
	for _, s := range r.FinancialYears {
		if s.FinancialYear == fy {
			return s, true
		}
	}
	return FinancialYearSummary{}, false
}

// Overview returns a copy of the report stripped of its lot matches.
func (r *Report) Overview() *Report {
	out := &Report{
		FinancialYears: make([]FinancialYearSummary, len(r.FinancialYears)),
		Unmatched:      r.Unmatched,
	}
	for i, s := range r.FinancialYears {
		s.LotMatches = []LotMatch{}
		out.FinancialYears[i] = s
	}
	return out
}

// BuildSummaries aggregates lot matches into one summary per financial year,
// in chronological order. If filter is not nil, only that financial year is
// returned, and the result is empty when it has no lot matches.
func BuildSummaries(matches LotMatches, filter *date.FinancialYear) []FinancialYearSummary {
	summaries := []FinancialYearSummary{}
	for _, fy := range matches.Years() {
		if filter != nil && fy != *filter {
			continue
		}
		summaries = append(summaries, summarize(fy, matches[fy]))
	}
	return summaries
}

// summarize computes the summary of a single financial year.
//
// Capital losses are applied to non discount gains first, and only the
// remainder reduces the discount eligible gains.
func summarize(fy date.FinancialYear, matches []LotMatch) FinancialYearSummary {
	var gains, losses, discountRaw, nonDiscountRaw decimal.Decimal
	for _, m := range matches {
		raw := m.RawGain.Decimal()
		switch {
		case raw.IsPositive():
			gains = gains.Add(raw)
			if m.LongTerm {
				discountRaw = discountRaw.Add(raw)
			} else {
				nonDiscountRaw = nonDiscountRaw.Add(raw)
			}
		case raw.IsNegative():
			losses = losses.Add(raw)
		}
	}

	remainingLosses := losses.Abs()

	applied := decimal.Min(remainingLosses, nonDiscountRaw)
	nonDiscountNet := nonDiscountRaw.Sub(applied)
	remainingLosses = remainingLosses.Sub(applied)

	discountEligible := discountRaw.Sub(decimal.Min(remainingLosses, discountRaw))
	discountAmount := discountEligible.Mul(half)

	net := decimal.Max(decimal.Zero, nonDiscountNet.Add(discountEligible).Sub(discountAmount))

	return FinancialYearSummary{
		FinancialYear:    fy,
		TotalGains:       NewMoney(gains),
		TotalLosses:      NewMoney(losses),
		DiscountGains:    NewMoney(discountRaw),
		NonDiscountGains: NewMoney(nonDiscountRaw),
		DiscountAmount:   NewMoney(discountAmount),
		NetCapitalGain:   NewMoney(net),
		LotMatches:       matches,
	}
}
