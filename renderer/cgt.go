package renderer

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/finagle"
	md "github.com/nao1215/markdown"
)

// CGTMarkdown renders a capital gains report. Lot matches are listed only if
// detailed is true.
func CGTMarkdown(r *finagle.Report, detailed bool) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Capital Gains Tax Report")
	if len(r.FinancialYears) == 0 {
		doc.PlainText("No capital gains events.")
	}

	for _, s := range r.FinancialYears {
		period := s.FinancialYear.Range()
		doc.H2(fmt.Sprintf("Financial Year %s (%s to %s)", s.FinancialYear, period.From, period.To))

		doc.Table(md.TableSet{
			Header: []string{"", "Amount"},
			Rows: [][]string{
				{"Total gains", s.TotalGains.Format()},
				{"Total losses", s.TotalLosses.Format()},
				{"Discount gains", s.DiscountGains.Format()},
				{"Non-discount gains", s.NonDiscountGains.Format()},
				{"Discount amount", s.DiscountAmount.Format()},
				{"Net capital gain", s.NetCapitalGain.Format()},
			},
		})

		if !detailed || len(s.LotMatches) == 0 {
			continue
		}
		doc.H3("Lot Matches")
		table := md.TableSet{
			Header: []string{"Ticker", "Bought", "Sold", "Quantity", "Cost Base", "Proceeds", "Gain", "Held > 12 months", "Discount", "Net Gain"},
		}
		for _, m := range s.LotMatches {
			held := "no"
			if m.LongTerm {
				held = "yes"
			}
			table.Rows = append(table.Rows, []string{
				m.Ticker,
				m.BuyDate.String(),
				m.SellDate.String(),
				strconv.FormatInt(m.Quantity, 10),
				m.CostBase.Format(),
				m.Proceeds.Format(),
				m.RawGain.Format(),
				held,
				m.Discount.Format(),
				m.NetGain.Format(),
			})
		}
		doc.Table(table)
	}

	if len(r.Unmatched) > 0 {
		doc.H2("Warnings")
		var items []string
		for _, ticker := range slices.Sorted(maps.Keys(r.Unmatched)) {
			items = append(items, fmt.Sprintf("%s: %d shares sold without a matching buy were ignored", ticker, r.Unmatched[ticker]))
		}
		doc.BulletList(items...)
	}

	return doc.String()
}
