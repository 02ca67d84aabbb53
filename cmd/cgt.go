package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/renderer"
	"github.com/etnz/finagle/store"
)

type cgtCmd struct {
	fy     string
	detail bool
	json   bool
	query  string
}

func (*cgtCmd) Name() string     { return "cgt" }
func (*cgtCmd) Synopsis() string { return "capital gains tax report per financial year" }
func (*cgtCmd) Usage() string {
	return `finagle cgt [-fy <YYYY-YY>] [-detail] [-json] [-q <jsonpath>]

  Matches sells against the oldest buys (FIFO) and reports the capital gains
  of each financial year (1 July to 30 June). Shares held more than 12 months
  get the 50% discount, after losses are applied to non-discount gains first.

  -json prints the report as JSON, -q prints the result of a JSONPath query
  on it, e.g.:

  $ finagle -u alice cgt -q '$.financial_years[*].net_capital_gain'
`
}

func (c *cgtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fy, "fy", "", "Only report this financial year")
	f.BoolVar(&c.detail, "detail", false, "Include the lot matches")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
	f.StringVar(&c.query, "q", "", "Print the result of a JSONPath query on the JSON report")
}

func (c *cgtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filter *date.FinancialYear
	if c.fy != "" {
		fy, err := date.ParseFinancialYear(c.fy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filter = &fy
	}

	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	txs, err := st.Transactions(ctx, u.ID, store.Filter{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	report := finagle.Compute(txs, filter)
	for ticker, qty := range report.Unmatched {
		logger.L.Warn("Sell without matching buy ignored", "ticker", ticker, "quantity", qty)
	}
	if filter != nil && len(report.FinancialYears) == 0 {
		fmt.Fprintf(os.Stderr, "No data for financial year %s\n", filter)
		return subcommands.ExitFailure
	}
	if !c.detail {
		report = report.Overview()
	}

	switch {
	case c.query != "":
		out, err := queryReport(report, c.query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, string(out))
	case c.json:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, string(out))
	default:
		printMarkdown(renderer.CGTMarkdown(report, c.detail))
	}
	return subcommands.ExitSuccess
}

// queryReport evaluates a JSONPath query on the JSON form of the report and
// returns the result as indented JSON.
func queryReport(report *finagle.Report, query string) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	val, err := jsonpath.Get(query, obj)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", query, err)
	}
	return json.MarshalIndent(val, "", "  ")
}
