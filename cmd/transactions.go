package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/renderer"
	"github.com/etnz/finagle/store"
)

// tradeFlags are the flags shared by the buy and sell commands.
type tradeFlags struct {
	date     string
	time     string
	ticker   string
	quantity int64
	price    string
	fee      string
	note     string
}

func (t *tradeFlags) register(f *flag.FlagSet) {
	f.StringVar(&t.date, "d", date.Today().String(), "Trade date (YYYY-MM-DD)")
	f.StringVar(&t.time, "t", "00:00:00", "Trade time (HH:MM:SS), orders trades of the same day")
	f.StringVar(&t.ticker, "s", "", "Ticker")
	f.Int64Var(&t.quantity, "q", 0, "Number of shares")
	f.StringVar(&t.price, "p", "", "Price per share")
	f.StringVar(&t.fee, "fee", "0", "Total brokerage fee of the trade")
	f.StringVar(&t.note, "n", "", "Contract note reference")
}

// transaction builds the transaction described by the flags.
func (t *tradeFlags) transaction(action finagle.Action) (finagle.Transaction, error) {
	day, err := date.Parse(t.date)
	if err != nil {
		return finagle.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}
	clock, err := date.ParseClock(t.time)
	if err != nil {
		return finagle.Transaction{}, fmt.Errorf("invalid time: %w", err)
	}
	price, err := decimal.NewFromString(t.price)
	if err != nil {
		return finagle.Transaction{}, fmt.Errorf("invalid price %q: %w", t.price, err)
	}
	fee, err := decimal.NewFromString(t.fee)
	if err != nil {
		return finagle.Transaction{}, fmt.Errorf("invalid fee %q: %w", t.fee, err)
	}

	var tx finagle.Transaction
	if action == finagle.Sell {
		tx = finagle.NewSell(day, t.ticker, t.quantity, price, fee)
	} else {
		tx = finagle.NewBuy(day, t.ticker, t.quantity, price, fee)
	}
	tx.Time = clock
	tx.ContractNote = t.note
	return tx, tx.Validate()
}

// addTrade stores the trade of the current user.
func addTrade(ctx context.Context, t *tradeFlags, action finagle.Action) subcommands.ExitStatus {
	tx, err := t.transaction(action)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	if action == finagle.Sell {
		warnOversell(ctx, st, u.ID, tx)
	}

	added, err := st.AddTransaction(ctx, u.ID, tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added transaction %d: %s %d %s at %s on %s\n",
		added.ID, added.Action, added.Quantity, added.Ticker, added.Price, added.Date)
	return subcommands.ExitSuccess
}

// warnOversell warns when a sell exceeds the position held at its date.
func warnOversell(ctx context.Context, st *store.Store, userID int64, sell finagle.Transaction) {
	txs, err := st.Transactions(ctx, userID, store.Filter{Ticker: sell.Ticker})
	if err != nil {
		return
	}
	m := finagle.NewMatcher()
	for _, tx := range txs {
		if tx.Date.After(sell.Date) || (tx.Date == sell.Date && sell.Time.Before(tx.Time)) {
			break
		}
		m.Process(tx)
	}
	if held := m.Position(sell.Ticker); held < sell.Quantity {
		logger.L.Warn("Selling more shares than held, the excess has no cost base",
			"ticker", sell.Ticker,
			"held", held,
			"sold", sell.Quantity)
		fmt.Fprintf(os.Stderr, "Warning: selling %d %s but only %d are held at %s\n", sell.Quantity, sell.Ticker, held, sell.Date)
	}
}

// --- Buy Command ---

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of shares" }
func (*buyCmd) Usage() string {
	return `finagle buy -s <ticker> -q <quantity> -p <price> [-d <date>] [-t <time>] [-fee <fee>] [-n <note>]

  Records a purchase of shares. Every buy opens a new lot.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return addTrade(ctx, &c.tradeFlags, finagle.Buy)
}

// --- Sell Command ---

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of shares" }
func (*sellCmd) Usage() string {
	return `finagle sell -s <ticker> -q <quantity> -p <price> [-d <date>] [-t <time>] [-fee <fee>] [-n <note>]

  Records a sale of shares. Sales consume the oldest lots first.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.price == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return addTrade(ctx, &c.tradeFlags, finagle.Sell)
}

// --- Transactions Command ---

type transactionsCmd struct {
	ticker string
	action string
	fy     string
	head   int
	tail   int
}

func (*transactionsCmd) Name() string     { return "tx" }
func (*transactionsCmd) Synopsis() string { return "list the transactions of the current user" }
func (*transactionsCmd) Usage() string {
	return `finagle tx [-s <ticker>] [-a buy|sell] [-fy <YYYY-YY>] [-head <n>] [-tail <n>]

  Lists transactions in chronological order, with options for filtering and limiting the output.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "s", "", "Only show this ticker")
	f.StringVar(&c.action, "a", "", "Only show buys or sells")
	f.StringVar(&c.fy, "fy", "", "Only show this financial year")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	filter := store.Filter{Ticker: c.ticker}
	if c.action != "" {
		action, err := finagle.ParseAction(c.action)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filter.Action = action
	}
	if c.fy != "" {
		fy, err := date.ParseFinancialYear(c.fy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		filter.FinancialYear = &fy
	}

	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	txs, err := st.Transactions(ctx, u.ID, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}
	printMarkdown(renderer.TransactionsMarkdown(txs))
	return subcommands.ExitSuccess
}

// --- Remove Command ---

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete transactions by id" }
func (*rmCmd) Usage() string {
	return `finagle rm <id>...

  Deletes transactions of the current user. Ids are listed by 'finagle tx'.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	ids := make([]int64, f.NArg())
	for i, arg := range f.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid transaction id %q\n", arg)
			return subcommands.ExitUsageError
		}
		ids[i] = id
	}

	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	status := subcommands.ExitSuccess
	for _, id := range ids {
		if err := st.DeleteTransaction(ctx, u.ID, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting transaction %d: %v\n", id, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(stdout, "Deleted transaction %d\n", id)
	}
	return status
}
