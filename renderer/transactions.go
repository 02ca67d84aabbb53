package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/finagle"
	md "github.com/nao1215/markdown"
)

// TransactionsMarkdown renders a list of transactions as a table.
func TransactionsMarkdown(txs []finagle.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Transactions")
	if len(txs) == 0 {
		doc.PlainText("No transactions.")
		return doc.String()
	}

	table := md.TableSet{
		Header: []string{"ID", "Date", "Time", "Action", "Ticker", "Quantity", "Price", "Value", "Fee", "Contract Note"},
	}
	for _, tx := range txs {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.String(),
			tx.Time.String(),
			tx.Action.String(),
			tx.Ticker,
			strconv.FormatInt(tx.Quantity, 10),
			tx.Price.String(),
			finagle.NewMoney(tx.Value).Format(),
			finagle.NewMoney(tx.Fee).Format(),
			tx.ContractNote,
		})
	}
	doc.Table(table)
	return doc.String()
}
