package finagle

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// This file contains the export formats of a user's transactions.
//
// CSV uses the same columns as the native import format, so an export can be
// imported back. JSON wraps the transactions with the user they belong to.
// JSONL holds one transaction per line, it is the format the CLI archives to.

// CSVHeader lists the columns of the native CSV format, in order.
var CSVHeader = []string{"date", "time", "action", "ticker", "quantity", "price", "value", "fee", "contract_note"}

// EncodeCSV writes the transactions as CSV, header included.
func EncodeCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			tx.Date.String(),
			tx.Time.String(),
			tx.Action.String(),
			tx.Ticker,
			strconv.FormatInt(tx.Quantity, 10),
			tx.Price.String(),
			tx.Value.String(),
			tx.Fee.String(),
			tx.ContractNote,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction %d: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export is the content of a JSON export.
type Export struct {
	User         User          `json:"user"`
	Transactions []Transaction `json:"transactions"`
}

// EncodeJSON writes the user and its transactions as an indented JSON document.
func EncodeJSON(w io.Writer, user User, txs []Transaction) error {
	if txs == nil {
		txs = []Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export{User: user, Transactions: txs}); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// EncodeJSONL writes one transaction per line.
func EncodeJSONL(w io.Writer, txs []Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		// store identifiers are meaningless outside of the store.
		tx.ID, tx.UserID = 0, 0
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	return nil
}

// DecodeJSONL reads transactions written by EncodeJSONL. Every transaction is
// validated, the first invalid line stops the decoding.
func DecodeJSONL(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: not a valid transaction: %w", i, err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		tx.ID, tx.UserID = 0, 0
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}
