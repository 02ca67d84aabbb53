package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// Filter selects transactions. Zero fields do not filter.
type Filter struct {
	Ticker        string
	Action        finagle.Action
	FinancialYear *date.FinancialYear
}

const txColumns = `id, user_id, date, time, action, ticker, quantity, price, value, fee, contract_note`

// AddTransaction validates and stores a transaction of the user. It returns
// the stored transaction, with its ID set.
func (s *Store) AddTransaction(ctx context.Context, userID int64, tx finagle.Transaction) (finagle.Transaction, error) {
	added, err := s.AddTransactions(ctx, userID, []finagle.Transaction{tx})
	if err != nil {
		return finagle.Transaction{}, err
	}
	return added[0], nil
}

// AddTransactions validates and stores transactions of the user, all or none.
func (s *Store) AddTransactions(ctx context.Context, userID int64, txs []finagle.Transaction) ([]finagle.Transaction, error) {
	added := make([]finagle.Transaction, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction %d: %w", i+1, err)
		}
		tx.UserID = userID
		added[i] = tx
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	var exists int
	if err := dbtx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read user %d: %w", userID, err)
	}

	stmt, err := dbtx.PrepareContext(ctx, `INSERT INTO transactions
		(user_id, date, time, action, ticker, quantity, price, value, fee, contract_note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range added {
		tx := &added[i]
		var note sql.NullString
		if tx.ContractNote != "" {
			note = sql.NullString{String: tx.ContractNote, Valid: true}
		}
		res, err := stmt.ExecContext(ctx, userID, tx.Date.String(), tx.Time.String(), string(tx.Action), tx.Ticker,
			tx.Quantity, tx.Price.String(), tx.Value.String(), tx.Fee.String(), note)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transaction %d: %w", i+1, err)
		}
		if tx.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return added, nil
}

// Transaction returns one transaction of the user.
func (s *Store) Transaction(ctx context.Context, userID, id int64) (finagle.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return finagle.Transaction{}, fmt.Errorf("failed to read transaction %d: %w", id, err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return finagle.Transaction{}, err
	}
	if len(txs) == 0 {
		return finagle.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return txs[0], nil
}

// DeleteTransaction deletes one transaction of the user.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return expectOne(res, fmt.Sprintf("transaction %d", id))
}

// Transactions returns the user's transactions selected by f, sorted by date
// and time. Transactions at the same instant are in insertion order.
func (s *Store) Transactions(ctx context.Context, userID int64, f Filter) ([]finagle.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, finagle.NormalizeTicker(f.Ticker))
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.FinancialYear != nil {
		r := f.FinancialYear.Range()
		where = append(where, "date >= ?", "date <= ?")
		args = append(args, r.From.String(), r.To.String())
	}
	query := `SELECT ` + txColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date, time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of user %d: %w", userID, err)
	}
	return scanTransactions(rows)
}

// scanTransactions reads and closes rows.
func scanTransactions(rows *sql.Rows) ([]finagle.Transaction, error) {
	defer rows.Close()
	txs := []finagle.Transaction{}
	for rows.Next() {
		var tx finagle.Transaction
		var day, clock, action, price, value, fee string
		var note sql.NullString
		if err := rows.Scan(&tx.ID, &tx.UserID, &day, &clock, &action, &tx.Ticker, &tx.Quantity, &price, &value, &fee, &note); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		var err error
		if tx.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
		}
		if tx.Time, err = date.ParseClock(clock); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
		}
		tx.Action = finagle.Action(action)
		for _, d := range []struct {
			src string
			dst *decimal.Decimal
		}{{price, &tx.Price}, {value, &tx.Value}, {fee, &tx.Fee}} {
			if *d.dst, err = decimal.NewFromString(d.src); err != nil {
				return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
			}
		}
		tx.ContractNote = note.String
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
