package server

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

// handleListTransactions lists the transactions of a user, optionally filtered
// by ticker, action and financial year (fy).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := store.Filter{Ticker: q.Get("ticker")}
	if a := q.Get("action"); a != "" {
		action, err := finagle.ParseAction(a)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		f.Action = action
	}
	if label := q.Get("fy"); label != "" {
		fy, err := date.ParseFinancialYear(label)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		f.FinancialYear = &fy
	}

	txs, err := s.store.Transactions(r.Context(), u.ID, f)
	if err != nil {
		writeStoreError(w, r, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var tx finagle.Transaction
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tx); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	tx.ID = 0
	if err := tx.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if tx.Value.IsZero() {
		tx.Value = tx.Price.Mul(decimal.NewFromInt(tx.Quantity))
	}

	added, err := s.store.AddTransaction(r.Context(), u.ID, tx)
	if err != nil {
		writeStoreError(w, r, err, "User")
		return
	}
	s.reports.invalidate(u.ID)
	logger.FromContext(r.Context()).Info("Transaction added",
		"userID", u.ID,
		"transactionID", added.ID,
		"action", added.Action,
		"ticker", added.Ticker)
	writeJSON(w, http.StatusCreated, added)
}

// transactionOf loads the transaction of the path, writing the error response
// if it cannot.
func (s *Server) transactionOf(w http.ResponseWriter, r *http.Request, userID int64) (finagle.Transaction, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusNotFound, "Transaction not found")
		return finagle.Transaction{}, false
	}
	tx, err := s.store.Transaction(r.Context(), userID, id)
	if err != nil {
		writeStoreError(w, r, err, "Transaction")
		return finagle.Transaction{}, false
	}
	return tx, true
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	tx, ok := s.transactionOf(w, r, u.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), u.ID, id); err != nil {
		writeStoreError(w, r, err, "Transaction")
		return
	}
	s.reports.invalidate(u.ID)
	logger.FromContext(r.Context()).Info("Transaction deleted", "userID", u.ID, "transactionID", id)
	w.WriteHeader(http.StatusNoContent)
}
