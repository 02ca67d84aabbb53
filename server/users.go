package server

import (
	"encoding/json"
	"net/http"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

type createUserRequest struct {
	Username string `json:"username"`
}

// handleCreateUser returns the user of that name, creating it if needed.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	name, err := finagle.ValidateUsername(req.Username)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := s.store.CreateUser(r.Context(), name)
	if err != nil {
		writeStoreError(w, r, err, "User")
		return
	}
	logger.FromContext(r.Context()).Info("User ready", "userID", u.ID, "username", u.Username)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteUser(r.Context(), u.ID); err != nil {
		writeStoreError(w, r, err, "User")
		return
	}
	s.reports.invalidate(u.ID)
	logger.FromContext(r.Context()).Info("User deleted", "userID", u.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport downloads every transaction of the user, as json or csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, r, http.StatusBadRequest, "format must be 'json' or 'csv'")
		return
	}
	txs, err := s.store.Transactions(r.Context(), u.ID, store.Filter{})
	if err != nil {
		writeStoreError(w, r, err, "User")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+u.Username+"_export."+format)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = finagle.EncodeCSV(w, txs)
	default:
		w.Header().Set("Content-Type", "application/json")
		err = finagle.EncodeJSON(w, u, txs)
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to write export", "userID", u.ID, "error", err)
	}
}
