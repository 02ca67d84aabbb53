package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Failed to encode response", "error", err)
	}
}

// writeError sends a JSON error body {"detail": message}.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if status >= 500 {
		logger.FromContext(r.Context()).Error("Request failed", "status", status, "detail", message)
	} else {
		logger.FromContext(r.Context()).Debug("Sending JSON error to client", "status", status, "detail", message)
	}
	writeJSON(w, status, map[string]string{"detail": message})
}

// writeStoreError maps store errors to responses. what names the missing
// resource for 404s.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, what+" not found")
		return
	}
	logger.FromContext(r.Context()).Error("Store error", "error", err)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

// pathID parses the integer path value name.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// requireUser loads the user of the path, writing the error response if it
// cannot.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (finagle.User, bool) {
	id, ok := pathID(r, "user")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid user id "+strconv.Quote(r.PathValue("user")))
		return finagle.User{}, false
	}
	u, err := s.store.User(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "User")
		return finagle.User{}, false
	}
	return u, true
}
