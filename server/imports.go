package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/etnz/finagle/importer"
	"github.com/etnz/finagle/logger"
)

// importResponse reports the outcome of an import. Imports are all or
// nothing: when Errors is not empty nothing was imported.
type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=stock_transactions.csv")
	w.WriteHeader(http.StatusOK)
	w.Write(importer.Template())
}

// handleImport imports the multipart "file" of the request into the user's
// transactions. The format is detected from the file name and content.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context())

	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, r, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}

	res, err := s.registry.Parse(header.Filename, content)
	if errors.Is(err, importer.ErrUnrecognised) {
		log.Info("Import rejected", "userID", u.ID, "filename", header.Filename, "error", err)
		writeJSON(w, http.StatusOK, importResponse{Errors: []string{"Unrecognised file format"}})
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		log.Info("Import rejected", "userID", u.ID, "format", res.Format, "errors", len(msgs))
		writeJSON(w, http.StatusOK, importResponse{Errors: msgs})
		return
	}

	added, err := s.store.AddTransactions(r.Context(), u.ID, res.Transactions)
	if err != nil {
		writeStoreError(w, r, err, "User")
		return
	}
	s.reports.invalidate(u.ID)
	log.Info("Import done", "userID", u.ID, "format", res.Format, "imported", len(added))
	writeJSON(w, http.StatusOK, importResponse{Imported: len(added), Errors: []string{}})
}
