// Package server exposes the finagle store and reports over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/etnz/finagle/config"
	"github.com/etnz/finagle/importer"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

// APIPrefix prefixes every API route.
const APIPrefix = "/api/v1"

// Server serves the API. Create it with New.
type Server struct {
	store    *store.Store
	registry *importer.Registry
	cfg      *config.Config
	reports  *reportCache
	limiter  *rate.Limiter // nil when rate limiting is disabled
}

// New returns a server backed by st and configured by cfg.
func New(st *store.Store, cfg *config.Config) *Server {
	s := &Server{
		store:    st,
		registry: importer.DefaultRegistry(),
		cfg:      cfg,
		reports:  newReportCache(cache.New(cfg.ReportCacheTTL, 2*cfg.ReportCacheTTL)),
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return s
}

// Handler returns the http.Handler serving every route, middleware included.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST "+APIPrefix+"/users", s.handleCreateUser)
	api.HandleFunc("GET "+APIPrefix+"/users/{user}", s.handleGetUser)
	api.HandleFunc("DELETE "+APIPrefix+"/users/{user}", s.handleDeleteUser)
	api.HandleFunc("GET "+APIPrefix+"/users/{user}/export", s.handleExport)

	api.HandleFunc("GET "+APIPrefix+"/users/{user}/transactions", s.handleListTransactions)
	api.HandleFunc("POST "+APIPrefix+"/users/{user}/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET "+APIPrefix+"/users/{user}/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("DELETE "+APIPrefix+"/users/{user}/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("GET "+APIPrefix+"/users/{user}/reports/cgt", s.handleCGTOverview)
	api.HandleFunc("GET "+APIPrefix+"/users/{user}/reports/cgt/{fy}", s.handleCGTDetail)

	api.HandleFunc("GET "+APIPrefix+"/import/template", s.handleTemplate)
	api.HandleFunc("POST "+APIPrefix+"/users/{user}/import", s.handleImport)

	root := http.NewServeMux()
	root.Handle(APIPrefix+"/", s.requireAPIKey(api))
	root.HandleFunc("GET /healthz", s.handleHealth)

	return s.requestID(s.accessLog(securityHeaders(s.cors(s.rateLimit(root)))))
}

// ListenAndServe serves the API on addr until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.L.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.L.Info("Server stopped gracefully")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
