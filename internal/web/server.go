// Package web serves the form filler over HTTP: single documents as PDF
// attachments and batches as ZIP archives.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

const (
	// MaxBodySize bounds a request body
	MaxBodySize = 1 << 20

	// ShutdownTimeout is how long in-flight requests get on shutdown
	ShutdownTimeout = 10 * time.Second
)

// Server is the HTTP front of a pdf.Service
type Server struct {
	config  *config.Config
	service *pdf.Service
	now     func() time.Time
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, service *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	return &Server{config: cfg, service: service, now: time.Now}, nil
}

// Handler returns the routes wrapped in CORS and panic recovery
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /documents", s.handleDocuments)
	mux.HandleFunc("POST /fill/{document}", s.handleFill)
	mux.HandleFunc("POST /fill-employer-form", s.handleFillAlias("employer"))
	mux.HandleFunc("POST /fill-worker-form", s.handleFillAlias("worker"))
	mux.HandleFunc("POST /fill-multiple-forms", s.handleFillMultiple)

	return recoverWrapper(cors(mux))
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("[INFO] %q listening on %s ...", s.config.ServerName, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
			return
		}
		serverErrChan <- nil
	}()

	select {
	case err := <-serverErrChan:
		return err
	case <-ctx.Done():
	}

	log.Printf("[INFO] shutting down %q ...", s.config.ServerName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] server shutdown failed: %v", err)
	}

	if err := <-serverErrChan; err != nil {
		return err
	}
	log.Printf("[INFO] %q shutdown complete", s.config.ServerName)
	return nil
}

func cors(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Omitted-Documents")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		inner.ServeHTTP(w, r)
	})
}

func recoverWrapper(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ERROR] panic recovered: %v\n%s", rec, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error", Type: "internal_error"})
			}
		}()
		inner.ServeHTTP(w, r)
	})
}
