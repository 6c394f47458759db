// Package server hosts the admin tool's own process surface: the preview
// websocket endpoint, the rendering surface's static assets, and a health
// check. The page-components backend REST API is a separate system this
// process only talks to as a client.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/toolsuite/pagebuilder/internal/config"
)

// Server serves the preview channel, the admin API, and static assets.
type Server struct {
	cfg     *config.Config
	mux     *http.ServeMux
	httpSrv *http.Server
	watcher *Watcher
}

// New wires a server around the preview bridge and admin handler.
func New(cfg *config.Config, bridge http.Handler, admin http.Handler) *Server {
	s := &Server{cfg: cfg, mux: http.NewServeMux()}

	s.mux.Handle("/preview/ws", bridge)
	s.mux.Handle("/admin/", admin)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	if cfg.Preview.AssetsDir != "" {
		s.mux.Handle("/preview/", http.StripPrefix("/preview/",
			http.FileServer(http.Dir(cfg.Preview.AssetsDir))))
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("[Server] health encode failed: %v", err)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// StartWatcher begins watching the assets directory, invoking onChange for
// every modified file. No-op when live reload is disabled or no assets dir
// is configured.
func (s *Server) StartWatcher(onChange func(path string)) error {
	if !s.cfg.Preview.LiveReload || s.cfg.Preview.AssetsDir == "" {
		return nil
	}
	watcher, err := NewWatcher(s.cfg.Preview.AssetsDir, onChange, s.cfg.Debug)
	if err != nil {
		return err
	}
	s.watcher = watcher
	watcher.Start()
	return nil
}

// ListenAndServe blocks serving the configured listen address.
func (s *Server) ListenAndServe() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Preview.Listen,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[Server] listening on %s", s.cfg.Preview.Listen)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the watcher and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			log.Printf("[Server] watcher stop failed: %v", err)
		}
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
