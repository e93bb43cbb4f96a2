// Package api provides the HTTP+JSON API the cathist daemon serves over its
// local IPC socket. CLI sub-commands and any local integration talk to the
// daemon exclusively through this surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cathist/cathist/internal/config"
	"github.com/cathist/cathist/internal/events"
	"github.com/cathist/cathist/internal/history"
)

// ClipboardWriter is the slice of the clipboard device the API needs.
type ClipboardWriter interface {
	WriteText(text string) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *history.Store
	broker    *events.Broker
	settings  *config.Manager
	clipboard ClipboardWriter
	router    *chi.Mux
	version   string
	started   time.Time
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(store *history.Store, broker *events.Broker, settings *config.Manager, clipboard ClipboardWriter, version string) *Server {
	s := &Server{
		store:     store,
		broker:    broker,
		settings:  settings,
		clipboard: clipboard,
		router:    chi.NewRouter(),
		version:   version,
		started:   time.Now(),
	}

	s.router.Use(middleware.Recoverer)
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/items", s.handleListItems)
		r.Get("/search", s.handleSearch)
		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Delete("/", s.handleDeleteItem)
			r.Post("/favorite", s.handleToggleFavorite)
			r.Post("/tags/{tag}", s.handleAttachTag)
			r.Delete("/tags/{tag}", s.handleDetachTag)
		})
		r.Post("/clear", s.handleClear)
		r.Post("/reset", s.handleReset)
		r.Post("/clipboard", s.handleWriteClipboard)
		r.Get("/tags", s.handleListTags)
		r.Get("/tags/{tag}/items", s.handleItemsByTag)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
		r.Get("/events", s.handleEvents)
		r.Get("/status", s.handleStatus)
	})
}

// Serve accepts connections on ln until ctx is canceled, then shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return srv.Close()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
