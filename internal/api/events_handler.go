package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const heartbeatInterval = 30 * time.Second

// handleEvents streams item updates to the client as Server-Sent Events.
// The connection stays open until the client disconnects or the daemon
// shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	updates, cancel := s.broker.Subscribe()
	defer cancel()

	if err := sendEvent(w, rc, "connected", map[string]string{"version": s.version}); err != nil {
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := sendEvent(w, rc, "item", u); err != nil {
				slog.Debug("event stream client went away", "error", err)
				return
			}
		case <-heartbeat.C:
			if err := sendEvent(w, rc, "heartbeat", map[string]int64{"ts": time.Now().Unix()}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent writes one SSE frame and flushes it.
func sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	return rc.Flush()
}
