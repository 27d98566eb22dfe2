package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/watch"
)

const streamKeepalive = 15 * time.Second

// StandingsStreamHandler streams the league's standings as server-sent events. Every change to
// the league's results produces a "standings" event carrying the full ranked table.
// A user holds one stream per league: opening a second one ends the first.
// Deleting the league sends a final "error" event and ends the stream.
func (s *Server) StandingsStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		sub, err := s.Service.WatchStandings(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		serveStream(s, w, r, "standings", sub)
	}
}

// InvitationsStreamHandler streams the caller's pending invitations as "invitations" events.
func (s *Server) InvitationsStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		serveStream(s, w, r, "invitations", s.Service.WatchInvitations(r.Context(), actor(r)))
	}
}

// serveStream writes every snapshot of sub as an SSE event until the client leaves,
// the subscription is replaced, or the watched resource is gone.
func serveStream[T any](s *Server, w http.ResponseWriter, r *http.Request, event string, sub *watch.Subscription[T]) {
	defer sub.Close()
	flusher := w.(http.Flusher)

	s.Metrics.SetActiveSubscriptions(int(s.streams.Add(1)))
	defer func() { s.Metrics.SetActiveSubscriptions(int(s.streams.Add(-1))) }()
	log.Info("Stream opened", "event", event, "url", r.URL.Path, "userID", actor(r))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ":\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			log.Info("Stream closed by client", "event", event, "userID", actor(r))
			return
		case <-keepalive.C:
			fmt.Fprint(w, ":\n\n")
		case snap, ok := <-sub.C:
			if !ok {
				log.Info("Stream replaced", "event", event, "userID", actor(r))
				return
			}
			if snap.Err != nil {
				writeEvent(w, "error", errorResponse{Error: snap.Err.Error(), Kind: string(apperr.KindOf(snap.Err))})
				if errors.Is(snap.Err, apperr.NotFound) {
					flusher.Flush()
					log.Info("Stream source gone", "event", event, "url", r.URL.Path)
					return
				}
			} else {
				writeEvent(w, event, snap.Value)
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to encode stream event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
