package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

// readPushMessage unwraps a Pub/Sub push delivery and decodes its payload into v.
func (s *Server) readPushMessage(r *http.Request, v any) error {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var envelope pushEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return apperr.Invalid("push message", "invalid JSON envelope")
	}
	rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return apperr.Invalid("push message", "invalid base64 data")
	}
	if err := s.pubsub.ProcessMessage(rawData, v); err != nil {
		return apperr.Invalid("push message", "invalid event payload")
	}
	return nil
}

// MatchFinishedPushHandler posts fresh standings after every finished match.
func (s *Server) MatchFinishedPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event pubsub.LeagueEvent
		if err := s.readPushMessage(r, &event); err != nil {
			log.Error("Failed to read match finished message", "error", err)
			writeError(w, err)
			return
		}
		_, err := s.Service.PostStandings(r.Context(), event.LeagueID, isDryRunFromContext(r))
		switch {
		case errors.Is(err, apperr.NotFound):
			// League deleted since; acknowledge so the message is not redelivered.
			log.Warn("League gone, dropping match finished message", "leagueID", event.LeagueID)
		case err != nil:
			log.Error("Failed to post standings", "leagueID", event.LeagueID, "error", err)
			http.Error(w, "Failed to post standings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// StandingsDigestHandler posts the standings of every league, for an external scheduler.
func (s *Server) StandingsDigestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posted, err := s.Service.PostAllStandings(r.Context(), isDryRunFromContext(r))
		if err != nil {
			log.Error("Standings digest incomplete", "posted", posted, "error", err)
			http.Error(w, "Failed to post some standings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"posted": posted})
	}
}
