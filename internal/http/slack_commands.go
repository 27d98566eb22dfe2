package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func ephemeral(text string) slack.Message {
	return slack.Message{Msg: slack.Msg{ResponseType: slack.ResponseTypeEphemeral, Text: text}}
}

// verifySlackRequest checks the request signature and leaves the body readable.
func verifySlackRequest(r *http.Request, signingSecret string) error {
	sv, err := slack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

// StandingsCommandHandler answers `/standings <league id>` for public leagues.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret := s.Cfg.Slack.SigningSecret; secret != "" {
			if err := verifySlackRequest(r, secret); err != nil {
				log.Warn("Rejected Slack command", "error", err)
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		leagueID := strings.TrimSpace(r.FormValue("text"))
		if leagueID == "" {
			respondWithSlackMsg(w, ephemeral("Usage: /standings <league id>"))
			return
		}
		// Slack users have no identity here, so only public leagues resolve.
		l, err := s.Service.GetLeague(r.Context(), "", leagueID)
		if err != nil {
			log.Info("Standings command for unknown league", "leagueID", leagueID, "error", err)
			respondWithSlackMsg(w, ephemeral(fmt.Sprintf("No public league found with id %s", leagueID)))
			return
		}
		table, err := s.Service.Standings(r.Context(), "", leagueID)
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings", "leagueID", leagueID, "error", err)
			return
		}

		msg, err := s.Notifier.FormatStandingsResponse(l, table)
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}
		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		slackMsg.ResponseType = slack.ResponseTypeInChannel
		respondWithSlackMsg(w, slackMsg)
	}
}
