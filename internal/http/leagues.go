package http

import (
	"net/http"

	"github.com/mauv0809/shuttle-league/internal/league"
)

func (s *Server) CreateLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newLeagueRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		l, err := s.Service.CreateLeague(r.Context(), league.NewLeague{
			Name:       req.Name,
			Visibility: league.Visibility(req.Visibility),
			Rules: league.Rules{
				Points:      req.Rules.Points,
				Deuce:       req.Rules.Deuce,
				Double:      req.Rules.Double,
				FixedDouble: req.Rules.FixedDouble,
			},
			CreatorID: actor(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func (s *Server) ListPublicLeaguesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagues, err := s.Service.ListPublicLeagues(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leagues)
	}
}

func (s *Server) ListMyLeaguesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagues, err := s.Service.ListMyLeagues(r.Context(), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leagues)
	}
}

func (s *Server) LeagueOverviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := s.Service.LeagueOverview(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

func (s *Server) DeleteLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeleteLeague(r.Context(), actor(r), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) UpdateRulesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update league.RulesUpdate
		if err := decode(r, &update); err != nil {
			writeError(w, err)
			return
		}
		l, err := s.Service.UpdateRules(r.Context(), actor(r), r.PathValue("id"), update)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func (s *Server) SetVisibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req visibilityRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Service.SetVisibility(r.Context(), actor(r), r.PathValue("id"), league.Visibility(req.Visibility)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListParticipantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participants, err := s.Service.ListParticipants(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, participants)
	}
}

func (s *Server) SetRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		err := s.Service.SetRole(r.Context(), actor(r), r.PathValue("id"), r.PathValue("userID"), league.Role(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ParticipationStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.Service.ParticipationState(r.Context(), r.PathValue("id"), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]league.ParticipationState{"state": state})
	}
}

func (s *Server) JoinLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.Service.JoinLeague(r.Context(), r.PathValue("id"), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) LeaveLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.LeaveLeague(r.Context(), r.PathValue("id"), actor(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := s.Service.Standings(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

// PostStandingsHandler posts the league's standings to Slack for its creator or an admin. Honors dry_run.
func (s *Server) PostStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := s.Service.PostStandingsAs(r.Context(), actor(r), r.PathValue("id"), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func (s *Server) SendInvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req receiverRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := s.Service.SendInvitation(r.Context(), actor(r), req.ReceiverID, r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func (s *Server) ListLeagueInvitationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitations, err := s.Service.ListLeagueInvitations(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, invitations)
	}
}

func (s *Server) ListMyInvitationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitations, err := s.Service.ListMyInvitations(r.Context(), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, invitations)
	}
}

func (s *Server) AcceptInvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := s.Service.GetInvitation(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		p, err := s.Service.AcceptInvitation(r.Context(), inv.ID, inv.LeagueID, actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) DeclineInvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeclineInvitation(r.Context(), r.PathValue("id"), actor(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newMatchRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		m, err := s.Service.CreateMatch(r.Context(), actor(r), r.PathValue("id"), req.Team1, req.Team2)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Service.ListMatches(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) StartMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Service.StartMatch(r.Context(), actor(r), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) FinishMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		m, err := s.Service.FinishMatch(r.Context(), actor(r), r.PathValue("id"), req.Score1, req.Score2)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}
