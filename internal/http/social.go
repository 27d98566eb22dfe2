package http

import (
	"net/http"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/social"
)

func (s *Server) SendFriendRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req receiverRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		fr, err := s.Service.SendFriendRequest(r.Context(), actor(r), req.ReceiverID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, fr)
	}
}

// ListFriendRequestsHandler lists incoming requests unless ?direction=outgoing.
func (s *Server) ListFriendRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		direction := social.Incoming
		switch d := r.URL.Query().Get("direction"); d {
		case "", string(social.Incoming):
		case string(social.Outgoing):
			direction = social.Outgoing
		default:
			writeError(w, apperr.Field("direction", "direction must be incoming or outgoing"))
			return
		}
		requests, err := s.Service.ListFriendRequests(r.Context(), actor(r), direction)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	}
}

func (s *Server) AcceptFriendRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := s.Service.AcceptFriendRequest(r.Context(), r.PathValue("id"), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

func (s *Server) DeclineFriendRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DeclineFriendRequest(r.Context(), r.PathValue("id"), actor(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CancelFriendRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.CancelFriendRequest(r.Context(), r.PathValue("id"), actor(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListFriendsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friends, err := s.Service.ListFriends(r.Context(), actor(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, friends)
	}
}

func (s *Server) UnfriendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.Unfriend(r.Context(), r.PathValue("id"), actor(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
