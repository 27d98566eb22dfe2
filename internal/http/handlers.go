package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/user"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// RegisterUserHandler creates the profile of the calling identity. The id in the body is ignored.
func (s *Server) RegisterUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.NewUser
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		in.ID = actor(r)
		u, err := s.Service.RegisterUser(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Service.GetUser(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update user.ProfileUpdate
		if err := decode(r, &update); err != nil {
			writeError(w, err)
			return
		}
		u, err := s.Service.UpdateProfile(r.Context(), actor(r), r.PathValue("id"), update)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) SearchUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				log.Warn("Invalid 'limit' parameter provided. Using the default.", "limit_param", raw)
			} else {
				limit = parsed
			}
		}
		users, err := s.Service.SearchUsers(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func (s *Server) UsernameAvailableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available, err := s.Service.IsUsernameAvailable(r.Context(), r.PathValue("username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"available": available})
	}
}

// CheckSignUpHandler validates a sign-up form before the client creates the account
// with the identity provider. It answers 204 or the first failing field.
func (s *Server) CheckSignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form user.SignUp
		if err := decode(r, &form); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Service.CheckSignUp(r.Context(), form); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) GetUserByUsernameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Service.GetUserByUsername(r.Context(), r.PathValue("username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// SetVerifiedHandler is called after the identity provider confirms the caller's email.
func (s *Server) SetVerifiedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifiedRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Service.SetVerified(r.Context(), actor(r), r.PathValue("id"), req.Verified); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
