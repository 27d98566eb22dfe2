package http

import (
	"net/http"

	"github.com/mauv0809/shuttle-league/internal/config"
	"github.com/mauv0809/shuttle-league/internal/lifecycle"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

func NewServer(svc *lifecycle.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Service:        svc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Routes acting on behalf of a user also get identityMiddleware.
	public := func(h http.Handler) http.Handler { return Chain(h, paramsMiddleware) }
	user := func(h http.Handler) http.Handler { return Chain(h, paramsMiddleware, identityMiddleware) }

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", public(s.HealthCheckHandler()))

	s.Router.Handle("POST /users", user(s.RegisterUserHandler()))
	s.Router.Handle("GET /users/search", user(s.SearchUsersHandler()))
	s.Router.Handle("GET /users/{id}", user(s.GetUserHandler()))
	s.Router.Handle("GET /users/by-username/{username}", user(s.GetUserByUsernameHandler()))
	s.Router.Handle("PATCH /users/{id}", user(s.UpdateProfileHandler()))
	s.Router.Handle("PUT /users/{id}/verified", user(s.SetVerifiedHandler()))
	s.Router.Handle("POST /signup/check", public(s.CheckSignUpHandler()))
	s.Router.Handle("GET /usernames/{username}", public(s.UsernameAvailableHandler()))

	s.Router.Handle("POST /leagues", user(s.CreateLeagueHandler()))
	s.Router.Handle("GET /leagues", public(s.ListPublicLeaguesHandler()))
	s.Router.Handle("GET /me/leagues", user(s.ListMyLeaguesHandler()))
	s.Router.Handle("GET /leagues/{id}", user(s.LeagueOverviewHandler()))
	s.Router.Handle("DELETE /leagues/{id}", user(s.DeleteLeagueHandler()))
	s.Router.Handle("PATCH /leagues/{id}/rules", user(s.UpdateRulesHandler()))
	s.Router.Handle("PUT /leagues/{id}/visibility", user(s.SetVisibilityHandler()))
	s.Router.Handle("GET /leagues/{id}/participants", user(s.ListParticipantsHandler()))
	s.Router.Handle("PUT /leagues/{id}/participants/{userID}/role", user(s.SetRoleHandler()))
	s.Router.Handle("GET /leagues/{id}/participation", user(s.ParticipationStateHandler()))
	s.Router.Handle("POST /leagues/{id}/join", user(s.JoinLeagueHandler()))
	s.Router.Handle("POST /leagues/{id}/leave", user(s.LeaveLeagueHandler()))
	s.Router.Handle("GET /leagues/{id}/standings", user(s.StandingsHandler()))
	s.Router.Handle("GET /leagues/{id}/standings/stream", user(s.StandingsStreamHandler()))
	s.Router.Handle("POST /leagues/{id}/standings/post", user(s.PostStandingsHandler()))

	s.Router.Handle("POST /leagues/{id}/invitations", user(s.SendInvitationHandler()))
	s.Router.Handle("GET /leagues/{id}/invitations", user(s.ListLeagueInvitationsHandler()))
	s.Router.Handle("GET /me/invitations", user(s.ListMyInvitationsHandler()))
	s.Router.Handle("GET /me/invitations/stream", user(s.InvitationsStreamHandler()))
	s.Router.Handle("POST /invitations/{id}/accept", user(s.AcceptInvitationHandler()))
	s.Router.Handle("POST /invitations/{id}/decline", user(s.DeclineInvitationHandler()))

	s.Router.Handle("POST /leagues/{id}/matches", user(s.CreateMatchHandler()))
	s.Router.Handle("GET /leagues/{id}/matches", user(s.ListMatchesHandler()))
	s.Router.Handle("POST /matches/{id}/start", user(s.StartMatchHandler()))
	s.Router.Handle("POST /matches/{id}/finish", user(s.FinishMatchHandler()))

	s.Router.Handle("POST /friend-requests", user(s.SendFriendRequestHandler()))
	s.Router.Handle("GET /me/friend-requests", user(s.ListFriendRequestsHandler()))
	s.Router.Handle("POST /friend-requests/{id}/accept", user(s.AcceptFriendRequestHandler()))
	s.Router.Handle("POST /friend-requests/{id}/decline", user(s.DeclineFriendRequestHandler()))
	s.Router.Handle("POST /friend-requests/{id}/cancel", user(s.CancelFriendRequestHandler()))
	s.Router.Handle("GET /me/friends", user(s.ListFriendsHandler()))
	s.Router.Handle("DELETE /friends/{id}", user(s.UnfriendHandler()))

	// Pub/Sub push subscriptions and Cloud Scheduler.
	s.Router.Handle("POST /pubsub/match-finished", public(s.MatchFinishedPushHandler()))
	s.Router.Handle("POST /scheduled/standings-digest", public(s.StandingsDigestHandler()))

	s.Router.Handle("POST /slack/command/standings", public(s.StandingsCommandHandler()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
