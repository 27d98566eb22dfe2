package http

import (
	"net/http"
	"sync/atomic"

	"github.com/mauv0809/shuttle-league/internal/config"
	"github.com/mauv0809/shuttle-league/internal/lifecycle"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

type Server struct {
	Service        *lifecycle.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient

	// open standings streams
	streams atomic.Int64
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

type newLeagueRequest struct {
	Name       string      `json:"name"`
	Visibility string      `json:"visibility"`
	Rules      leagueRules `json:"rules"`
}

type leagueRules struct {
	Points      int   `json:"points"`
	Deuce       bool  `json:"deuce"`
	Double      bool  `json:"double"`
	FixedDouble *bool `json:"fixed_double,omitempty"`
}

type verifiedRequest struct {
	Verified bool `json:"verified"`
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type receiverRequest struct {
	ReceiverID string `json:"receiver_id"`
}

type newMatchRequest struct {
	Team1 []string `json:"team1"`
	Team2 []string `json:"team2"`
}

type scoreRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// pushEnvelope is the body of a Pub/Sub push delivery.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}
