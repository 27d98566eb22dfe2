package lifecycle

import (
	"time"

	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
	"github.com/mauv0809/shuttle-league/internal/social"
	"github.com/mauv0809/shuttle-league/internal/standings"
	"github.com/mauv0809/shuttle-league/internal/user"
	"github.com/mauv0809/shuttle-league/internal/watch"
)

// Service runs the league and friendship workflows on top of the stores and
// fans every successful change out to watchers, pubsub, metrics and the notifier.
type Service struct {
	leagues  league.LeagueStore
	social   social.SocialStore
	users    user.UserStore
	hub      *watch.Hub
	pubsub   pubsub.PubSubClient
	notifier notifier.Notifier
	metrics  metrics.Metrics

	// dryRun makes automatic notifications log instead of post.
	dryRun bool
	now    func() time.Time
}

// Deps are the collaborators of a Service.
type Deps struct {
	Leagues  league.LeagueStore
	Social   social.SocialStore
	Users    user.UserStore
	Hub      *watch.Hub
	PubSub   pubsub.PubSubClient
	Notifier notifier.Notifier
	Metrics  metrics.Metrics
	DryRun   bool
}

// Overview is everything a league page shows.
type Overview struct {
	League       *league.League       `json:"league"`
	Participants []league.Participant `json:"participants"`
	Standings    []standings.Standing `json:"standings"`
	Podium       []standings.Standing `json:"podium"`
	Matches      []league.Match       `json:"matches"`
}
