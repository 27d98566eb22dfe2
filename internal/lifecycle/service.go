package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

// New creates a new Service.
func New(d Deps) *Service {
	return &Service{
		leagues:  d.Leagues,
		social:   d.Social,
		users:    d.Users,
		hub:      d.Hub,
		pubsub:   d.PubSub,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		dryRun:   d.DryRun,
		now:      time.Now,
	}
}

var errLeaguePrivate = errors.New("league is private")

// fail counts err by kind. Typed errors go back unchanged; anything else is a store or
// network failure and is logged and wrapped as RemoteUnavailable.
func (s *Service) fail(op string, err error) error {
	kind := apperr.KindOf(err)
	s.metrics.IncOperationError(string(kind))

	var typed *apperr.Error
	if errors.As(err, &typed) {
		log.Debug("Operation refused", "op", op, "kind", kind, "error", err)
		return err
	}
	log.Error("Operation failed", "op", op, "error", err)
	return apperr.Remote(op, err)
}

// record publishes the event, counts it and wakes watchers of keys.
// Publishing is best effort: the write already happened.
func (s *Service) record(ctx context.Context, topic pubsub.EventType, payload any, keys ...string) {
	if err := s.pubsub.SendMessage(ctx, topic, payload); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
	s.metrics.IncLifecycleEvent(string(topic))
	s.hub.Notify(keys...)
}

func (s *Service) leagueEvent(leagueID, actorID, subjectID, resourceID string) pubsub.LeagueEvent {
	return pubsub.LeagueEvent{
		LeagueID:   leagueID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		ResourceID: resourceID,
		At:         s.now().UTC(),
	}
}

// requireRole checks that userID is an active participant of the league holding one of roles.
// With no roles any active participant passes.
func (s *Service) requireRole(ctx context.Context, leagueID, userID string, roles ...league.Role) error {
	p, err := s.leagues.GetParticipant(ctx, leagueID, userID)
	if errors.Is(err, apperr.ErrParticipantNotFound) {
		return apperr.ErrNotLeagueAdmin
	}
	if err != nil {
		return err
	}
	if p.Status != league.StatusActive {
		return apperr.ErrNotLeagueAdmin
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.ErrNotLeagueAdmin
}

// visibleLeague loads a league the actor may look at. Private leagues are only
// visible to participants and invitees.
func (s *Service) visibleLeague(ctx context.Context, op, leagueID, actorID string) (*league.League, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if l.Visibility == league.VisibilityPublic {
		return l, nil
	}
	state, err := s.leagues.ParticipationState(ctx, leagueID, actorID)
	if err != nil {
		return nil, err
	}
	if state == league.StateNone {
		return nil, apperr.New(apperr.KindForbidden, op, errLeaguePrivate)
	}
	return l, nil
}

// displayNames maps user ids to display names. Unknown users keep their id.
func (s *Service) displayNames(ctx context.Context, ids ...string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		u, err := s.users.GetUser(ctx, id)
		if err != nil {
			log.Warn("Could not resolve display name", "userID", id, "error", err)
			names[id] = id
			continue
		}
		names[id] = u.DisplayName
	}
	return names
}
