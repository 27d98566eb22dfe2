package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/standings"
	"github.com/mauv0809/shuttle-league/internal/watch"
	"golang.org/x/sync/errgroup"
)

// rank loads the league's stats and ranks them.
func (s *Service) rank(ctx context.Context, leagueID string) ([]standings.Standing, error) {
	start := time.Now()
	stats, err := s.leagues.ListStats(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	table, err := standings.Rank(stats)
	if err != nil {
		return nil, err
	}
	s.metrics.IncStandingsComputed()
	s.metrics.ObserveStandingsDuration(time.Since(start).Seconds())
	return table, nil
}

// Standings returns the ranked table of a league the actor can see.
func (s *Service) Standings(ctx context.Context, actorID, leagueID string) ([]standings.Standing, error) {
	if _, err := s.visibleLeague(ctx, "standings", leagueID, actorID); err != nil {
		return nil, s.fail("standings", err)
	}
	table, err := s.rank(ctx, leagueID)
	if err != nil {
		return nil, s.fail("standings", err)
	}
	return table, nil
}

// WatchStandings streams the ranked table, re-ranked after every change to the league's stats.
// A second watch by the same owner on the same league replaces the first.
func (s *Service) WatchStandings(ctx context.Context, owner, leagueID string) (*watch.Subscription[[]standings.Standing], error) {
	if _, err := s.visibleLeague(ctx, "watch standings", leagueID, owner); err != nil {
		return nil, s.fail("watch standings", err)
	}
	log.Debug("Watching standings", "leagueID", leagueID, "owner", owner)
	return watch.Subscribe(ctx, s.hub, owner, StandingsKey(leagueID), func(ctx context.Context) ([]standings.Standing, error) {
		// A deleted league yields ErrLeagueNotFound, which ends the watcher's stream.
		if _, err := s.leagues.GetLeague(ctx, leagueID); err != nil {
			return nil, err
		}
		return s.rank(ctx, leagueID)
	}), nil
}

// WatchInvitations streams the user's pending invitations.
func (s *Service) WatchInvitations(ctx context.Context, userID string) *watch.Subscription[[]league.Invitation] {
	return watch.Subscribe(ctx, s.hub, userID, InvitationsKey(userID), func(ctx context.Context) ([]league.Invitation, error) {
		return s.leagues.ListInvitationsForUser(ctx, userID)
	})
}

// PostStandingsAs posts the standings on behalf of the league's creator or an admin.
func (s *Service) PostStandingsAs(ctx context.Context, actorID, leagueID string, dryRun bool) ([]standings.Standing, error) {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator, league.RoleAdmin); err != nil {
		return nil, s.fail("post standings", err)
	}
	return s.PostStandings(ctx, leagueID, dryRun)
}

// PostStandings sends the league's current standings to the notifier.
// Machine callers use it directly; people go through PostStandingsAs.
func (s *Service) PostStandings(ctx context.Context, leagueID string, dryRun bool) ([]standings.Standing, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, s.fail("post standings", err)
	}
	table, err := s.rank(ctx, leagueID)
	if err != nil {
		return nil, s.fail("post standings", err)
	}
	if err := s.notifier.SendStandings(ctx, l, table, dryRun); err != nil {
		return nil, s.fail("post standings", err)
	}
	log.Info("Posted standings", "leagueID", leagueID, "participants", len(table), "dryRun", dryRun)
	return table, nil
}

// PostAllStandings posts the standings of every league in which at least one match has been played.
// It keeps going past failures and returns them joined.
func (s *Service) PostAllStandings(ctx context.Context, dryRun bool) (int, error) {
	leagues, err := s.leagues.ListLeagues(ctx)
	if err != nil {
		return 0, s.fail("post all standings", err)
	}

	posted := 0
	var errs []error
	for i := range leagues {
		l := &leagues[i]
		table, err := s.rank(ctx, l.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !anyPlayed(table) {
			log.Debug("Skipping league without results", "leagueID", l.ID)
			continue
		}
		if err := s.notifier.SendStandings(ctx, l, table, dryRun); err != nil {
			log.Error("Failed to post standings", "leagueID", l.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		posted++
	}
	log.Info("Standings digest finished", "leagues", len(leagues), "posted", posted, "failed", len(errs))
	if len(errs) > 0 {
		return posted, s.fail("post all standings", errors.Join(errs...))
	}
	return posted, nil
}

func anyPlayed(table []standings.Standing) bool {
	for _, row := range table {
		if row.MatchesPlayed > 0 {
			return true
		}
	}
	return false
}

// LeagueOverview loads everything a league page shows in parallel.
func (s *Service) LeagueOverview(ctx context.Context, actorID, leagueID string) (*Overview, error) {
	l, err := s.visibleLeague(ctx, "league overview", leagueID, actorID)
	if err != nil {
		return nil, s.fail("league overview", err)
	}

	out := &Overview{League: l}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.leagues.ListParticipants(gctx, leagueID)
		out.Participants = participants
		return err
	})
	g.Go(func() error {
		table, err := s.rank(gctx, leagueID)
		out.Standings = table
		return err
	})
	g.Go(func() error {
		matches, err := s.leagues.ListMatches(gctx, leagueID)
		out.Matches = matches
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail("league overview", err)
	}
	out.Podium = standings.Podium(out.Standings)
	return out, nil
}
