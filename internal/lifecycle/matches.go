package lifecycle

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

// CreateMatch schedules a match. Any active participant may do this.
func (s *Service) CreateMatch(ctx context.Context, actorID, leagueID string, team1, team2 []string) (*league.Match, error) {
	if err := s.requireRole(ctx, leagueID, actorID); err != nil {
		return nil, s.fail("create match", err)
	}
	m, err := s.leagues.CreateMatch(ctx, leagueID, team1, team2)
	if err != nil {
		return nil, s.fail("create match", err)
	}
	log.Info("Created match", "matchID", m.ID, "leagueID", leagueID, "team1", m.Team1, "team2", m.Team2)
	s.hub.Notify(MatchesKey(leagueID))
	return m, nil
}

func (s *Service) StartMatch(ctx context.Context, actorID, matchID string) (*league.Match, error) {
	m, err := s.leagues.GetMatch(ctx, matchID)
	if err != nil {
		return nil, s.fail("start match", err)
	}
	if err := s.requireRole(ctx, m.LeagueID, actorID); err != nil {
		return nil, s.fail("start match", err)
	}
	m, err = s.leagues.StartMatch(ctx, matchID)
	if err != nil {
		return nil, s.fail("start match", err)
	}
	log.Info("Started match", "matchID", matchID, "leagueID", m.LeagueID)
	s.hub.Notify(MatchesKey(m.LeagueID))
	return m, nil
}

// FinishMatch records the final score, updates every player's stats and announces the result.
func (s *Service) FinishMatch(ctx context.Context, actorID, matchID string, score1, score2 int) (*league.Match, error) {
	m, err := s.leagues.GetMatch(ctx, matchID)
	if err != nil {
		return nil, s.fail("finish match", err)
	}
	if err := s.requireRole(ctx, m.LeagueID, actorID); err != nil {
		return nil, s.fail("finish match", err)
	}
	m, err = s.leagues.FinishMatch(ctx, matchID, score1, score2)
	if err != nil {
		return nil, s.fail("finish match", err)
	}
	log.Info("Finished match", "matchID", matchID, "leagueID", m.LeagueID, "score1", m.Score1, "score2", m.Score2)
	s.record(ctx, pubsub.EventMatchFinished, s.leagueEvent(m.LeagueID, actorID, "", matchID),
		MatchesKey(m.LeagueID), StandingsKey(m.LeagueID))

	l, err := s.leagues.GetLeague(ctx, m.LeagueID)
	if err != nil {
		log.Error("Failed to load league for match result notification", "leagueID", m.LeagueID, "error", err)
		return m, nil
	}
	names := s.displayNames(ctx, append(append([]string{}, m.Team1...), m.Team2...)...)
	if err := s.notifier.SendMatchResult(ctx, l, m, names, s.dryRun); err != nil {
		log.Error("Failed to send match result notification", "matchID", matchID, "error", err)
	}
	return m, nil
}

func (s *Service) ListMatches(ctx context.Context, actorID, leagueID string) ([]league.Match, error) {
	if _, err := s.visibleLeague(ctx, "list matches", leagueID, actorID); err != nil {
		return nil, s.fail("list matches", err)
	}
	matches, err := s.leagues.ListMatches(ctx, leagueID)
	if err != nil {
		return nil, s.fail("list matches", err)
	}
	return matches, nil
}
