package lifecycle

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

func (s *Service) CreateLeague(ctx context.Context, in league.NewLeague) (*league.League, error) {
	l, err := s.leagues.CreateLeague(ctx, in)
	if err != nil {
		return nil, s.fail("create league", err)
	}
	log.Info("Created league", "leagueID", l.ID, "name", l.Name, "creator", in.CreatorID)
	s.record(ctx, pubsub.EventLeagueCreated, s.leagueEvent(l.ID, in.CreatorID, "", ""),
		LeaguesKey(in.CreatorID), ParticipantsKey(l.ID), StandingsKey(l.ID))
	return l, nil
}

// GetLeague returns a league the actor is allowed to see.
func (s *Service) GetLeague(ctx context.Context, actorID, leagueID string) (*league.League, error) {
	l, err := s.visibleLeague(ctx, "get league", leagueID, actorID)
	if err != nil {
		return nil, s.fail("get league", err)
	}
	return l, nil
}

func (s *Service) ListPublicLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagues.ListPublicLeagues(ctx)
	if err != nil {
		return nil, s.fail("list public leagues", err)
	}
	return leagues, nil
}

// ListMyLeagues returns the leagues the user actively participates in.
func (s *Service) ListMyLeagues(ctx context.Context, userID string) ([]league.League, error) {
	leagues, err := s.leagues.ListLeaguesForUser(ctx, userID)
	if err != nil {
		return nil, s.fail("list my leagues", err)
	}
	return leagues, nil
}

func (s *Service) UpdateRules(ctx context.Context, actorID, leagueID string, update league.RulesUpdate) (*league.League, error) {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator, league.RoleAdmin); err != nil {
		return nil, s.fail("update rules", err)
	}
	l, err := s.leagues.UpdateRules(ctx, leagueID, update)
	if err != nil {
		return nil, s.fail("update rules", err)
	}
	log.Info("Updated league rules", "leagueID", leagueID, "points", l.Rules.Points, "deuce", l.Rules.Deuce, "double", l.Rules.Double)
	s.record(ctx, pubsub.EventRulesUpdated, s.leagueEvent(leagueID, actorID, "", ""), StandingsKey(leagueID))
	return l, nil
}

func (s *Service) SetVisibility(ctx context.Context, actorID, leagueID string, visibility league.Visibility) error {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator, league.RoleAdmin); err != nil {
		return s.fail("set visibility", err)
	}
	if err := s.leagues.SetVisibility(ctx, leagueID, visibility); err != nil {
		return s.fail("set visibility", err)
	}
	log.Info("Changed league visibility", "leagueID", leagueID, "visibility", visibility)
	s.record(ctx, pubsub.EventRulesUpdated, s.leagueEvent(leagueID, actorID, "", ""), StandingsKey(leagueID))
	return nil
}

// DeleteLeague removes the league and everything in it. Only the creator may do this.
func (s *Service) DeleteLeague(ctx context.Context, actorID, leagueID string) error {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator); err != nil {
		return s.fail("delete league", err)
	}
	participants, err := s.leagues.ListParticipants(ctx, leagueID)
	if err != nil {
		return s.fail("delete league", err)
	}
	invitations, err := s.leagues.ListInvitationsForLeague(ctx, leagueID)
	if err != nil {
		return s.fail("delete league", err)
	}
	if err := s.leagues.DeleteLeague(ctx, leagueID); err != nil {
		return s.fail("delete league", err)
	}
	log.Info("Deleted league", "leagueID", leagueID, "participants", len(participants))

	keys := []string{StandingsKey(leagueID), ParticipantsKey(leagueID), MatchesKey(leagueID)}
	for _, p := range participants {
		keys = append(keys, LeaguesKey(p.UserID))
	}
	for _, inv := range invitations {
		keys = append(keys, InvitationsKey(inv.ReceiverID))
	}
	s.record(ctx, pubsub.EventLeagueDeleted, s.leagueEvent(leagueID, actorID, "", ""), keys...)
	return nil
}

// JoinLeague lets a user join a public league without an invitation.
func (s *Service) JoinLeague(ctx context.Context, leagueID, userID string) (*league.Participant, error) {
	p, err := s.leagues.JoinLeague(ctx, leagueID, userID)
	if err != nil {
		return nil, s.fail("join league", err)
	}
	log.Info("User joined league", "leagueID", leagueID, "userID", userID)
	s.record(ctx, pubsub.EventParticipantJoined, s.leagueEvent(leagueID, userID, userID, ""),
		ParticipantsKey(leagueID), StandingsKey(leagueID), LeaguesKey(userID), InvitationsKey(userID))
	return p, nil
}

func (s *Service) LeaveLeague(ctx context.Context, leagueID, userID string) error {
	if err := s.leagues.LeaveLeague(ctx, leagueID, userID); err != nil {
		return s.fail("leave league", err)
	}
	log.Info("User left league", "leagueID", leagueID, "userID", userID)
	s.record(ctx, pubsub.EventParticipantLeft, s.leagueEvent(leagueID, userID, userID, ""),
		ParticipantsKey(leagueID), StandingsKey(leagueID), LeaguesKey(userID))
	return nil
}

func (s *Service) ParticipationState(ctx context.Context, leagueID, userID string) (league.ParticipationState, error) {
	state, err := s.leagues.ParticipationState(ctx, leagueID, userID)
	if err != nil {
		return "", s.fail("participation state", err)
	}
	return state, nil
}

// SetRole promotes or demotes a participant. Only the creator may do this.
func (s *Service) SetRole(ctx context.Context, actorID, leagueID, userID string, role league.Role) error {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator); err != nil {
		return s.fail("set role", err)
	}
	if err := s.leagues.UpdateParticipantRole(ctx, leagueID, userID, role); err != nil {
		return s.fail("set role", err)
	}
	log.Info("Changed participant role", "leagueID", leagueID, "userID", userID, "role", role)
	s.hub.Notify(ParticipantsKey(leagueID))
	return nil
}

func (s *Service) ListParticipants(ctx context.Context, actorID, leagueID string) ([]league.Participant, error) {
	if _, err := s.visibleLeague(ctx, "list participants", leagueID, actorID); err != nil {
		return nil, s.fail("list participants", err)
	}
	participants, err := s.leagues.ListParticipants(ctx, leagueID)
	if err != nil {
		return nil, s.fail("list participants", err)
	}
	return participants, nil
}
