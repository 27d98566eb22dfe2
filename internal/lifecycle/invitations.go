package lifecycle

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
)

var errNotYourInvitation = apperr.New(apperr.KindForbidden, "decline invitation", errors.New("only the sender or receiver can decline an invitation"))

// SendInvitation invites receiverID to the league. The sender must be the league's creator or an admin.
func (s *Service) SendInvitation(ctx context.Context, senderID, receiverID, leagueID string) (*league.Invitation, error) {
	if err := s.requireRole(ctx, leagueID, senderID, league.RoleCreator, league.RoleAdmin); err != nil {
		return nil, s.fail("send invitation", err)
	}
	if _, err := s.users.GetUser(ctx, receiverID); err != nil {
		return nil, s.fail("send invitation", err)
	}
	inv, err := s.leagues.SendInvitation(ctx, senderID, receiverID, leagueID)
	if err != nil {
		return nil, s.fail("send invitation", err)
	}
	log.Info("Sent invitation", "invitationID", inv.ID, "leagueID", leagueID, "sender", senderID, "receiver", receiverID)
	s.record(ctx, pubsub.EventInvitationSent, s.leagueEvent(leagueID, senderID, receiverID, inv.ID),
		InvitationsKey(receiverID))

	names := s.displayNames(ctx, senderID, receiverID)
	if err := s.notifier.SendInvitation(ctx, inv, names[senderID], names[receiverID], s.dryRun); err != nil {
		log.Error("Failed to send invitation notification", "invitationID", inv.ID, "error", err)
	}
	return inv, nil
}

func (s *Service) GetInvitation(ctx context.Context, invitationID string) (*league.Invitation, error) {
	inv, err := s.leagues.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, s.fail("get invitation", err)
	}
	return inv, nil
}

// AcceptInvitation turns the receiver's invitation into an active participation.
// A missing invitation usually means it was already accepted or declined elsewhere.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID, leagueID, userID string) (*league.Participant, error) {
	p, err := s.leagues.AcceptInvitation(ctx, invitationID, leagueID, userID)
	if errors.Is(err, apperr.ErrInvitationNotFound) {
		log.Info("Invitation no longer exists", "invitationID", invitationID, "userID", userID)
	}
	if err != nil {
		return nil, s.fail("accept invitation", err)
	}
	log.Info("Accepted invitation", "invitationID", invitationID, "leagueID", leagueID, "userID", userID)
	s.record(ctx, pubsub.EventInvitationAccepted, s.leagueEvent(leagueID, userID, userID, invitationID),
		InvitationsKey(userID), ParticipantsKey(leagueID), StandingsKey(leagueID), LeaguesKey(userID))
	return p, nil
}

// DeclineInvitation removes an invitation. The receiver declines it, the sender withdraws it.
// Declining an invitation that is already gone is not an error.
func (s *Service) DeclineInvitation(ctx context.Context, invitationID, userID string) error {
	inv, err := s.leagues.GetInvitation(ctx, invitationID)
	if errors.Is(err, apperr.ErrInvitationNotFound) {
		return nil
	}
	if err != nil {
		return s.fail("decline invitation", err)
	}
	if userID != inv.ReceiverID && userID != inv.SenderID {
		return s.fail("decline invitation", errNotYourInvitation)
	}
	if err := s.leagues.DeclineInvitation(ctx, invitationID); err != nil {
		return s.fail("decline invitation", err)
	}
	log.Info("Declined invitation", "invitationID", invitationID, "by", userID)
	s.record(ctx, pubsub.EventInvitationDeclined, s.leagueEvent(inv.LeagueID, userID, inv.ReceiverID, invitationID),
		InvitationsKey(inv.ReceiverID))
	return nil
}

func (s *Service) ListMyInvitations(ctx context.Context, userID string) ([]league.Invitation, error) {
	invitations, err := s.leagues.ListInvitationsForUser(ctx, userID)
	if err != nil {
		return nil, s.fail("list invitations", err)
	}
	return invitations, nil
}

// ListLeagueInvitations returns the pending invitations of a league to its creator or admins.
func (s *Service) ListLeagueInvitations(ctx context.Context, actorID, leagueID string) ([]league.Invitation, error) {
	if err := s.requireRole(ctx, leagueID, actorID, league.RoleCreator, league.RoleAdmin); err != nil {
		return nil, s.fail("list league invitations", err)
	}
	invitations, err := s.leagues.ListInvitationsForLeague(ctx, leagueID)
	if err != nil {
		return nil, s.fail("list league invitations", err)
	}
	return invitations, nil
}
