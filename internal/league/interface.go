package league

import "context"

// LeagueStore defines the interface for interacting with league data.
type LeagueStore interface {
	CreateLeague(ctx context.Context, in NewLeague) (*League, error)
	GetLeague(ctx context.Context, leagueID string) (*League, error)
	ListLeagues(ctx context.Context) ([]League, error)
	ListPublicLeagues(ctx context.Context) ([]League, error)
	ListLeaguesForUser(ctx context.Context, userID string) ([]League, error)
	UpdateRules(ctx context.Context, leagueID string, update RulesUpdate) (*League, error)
	SetVisibility(ctx context.Context, leagueID string, visibility Visibility) error
	DeleteLeague(ctx context.Context, leagueID string) error

	ListParticipants(ctx context.Context, leagueID string) ([]Participant, error)
	GetParticipant(ctx context.Context, leagueID, userID string) (*Participant, error)
	UpdateParticipantRole(ctx context.Context, leagueID, userID string, role Role) error
	JoinLeague(ctx context.Context, leagueID, userID string) (*Participant, error)
	LeaveLeague(ctx context.Context, leagueID, userID string) error
	ParticipationState(ctx context.Context, leagueID, userID string) (ParticipationState, error)
	ListStats(ctx context.Context, leagueID string) ([]ParticipantStats, error)

	SendInvitation(ctx context.Context, senderID, receiverID, leagueID string) (*Invitation, error)
	GetInvitation(ctx context.Context, invitationID string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID, leagueID, userID string) (*Participant, error)
	DeclineInvitation(ctx context.Context, invitationID string) error
	ListInvitationsForUser(ctx context.Context, userID string) ([]Invitation, error)
	ListInvitationsForLeague(ctx context.Context, leagueID string) ([]Invitation, error)

	CreateMatch(ctx context.Context, leagueID string, team1, team2 []string) (*Match, error)
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	ListMatches(ctx context.Context, leagueID string) ([]Match, error)
	StartMatch(ctx context.Context, matchID string) (*Match, error)
	FinishMatch(ctx context.Context, matchID string, score1, score2 int) (*Match, error)
}
