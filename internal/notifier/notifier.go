package notifier

import (
	"context"

	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/standings"
)

// Notifier defines a high-level interface for sending notifications about league events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Standings table with the podium highlighted
	SendStandings(ctx context.Context, l *league.League, table []standings.Standing, dryRun bool) error
	// Someone was invited to a league
	SendInvitation(ctx context.Context, inv *league.Invitation, senderName, receiverName string, dryRun bool) error
	// A match was finished; names maps user ids to display names
	SendMatchResult(ctx context.Context, l *league.League, m *league.Match, names map[string]string, dryRun bool) error

	FormatStandingsResponse(l *league.League, table []standings.Standing) (any, error)
}
