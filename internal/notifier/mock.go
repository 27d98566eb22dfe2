package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/standings"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendStandingsFunc   func(l *league.League, table []standings.Standing) error
	SendInvitationFunc  func(inv *league.Invitation) error
	SendMatchResultFunc func(m *league.Match) error

	FormatStandingsResponseFunc func(l *league.League, table []standings.Standing) (any, error)

	// Call records
	SendStandingsCalls []struct {
		League *league.League
		Table  []standings.Standing
		DryRun bool
	}
	SendInvitationCalls []struct {
		Invitation   *league.Invitation
		SenderName   string
		ReceiverName string
	}
	SendMatchResultCalls []struct {
		League *league.League
		Match  *league.Match
		Names  map[string]string
	}
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = nil
	m.SendInvitationCalls = nil
	m.SendMatchResultCalls = nil
}

func (m *Mock) SendStandings(_ context.Context, l *league.League, table []standings.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, struct {
		League *league.League
		Table  []standings.Standing
		DryRun bool
	}{l, table, dryRun})
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(l, table)
	}
	return nil
}

func (m *Mock) SendInvitation(_ context.Context, inv *league.Invitation, senderName, receiverName string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendInvitationCalls = append(m.SendInvitationCalls, struct {
		Invitation   *league.Invitation
		SenderName   string
		ReceiverName string
	}{inv, senderName, receiverName})
	if m.SendInvitationFunc != nil {
		return m.SendInvitationFunc(inv)
	}
	return nil
}

func (m *Mock) SendMatchResult(_ context.Context, l *league.League, match *league.Match, names map[string]string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, struct {
		League *league.League
		Match  *league.Match
		Names  map[string]string
	}{l, match, names})
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(match)
	}
	return nil
}

func (m *Mock) FormatStandingsResponse(l *league.League, table []standings.Standing) (any, error) {
	if m.FormatStandingsResponseFunc != nil {
		return m.FormatStandingsResponseFunc(l, table)
	}
	return struct {
		League string
		Rows   int
	}{l.Name, len(table)}, nil
}

// Calls returns how many notifications of each kind were recorded.
func (m *Mock) Calls() (standingsCalls, invitations, results int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendStandingsCalls), len(m.SendInvitationCalls), len(m.SendMatchResultCalls)
}
