package league_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	for _, u := range [][2]string{{"u1", "Alice"}, {"u2", "Bob"}, {"u3", "Carol"}, {"u4", "Dave"}} {
		_, err := db.Exec(`INSERT INTO users (id, display_name, nickname, username, email, created_at) VALUES (?, ?, ?, ?, ?, 0)`,
			u[0], u[1], u[1], u[0]+"_user", u[0]+"@example.com")
		require.NoError(t, err)
	}
	return league.New(db), db, teardown
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func createLeague(t *testing.T, store league.LeagueStore, visibility league.Visibility, rules league.Rules) *league.League {
	t.Helper()
	l, err := store.CreateLeague(context.Background(), league.NewLeague{
		Name:       "Thursday Smash",
		Visibility: visibility,
		Rules:      rules,
		CreatorID:  "u1",
	})
	require.NoError(t, err)
	return l
}

func TestCreateLeague(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, "", league.Rules{})
	assert.Equal(t, "thursday-smash", l.Slug)
	assert.Equal(t, league.VisibilityPrivate, l.Visibility)
	assert.Equal(t, league.DefaultPoints, l.Rules.Points)
	assert.Nil(t, l.Rules.FixedDouble)

	p, err := store.GetParticipant(ctx, l.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, league.RoleCreator, p.Role)
	assert.Equal(t, league.StatusActive, p.Status)
	assert.Equal(t, "Alice", p.Name)

	stats, err := store.ListStats(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "u1", stats[0].UserID)
	assert.Zero(t, stats[0].MatchesPlayed)

	t.Run("rejects fixed doubles without doubles", func(t *testing.T) {
		_, err := store.CreateLeague(ctx, league.NewLeague{Name: "x", CreatorID: "u1", Rules: league.Rules{FixedDouble: boolPtr(true)}})
		assert.ErrorIs(t, err, apperr.Validation)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := store.CreateLeague(ctx, league.NewLeague{Name: "  ", CreatorID: "u1"})
		assert.ErrorIs(t, err, apperr.Validation)
	})

	t.Run("doubles starts with fixed doubles off", func(t *testing.T) {
		l := createLeague(t, store, league.VisibilityPublic, league.Rules{Double: true})
		require.NotNil(t, l.Rules.FixedDouble)
		assert.False(t, *l.Rules.FixedDouble)
	})
}

func TestUpdateRulesDoublesCascade(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPrivate, league.Rules{Double: true, FixedDouble: boolPtr(true)})

	updated, err := store.UpdateRules(ctx, l.ID, league.RulesUpdate{Double: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Rules.Double)
	assert.Nil(t, updated.Rules.FixedDouble)

	updated, err = store.UpdateRules(ctx, l.ID, league.RulesUpdate{Double: boolPtr(true)})
	require.NoError(t, err)
	require.NotNil(t, updated.Rules.FixedDouble)
	assert.False(t, *updated.Rules.FixedDouble)

	reloaded, err := store.GetLeague(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Rules.FixedDouble)
	assert.False(t, *reloaded.Rules.FixedDouble)

	_, err = store.UpdateRules(ctx, l.ID, league.RulesUpdate{Double: boolPtr(false), FixedDouble: boolPtr(true)})
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = store.UpdateRules(ctx, l.ID, league.RulesUpdate{Points: intPtr(0)})
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = store.UpdateRules(ctx, "missing", league.RulesUpdate{Points: intPtr(11)})
	assert.ErrorIs(t, err, apperr.ErrLeagueNotFound)
}

func TestInvitationLifecycle(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPrivate, league.Rules{})

	inv, err := store.SendInvitation(ctx, "u1", "u2", l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Name, inv.LeagueName)

	state, err := store.ParticipationState(ctx, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.StateInvited, state)

	_, err = store.SendInvitation(ctx, "u3", "u2", l.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyInvited)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = store.SendInvitation(ctx, "u2", "u1", l.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyParticipant)

	invs, err := store.ListInvitationsForUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, invs, 1)

	p, err := store.AcceptInvitation(ctx, inv.ID, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.RolePlayer, p.Role)
	assert.Equal(t, league.StatusActive, p.Status)

	state, err = store.ParticipationState(ctx, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.StateActive, state)

	_, err = store.AcceptInvitation(ctx, inv.ID, l.ID, "u2")
	assert.ErrorIs(t, err, apperr.ErrInvitationNotFound)

	stats, err := store.ListStats(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestDeclineInvitationTwice(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPrivate, league.Rules{})
	inv, err := store.SendInvitation(ctx, "u1", "u3", l.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeclineInvitation(ctx, inv.ID))
	require.NoError(t, store.DeclineInvitation(ctx, inv.ID))

	state, err := store.ParticipationState(ctx, l.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, league.StateNone, state)

	_, err = store.GetInvitation(ctx, inv.ID)
	assert.ErrorIs(t, err, apperr.ErrInvitationNotFound)
}

func TestJoinLeaveAndRejoin(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	private := createLeague(t, store, league.VisibilityPrivate, league.Rules{})
	_, err := store.JoinLeague(ctx, private.ID, "u2")
	assert.ErrorIs(t, err, apperr.ErrLeaguePrivate)

	public := createLeague(t, store, league.VisibilityPublic, league.Rules{})
	_, err = store.JoinLeague(ctx, public.ID, "u2")
	require.NoError(t, err)

	_, err = store.JoinLeague(ctx, public.ID, "u2")
	assert.ErrorIs(t, err, apperr.ErrAlreadyParticipant)

	require.NoError(t, store.LeaveLeague(ctx, public.ID, "u2"))
	state, err := store.ParticipationState(ctx, public.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.StateNone, state)

	stats, err := store.ListStats(ctx, public.ID)
	require.NoError(t, err)
	assert.Len(t, stats, 1)

	_, err = store.JoinLeague(ctx, public.ID, "u2")
	require.NoError(t, err, "rejoining after leaving is allowed")

	err = store.LeaveLeague(ctx, public.ID, "u1")
	assert.ErrorIs(t, err, apperr.ErrCreatorCannotLeave)

	err = store.LeaveLeague(ctx, public.ID, "u4")
	assert.ErrorIs(t, err, apperr.ErrParticipantNotFound)

	mine, err := store.ListLeaguesForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	publics, err := store.ListPublicLeagues(ctx)
	require.NoError(t, err)
	assert.Len(t, publics, 1)
}

func TestUpdateParticipantRole(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPublic, league.Rules{})
	_, err := store.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	require.NoError(t, store.UpdateParticipantRole(ctx, l.ID, "u2", league.RoleAdmin))
	p, err := store.GetParticipant(ctx, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.RoleAdmin, p.Role)

	assert.ErrorIs(t, store.UpdateParticipantRole(ctx, l.ID, "u2", league.RoleCreator), apperr.Validation)
	assert.ErrorIs(t, store.UpdateParticipantRole(ctx, l.ID, "u1", league.RolePlayer), apperr.Validation)
}

func TestMatchLifecycleUpdatesStats(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPublic, league.Rules{Points: 21, Deuce: true})
	_, err := store.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	_, err = store.CreateMatch(ctx, l.ID, []string{"u1"}, []string{"u1"})
	assert.ErrorIs(t, err, apperr.Validation)
	_, err = store.CreateMatch(ctx, l.ID, []string{"u1"}, []string{"u3"})
	assert.ErrorIs(t, err, apperr.Validation)
	_, err = store.CreateMatch(ctx, l.ID, []string{"u1", "u2"}, []string{"u3", "u4"})
	assert.ErrorIs(t, err, apperr.Validation)

	m, err := store.CreateMatch(ctx, l.ID, []string{"u1"}, []string{"u2"})
	require.NoError(t, err)
	assert.Equal(t, league.MatchScheduled, m.Status)

	m, err = store.StartMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, league.MatchPlaying, m.Status)
	require.NotNil(t, m.StartedAt)

	_, err = store.StartMatch(ctx, m.ID)
	assert.ErrorIs(t, err, apperr.ErrMatchStatusTransition)

	_, err = store.FinishMatch(ctx, m.ID, 21, 20)
	assert.ErrorIs(t, err, apperr.Validation)

	m, err = store.FinishMatch(ctx, m.ID, 22, 24)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, m.Winners())

	_, err = store.FinishMatch(ctx, m.ID, 21, 10)
	assert.ErrorIs(t, err, apperr.ErrMatchStatusTransition)

	stats, err := store.ListStats(ctx, l.ID)
	require.NoError(t, err)
	byUser := map[string]league.ParticipantStats{}
	for _, s := range stats {
		byUser[s.UserID] = s
	}
	assert.Equal(t, 1, byUser["u2"].Wins)
	assert.Equal(t, 24, byUser["u2"].PointsScored)
	assert.Equal(t, 22, byUser["u2"].PointsConceded)
	assert.Equal(t, 1, byUser["u1"].Losses)
	assert.Equal(t, -2, byUser["u1"].PointDiff())
	assert.Equal(t, 1, byUser["u1"].MatchesPlayed)

	matches, err := store.ListMatches(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, league.MatchFinished, matches[0].Status)
}

func TestValidateScore(t *testing.T) {
	tests := []struct {
		name   string
		rules  league.Rules
		s1, s2 int
		valid  bool
	}{
		{"plain win", league.Rules{Points: 21, Deuce: true}, 21, 15, true},
		{"tie", league.Rules{Points: 21, Deuce: true}, 21, 21, false},
		{"deuce win by two", league.Rules{Points: 21, Deuce: true}, 25, 23, true},
		{"deuce win by one", league.Rules{Points: 21, Deuce: true}, 22, 21, false},
		{"deuce needs two point lead at target", league.Rules{Points: 21, Deuce: true}, 21, 20, false},
		{"no deuce exact target", league.Rules{Points: 11}, 10, 11, true},
		{"no deuce past target", league.Rules{Points: 11}, 12, 10, false},
		{"winner short of target", league.Rules{Points: 21}, 15, 10, false},
		{"negative", league.Rules{Points: 21}, 21, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := league.ValidateScore(tt.rules, tt.s1, tt.s2)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.Validation)
			}
		})
	}
}

func TestDeleteLeagueCascades(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	l := createLeague(t, store, league.VisibilityPublic, league.Rules{})
	_, err := store.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)
	_, err = store.SendInvitation(ctx, "u1", "u3", l.ID)
	require.NoError(t, err)
	_, err = store.CreateMatch(ctx, l.ID, []string{"u1"}, []string{"u2"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteLeague(ctx, l.ID))

	for _, table := range []string{"league_participants", "participant_stats", "matches", "invitations"} {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE league_id = ?", l.ID).Scan(&count))
		assert.Zero(t, count, table)
	}
	_, err = store.GetLeague(ctx, l.ID)
	assert.ErrorIs(t, err, apperr.ErrLeagueNotFound)

	assert.ErrorIs(t, store.DeleteLeague(ctx, l.ID), apperr.ErrLeagueNotFound)
}
