package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/database"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/lifecycle"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
	"github.com/mauv0809/shuttle-league/internal/social"
	"github.com/mauv0809/shuttle-league/internal/standings"
	"github.com/mauv0809/shuttle-league/internal/user"
	"github.com/mauv0809/shuttle-league/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc      *lifecycle.Service
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	notifier *notifier.Mock
	hub      *watch.Hub
	teardown func()
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	env := &testEnv{
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock(),
		notifier: notifier.NewMock(),
		hub:      watch.NewHub(),
		teardown: teardown,
	}
	env.svc = lifecycle.New(lifecycle.Deps{
		Leagues:  league.New(db),
		Social:   social.New(db),
		Users:    user.New(db),
		Hub:      env.hub,
		PubSub:   env.pubsub,
		Notifier: env.notifier,
		Metrics:  env.metrics,
		DryRun:   true,
	})

	ctx := context.Background()
	for _, u := range []user.NewUser{
		{ID: "u1", DisplayName: "Alice Smith", Nickname: "Ali", Username: "alice_s", Email: "alice@example.com"},
		{ID: "u2", DisplayName: "Bob Jones", Nickname: "Bobby", Username: "bob_jones", Email: "bob@example.com"},
		{ID: "u3", DisplayName: "Carol White", Nickname: "Caz", Username: "carol_w", Email: "carol@example.com"},
	} {
		_, err := env.svc.RegisterUser(ctx, u)
		require.NoError(t, err)
	}
	return env
}

func (e *testEnv) league(t *testing.T, visibility league.Visibility) *league.League {
	t.Helper()
	l, err := e.svc.CreateLeague(context.Background(), league.NewLeague{
		Name:       "Thursday Smash",
		Visibility: visibility,
		CreatorID:  "u1",
	})
	require.NoError(t, err)
	return l
}

func receive[T any](t *testing.T, sub *watch.Subscription[T]) T {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		require.NoError(t, snap.Err)
		return snap.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func TestCreateLeagueRecordsEvent(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	l := env.league(t, league.VisibilityPublic)

	assert.Equal(t, []pubsub.EventType{pubsub.EventLeagueCreated}, env.pubsub.Topics())
	assert.Equal(t, 1, env.metrics.LifecycleEvents(string(pubsub.EventLeagueCreated)))

	event, ok := env.pubsub.SendMessageCalls[0].Data.(pubsub.LeagueEvent)
	require.True(t, ok)
	assert.Equal(t, l.ID, event.LeagueID)
	assert.Equal(t, "u1", event.ActorID)
}

func TestInvitationLifecycle(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPrivate)

	_, err := env.svc.SendInvitation(ctx, "u3", "u2", l.ID)
	assert.ErrorIs(t, err, apperr.ErrNotLeagueAdmin)
	assert.Equal(t, 1, env.metrics.OperationErrors(string(apperr.KindForbidden)))

	inv, err := env.svc.SendInvitation(ctx, "u1", "u2", l.ID)
	require.NoError(t, err)

	require.Len(t, env.notifier.SendInvitationCalls, 1)
	assert.Equal(t, "Alice Smith", env.notifier.SendInvitationCalls[0].SenderName)
	assert.Equal(t, "Bob Jones", env.notifier.SendInvitationCalls[0].ReceiverName)

	_, err = env.svc.SendInvitation(ctx, "u1", "u2", l.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyInvited)

	state, err := env.svc.ParticipationState(ctx, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.StateInvited, state)

	_, err = env.svc.AcceptInvitation(ctx, inv.ID, l.ID, "u2")
	require.NoError(t, err)

	state, err = env.svc.ParticipationState(ctx, l.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, league.StateActive, state)

	_, err = env.svc.AcceptInvitation(ctx, inv.ID, l.ID, "u2")
	assert.ErrorIs(t, err, apperr.ErrInvitationNotFound)
	assert.ErrorIs(t, err, apperr.NotFound)

	assert.Equal(t, []pubsub.EventType{
		pubsub.EventLeagueCreated,
		pubsub.EventInvitationSent,
		pubsub.EventInvitationAccepted,
	}, env.pubsub.Topics())
}

func TestDeclineInvitation(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPrivate)

	inv, err := env.svc.SendInvitation(ctx, "u1", "u2", l.ID)
	require.NoError(t, err)

	err = env.svc.DeclineInvitation(ctx, inv.ID, "u3")
	assert.ErrorIs(t, err, apperr.Forbidden)

	require.NoError(t, env.svc.DeclineInvitation(ctx, inv.ID, "u2"))
	require.NoError(t, env.svc.DeclineInvitation(ctx, inv.ID, "u2"), "declining twice is a no-op")

	pending, err := env.svc.ListMyInvitations(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPrivateLeagueIsHiddenFromStrangers(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPrivate)

	_, err := env.svc.Standings(ctx, "u3", l.ID)
	assert.ErrorIs(t, err, apperr.Forbidden)

	_, err = env.svc.JoinLeague(ctx, l.ID, "u3")
	assert.ErrorIs(t, err, apperr.ErrLeaguePrivate)

	_, err = env.svc.SendInvitation(ctx, "u1", "u3", l.ID)
	require.NoError(t, err)

	table, err := env.svc.Standings(ctx, "u3", l.ID)
	require.NoError(t, err, "invitees may look")
	assert.Len(t, table, 1)
}

func TestJoinAndLeavePublicLeague(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	_, err := env.svc.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	mine, err := env.svc.ListMyLeagues(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, env.svc.LeaveLeague(ctx, l.ID, "u2"))
	assert.ErrorIs(t, env.svc.LeaveLeague(ctx, l.ID, "u1"), apperr.ErrCreatorCannotLeave)

	_, err = env.svc.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err, "rejoining is allowed")
}

func TestRoleChecks(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	_, err := env.svc.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	points := 15
	_, err = env.svc.UpdateRules(ctx, "u2", l.ID, league.RulesUpdate{Points: &points})
	assert.ErrorIs(t, err, apperr.ErrNotLeagueAdmin)

	require.NoError(t, env.svc.SetRole(ctx, "u1", l.ID, "u2", league.RoleAdmin))
	updated, err := env.svc.UpdateRules(ctx, "u2", l.ID, league.RulesUpdate{Points: &points})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Rules.Points)

	assert.ErrorIs(t, env.svc.DeleteLeague(ctx, "u2", l.ID), apperr.ErrNotLeagueAdmin, "admins cannot delete")
	require.NoError(t, env.svc.DeleteLeague(ctx, "u1", l.ID))

	_, err = env.svc.GetLeague(ctx, "u1", l.ID)
	assert.ErrorIs(t, err, apperr.ErrLeagueNotFound)
}

func TestFinishMatchUpdatesWatchersAndNotifies(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	_, err := env.svc.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	sub, err := env.svc.WatchStandings(ctx, "u3", l.ID)
	require.NoError(t, err)
	defer sub.Close()

	initial := receive(t, sub)
	require.Len(t, initial, 2)
	assert.Zero(t, initial[0].MatchesPlayed)

	_, err = env.svc.CreateMatch(ctx, "u3", l.ID, []string{"u1"}, []string{"u2"})
	assert.ErrorIs(t, err, apperr.ErrNotLeagueAdmin, "outsiders cannot schedule matches")

	m, err := env.svc.CreateMatch(ctx, "u1", l.ID, []string{"u1"}, []string{"u2"})
	require.NoError(t, err)
	_, err = env.svc.StartMatch(ctx, "u2", m.ID)
	require.NoError(t, err)

	_, err = env.svc.FinishMatch(ctx, "u2", m.ID, 21, 21)
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = env.svc.FinishMatch(ctx, "u2", m.ID, 18, 21)
	require.NoError(t, err)

	var table []standings.Standing
	for i := 0; i < 5; i++ {
		table = receive(t, sub)
		if len(table) == 2 && table[0].MatchesPlayed == 1 {
			break
		}
	}
	assert.Equal(t, "u2", table[0].UserID)
	assert.Equal(t, 1, table[0].Wins)
	assert.Equal(t, 3, table[0].PointDiff)

	require.Len(t, env.notifier.SendMatchResultCalls, 1)
	assert.Equal(t, map[string]string{"u1": "Alice Smith", "u2": "Bob Jones"}, env.notifier.SendMatchResultCalls[0].Names)
	assert.Equal(t, 1, env.metrics.LifecycleEvents(string(pubsub.EventMatchFinished)))
	assert.Positive(t, env.metrics.StandingsComputed())
}

func TestWatchStandingsReplacesOwnersPreviousWatch(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	first, err := env.svc.WatchStandings(ctx, "u1", l.ID)
	require.NoError(t, err)
	second, err := env.svc.WatchStandings(ctx, "u1", l.ID)
	require.NoError(t, err)
	defer second.Close()

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first watch was not replaced")
	}
	assert.Equal(t, 1, env.hub.Subscribers(lifecycle.StandingsKey(l.ID)))
}

func TestWatchInvitations(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPrivate)

	sub := env.svc.WatchInvitations(ctx, "u2")
	defer sub.Close()
	assert.Empty(t, receive(t, sub))

	_, err := env.svc.SendInvitation(ctx, "u1", "u2", l.ID)
	require.NoError(t, err)
	assert.Len(t, receive(t, sub), 1)
}

func TestPostAllStandingsSkipsLeaguesWithoutResults(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	played := env.league(t, league.VisibilityPublic)
	env.league(t, league.VisibilityPublic)

	_, err := env.svc.JoinLeague(ctx, played.ID, "u2")
	require.NoError(t, err)
	m, err := env.svc.CreateMatch(ctx, "u1", played.ID, []string{"u1"}, []string{"u2"})
	require.NoError(t, err)
	_, err = env.svc.FinishMatch(ctx, "u1", m.ID, 21, 10)
	require.NoError(t, err)

	posted, err := env.svc.PostAllStandings(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, posted)

	require.Len(t, env.notifier.SendStandingsCalls, 1)
	assert.Equal(t, played.ID, env.notifier.SendStandingsCalls[0].League.ID)
	assert.True(t, env.notifier.SendStandingsCalls[0].DryRun)
}

func TestLeagueOverview(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	for _, id := range []string{"u2", "u3"} {
		_, err := env.svc.JoinLeague(ctx, l.ID, id)
		require.NoError(t, err)
	}
	_, err := env.svc.CreateMatch(ctx, "u1", l.ID, []string{"u1"}, []string{"u3"})
	require.NoError(t, err)

	overview, err := env.svc.LeagueOverview(ctx, "u2", l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, overview.League.ID)
	assert.Len(t, overview.Participants, 3)
	assert.Len(t, overview.Standings, 3)
	assert.Len(t, overview.Podium, 3)
	assert.Len(t, overview.Matches, 1)
}

func TestFriendship(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	req, err := env.svc.SendFriendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = env.svc.SendFriendRequest(ctx, "u2", "u1")
	assert.ErrorIs(t, err, apperr.ErrAlreadyRequested)

	_, err = env.svc.SendFriendRequest(ctx, "u1", "nobody")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	_, err = env.svc.AcceptFriendRequest(ctx, req.ID, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotYourRequest)

	f, err := env.svc.AcceptFriendRequest(ctx, req.ID, "u2")
	require.NoError(t, err)

	friends, err := env.svc.ListFriends(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "u2", friends[0].Other("u1"))

	require.NoError(t, env.svc.Unfriend(ctx, f.ID, "u1"))
	assert.ErrorIs(t, env.svc.Unfriend(ctx, f.ID, "u1"), apperr.ErrFriendshipNotFound)

	assert.Equal(t, []pubsub.EventType{
		pubsub.EventFriendRequestSent,
		pubsub.EventFriendRequestAccepted,
		pubsub.EventFriendshipRemoved,
	}, env.pubsub.Topics())
}

func TestCancelFriendRequestTwice(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	req, err := env.svc.SendFriendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.CancelFriendRequest(ctx, req.ID, "u2"), apperr.ErrNotYourRequest)
	require.NoError(t, env.svc.CancelFriendRequest(ctx, req.ID, "u1"))
	require.NoError(t, env.svc.CancelFriendRequest(ctx, req.ID, "u1"))
	require.NoError(t, env.svc.DeclineFriendRequest(ctx, req.ID, "u2"))
}

func TestUpdateProfileOnlyForSelf(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	bio := "Plays from the back"
	_, err := env.svc.UpdateProfile(ctx, "u2", "u1", user.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, apperr.Forbidden)

	u, err := env.svc.UpdateProfile(ctx, "u1", "u1", user.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, u.Bio)
}

func TestStoreFailuresAreRemoteUnavailable(t *testing.T) {
	env := setup(t)
	env.teardown()

	_, err := env.svc.ListPublicLeagues(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.RemoteUnavailable)
	assert.Equal(t, 1, env.metrics.OperationErrors(string(apperr.KindRemoteUnavailable)))
}

func TestWatchStandingsReportsDeletedLeague(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	sub, err := env.svc.WatchStandings(ctx, "u3", l.ID)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	require.NoError(t, env.svc.DeleteLeague(ctx, "u1", l.ID))
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		assert.ErrorIs(t, snap.Err, apperr.ErrLeagueNotFound)
		assert.ErrorIs(t, snap.Err, apperr.NotFound)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestPostStandingsAsRequiresAdmin(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()
	l := env.league(t, league.VisibilityPublic)

	_, err := env.svc.JoinLeague(ctx, l.ID, "u2")
	require.NoError(t, err)

	_, err = env.svc.PostStandingsAs(ctx, "u2", l.ID, true)
	assert.ErrorIs(t, err, apperr.ErrNotLeagueAdmin)
	_, err = env.svc.PostStandingsAs(ctx, "u3", l.ID, true)
	assert.ErrorIs(t, err, apperr.Forbidden)
	assert.Empty(t, env.notifier.SendStandingsCalls)

	table, err := env.svc.PostStandingsAs(ctx, "u1", l.ID, true)
	require.NoError(t, err)
	assert.Len(t, table, 2)
	require.Len(t, env.notifier.SendStandingsCalls, 1)
}

func TestSetVerifiedOnlyForSelf(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	assert.ErrorIs(t, env.svc.SetVerified(ctx, "u2", "u1", true), apperr.Forbidden)

	require.NoError(t, env.svc.SetVerified(ctx, "u1", "u1", true))
	u, err := env.svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	u, err = env.svc.GetUserByUsername(ctx, "alice_s")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = env.svc.GetUserByUsername(ctx, "nobody_here")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestCheckSignUp(t *testing.T) {
	env := setup(t)
	defer env.teardown()
	ctx := context.Background()

	tests := []struct {
		name  string
		form  user.SignUp
		field string
		want  error
	}{
		{name: "valid", form: user.SignUp{Email: "dave@example.com", Password: "Shuttle21", Username: "dave_d"}},
		{name: "weak password", form: user.SignUp{Email: "dave@example.com", Password: "shuttle21", Username: "dave_d"}, field: "password", want: apperr.Validation},
		{name: "short password", form: user.SignUp{Email: "dave@example.com", Password: "Sh21", Username: "dave_d"}, field: "password", want: apperr.Validation},
		{name: "undotted domain", form: user.SignUp{Email: "dave@example", Password: "Shuttle21", Username: "dave_d"}, field: "email", want: apperr.Validation},
		{name: "taken username", form: user.SignUp{Email: "dave@example.com", Password: "Shuttle21", Username: "alice_s"}, field: "username", want: apperr.ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.CheckSignUp(ctx, tt.form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}
