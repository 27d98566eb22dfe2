package standings_test

import (
	"math/rand"
	"testing"

	"github.com/mauv0809/shuttle-league/internal/apperr"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/standings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stat(id, name string, wins, losses, scored, conceded int) league.ParticipantStats {
	return league.ParticipantStats{
		LeagueID:       "l1",
		UserID:         id,
		Name:           name,
		Wins:           wins,
		Losses:         losses,
		PointsScored:   scored,
		PointsConceded: conceded,
		MatchesPlayed:  wins + losses,
	}
}

func userIDs(ranked []standings.Standing) []string {
	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.UserID
	}
	return ids
}

func TestRankOrderingKeys(t *testing.T) {
	input := []league.ParticipantStats{
		stat("beta", "Ben", 0, 0, 0, 0),
		stat("fewer-scored", "Tom", 2, 2, 80, 60),
		{LeagueID: "l1", UserID: "more-losses", Name: "Xi", Wins: 4, Losses: 1, MatchesPlayed: 5, PointsScored: 100, PointsConceded: 50},
		stat("most-wins", "Zed", 5, 3, 160, 150),
		stat("more-scored", "Uma", 2, 2, 90, 70),
		{LeagueID: "l1", UserID: "fewer-losses", Name: "Wu", Wins: 4, Losses: 0, MatchesPlayed: 5, PointsScored: 84, PointsConceded: 60},
		stat("fewer-matches", "Yan", 4, 0, 84, 40),
		stat("better-diff", "Vera", 2, 2, 90, 60),
		stat("alpha", "Ann", 0, 0, 0, 0),
	}

	ranked, err := standings.Rank(input)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"most-wins",
		"fewer-matches",
		"fewer-losses",
		"more-losses",
		"better-diff",
		"more-scored",
		"fewer-scored",
		"alpha",
		"beta",
	}, userIDs(ranked))

	for i, s := range ranked {
		assert.Equal(t, i+1, s.Position)
	}
	assert.Equal(t, 30, ranked[4].PointDiff)
	assert.InDelta(t, 62.5, ranked[0].WinPercentage, 0.001)
}

func TestRankIsOrderIndependent(t *testing.T) {
	input := []league.ParticipantStats{
		stat("a", "Ann", 3, 1, 80, 60),
		stat("b", "Bob", 3, 1, 80, 60),
		stat("c", "Cat", 1, 3, 60, 80),
		stat("d", "Dan", 2, 2, 70, 70),
		stat("e", "Eve", 2, 2, 75, 70),
		stat("f", "Ann", 3, 1, 80, 60),
	}
	want, err := standings.Rank(input)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]league.ParticipantStats(nil), input...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := standings.Rank(shuffled)
		require.NoError(t, err)
		assert.Equal(t, userIDs(want), userIDs(got))
	}
}

func TestRankNameTieBreak(t *testing.T) {
	ranked, err := standings.Rank([]league.ParticipantStats{
		stat("2", "Momota", 1, 1, 40, 40),
		stat("1", "Axelsen", 1, 1, 40, 40),
	})
	require.NoError(t, err)
	assert.Equal(t, "Axelsen", ranked[0].Name)
	assert.Equal(t, "Momota", ranked[1].Name)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	input := []league.ParticipantStats{
		stat("b", "Bob", 0, 2, 20, 42),
		stat("a", "Ann", 2, 0, 42, 20),
	}
	_, err := standings.Rank(input)
	require.NoError(t, err)
	assert.Equal(t, "b", input[0].UserID)
}

func TestRankRejectsRecordWithoutUser(t *testing.T) {
	ranked, err := standings.Rank([]league.ParticipantStats{
		stat("a", "Ann", 1, 0, 21, 10),
		{Name: "Ghost"},
	})
	assert.Nil(t, ranked)
	assert.ErrorIs(t, err, apperr.InvalidInput)
}

func TestPodium(t *testing.T) {
	all := []league.ParticipantStats{
		stat("a", "Ann", 4, 0, 84, 40),
		stat("b", "Bob", 3, 1, 80, 60),
		stat("c", "Cat", 2, 2, 70, 70),
		stat("d", "Dan", 1, 3, 60, 80),
	}
	for size := 0; size <= len(all); size++ {
		ranked, err := standings.Rank(all[:size])
		require.NoError(t, err)

		podium := standings.Podium(ranked)
		assert.Len(t, podium, min(size, standings.PodiumSize))
		for i, s := range podium {
			assert.Equal(t, i+1, s.Position)
		}
	}

	ranked, err := standings.Rank(nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Empty(t, standings.Podium(ranked))
}

func TestWinPercentage(t *testing.T) {
	assert.Zero(t, standings.WinPercentage(league.ParticipantStats{}))
	assert.InDelta(t, 75.0, standings.WinPercentage(stat("a", "Ann", 3, 1, 0, 0)), 0.001)
}
